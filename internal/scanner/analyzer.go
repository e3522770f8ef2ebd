// Package scanner discovers the project files a scan addresses and runs the
// registered analyzers over them, one file at a time.
package scanner

import "context"

// Recorder accumulates analyzer output. *types.Result implements it.
type Recorder interface {
	Record(f Finding)
	Count(counter string)
}

// Analyzer is the interface that all analysis engines must implement.
type Analyzer interface {
	Name() string
	Analyze(ctx context.Context, target *Target, rec Recorder) error
}
