package scanner

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// Scanner orchestrates the scanning process. Files are read and analyzed
// strictly one after another; findings and counters accumulate on a single
// Result owned by the run.
type Scanner struct {
	analyzers      []Analyzer
	include        []string
	minSeverity    Severity
	ignorePatterns []string
}

// New creates a new Scanner addressing the given target globs.
// If include is empty, DefaultTargets is used.
func New(include []string) *Scanner {
	if len(include) == 0 {
		include = DefaultTargets
	}
	return &Scanner{include: include}
}

// RegisterAnalyzer adds an analyzer to the scanner pipeline.
func (s *Scanner) RegisterAnalyzer(a Analyzer) {
	s.analyzers = append(s.analyzers, a)
}

// SetMinSeverity sets the minimum severity for reported findings.
func (s *Scanner) SetMinSeverity(sev Severity) {
	s.minSeverity = sev
}

// SetIgnorePatterns sets additional file ignore patterns from config.
func (s *Scanner) SetIgnorePatterns(patterns []string) {
	s.ignorePatterns = patterns
}

// Scan performs a full scan of the given project root. A root that does not
// exist produces an empty Result. A single file is scanned on its own with
// its base name as the relative path.
func (s *Scanner) Scan(ctx context.Context, root string) (*Result, error) {
	info, err := os.Stat(root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			slog.Debug("project root not found, nothing to scan", "root", root)
			return s.ScanTargets(ctx, nil)
		}
		return nil, err
	}
	if !info.IsDir() {
		targets := []*Target{{
			Path:    root,
			RelPath: filepath.Base(root),
		}}
		return s.ScanTargets(ctx, targets)
	}

	discovery := &TargetDiscovery{Include: s.include, IgnorePatterns: s.ignorePatterns}
	targets, err := discovery.Discover(root)
	if err != nil {
		return nil, fmt.Errorf("discovering targets: %w", err)
	}
	slog.Info("discovered targets", "root", root, "files", len(targets))

	return s.ScanTargets(ctx, targets)
}

// ScanTargets runs the analyzers over a pre-built list of targets in order.
// Targets that already carry Content are not re-read.
func (s *Scanner) ScanTargets(ctx context.Context, targets []*Target) (*Result, error) {
	start := time.Now()
	result := NewResult()

	scanned := 0
	for _, target := range targets {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if target.Content == nil {
			if err := target.LoadContent(); err != nil {
				if errors.Is(err, fs.ErrNotExist) {
					continue
				}
				return nil, fmt.Errorf("reading %s: %w", target.RelPath, err)
			}
		}
		slog.Debug("scanning file", "path", target.RelPath, "bytes", len(target.Content))
		for _, analyzer := range s.analyzers {
			if err := analyzer.Analyze(ctx, target, result); err != nil {
				return nil, fmt.Errorf("%s analyzer on %s: %w", analyzer.Name(), target.RelPath, err)
			}
		}
		scanned++
	}

	result.FilterSeverity(s.minSeverity)
	result.FilesScanned = scanned
	result.Duration = time.Since(start)
	return result, nil
}
