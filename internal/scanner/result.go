package scanner

// This package re-exports types from internal/types for convenience.
// The canonical types live in internal/types to avoid import cycles.

import "github.com/garagon/perfscan/internal/types"

type (
	Severity = types.Severity
	Finding  = types.Finding
	Result   = types.Result
)

const (
	SeverityInfo     = types.SeverityInfo
	SeverityLow      = types.SeverityLow
	SeverityMedium   = types.SeverityMedium
	SeverityHigh     = types.SeverityHigh
	SeverityCritical = types.SeverityCritical
)

var (
	ParseSeverity = types.ParseSeverity
	NewResult     = types.NewResult
)
