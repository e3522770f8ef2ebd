// Package types defines shared data structures (Finding, Severity, Result)
// used across scanner, engine, and output packages to prevent import cycles.
package types

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"
)

// Severity represents the severity level of a finding.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityLow
	SeverityMedium
	SeverityHigh
	SeverityCritical
)

func (s Severity) String() string {
	switch s {
	case SeverityCritical:
		return "CRITICAL"
	case SeverityHigh:
		return "HIGH"
	case SeverityMedium:
		return "MEDIUM"
	case SeverityLow:
		return "LOW"
	case SeverityInfo:
		return "INFO"
	default:
		return "UNKNOWN"
	}
}

// ParseSeverity converts a string to a Severity level.
func ParseSeverity(s string) (Severity, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "CRITICAL":
		return SeverityCritical, nil
	case "HIGH":
		return SeverityHigh, nil
	case "MEDIUM":
		return SeverityMedium, nil
	case "LOW":
		return SeverityLow, nil
	case "INFO":
		return SeverityInfo, nil
	default:
		return SeverityInfo, fmt.Errorf("unknown severity: %q", s)
	}
}

// Finding categories.
const (
	CategoryNPlusOne             = "n_plus_one"
	CategorySelectStar           = "select_star"
	CategoryMissingCache         = "missing_cache"
	CategoryMissingMemo          = "missing_memo"
	CategoryLargeState           = "large_state"
	CategoryInlineFunctions      = "inline_functions"
	CategoryMissingDeps          = "missing_deps"
	CategoryLargeImports         = "large_imports"
	CategoryUnusedImports        = "unused_imports"
	CategoryMissingErrorHandling = "missing_error_handling"
	CategorySyncOperations       = "sync_operations"
)

// Counter names.
const (
	CounterWhereClauses       = "where_clauses"
	CounterUnpaginatedQueries = "unpaginated_queries"
	CounterMountOnlyEffects   = "mount_only_effects"
	CounterDBConnections      = "db_connections"
)

// KnownCounters lists the counters every Result starts with, in report order.
var KnownCounters = []string{
	CounterWhereClauses,
	CounterUnpaginatedQueries,
	CounterMountOnlyEffects,
	CounterDBConnections,
}

// Finding represents a single reported performance issue.
type Finding struct {
	RuleID      string   `json:"rule_id"`
	RuleName    string   `json:"rule_name"`
	Severity    Severity `json:"severity"`
	Category    string   `json:"category"`
	Description string   `json:"description,omitempty"`
	FilePath    string   `json:"file_path"`
	Label       string   `json:"label"`
	Line        int      `json:"line"`
	Symbol      string   `json:"symbol,omitempty"`
	Message     string   `json:"message"`
	MatchedText string   `json:"matched_text"`
}

// String renders the finding the way it appears in the text report,
// e.g. "routers.ts:12 - Potential N+1 query in loop".
func (f Finding) String() string {
	return fmt.Sprintf("%s:%d - %s", f.Label, f.Line, f.Message)
}

// Result accumulates findings by category and counter tallies for one run.
// Both maps are append/increment only.
type Result struct {
	Issues       map[string][]Finding `json:"issues"`
	Stats        map[string]int       `json:"stats"`
	FilesScanned int                  `json:"files_scanned"`
	RulesLoaded  int                  `json:"rules_loaded"`
	Duration     time.Duration        `json:"-"`
	Target       string               `json:"-"`
}

// NewResult returns an empty Result with every known counter at zero.
func NewResult() *Result {
	r := &Result{
		Issues: make(map[string][]Finding),
		Stats:  make(map[string]int, len(KnownCounters)),
	}
	for _, name := range KnownCounters {
		r.Stats[name] = 0
	}
	return r
}

// Record appends a finding to its category bucket.
func (r *Result) Record(f Finding) {
	r.Issues[f.Category] = append(r.Issues[f.Category], f)
}

// Count increments the named counter.
func (r *Result) Count(name string) {
	r.Stats[name]++
}

// Total returns the number of findings across all categories.
func (r *Result) Total() int {
	n := 0
	for _, fs := range r.Issues {
		n += len(fs)
	}
	return n
}

// Categories returns the non-empty categories in sorted order.
func (r *Result) Categories() []string {
	cats := make([]string, 0, len(r.Issues))
	for cat, fs := range r.Issues {
		if len(fs) > 0 {
			cats = append(cats, cat)
		}
	}
	sort.Strings(cats)
	return cats
}

// All returns every finding, grouped by sorted category and in detection
// order within a category.
func (r *Result) All() []Finding {
	var all []Finding
	for _, cat := range r.Categories() {
		all = append(all, r.Issues[cat]...)
	}
	return all
}

// FilterSeverity drops findings below min. Counters are left untouched.
func (r *Result) FilterSeverity(min Severity) {
	if min <= SeverityInfo {
		return
	}
	for cat, fs := range r.Issues {
		var kept []Finding
		for _, f := range fs {
			if f.Severity >= min {
				kept = append(kept, f)
			}
		}
		if len(kept) == 0 {
			delete(r.Issues, cat)
			continue
		}
		r.Issues[cat] = kept
	}
}

// MarshalJSON implements custom JSON marshaling so Duration serializes as milliseconds.
func (r Result) MarshalJSON() ([]byte, error) {
	type Alias Result
	return json.Marshal(struct {
		Alias
		DurationMS int64 `json:"duration_ms"`
	}{
		Alias:      Alias(r),
		DurationMS: r.Duration.Milliseconds(),
	})
}
