// Package perfscan statically scans a TypeScript/React project for likely
// performance problems: N+1 queries, unpaginated or SELECT * queries,
// missing memoization, inline JSX handlers, uncached queries, oversized
// imports and more. Detection is heuristic and line-oriented.
//
// This is the library entry point. For the CLI tool, see cmd/perfscan/.
package perfscan

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/garagon/perfscan/internal/engine/heuristic"
	"github.com/garagon/perfscan/internal/output"
	"github.com/garagon/perfscan/internal/rules"
	"github.com/garagon/perfscan/internal/rules/builtin"
	"github.com/garagon/perfscan/internal/scanner"
	"github.com/garagon/perfscan/internal/types"
)

// Re-export core types from internal/types so consumers don't need to
// import internal packages.
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

// ReportFile is the default report name written under the project root.
const ReportFile = output.ReportFile

// DefaultTargets are the project-relative globs scanned when none are given.
var DefaultTargets = scanner.DefaultTargets

// RuleOverride allows changing the severity of a detector or disabling it.
type RuleOverride struct {
	Severity string
	Disabled bool
}

// RuleInfo provides summary metadata about a detector.
type RuleInfo struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Severity string `json:"severity"`
	Category string `json:"category,omitempty"`
	Counter  string `json:"counter,omitempty"`
}

// RuleDetail provides full information about a detector, including its
// patterns, evidence window and examples.
type RuleDetail struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Severity       string   `json:"severity"`
	Category       string   `json:"category,omitempty"`
	Counter        string   `json:"counter,omitempty"`
	Description    string   `json:"description"`
	Targets        []string `json:"targets"`
	Patterns       []string `json:"patterns"`
	Guard          string   `json:"guard,omitempty"`
	Check          string   `json:"check,omitempty"`
	Message        string   `json:"message,omitempty"`
	TruePositives  []string `json:"true_positives"`
	FalsePositives []string `json:"false_positives"`
}

// Scan analyzes the project rooted at root. A root that does not exist
// yields an empty Result rather than an error.
func Scan(ctx context.Context, root string, opts ...Option) (*Result, error) {
	cfg := applyOpts(opts)
	s, compiled, err := buildScanner(cfg)
	if err != nil {
		return nil, err
	}
	result, err := s.Scan(ctx, root)
	if err != nil {
		return nil, err
	}
	result.RulesLoaded = len(compiled)
	result.Target = root
	return result, nil
}

// ScanContent analyzes inline content without touching disk. filename is the
// project-relative path used for detector targeting, e.g. "server/routers.ts".
func ScanContent(ctx context.Context, content string, filename string, opts ...Option) (*Result, error) {
	if filename == "" {
		return nil, fmt.Errorf("filename is required for detector targeting")
	}
	cfg := applyOpts(opts)
	s, compiled, err := buildScanner(cfg)
	if err != nil {
		return nil, err
	}
	targets := []*scanner.Target{{
		RelPath: filename,
		Content: []byte(content),
	}}
	result, err := s.ScanTargets(ctx, targets)
	if err != nil {
		return nil, err
	}
	result.RulesLoaded = len(compiled)
	return result, nil
}

// Render produces the fixed-template text report for result.
func Render(result *Result) string {
	return output.Render(result)
}

// ListRules returns all available detectors sorted by ID.
// Use WithCategory to filter by category or counter.
func ListRules(opts ...Option) []RuleInfo {
	cfg := applyOpts(opts)
	compiled, err := loadAndCompile(cfg)
	if err != nil {
		slog.Warn("loading detectors", "error", err)
	}

	sort.Slice(compiled, func(i, j int) bool {
		return compiled[i].ID < compiled[j].ID
	})

	if cfg.category != "" {
		var filtered []*rules.CompiledRule
		for _, r := range compiled {
			if strings.EqualFold(r.Category, cfg.category) || strings.EqualFold(r.Counter, cfg.category) {
				filtered = append(filtered, r)
			}
		}
		compiled = filtered
	}

	infos := make([]RuleInfo, len(compiled))
	for i, r := range compiled {
		infos[i] = RuleInfo{
			ID:       r.ID,
			Name:     r.Name,
			Severity: r.Severity.String(),
			Category: r.Category,
			Counter:  r.Counter,
		}
	}
	return infos
}

// ExplainRule returns detailed information about a specific detector.
func ExplainRule(id string, opts ...Option) (*RuleDetail, error) {
	id = strings.ToUpper(strings.TrimSpace(id))
	cfg := applyOpts(opts)
	compiled, err := loadAndCompile(cfg)
	if err != nil {
		return nil, err
	}

	var found *rules.CompiledRule
	for _, r := range compiled {
		if r.ID == id {
			found = r
			break
		}
	}
	if found == nil {
		return nil, fmt.Errorf("rule %q not found", id)
	}

	patterns := make([]string, len(found.Patterns))
	for i, p := range found.Patterns {
		patterns[i] = p.Describe()
	}

	return &RuleDetail{
		ID:             found.ID,
		Name:           found.Name,
		Severity:       found.Severity.String(),
		Category:       found.Category,
		Counter:        found.Counter,
		Description:    strings.TrimSpace(found.Description),
		Targets:        found.Targets,
		Patterns:       patterns,
		Guard:          describeGuard(found.Guard),
		Check:          string(found.Check),
		Message:        found.Message,
		TruePositives:  found.Examples.TruePositive,
		FalsePositives: found.Examples.FalsePositive,
	}, nil
}

func describeGuard(g *rules.CompiledGuard) string {
	if g == nil {
		return ""
	}
	var where string
	switch g.Window {
	case rules.WindowBefore:
		where = fmt.Sprintf("current line and %d lines before", g.Size)
	case rules.WindowAfter:
		where = fmt.Sprintf("%d lines after", g.Size)
	case rules.WindowAround:
		where = fmt.Sprintf("%d bytes around the line", g.Size)
	case rules.WindowFile:
		where = "whole file"
	}
	if len(g.Patterns) == 0 {
		return where
	}
	pats := make([]string, len(g.Patterns))
	for i, p := range g.Patterns {
		pats[i] = p.Describe()
	}
	return fmt.Sprintf("%s: %s must be %s", where, strings.Join(pats, " or "), g.When)
}

func applyOpts(opts []Option) *scanConfig {
	cfg := &scanConfig{}
	for _, o := range opts {
		o(cfg)
	}
	return cfg
}

// loadAndCompile loads built-in (and optionally custom) detectors, compiles
// them, and applies overrides/filters. Used by all public functions.
func loadAndCompile(cfg *scanConfig) ([]*rules.CompiledRule, error) {
	rawRules, err := rules.LoadFromFS(builtin.FS())
	if err != nil {
		return nil, fmt.Errorf("loading built-in rules: %w", err)
	}

	if cfg.customRulesDir != "" {
		custom, err := rules.LoadFromDir(cfg.customRulesDir)
		if err != nil {
			return nil, fmt.Errorf("loading custom rules from %s: %w", cfg.customRulesDir, err)
		}
		rawRules = append(rawRules, custom...)
	}

	compiled, compileErrs := rules.CompileAll(rawRules)
	for _, e := range compileErrs {
		slog.Warn("skipping detector", "error", e)
	}

	if len(cfg.ruleOverrides) > 0 {
		overrides := make(map[string]rules.RuleOverride, len(cfg.ruleOverrides))
		for id, ovr := range cfg.ruleOverrides {
			overrides[strings.ToUpper(id)] = rules.RuleOverride{Severity: ovr.Severity, Disabled: ovr.Disabled}
		}
		var overrideErrs []error
		compiled, overrideErrs = rules.ApplyOverrides(compiled, overrides)
		for _, e := range overrideErrs {
			slog.Warn("ignoring override", "error", e)
		}
	}

	if len(cfg.disabledRules) > 0 {
		disabled := make(map[string]bool, len(cfg.disabledRules))
		for _, id := range cfg.disabledRules {
			disabled[strings.ToUpper(strings.TrimSpace(id))] = true
		}
		compiled = rules.FilterByIDs(compiled, disabled)
	}

	return compiled, nil
}

// buildScanner creates a Scanner wired with the heuristic analyzer.
func buildScanner(cfg *scanConfig) (*scanner.Scanner, []*rules.CompiledRule, error) {
	compiled, err := loadAndCompile(cfg)
	if err != nil {
		return nil, nil, err
	}

	s := scanner.New(cfg.targets)
	s.SetMinSeverity(cfg.minSeverity)
	if len(cfg.ignorePatterns) > 0 {
		s.SetIgnorePatterns(cfg.ignorePatterns)
	}
	s.RegisterAnalyzer(heuristic.NewMatcher(compiled))

	return s, compiled, nil
}
