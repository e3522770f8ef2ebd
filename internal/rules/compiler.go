package rules

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/garagon/perfscan/internal/types"
)

// Compile converts a RawRule into a CompiledRule ready for execution.
func Compile(raw RawRule) (*CompiledRule, error) {
	if raw.ID == "" {
		return nil, fmt.Errorf("rule missing ID")
	}
	if len(raw.Patterns) == 0 {
		return nil, fmt.Errorf("rule %s: no patterns defined", raw.ID)
	}
	if raw.Category == "" && raw.Counter == "" {
		return nil, fmt.Errorf("rule %s: needs a category or a counter", raw.ID)
	}

	sev := types.SeverityInfo
	if raw.Severity != "" {
		var err error
		sev, err = types.ParseSeverity(raw.Severity)
		if err != nil {
			return nil, fmt.Errorf("rule %s: %w", raw.ID, err)
		}
	}

	mode := MatchAny
	if strings.ToLower(raw.MatchMode) == "all" {
		mode = MatchAll
	}

	label := LabelBase
	switch LabelStyle(strings.ToLower(raw.Label)) {
	case "", LabelBase:
	case LabelRelative:
		label = LabelRelative
	default:
		return nil, fmt.Errorf("rule %s: unknown label %q", raw.ID, raw.Label)
	}

	compiled := &CompiledRule{
		ID:          raw.ID,
		Name:        raw.Name,
		Description: raw.Description,
		Severity:    sev,
		Category:    raw.Category,
		Counter:     raw.Counter,
		Targets:     raw.Targets,
		Label:       label,
		MatchMode:   mode,
		Check:       Check(raw.Check),
		Message:     raw.Message,
		Examples:    raw.Examples,
	}

	for i, p := range raw.Patterns {
		cp, err := compilePattern(p)
		if err != nil {
			return nil, fmt.Errorf("rule %s pattern %d: %w", raw.ID, i, err)
		}
		compiled.Patterns = append(compiled.Patterns, cp)
	}

	if raw.Guard != nil {
		g, err := compileGuard(*raw.Guard)
		if err != nil {
			return nil, fmt.Errorf("rule %s guard: %w", raw.ID, err)
		}
		compiled.Guard = g
	}

	if err := validateCheck(compiled); err != nil {
		return nil, fmt.Errorf("rule %s: %w", raw.ID, err)
	}

	return compiled, nil
}

func compileGuard(raw RawGuard) (*CompiledGuard, error) {
	g := &CompiledGuard{
		Window: Window(strings.ToLower(raw.Window)),
		Size:   raw.Size,
		When:   GuardWhen(strings.ToLower(raw.When)),
	}
	switch g.Window {
	case WindowBefore, WindowAfter, WindowAround:
		if g.Size <= 0 {
			return nil, fmt.Errorf("window %s needs a positive size", g.Window)
		}
	case WindowFile:
	default:
		return nil, fmt.Errorf("unknown window %q", raw.Window)
	}
	switch g.When {
	case "":
		g.When = GuardPresent
	case GuardPresent, GuardAbsent:
	default:
		return nil, fmt.Errorf("unknown when %q", raw.When)
	}
	for i, p := range raw.Patterns {
		cp, err := compilePattern(p)
		if err != nil {
			return nil, fmt.Errorf("pattern %d: %w", i, err)
		}
		g.Patterns = append(g.Patterns, cp)
	}
	return g, nil
}

func validateCheck(r *CompiledRule) error {
	switch r.Check {
	case CheckNone:
		if r.Category != "" && r.Counter != "" {
			return fmt.Errorf("category and counter are exclusive without a check")
		}
		if r.Guard != nil && len(r.Guard.Patterns) == 0 {
			return fmt.Errorf("guard has no patterns")
		}
	case CheckEffectDeps:
		if r.Category == "" || r.Counter == "" {
			return fmt.Errorf("check %s needs both category and counter", r.Check)
		}
		if r.Guard == nil || r.Guard.Window != WindowAfter {
			return fmt.Errorf("check %s needs an after window", r.Check)
		}
	case CheckNamedImports:
		if r.Category == "" {
			return fmt.Errorf("check %s needs a category", r.Check)
		}
		if r.Patterns[0].Type != PatternRegex || r.Patterns[0].Regex.NumSubexp() < 1 {
			return fmt.Errorf("check %s needs a regex with a capture group first", r.Check)
		}
	default:
		return fmt.Errorf("unknown check %q", r.Check)
	}
	return nil
}

func compilePattern(p RawPattern) (CompiledPattern, error) {
	cp := CompiledPattern{Type: p.Type, Value: p.Value}
	switch p.Type {
	case PatternRegex:
		re, err := regexp.Compile(p.Value)
		if err != nil {
			return cp, fmt.Errorf("invalid regex: %w", err)
		}
		cp.Regex = re
	case PatternContains:
		if p.Value == "" {
			return cp, fmt.Errorf("empty contains value")
		}
	default:
		return cp, fmt.Errorf("unknown type %q", p.Type)
	}
	return cp, nil
}

// CompileAll compiles a slice of raw rules, returning compiled rules and any errors.
func CompileAll(raws []RawRule) ([]*CompiledRule, []error) {
	var rules []*CompiledRule
	var errs []error
	for _, raw := range raws {
		cr, err := Compile(raw)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		rules = append(rules, cr)
	}
	return rules, errs
}

// RuleOverride allows per-rule severity change or disable from config.
type RuleOverride struct {
	Severity string
	Disabled bool
}

// ApplyOverrides applies config-based rule overrides to compiled rules.
// Disabled rules are removed. Severity overrides update the rule's severity.
// Invalid severity values produce an error but keep the original rule.
func ApplyOverrides(compiled []*CompiledRule, overrides map[string]RuleOverride) ([]*CompiledRule, []error) {
	var result []*CompiledRule
	var errs []error
	for _, rule := range compiled {
		ovr, ok := overrides[rule.ID]
		if !ok {
			result = append(result, rule)
			continue
		}
		if ovr.Disabled {
			continue
		}
		if ovr.Severity != "" {
			sev, err := types.ParseSeverity(ovr.Severity)
			if err != nil {
				errs = append(errs, fmt.Errorf("rule %s override: %w", rule.ID, err))
				result = append(result, rule)
				continue
			}
			rule.Severity = sev
		}
		result = append(result, rule)
	}
	return result, errs
}

// FilterByIDs removes rules whose IDs are in the disabled set.
func FilterByIDs(compiled []*CompiledRule, disabled map[string]bool) []*CompiledRule {
	var result []*CompiledRule
	for _, rule := range compiled {
		if !disabled[rule.ID] {
			result = append(result, rule)
		}
	}
	return result
}
