// Package heuristic implements the line-level detectors: substring and regex
// markers on the current line, guarded by evidence windows of surrounding
// lines, bytes, or the whole file.
package heuristic

import (
	"context"
	"log/slog"
	"path"
	"strings"
	"unicode/utf8"

	"github.com/garagon/perfscan/internal/rules"
	"github.com/garagon/perfscan/internal/scanner"
)

const maxMatchedText = 200

// Dependency-array markers looked for after a useEffect call.
const (
	emptyDepsMarker = "[]"
	depsOpenMarker  = "["
)

// Matcher implements the Analyzer interface using compiled detectors.
type Matcher struct {
	rules []*rules.CompiledRule
}

// NewMatcher creates a new matcher with the given compiled detectors.
func NewMatcher(compiled []*rules.CompiledRule) *Matcher {
	return &Matcher{rules: compiled}
}

func (m *Matcher) Name() string { return "heuristic" }

// Analyze evaluates every applicable detector on every line of the target.
// Lines are visited in order so each category accumulates in detection order.
func (m *Matcher) Analyze(ctx context.Context, target *scanner.Target, rec scanner.Recorder) error {
	var active []*rules.CompiledRule
	for _, rule := range m.rules {
		if matchesTarget(rule.Targets, target.RelPath) {
			active = append(active, rule)
		}
	}
	if len(active) == 0 {
		return nil
	}
	slog.Debug("applying detectors", "path", target.RelPath, "detectors", len(active))

	doc := newDocument(target.Content)
	for i, line := range doc.lines {
		if err := ctx.Err(); err != nil {
			return err
		}
		for _, rule := range active {
			m.evaluate(rule, doc, i, line, target.RelPath, rec)
		}
	}
	return nil
}

func (m *Matcher) evaluate(rule *rules.CompiledRule, doc *document, i int, line, relPath string, rec scanner.Recorder) {
	if !lineMatches(rule, line) {
		return
	}

	switch rule.Check {
	case rules.CheckEffectDeps:
		evidence := doc.window(rule.Guard, i)
		switch {
		case strings.Contains(evidence, emptyDepsMarker):
			rec.Count(rule.Counter)
		case !strings.Contains(evidence, depsOpenMarker):
			rec.Record(newFinding(rule, relPath, i+1, line, ""))
		}
		// A non-empty dependency array is accepted and recorded nowhere.

	case rules.CheckNamedImports:
		for _, name := range importedNames(rule.Patterns[0], line) {
			if strings.Count(doc.content, name) == 1 {
				rec.Record(newFinding(rule, relPath, i+1, line, name))
			}
		}

	default:
		if rule.Guard != nil && !guardHolds(rule.Guard, doc, i) {
			return
		}
		if rule.Category != "" {
			rec.Record(newFinding(rule, relPath, i+1, line, ""))
			return
		}
		rec.Count(rule.Counter)
	}
}

func lineMatches(rule *rules.CompiledRule, line string) bool {
	switch rule.MatchMode {
	case rules.MatchAll:
		for _, p := range rule.Patterns {
			if !patternMatches(p, line) {
				return false
			}
		}
		return true
	default:
		return anyMatches(rule.Patterns, line)
	}
}

func guardHolds(g *rules.CompiledGuard, doc *document, i int) bool {
	hit := anyMatches(g.Patterns, doc.window(g, i))
	if g.When == rules.GuardAbsent {
		return !hit
	}
	return hit
}

func anyMatches(patterns []rules.CompiledPattern, text string) bool {
	for _, p := range patterns {
		if patternMatches(p, text) {
			return true
		}
	}
	return false
}

func patternMatches(p rules.CompiledPattern, text string) bool {
	switch p.Type {
	case rules.PatternRegex:
		return p.Regex != nil && p.Regex.MatchString(text)
	case rules.PatternContains:
		return strings.Contains(text, p.Value)
	}
	return false
}

// importedNames returns the trimmed, comma-separated names captured by the
// first match of p on the line. Empty entries (trailing commas) are dropped.
func importedNames(p rules.CompiledPattern, line string) []string {
	if p.Regex == nil {
		return nil
	}
	sub := p.Regex.FindStringSubmatch(line)
	if len(sub) < 2 {
		return nil
	}
	var names []string
	for _, part := range strings.Split(sub[1], ",") {
		if name := strings.TrimSpace(part); name != "" {
			names = append(names, name)
		}
	}
	return names
}

func newFinding(rule *rules.CompiledRule, relPath string, lineNum int, line, symbol string) scanner.Finding {
	label := relPath
	if rule.Label == rules.LabelBase {
		label = path.Base(relPath)
	}
	msg := rule.Message
	if msg == "" {
		msg = rule.Name
	}
	if symbol != "" {
		msg += ": " + symbol
	}
	matched := strings.TrimSpace(line)
	if len(matched) > maxMatchedText {
		cut := maxMatchedText
		for cut > 0 && !utf8.RuneStart(matched[cut]) {
			cut--
		}
		matched = matched[:cut] + "..."
	}
	return scanner.Finding{
		RuleID:      rule.ID,
		RuleName:    rule.Name,
		Severity:    rule.Severity,
		Category:    rule.Category,
		Description: rule.Description,
		FilePath:    relPath,
		Label:       label,
		Line:        lineNum,
		Symbol:      symbol,
		Message:     msg,
		MatchedText: matched,
	}
}

func matchesTarget(targetGlobs []string, relPath string) bool {
	if len(targetGlobs) == 0 {
		return true // no filter = match all
	}
	for _, glob := range targetGlobs {
		if scanner.MatchGlob(glob, relPath) {
			return true
		}
	}
	return false
}
