package rules

import (
	"regexp"

	"github.com/garagon/perfscan/internal/types"
)

// MatchMode determines how multiple patterns are combined.
type MatchMode int

const (
	MatchAny MatchMode = iota // OR: any pattern on the line triggers the detector
	MatchAll                  // AND: every pattern must appear on the line
)

// PatternType represents the type of a pattern.
type PatternType string

const (
	PatternRegex    PatternType = "regex"
	PatternContains PatternType = "contains"
)

// Window selects the evidence a guard inspects around the current line.
type Window string

const (
	WindowBefore Window = "before" // current line plus Size preceding lines
	WindowAfter  Window = "after"  // Size lines following the current line
	WindowAround Window = "around" // Size bytes either side of the line start
	WindowFile   Window = "file"   // whole file content
)

// GuardWhen says whether a guard requires its patterns to be present or absent.
type GuardWhen string

const (
	GuardPresent GuardWhen = "present"
	GuardAbsent  GuardWhen = "absent"
)

// Check names a detector with logic beyond "line matches, guard holds".
type Check string

const (
	CheckNone         Check = ""
	CheckEffectDeps   Check = "effect_deps"
	CheckNamedImports Check = "named_imports"
)

// LabelStyle controls how a finding names its file in messages.
type LabelStyle string

const (
	LabelBase     LabelStyle = "base"
	LabelRelative LabelStyle = "relative"
)

// RawPattern is a single pattern as defined in YAML.
type RawPattern struct {
	Type  PatternType `yaml:"type"`
	Value string      `yaml:"value"`
}

// RawGuard is the YAML form of an evidence-window condition.
type RawGuard struct {
	Window   string       `yaml:"window"`
	Size     int          `yaml:"size"`
	When     string       `yaml:"when"`
	Patterns []RawPattern `yaml:"patterns"`
}

// RawExamples contains test examples for detector self-testing.
// Each example is a file snippet; the detector must (or must not) fire on it.
type RawExamples struct {
	TruePositive  []string `yaml:"true_positive"`
	FalsePositive []string `yaml:"false_positive"`
}

// RawRule is the YAML representation of a detector.
type RawRule struct {
	ID          string       `yaml:"id"`
	Name        string       `yaml:"name"`
	Description string       `yaml:"description"`
	Severity    string       `yaml:"severity"`
	Category    string       `yaml:"category"`
	Counter     string       `yaml:"counter"`
	Targets     []string     `yaml:"targets"`
	Label       string       `yaml:"label"`
	MatchMode   string       `yaml:"match_mode"`
	Patterns    []RawPattern `yaml:"patterns"`
	Guard       *RawGuard    `yaml:"guard"`
	Check       string       `yaml:"check"`
	Message     string       `yaml:"message"`
	Examples    RawExamples  `yaml:"examples"`
}

// CompiledPattern is a pattern ready for matching.
type CompiledPattern struct {
	Type  PatternType
	Regex *regexp.Regexp // set when Type == PatternRegex
	Value string         // set when Type == PatternContains (case-sensitive)
}

// CompiledGuard is a guard ready for evaluation.
type CompiledGuard struct {
	Window   Window
	Size     int
	When     GuardWhen
	Patterns []CompiledPattern
}

// CompiledRule is a detector compiled and ready for execution.
type CompiledRule struct {
	ID          string
	Name        string
	Description string
	Severity    types.Severity
	Category    string
	Counter     string
	Targets     []string
	Label       LabelStyle
	MatchMode   MatchMode
	Patterns    []CompiledPattern
	Guard       *CompiledGuard
	Check       Check
	Message     string
	Examples    RawExamples
}

// Describe returns a human-readable form of the pattern.
func (p CompiledPattern) Describe() string {
	if p.Type == PatternRegex && p.Regex != nil {
		return "[regex] " + p.Regex.String()
	}
	return "[contains] " + p.Value
}
