package perfscan

// scanConfig holds the resolved configuration for a scan.
type scanConfig struct {
	customRulesDir string
	disabledRules  []string
	ruleOverrides  map[string]RuleOverride
	minSeverity    Severity
	targets        []string
	ignorePatterns []string
	category       string // only for ListRules
}

// Option configures a scan operation.
type Option func(*scanConfig)

// WithCustomRules loads additional detectors from a directory.
func WithCustomRules(dir string) Option {
	return func(c *scanConfig) {
		c.customRulesDir = dir
	}
}

// WithDisabledRules excludes specific detector IDs from scanning.
func WithDisabledRules(ids ...string) Option {
	return func(c *scanConfig) {
		c.disabledRules = append(c.disabledRules, ids...)
	}
}

// WithRuleOverrides applies severity overrides or disables detectors.
func WithRuleOverrides(overrides map[string]RuleOverride) Option {
	return func(c *scanConfig) {
		c.ruleOverrides = overrides
	}
}

// WithMinSeverity drops findings below sev. Counters are unaffected.
func WithMinSeverity(sev Severity) Option {
	return func(c *scanConfig) {
		c.minSeverity = sev
	}
}

// WithTargets replaces the project-relative globs that select files to read.
// Detectors still apply only to the files their own targets name.
func WithTargets(globs ...string) Option {
	return func(c *scanConfig) {
		c.targets = append(c.targets, globs...)
	}
}

// WithIgnorePatterns sets file patterns to skip during discovery.
func WithIgnorePatterns(patterns []string) Option {
	return func(c *scanConfig) {
		c.ignorePatterns = patterns
	}
}

// WithCategory filters detectors by the category or counter they feed (only
// applies to ListRules).
func WithCategory(cat string) Option {
	return func(c *scanConfig) {
		c.category = cat
	}
}
