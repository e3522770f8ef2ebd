package output

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/garagon/perfscan/internal/scanner"
	"github.com/garagon/perfscan/internal/types"
)

var severityOrder = []scanner.Severity{
	scanner.SeverityCritical,
	scanner.SeverityHigh,
	scanner.SeverityMedium,
	scanner.SeverityLow,
	scanner.SeverityInfo,
}

// MarkdownFormatter outputs every finding as GitHub-flavored markdown,
// designed for GitHub Actions Job Summaries and PR comments. Unlike the text
// report it covers all categories and is not truncated.
type MarkdownFormatter struct{}

func (f *MarkdownFormatter) Format(w io.Writer, result *scanner.Result) error {
	findings := result.All()
	if len(findings) == 0 {
		f.printClean(w, result)
	} else {
		f.printSummary(w, result, findings)
		f.printFindings(w, findings)
	}
	f.printStats(w, result)
	f.printFooter(w)
	return nil
}

func (f *MarkdownFormatter) printClean(w io.Writer, result *scanner.Result) {
	fmt.Fprintf(w, "### ✅ perfscan report: no issues found\n\n")
	fmt.Fprintf(w, "> %d files scanned · %d detectors\n\n", result.FilesScanned, result.RulesLoaded)
}

func (f *MarkdownFormatter) printSummary(w io.Writer, result *scanner.Result, findings []scanner.Finding) {
	fmt.Fprintf(w, "### 🚨 perfscan report: %d findings\n\n", len(findings))
	if result.Target != "" {
		fmt.Fprintf(w, "> **Target:** `%s` · %d files · %d detectors\n\n", result.Target, result.FilesScanned, result.RulesLoaded)
	} else {
		fmt.Fprintf(w, "> %d files · %d detectors\n\n", result.FilesScanned, result.RulesLoaded)
	}

	counts := map[scanner.Severity]int{}
	for _, finding := range findings {
		counts[finding.Severity]++
	}
	var badges []string
	for _, sev := range severityOrder {
		if c := counts[sev]; c > 0 {
			badges = append(badges, fmt.Sprintf("%s **%d %s**", severityEmoji(sev), c, sev.String()))
		}
	}
	fmt.Fprintf(w, "%s\n\n", strings.Join(badges, " · "))
}

func (f *MarkdownFormatter) printFindings(w io.Writer, findings []scanner.Finding) {
	for _, sev := range severityOrder {
		filtered := filterBySeverity(findings, sev)
		if len(filtered) == 0 {
			continue
		}

		fmt.Fprintf(w, "#### %s %s (%d)\n\n", severityEmoji(sev), sev.String(), len(filtered))
		fmt.Fprintf(w, "| Detector | Issue | File | Line | Code |\n")
		fmt.Fprintf(w, "|----------|-------|------|------|------|\n")
		for _, finding := range filtered {
			code := ""
			if finding.MatchedText != "" {
				code = "`" + escapeMarkdown(truncateMarkdown(finding.MatchedText, 60)) + "`"
			}
			fmt.Fprintf(w, "| `%s` | %s | `%s` | L%d | %s |\n",
				finding.RuleID, escapeMarkdown(finding.Message), finding.FilePath, finding.Line, code)
		}
		fmt.Fprintf(w, "\n")
	}
}

func (f *MarkdownFormatter) printStats(w io.Writer, result *scanner.Result) {
	fmt.Fprintf(w, "#### 📊 Statistics\n\n")
	fmt.Fprintf(w, "| Counter | Value |\n")
	fmt.Fprintf(w, "|---------|-------|\n")
	for _, name := range counterNames(result.Stats) {
		fmt.Fprintf(w, "| `%s` | %d |\n", name, result.Stats[name])
	}
	fmt.Fprintf(w, "\n")
}

func (f *MarkdownFormatter) printFooter(w io.Writer) {
	fmt.Fprintf(w, "---\n")
	fmt.Fprintf(w, "*Generated by perfscan %s*\n", ToolVersion)
}

// counterNames lists the known counters first, then any others sorted.
func counterNames(stats map[string]int) []string {
	names := append([]string(nil), types.KnownCounters...)
	known := make(map[string]bool, len(names))
	for _, n := range names {
		known[n] = true
	}
	var extra []string
	for n := range stats {
		if !known[n] {
			extra = append(extra, n)
		}
	}
	sort.Strings(extra)
	return append(names, extra...)
}

func filterBySeverity(findings []scanner.Finding, sev scanner.Severity) []scanner.Finding {
	var result []scanner.Finding
	for _, f := range findings {
		if f.Severity == sev {
			result = append(result, f)
		}
	}
	return result
}

func severityEmoji(sev scanner.Severity) string {
	switch sev {
	case scanner.SeverityCritical:
		return "🔴"
	case scanner.SeverityHigh:
		return "🟠"
	case scanner.SeverityMedium:
		return "🟡"
	case scanner.SeverityLow:
		return "🔵"
	default:
		return "⚪"
	}
}

func truncateMarkdown(s string, maxLen int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "\r", "")
	s = strings.ReplaceAll(s, "\t", " ")
	if len(s) <= maxLen {
		return s
	}
	cut := maxLen - 3
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}

func escapeMarkdown(s string) string {
	s = strings.ReplaceAll(s, "|", "\\|")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	return s
}
