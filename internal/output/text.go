package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/garagon/perfscan/internal/scanner"
	"github.com/garagon/perfscan/internal/types"
)

// MaxPerCategory caps how many findings each report category lists.
const MaxPerCategory = 5

const ruleWidth = 80

// ReportFile is the report written under the project root.
const ReportFile = "MICRO_ANALYSIS_REPORT.md"

type reportCategory struct {
	category string
	heading  string
	note     string
}

type reportSection struct {
	title      string
	categories []reportCategory
}

var reportSections = []reportSection{
	{
		title: "🔴 CRITICAL ISSUES (Fix Immediately)",
		categories: []reportCategory{
			{category: types.CategoryNPlusOne, heading: "❌ N+1 Query Problems"},
			{category: types.CategorySelectStar, heading: "❌ SELECT * Problems"},
		},
	},
	{
		title: "🟠 HIGH PRIORITY ISSUES",
		categories: []reportCategory{
			{category: types.CategoryMissingCache, heading: "⚠️  Missing Cache Configuration"},
			{
				category: types.CategoryInlineFunctions,
				heading:  "⚠️  Inline Functions in JSX",
				note:     "These create new function instances on every render",
			},
		},
	},
	{
		title: "🟡 MEDIUM PRIORITY ISSUES",
		categories: []reportCategory{
			{category: types.CategoryMissingMemo, heading: "📊 Missing Memoization"},
			{category: types.CategoryLargeState, heading: "📦 Large State Objects"},
		},
	},
}

var statLabels = []struct {
	counter string
	label   string
}{
	{types.CounterWhereClauses, "WHERE clauses found"},
	{types.CounterUnpaginatedQueries, "Unpaginated queries"},
	{types.CounterMountOnlyEffects, "Mount-only useEffects"},
	{types.CounterDBConnections, "Database connections"},
}

// Recommendations are printed at the end of every report.
var Recommendations = []string{
	"Add pagination to all list queries (currently unpaginated)",
	"Replace inline functions with useCallback",
	"Add staleTime to all useQuery calls",
	"Memoize expensive computations with useMemo",
	"Split large components into smaller ones",
	"Add error boundaries for better error handling",
	"Implement code splitting for large pages",
	"Add loading skeletons instead of spinners",
}

// TextFormatter renders the fixed-template performance report.
type TextFormatter struct{}

func (f *TextFormatter) Format(w io.Writer, result *scanner.Result) error {
	_, err := fmt.Fprintln(w, Render(result))
	return err
}

// Render produces the report as one newline-joined string. The output
// depends only on findings and counters, so unchanged inputs render
// byte-identical reports.
func Render(result *scanner.Result) string {
	var report []string
	heavy := strings.Repeat("=", ruleWidth)
	light := strings.Repeat("-", ruleWidth)

	report = append(report,
		heavy,
		"COMPREHENSIVE MICRO-LEVEL PERFORMANCE ANALYSIS",
		heavy,
		"",
	)

	for i, section := range reportSections {
		title := section.title
		if i > 0 {
			title = "\n\n" + title
		}
		report = append(report, title, light)
		for _, rc := range section.categories {
			report = append(report, renderCategory(rc, result.Issues[rc.category])...)
		}
	}

	report = append(report, "\n\n📊 STATISTICS", light)
	for _, s := range statLabels {
		report = append(report, fmt.Sprintf("%s: %d", s.label, result.Stats[s.counter]))
	}

	report = append(report, "\n\n💡 TOP RECOMMENDATIONS", light)
	for i, rec := range Recommendations {
		report = append(report, fmt.Sprintf("%d. %s", i+1, rec))
	}

	report = append(report, "\n"+heavy)
	return strings.Join(report, "\n")
}

func renderCategory(rc reportCategory, findings []types.Finding) []string {
	if len(findings) == 0 {
		return nil
	}
	out := []string{fmt.Sprintf("\n%s (%d found):", rc.heading, len(findings))}
	if rc.note != "" {
		out = append(out, "   "+rc.note)
	}
	for _, f := range findings[:min(len(findings), MaxPerCategory)] {
		out = append(out, "   "+f.String())
	}
	return out
}
