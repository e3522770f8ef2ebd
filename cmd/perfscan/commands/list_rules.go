package commands

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/garagon/perfscan"
)

var flagCategory string

var listRulesCmd = &cobra.Command{
	Use:   "list-rules",
	Short: "List all available detectors",
	Args:  cobra.NoArgs,
	RunE:  runListRules,
}

func init() {
	listRulesCmd.Flags().StringVar(&flagCategory, "category", "", "Filter by finding category or counter (e.g. n_plus_one, where_clauses)")
	rootCmd.AddCommand(listRulesCmd)
}

func runListRules(cmd *cobra.Command, args []string) error {
	opts := []perfscan.Option{perfscan.WithCategory(flagCategory)}
	if flagRules != "" {
		opts = append(opts, perfscan.WithCustomRules(flagRules))
	}
	if len(flagDisableRules) > 0 {
		opts = append(opts, perfscan.WithDisabledRules(flagDisableRules...))
	}
	infos := perfscan.ListRules(opts...)

	w := cmd.OutOrStdout()

	if strings.ToLower(flagFormat) == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(infos)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "ID\tNAME\tSEVERITY\tREPORTS\n")
	fmt.Fprintf(tw, "--\t----\t--------\t-------\n")
	for _, r := range infos {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", r.ID, r.Name, r.Severity, reports(r))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(w, "\n%d detectors loaded\n", len(infos))

	return nil
}

// reports names what a detector feeds: its category, its counter, or both.
func reports(r perfscan.RuleInfo) string {
	switch {
	case r.Category != "" && r.Counter != "":
		return r.Category + ", " + r.Counter + " (counter)"
	case r.Counter != "":
		return r.Counter + " (counter)"
	default:
		return r.Category
	}
}
