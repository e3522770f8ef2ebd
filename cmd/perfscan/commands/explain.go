package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/garagon/perfscan"
)

var explainCmd = &cobra.Command{
	Use:   "explain <DETECTOR_ID>",
	Short: "Show detailed information about a detector",
	Args:  cobra.ExactArgs(1),
	RunE:  runExplain,
}

func init() {
	rootCmd.AddCommand(explainCmd)
}

func runExplain(cmd *cobra.Command, args []string) error {
	var opts []perfscan.Option
	if flagRules != "" {
		opts = append(opts, perfscan.WithCustomRules(flagRules))
	}
	detail, err := perfscan.ExplainRule(args[0], opts...)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()

	if strings.ToLower(flagFormat) == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(detail)
	}

	fmt.Fprintf(w, "\nDetector: %s\n", detail.ID)
	fmt.Fprintf(w, "Name:     %s\n", detail.Name)
	fmt.Fprintf(w, "Severity: %s\n", detail.Severity)
	if detail.Category != "" {
		fmt.Fprintf(w, "Category: %s\n", detail.Category)
	}
	if detail.Counter != "" {
		fmt.Fprintf(w, "Counter:  %s\n", detail.Counter)
	}
	if len(detail.Targets) > 0 {
		fmt.Fprintf(w, "Files:    %s\n", strings.Join(detail.Targets, ", "))
	}
	if detail.Message != "" {
		fmt.Fprintf(w, "Message:  %s\n", detail.Message)
	}

	if detail.Description != "" {
		fmt.Fprintf(w, "\nDescription:\n%s\n", detail.Description)
	}

	fmt.Fprintf(w, "\nPatterns (on the current line):\n")
	for i, p := range detail.Patterns {
		fmt.Fprintf(w, "  %d. %s\n", i+1, p)
	}
	if detail.Guard != "" {
		fmt.Fprintf(w, "\nWindow:\n  %s\n", detail.Guard)
	}
	if detail.Check != "" {
		fmt.Fprintf(w, "\nCheck: %s\n", detail.Check)
	}

	printExamples(w, "True Positives:", "✖", detail.TruePositives)
	printExamples(w, "False Positives:", "✔", detail.FalsePositives)

	fmt.Fprintln(w)
	return nil
}

func printExamples(w io.Writer, title, mark string, examples []string) {
	if len(examples) == 0 {
		return
	}
	fmt.Fprintf(w, "\n%s\n", title)
	for _, ex := range examples {
		lines := strings.Split(strings.TrimRight(ex, "\n"), "\n")
		fmt.Fprintf(w, "  %s %s\n", mark, lines[0])
		for _, l := range lines[1:] {
			fmt.Fprintf(w, "    %s\n", l)
		}
	}
}
