package commands

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	flagFormat       string
	flagOutput       string
	flagRules        string
	flagVerbose      bool
	flagDisableRules []string
)

var rootCmd = &cobra.Command{
	Use:   "perfscan",
	Short: "Performance scanner for TypeScript and React projects",
	Long: `perfscan reads a project's server routers, database module and React pages and
reports likely performance problems: N+1 queries, SELECT *, unpaginated queries,
missing memoization, inline JSX handlers, uncached queries and heavy imports.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		_ = godotenv.Load()
		setupLogging()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagFormat, "format", "text", "Output format (text, json, sarif, markdown, html)")
	rootCmd.PersistentFlags().StringVarP(&flagOutput, "output", "o", "", "Output file path (default: stdout)")
	rootCmd.PersistentFlags().StringVar(&flagRules, "rules", "", "Additional detector directory")
	rootCmd.PersistentFlags().StringSliceVar(&flagDisableRules, "disable-rule", nil, "Detector IDs to disable (comma-separated, repeatable)")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Log per-file and per-detector activity to stderr")
}

func setupLogging() {
	level := slog.LevelWarn
	if flagVerbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
