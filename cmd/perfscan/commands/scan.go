package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/garagon/perfscan"
	"github.com/garagon/perfscan/internal/config"
	"github.com/garagon/perfscan/internal/output"
	"github.com/garagon/perfscan/internal/scanner"
)

// RootEnv names the environment variable consulted when scan gets no path.
const RootEnv = "PERFSCAN_ROOT"

// ErrThresholdExceeded is returned when findings reach the --fail-on level.
var ErrThresholdExceeded = errors.New("findings at or above the --fail-on threshold")

var (
	flagSeverity string
	flagFailOn   string
	flagReport   string
	flagNoReport bool
)

var analysisPhases = []string{
	"🔍 Analyzing Backend Code...",
	"🔍 Analyzing Frontend Code...",
	"🔍 Analyzing Bundle & Imports...",
}

var scanCmd = &cobra.Command{
	Use:   "scan [root]",
	Short: "Scan a project for performance issues",
	Long: `Scan a project for performance issues and write ` + output.ReportFile + `.

The project root defaults to $` + RootEnv + ` and then the current directory.
A .env file in the working directory is loaded first.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runScan,
}

func init() {
	scanCmd.Flags().StringVar(&flagSeverity, "severity", "info", "Minimum severity to report (critical, high, medium, low, info)")
	scanCmd.Flags().StringVar(&flagFailOn, "fail-on", "", "Exit with code 1 if findings at or above this severity (critical, high, medium, low)")
	scanCmd.Flags().StringVar(&flagReport, "report", output.ReportFile, "Report file, relative to the project root")
	scanCmd.Flags().BoolVar(&flagNoReport, "no-report", false, "Do not write the report file")
	rootCmd.AddCommand(scanCmd)
}

func runScan(cmd *cobra.Command, args []string) error {
	root := resolveRoot(args)

	cfg := loadScanConfig(cmd, root)

	minSev, err := parseSeverityFlag()
	if err != nil {
		return err
	}
	formatter, err := output.ForName(flagFormat)
	if err != nil {
		return err
	}

	ctx, cancel := contextWithInterrupt()
	defer cancel()

	stdout := cmd.OutOrStdout()
	// Progress and the save notice stay off stdout when it carries machine output.
	notices := cmd.ErrOrStderr()
	if isTextFormat() && flagOutput == "" {
		notices = stdout
		for _, phase := range analysisPhases {
			fmt.Fprintln(stdout, phase)
		}
	}

	result, err := perfscan.Scan(ctx, root, scanOptions(cfg, minSev)...)
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}
	slog.Debug("scan complete", "root", root, "files", result.FilesScanned, "findings", result.Total(), "duration", result.Duration)

	if err := writeOutput(stdout, formatter, result); err != nil {
		return err
	}

	if !flagNoReport {
		if err := saveReport(notices, root, result); err != nil {
			return err
		}
	}

	return checkFailOnThreshold(result)
}

func resolveRoot(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	if env := os.Getenv(RootEnv); env != "" {
		return env
	}
	return "."
}

// loadScanConfig reads the project config and lets it fill in every flag the
// user did not set explicitly.
func loadScanConfig(cmd *cobra.Command, root string) config.Config {
	cfg, err := config.Load(root)
	if err != nil {
		slog.Warn("ignoring project config", "error", err)
		return config.Config{}
	}
	if !cmd.Flags().Changed("severity") && cfg.Severity != "" {
		flagSeverity = cfg.Severity
	}
	if !cmd.Flags().Changed("format") && cfg.Format != "" {
		flagFormat = cfg.Format
	}
	if !cmd.Flags().Changed("fail-on") && cfg.FailOn != "" {
		flagFailOn = cfg.FailOn
	}
	if !cmd.Flags().Changed("rules") && cfg.Rules != "" {
		flagRules = cfg.Rules
		if !filepath.IsAbs(flagRules) {
			flagRules = filepath.Join(root, flagRules)
		}
	}
	if !cmd.Flags().Changed("report") && cfg.Report != "" {
		flagReport = cfg.Report
	}
	return cfg
}

func scanOptions(cfg config.Config, minSev scanner.Severity) []perfscan.Option {
	opts := []perfscan.Option{perfscan.WithMinSeverity(minSev)}
	if flagRules != "" {
		opts = append(opts, perfscan.WithCustomRules(flagRules))
	}
	if len(flagDisableRules) > 0 {
		opts = append(opts, perfscan.WithDisabledRules(flagDisableRules...))
	}
	if len(cfg.Targets) > 0 {
		opts = append(opts, perfscan.WithTargets(cfg.Targets...))
	}
	if len(cfg.Ignore) > 0 {
		opts = append(opts, perfscan.WithIgnorePatterns(cfg.Ignore))
	}
	if len(cfg.RuleOverrides) > 0 {
		overrides := make(map[string]perfscan.RuleOverride, len(cfg.RuleOverrides))
		for id, ovr := range cfg.RuleOverrides {
			overrides[id] = perfscan.RuleOverride{Severity: ovr.Severity, Disabled: ovr.Disabled}
		}
		opts = append(opts, perfscan.WithRuleOverrides(overrides))
	}
	return opts
}

func parseSeverityFlag() (scanner.Severity, error) {
	if flagSeverity == "" {
		return scanner.SeverityInfo, nil
	}
	sev, err := scanner.ParseSeverity(flagSeverity)
	if err != nil {
		return 0, fmt.Errorf("invalid --severity: %w", err)
	}
	return sev, nil
}

func isTextFormat() bool {
	f := strings.ToLower(strings.TrimSpace(flagFormat))
	return f == "" || f == "text"
}

func contextWithInterrupt() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

func writeOutput(stdout io.Writer, formatter output.Formatter, result *scanner.Result) error {
	output.ToolVersion = Version

	w := stdout
	if flagOutput != "" {
		f, err := os.Create(flagOutput)
		if err != nil {
			return fmt.Errorf("creating output file: %w", err)
		}
		defer func() { _ = f.Close() }()
		w = f
	}

	return formatter.Format(w, result)
}

// saveReport writes the text report under the project root. The report is
// always the text template, whatever --format selected for stdout.
func saveReport(w io.Writer, root string, result *scanner.Result) error {
	path := flagReport
	if !filepath.IsAbs(path) {
		info, err := os.Stat(root)
		if err != nil {
			slog.Warn("project root not found, report not saved", "root", root)
			return nil
		}
		dir := root
		if !info.IsDir() {
			dir = filepath.Dir(root)
		}
		path = filepath.Join(dir, path)
	}
	if err := output.WriteReport(path, output.Render(result)); err != nil {
		return err
	}
	fmt.Fprintf(w, "\n✅ Report saved to %s\n", flagReport)
	return nil
}

func checkFailOnThreshold(result *scanner.Result) error {
	if flagFailOn == "" {
		return nil
	}
	threshold, err := scanner.ParseSeverity(flagFailOn)
	if err != nil {
		return fmt.Errorf("invalid --fail-on: %w", err)
	}
	for _, f := range result.All() {
		if f.Severity >= threshold {
			return fmt.Errorf("%w (%s)", ErrThresholdExceeded, threshold)
		}
	}
	return nil
}
