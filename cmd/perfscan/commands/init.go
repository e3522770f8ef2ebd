package commands

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/garagon/perfscan/internal/config"
	"github.com/garagon/perfscan/internal/scanner"
)

var (
	flagHook   bool
	flagCIOnly bool
)

var initCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Initialize perfscan configuration files",
	Long:  `Scaffolds .perfscan.yml, .perfscanignore, and a GitHub Actions workflow that runs perfscan.`,
	Args:  cobra.MaximumNArgs(1),
	RunE:  runInit,
}

func init() {
	initCmd.Flags().BoolVar(&flagHook, "hook", false, "Create a git pre-commit hook that runs perfscan")
	initCmd.Flags().BoolVar(&flagCIOnly, "ci", false, "Only generate the GitHub Actions workflow (skip config files)")
	rootCmd.AddCommand(initCmd)
}

type scaffoldFile struct {
	path    string
	content string
	mode    os.FileMode
}

func runInit(cmd *cobra.Command, args []string) error {
	dir := "."
	if len(args) > 0 {
		dir = args[0]
	}
	w := io.Writer(os.Stdout)
	if cmd != nil {
		w = cmd.OutOrStdout()
	}

	workflow := scaffoldFile{filepath.Join(dir, ".github", "workflows", "perfscan.yml"), workflowTemplate, 0o644}

	switch {
	case flagHook:
		gitDir := filepath.Join(dir, ".git")
		if _, err := os.Stat(gitDir); os.IsNotExist(err) {
			return fmt.Errorf("no .git directory found in %s (is this a git repository?)", dir)
		}
		return scaffold(w, []scaffoldFile{{filepath.Join(gitDir, "hooks", "pre-commit"), preCommitTemplate, 0o755}})
	case flagCIOnly:
		return scaffold(w, []scaffoldFile{workflow})
	}

	return scaffold(w, []scaffoldFile{
		{filepath.Join(dir, config.FileNames[0]), configTemplate, 0o644},
		{filepath.Join(dir, scanner.IgnoreFile), ignoreTemplate, 0o644},
		workflow,
	})
}

// scaffold creates each file that does not exist yet, leaving existing
// files untouched.
func scaffold(w io.Writer, files []scaffoldFile) error {
	for _, f := range files {
		if _, err := os.Stat(f.path); err == nil {
			fmt.Fprintf(w, "  skip %s (already exists)\n", f.path)
			continue
		}
		if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
			return fmt.Errorf("creating directory for %s: %w", f.path, err)
		}
		if err := os.WriteFile(f.path, []byte(f.content), f.mode); err != nil {
			return fmt.Errorf("writing %s: %w", f.path, err)
		}
		fmt.Fprintf(w, "  create %s\n", f.path)
	}
	return nil
}

const configTemplate = `# perfscan configuration

# Files to read, relative to the project root (default shown)
# targets:
#   - server/routers.ts
#   - server/db.ts
#   - client/src/pages/*.tsx
#   - client/src/**/*.tsx

# Paths to skip
ignore:
  - "client/src/generated/"

# Minimum severity to report: critical, high, medium, low, info
severity: info

# Exit with code 1 if findings at or above this severity
# fail_on: critical

# Output format: text, json, sarif, markdown, html
format: text

# Report file written under the project root
# report: MICRO_ANALYSIS_REPORT.md

# Additional detector directory
# rules: perf-rules/

# Per-detector overrides
# rule_overrides:
#   UI_INLINE_FN:
#     severity: medium
#   BUNDLE_UNUSED_IMPORT:
#     disabled: true
`

const ignoreTemplate = `# perfscan ignore patterns
# Matching files are skipped during discovery. .git and node_modules are
# never walked.

# Generated code
client/src/generated/
*.gen.tsx

# Build output
dist/
build/

# Storybook and tests
*.stories.tsx
*.test.tsx
`

const preCommitTemplate = `#!/bin/sh
# perfscan pre-commit hook
echo "Running perfscan..."
perfscan scan . --no-report --fail-on critical
exit $?
`

const workflowTemplate = `name: perfscan

on:
  pull_request:
    branches: [main]

permissions:
  security-events: write
  contents: read

jobs:
  perfscan:
    runs-on: ubuntu-latest
    steps:
      - uses: actions/checkout@v4

      - uses: actions/setup-go@v5
        with:
          go-version: stable

      - name: Install perfscan
        run: go install github.com/garagon/perfscan/cmd/perfscan@latest

      - name: Job summary
        run: perfscan scan . --no-report --format markdown >> "$GITHUB_STEP_SUMMARY"

      - name: SARIF
        run: perfscan scan . --no-report --format sarif --output perfscan.sarif --fail-on critical

      - name: Upload SARIF results
        if: always()
        uses: github/codeql-action/upload-sarif@v3
        with:
          sarif_file: perfscan.sarif
`
