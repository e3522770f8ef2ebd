package commands

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/garagon/perfscan/internal/output"
)

const loopRouter = `export async function listItems(ids: number[]) {
  for (const id of ids) {
    const item = await getItem(id)
  }
}
`

func loopProject(t *testing.T) string {
	return writeTree(t, map[string]string{"server/routers.ts": loopRouter})
}

func TestScanWritesReport(t *testing.T) {
	root := loopProject(t)

	stdout, _, err := execute(t, "scan", root)
	require.NoError(t, err)

	require.True(t, strings.HasPrefix(stdout, "🔍 Analyzing Backend Code...\n🔍 Analyzing Frontend Code...\n🔍 Analyzing Bundle & Imports...\n"))
	require.Contains(t, stdout, "COMPREHENSIVE MICRO-LEVEL PERFORMANCE ANALYSIS")
	require.Contains(t, stdout, "   routers.ts:3 - Potential N+1 query in loop")
	require.True(t, strings.HasSuffix(stdout, "\n✅ Report saved to "+output.ReportFile+"\n"))

	data, err := os.ReadFile(filepath.Join(root, output.ReportFile))
	require.NoError(t, err)
	require.Contains(t, stdout, string(data))
	require.True(t, strings.HasSuffix(string(data), strings.Repeat("=", 80)))
}

func TestScanNoReport(t *testing.T) {
	root := loopProject(t)

	stdout, _, err := execute(t, "scan", root, "--no-report")
	require.NoError(t, err)
	require.NotContains(t, stdout, "Report saved")

	_, err = os.Stat(filepath.Join(root, output.ReportFile))
	require.True(t, os.IsNotExist(err))
}

func TestScanJSONKeepsStdoutClean(t *testing.T) {
	root := loopProject(t)

	stdout, stderr, err := execute(t, "scan", root, "--format", "json")
	require.NoError(t, err)

	var parsed struct {
		Issues       map[string][]json.RawMessage `json:"issues"`
		FilesScanned int                          `json:"files_scanned"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &parsed))
	require.Len(t, parsed.Issues["n_plus_one"], 1)
	require.Equal(t, 1, parsed.FilesScanned)
	require.Contains(t, stderr, "Report saved")
}

func TestScanFailOn(t *testing.T) {
	root := loopProject(t)

	_, _, err := execute(t, "scan", root, "--no-report", "--fail-on", "critical")
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrThresholdExceeded))

	clean := writeTree(t, map[string]string{"server/routers.ts": "export const x = 1\n"})
	_, _, err = execute(t, "scan", clean, "--no-report", "--fail-on", "critical")
	require.NoError(t, err)
}

func TestScanReadErrorIsNotThreshold(t *testing.T) {
	root := writeTree(t, map[string]string{"server/db.ts": "export const db = 1\n"})
	require.NoError(t, os.MkdirAll(filepath.Join(root, "vendor"), 0o755))
	if err := os.Symlink(filepath.Join(root, "vendor"), filepath.Join(root, "server", "routers.ts")); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	_, _, err := execute(t, "scan", root, "--no-report", "--fail-on", "critical")
	require.Error(t, err)
	require.False(t, errors.Is(err, ErrThresholdExceeded))
	require.ErrorContains(t, err, "reading server/routers.ts:")
}

func TestScanInvalidFlags(t *testing.T) {
	root := loopProject(t)

	_, _, err := execute(t, "scan", root, "--no-report", "--format", "xml")
	require.ErrorContains(t, err, "unknown format")

	_, _, err = execute(t, "scan", root, "--no-report", "--severity", "loud")
	require.ErrorContains(t, err, "invalid --severity")
}

func TestScanRootFromEnv(t *testing.T) {
	root := loopProject(t)
	t.Setenv(RootEnv, root)

	stdout, _, err := execute(t, "scan", "--no-report", "--format", "json")
	require.NoError(t, err)
	require.Contains(t, stdout, `"files_scanned": 1`)
}

func TestScanMissingRoot(t *testing.T) {
	stdout, _, err := execute(t, "scan", filepath.Join(t.TempDir(), "absent"))
	require.NoError(t, err)
	require.Contains(t, stdout, "WHERE clauses found: 0")
	require.NotContains(t, stdout, "found):")
	require.NotContains(t, stdout, "Report saved")
}

func TestScanUsesProjectConfig(t *testing.T) {
	root := writeTree(t, map[string]string{
		"server/routers.ts": loopRouter,
		".perfscan.yml": `format: json
fail_on: critical
report: perf.md
rule_overrides:
  DB_N_PLUS_ONE:
    disabled: true
`,
	})

	stdout, _, err := execute(t, "scan", root)
	require.NoError(t, err, "the only critical detector is disabled")
	require.True(t, json.Valid([]byte(stdout)))

	_, err = os.Stat(filepath.Join(root, "perf.md"))
	require.NoError(t, err)
}

func TestScanFlagBeatsConfig(t *testing.T) {
	root := writeTree(t, map[string]string{
		"server/routers.ts": loopRouter,
		".perfscan.yml":     "format: json\n",
	})

	stdout, _, err := execute(t, "scan", root, "--no-report", "--format", "markdown")
	require.NoError(t, err)
	require.Contains(t, stdout, "### 🚨 perfscan report: 1 findings")
}

func TestScanDisableRuleFlag(t *testing.T) {
	root := loopProject(t)

	stdout, _, err := execute(t, "scan", root, "--no-report", "--disable-rule", "DB_N_PLUS_ONE")
	require.NoError(t, err)
	require.NotContains(t, stdout, "N+1 Query Problems")
}

func TestVersion(t *testing.T) {
	stdout, _, err := execute(t, "version")
	require.NoError(t, err)
	require.Equal(t, "perfscan dev (commit: none)\n", stdout)
}
