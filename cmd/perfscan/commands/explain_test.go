package commands

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/garagon/perfscan"
)

func TestExplainKnownRule(t *testing.T) {
	out, _, err := execute(t, "explain", "db_n_plus_one")
	require.NoError(t, err)

	require.Contains(t, out, "Detector: DB_N_PLUS_ONE")
	require.Contains(t, out, "CRITICAL")
	require.Contains(t, out, "n_plus_one")
	require.Contains(t, out, "Patterns (on the current line):")
	require.Contains(t, out, "[contains] await")
	require.Contains(t, out, "current line and 5 lines before")
	require.Contains(t, out, "True Positives:")
	require.Contains(t, out, "False Positives:")
}

func TestExplainCounterRule(t *testing.T) {
	out, _, err := execute(t, "explain", "DB_CLIENT_CONSTRUCT")
	require.NoError(t, err)
	require.Contains(t, out, "Counter:  db_connections")
	require.NotContains(t, out, "Category:")
}

func TestExplainJSON(t *testing.T) {
	out, _, err := execute(t, "explain", "UI_EFFECT_DEPS", "--format", "json")
	require.NoError(t, err)

	var detail perfscan.RuleDetail
	require.NoError(t, json.Unmarshal([]byte(out), &detail))
	require.Equal(t, "UI_EFFECT_DEPS", detail.ID)
	require.Equal(t, "MEDIUM", detail.Severity)
	require.Equal(t, "missing_deps", detail.Category)
	require.Equal(t, "mount_only_effects", detail.Counter)
	require.Equal(t, "effect_deps", detail.Check)
	require.NotEmpty(t, detail.Patterns)
	require.NotEmpty(t, detail.TruePositives)
}

func TestExplainNotFound(t *testing.T) {
	_, _, err := execute(t, "explain", "NONEXISTENT_999")
	require.Error(t, err)
	require.Contains(t, err.Error(), "not found")
}
