package commands

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/garagon/perfscan"
)

func TestListRulesTable(t *testing.T) {
	out, _, err := execute(t, "list-rules")
	require.NoError(t, err)

	require.Contains(t, out, "ID")
	require.Contains(t, out, "SEVERITY")
	require.Contains(t, out, "where_clauses (counter)")
	require.Contains(t, out, "missing_deps, mount_only_effects (counter)")
	require.Contains(t, out, "14 detectors loaded")
}

func TestListRulesJSON(t *testing.T) {
	out, _, err := execute(t, "list-rules", "--format", "json")
	require.NoError(t, err)

	var infos []perfscan.RuleInfo
	require.NoError(t, json.Unmarshal([]byte(out), &infos))
	require.Len(t, infos, 14)
	for _, info := range infos {
		require.NotEmpty(t, info.ID)
		require.NotEmpty(t, info.Severity)
		require.True(t, info.Category != "" || info.Counter != "", info.ID)
	}
}

func TestListRulesCategoryFilter(t *testing.T) {
	out, _, err := execute(t, "list-rules", "--category", "missing_memo")
	require.NoError(t, err)

	for _, line := range strings.Split(out, "\n") {
		if strings.HasPrefix(line, "UI_") || strings.HasPrefix(line, "DB_") {
			require.Contains(t, line, "missing_memo")
		}
	}
	require.Contains(t, out, "UI_MISSING_MEMO")
	require.Contains(t, out, "1 detectors loaded")
	require.NotContains(t, out, "DB_N_PLUS_ONE")
}

func TestListRulesCounterFilter(t *testing.T) {
	out, _, err := execute(t, "list-rules", "--category", "db_connections")
	require.NoError(t, err)
	require.Contains(t, out, "DB_CLIENT_CONSTRUCT")
	require.Contains(t, out, "1 detectors loaded")
	require.NotContains(t, out, "DB_N_PLUS_ONE")
}

func TestListRulesDisableRule(t *testing.T) {
	out, _, err := execute(t, "list-rules", "--disable-rule", "UI_INLINE_FN,UI_LARGE_STATE")
	require.NoError(t, err)
	require.NotContains(t, out, "UI_INLINE_FN")
	require.Contains(t, out, "12 detectors loaded")
}
