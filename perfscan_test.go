package perfscan_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/garagon/perfscan"
	"github.com/garagon/perfscan/internal/types"
)

const routersSrc = `export const router = {
  list: async (ids: number[]) => {
    for (const id of ids) {
      const rows = await db.select().from(users)
    }
  },
}
`

const homeSrc = `import { Foo, Bar } from 'lib'
export default function Home() {
  const x = items.map(i => i.id)
  return <div>{Bar}{Bar}{Bar}</div>
}
`

func writeProject(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	files := map[string]string{
		"server/routers.ts":          routersSrc,
		"client/src/pages/Home.tsx":  homeSrc,
		"client/src/notes/README.md": "not scanned",
	}
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return root
}

func TestScan(t *testing.T) {
	root := writeProject(t)

	result, err := perfscan.Scan(context.Background(), root)
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if result.FilesScanned != 2 {
		t.Errorf("FilesScanned = %d, want 2", result.FilesScanned)
	}
	if result.RulesLoaded != 14 {
		t.Errorf("RulesLoaded = %d, want 14", result.RulesLoaded)
	}

	nplus := result.Issues[types.CategoryNPlusOne]
	if len(nplus) != 1 || nplus[0].Line != 4 || nplus[0].Label != "routers.ts" {
		t.Errorf("n_plus_one = %+v, want one finding at routers.ts:4", nplus)
	}
	if got := len(result.Issues[types.CategorySelectStar]); got != 1 {
		t.Errorf("select_star findings = %d, want 1", got)
	}

	memo := result.Issues[types.CategoryMissingMemo]
	if len(memo) != 1 || memo[0].Line != 3 {
		t.Errorf("missing_memo = %+v, want one finding at line 3", memo)
	}

	unused := result.Issues[types.CategoryUnusedImports]
	if len(unused) != 1 {
		t.Fatalf("unused_imports = %+v, want exactly one", unused)
	}
	if unused[0].Symbol != "Foo" || unused[0].Label != "client/src/pages/Home.tsx" {
		t.Errorf("unused import = %+v, want Foo in client/src/pages/Home.tsx", unused[0])
	}

	if got := result.Stats[types.CounterUnpaginatedQueries]; got != 1 {
		t.Errorf("unpaginated_queries = %d, want 1", got)
	}
	if got := result.Stats[types.CounterDBConnections]; got != 0 {
		t.Errorf("db_connections = %d, want 0", got)
	}
}

func TestScanReportIdempotent(t *testing.T) {
	root := writeProject(t)

	first, err := perfscan.Scan(context.Background(), root)
	if err != nil {
		t.Fatal(err)
	}
	second, err := perfscan.Scan(context.Background(), root)
	if err != nil {
		t.Fatal(err)
	}
	if perfscan.Render(first) != perfscan.Render(second) {
		t.Error("reports of an unchanged tree differ")
	}
	if !strings.Contains(perfscan.Render(first), "   routers.ts:4 - Potential N+1 query in loop") {
		t.Error("report is missing the N+1 entry")
	}
}

func TestScanMissingRoot(t *testing.T) {
	result, err := perfscan.Scan(context.Background(), filepath.Join(t.TempDir(), "absent"))
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if result.Total() != 0 || result.FilesScanned != 0 {
		t.Errorf("got %d findings in %d files, want none", result.Total(), result.FilesScanned)
	}

	report := perfscan.Render(result)
	for _, want := range []string{"WHERE clauses found: 0", "Database connections: 0", "8. Add loading skeletons instead of spinners"} {
		if !strings.Contains(report, want) {
			t.Errorf("report missing %q", want)
		}
	}
	if strings.Contains(report, "found):") {
		t.Error("empty project should not print category headers")
	}
}

func TestScanCancelled(t *testing.T) {
	root := writeProject(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := perfscan.Scan(ctx, root); err == nil {
		t.Error("expected an error from a cancelled context")
	}
}

func TestScanWithTargets(t *testing.T) {
	root := writeProject(t)

	result, err := perfscan.Scan(context.Background(), root, perfscan.WithTargets("server/routers.ts"))
	if err != nil {
		t.Fatal(err)
	}
	if result.FilesScanned != 1 {
		t.Errorf("FilesScanned = %d, want 1", result.FilesScanned)
	}
	if len(result.Issues[types.CategoryMissingMemo]) != 0 {
		t.Error("page detectors ran on an excluded file")
	}
}

func TestScanWithIgnorePatterns(t *testing.T) {
	root := writeProject(t)

	result, err := perfscan.Scan(context.Background(), root, perfscan.WithIgnorePatterns([]string{"client/"}))
	if err != nil {
		t.Fatal(err)
	}
	if result.FilesScanned != 1 {
		t.Errorf("FilesScanned = %d, want 1", result.FilesScanned)
	}
}

func TestScanContent(t *testing.T) {
	result, err := perfscan.ScanContent(
		context.Background(),
		"const payload = JSON.parse(input.raw)\n",
		"server/routers.ts",
	)
	if err != nil {
		t.Fatalf("ScanContent failed: %v", err)
	}
	sync := result.Issues[types.CategorySyncOperations]
	if len(sync) != 1 || sync[0].Line != 1 {
		t.Fatalf("sync_operations = %+v, want one finding at line 1", sync)
	}
}

func TestScanContentUntargetedFile(t *testing.T) {
	result, err := perfscan.ScanContent(context.Background(), "const payload = JSON.parse(raw)\n", "lib/util.ts")
	if err != nil {
		t.Fatal(err)
	}
	if result.Total() != 0 {
		t.Errorf("expected no findings outside detector targets, got %d", result.Total())
	}
}

func TestScanContentRequiresFilename(t *testing.T) {
	if _, err := perfscan.ScanContent(context.Background(), "x", ""); err == nil {
		t.Error("expected an error for an empty filename")
	}
}

func TestWithDisabledRules(t *testing.T) {
	root := writeProject(t)

	result, err := perfscan.Scan(context.Background(), root, perfscan.WithDisabledRules("db_n_plus_one"))
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Issues[types.CategoryNPlusOne]) != 0 {
		t.Error("disabled detector still reported findings")
	}
	if result.RulesLoaded != 13 {
		t.Errorf("RulesLoaded = %d, want 13", result.RulesLoaded)
	}
}

func TestWithRuleOverridesAndMinSeverity(t *testing.T) {
	opts := []perfscan.Option{
		perfscan.WithRuleOverrides(map[string]perfscan.RuleOverride{
			"SRV_SYNC_JSON":  {Severity: "low"},
			"DB_SELECT_STAR": {Severity: "not-a-level"},
		}),
		perfscan.WithMinSeverity(perfscan.SeverityMedium),
	}
	content := "const rows = JSON.parse(await db.select().from(t).toString())\n"
	result, err := perfscan.ScanContent(context.Background(), content, "server/routers.ts", opts...)
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Issues[types.CategorySyncOperations]) != 0 {
		t.Error("finding below the minimum severity was kept")
	}
	if len(result.Issues[types.CategorySelectStar]) != 1 {
		t.Error("invalid override should leave the detector at its original severity")
	}
	if result.Stats[types.CounterUnpaginatedQueries] != 1 {
		t.Error("counters must not be filtered by severity")
	}
}

func TestListRules(t *testing.T) {
	all := perfscan.ListRules()
	if len(all) != 14 {
		t.Fatalf("ListRules returned %d detectors, want 14", len(all))
	}
	for i := 1; i < len(all); i++ {
		if all[i-1].ID > all[i].ID {
			t.Fatalf("detectors not sorted: %s before %s", all[i-1].ID, all[i].ID)
		}
	}

	nplus := perfscan.ListRules(perfscan.WithCategory("N_PLUS_ONE"))
	if len(nplus) != 1 || nplus[0].ID != "DB_N_PLUS_ONE" {
		t.Errorf("category filter = %+v", nplus)
	}

	where := perfscan.ListRules(perfscan.WithCategory("where_clauses"))
	if len(where) != 1 || where[0].ID != "DB_WHERE_EQ" {
		t.Errorf("counter filter = %+v", where)
	}

	mount := perfscan.ListRules(perfscan.WithCategory("mount_only_effects"))
	if len(mount) != 1 || mount[0].ID != "UI_EFFECT_DEPS" {
		t.Errorf("counter filter = %+v", mount)
	}
}

func TestExplainRule(t *testing.T) {
	detail, err := perfscan.ExplainRule(" db_n_plus_one ")
	if err != nil {
		t.Fatal(err)
	}
	if detail.Severity != "CRITICAL" || detail.Category != types.CategoryNPlusOne {
		t.Errorf("unexpected detail: %+v", detail)
	}
	if !strings.Contains(detail.Guard, "5 lines before") {
		t.Errorf("Guard = %q", detail.Guard)
	}
	if len(detail.Patterns) == 0 || len(detail.TruePositives) == 0 {
		t.Error("expected patterns and examples")
	}

	if _, err := perfscan.ExplainRule("NOPE_001"); err == nil {
		t.Error("expected an error for an unknown detector")
	}
}
