package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/sqlrewrite/pkg/schema"
)

const directivesYAML = `
exact: true
directives:
  - kind: fields
    map: {pv: page_views}
  - kind: table
    table: analytics.events
`

// run executes the root command in an empty working directory.
func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	t.Log(errOut.String())
	return out.String(), err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestRewriteCommand(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	directives := writeFile(t, dir, "directives.yaml", directivesYAML)

	tests := []struct {
		name     string
		stdin    string
		args     []string
		want     string
		contains bool
	}{
		{
			name: "directives file",
			args: []string{"rewrite", "-d", directives, "SELECT pv FROM t WHERE city = 'sz'"},
			want: "SELECT page_views FROM analytics.events WHERE city = 'sz'\n",
		},
		{
			name:  "stdin",
			stdin: "SELECT pv FROM t\n",
			args:  []string{"rewrite", "-d", directives},
			want:  "SELECT page_views FROM analytics.events\n",
		},
		{
			name: "single kind",
			args: []string{"rewrite", "--kind", "date_diff", "--today", "2024-03-15", "SELECT a FROM t WHERE datediff(dt, today) <= 7"},
			want: "SELECT a FROM t WHERE (dt >= '2024-03-08' AND dt <= '2024-03-15')\n",
		},
		{
			name: "unparsable sql is echoed",
			args:     []string{"rewrite", "--kind", "alias", "not sql at all"},
			want:     "\nnot sql at all\n",
			contains: true,
		},
		{
			name: "pretty",
			args: []string{"rewrite", "--kind", "table", "--table", "events", "--pretty", "SELECT a FROM t WHERE b = 1"},
			want: "SELECT\n  a\nFROM events\nWHERE\n  b = 1\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := run(t, tt.stdin, tt.args...)
			require.NoError(t, err)
			if tt.contains {
				assert.Contains(t, out, "-- error: ")
				assert.Contains(t, out, tt.want)
				return
			}
			assert.Equal(t, tt.want, out)
		})
	}
}

func TestRewriteCommand_JSON(t *testing.T) {
	t.Chdir(t.TempDir())

	out, err := run(t, "", "rewrite", "-o", "json", "--kind", "table", "--table", "db.events", "SELECT a FROM t")
	require.NoError(t, err)

	var results []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &results))
	require.Len(t, results, 1)
	assert.Equal(t, "SELECT a FROM t", results[0]["input"])
	assert.Equal(t, "SELECT a FROM db.events", results[0]["output"])
	assert.Equal(t, true, results[0]["changed"])
}

func TestRewriteCommand_Verify(t *testing.T) {
	t.Chdir(t.TempDir())

	out, err := run(t, "", "rewrite", "-o", "json", "--kind", "alias",
		"--verify", "--verify-driver", "sqlite", "--verify-dsn", ":memory:",
		"SELECT 1 AS one")
	require.NoError(t, err)

	var results []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &results))
	require.Len(t, results, 1)
	assert.Equal(t, true, results[0]["verified"])
}

func TestRewriteCommand_Errors(t *testing.T) {
	t.Chdir(t.TempDir())

	tests := []struct {
		name      string
		args      []string
		errSubstr string
	}{
		{name: "no directives", args: []string{"rewrite", "SELECT 1"}, errSubstr: "--directives or --kind"},
		{name: "kind needs file", args: []string{"rewrite", "--kind", "fields", "SELECT 1"}, errSubstr: "needs a directives file"},
		{name: "missing file", args: []string{"rewrite", "-d", "nope.yaml", "SELECT 1"}, errSubstr: "failed to read directives"},
		{name: "verify without database", args: []string{"rewrite", "--kind", "alias", "--verify", "SELECT 1"}, errSubstr: "verify.driver"},
		{name: "bad config", args: []string{"rewrite", "--dialect", "oracle", "--kind", "alias", "SELECT 1"}, errSubstr: "unknown dialect"},
		{name: "watch without files", args: []string{"rewrite", "--kind", "alias", "--watch", "SELECT 1"}, errSubstr: "--watch"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, "", tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errSubstr)
		})
	}
}

func TestBatchCommand(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	directives := writeFile(t, dir, "directives.yaml", directivesYAML)
	writeFile(t, dir, "queries/a.sql", "SELECT pv FROM t;\n")
	writeFile(t, dir, "queries/nested/b.sql", "SELECT pv, uv FROM t WHERE pv > 1")
	writeFile(t, dir, "queries/bad.sql", "not sql")
	writeFile(t, dir, "queries/notes.txt", "ignored")

	out, err := run(t, "", "batch", "-d", directives, "--concurrency", "2", "queries")
	require.NoError(t, err)
	assert.Equal(t, `-- queries/a.sql
SELECT page_views FROM analytics.events

-- queries/bad.sql
-- error: `, out[:strings.Index(out, "error: ")+len("error: ")])
	assert.Contains(t, out, "-- queries/nested/b.sql\nSELECT page_views, uv FROM analytics.events WHERE page_views > 1\n")

	_, err = run(t, "", "batch", "-d", directives, "--fail-on-error", "queries")
	assert.ErrorContains(t, err, "1 of 3 statements failed")

	outDir := filepath.Join(dir, "out")
	out, err = run(t, "", "batch", "-d", directives, "--out-dir", outDir, "queries/a.sql", "queries/nested")
	require.NoError(t, err)
	assert.Contains(t, out, "Rewrote 2 files (2 changed, 0 failed)")
	content, err := os.ReadFile(filepath.Join(outDir, "b.sql"))
	require.NoError(t, err)
	assert.Equal(t, "SELECT page_views, uv FROM analytics.events WHERE page_views > 1\n", string(content))
}

const candidatesYAML = `
query: pv by city
scanners:
  - name: keyword
    candidates:
      - data_set_id: 2
        match:
          element: {id: 1, data_set_id: 2, type: METRIC, name: page_views, biz_name: pv}
          word: pv
          similarity: 0.7
      - data_set_id: 2
        match:
          element: {id: 5, data_set_id: 2, type: DIMENSION, name: city}
          word: city
          similarity: 1
  - name: embedding
    candidates:
      - data_set_id: 2
        match:
          element: {id: 1, data_set_id: 2, type: METRIC, name: page_views, biz_name: pv}
          word: page views
          similarity: 0.9
      - data_set_id: 3
        match:
          element: {id: 9, data_set_id: 3, type: METRIC, name: visits}
          word: visits
          similarity: 0.5
`

func TestMatchCommand(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	candidates := writeFile(t, dir, "candidates.yaml", candidatesYAML)

	out, err := run(t, "", "match", "-c", candidates, "-o", "json")
	require.NoError(t, err)

	var report struct {
		RunID     string                      `json:"run_id"`
		Query     string                      `json:"query"`
		QueryType string                      `json:"query_type"`
		Matches   map[string][]map[string]any `json:"matches"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.NotEmpty(t, report.RunID)
	assert.Equal(t, "pv by city", report.Query)
	assert.Equal(t, "ALL", report.QueryType)
	require.Len(t, report.Matches["2"], 2)
	assert.Equal(t, "city", report.Matches["2"][0]["word"])
	assert.Equal(t, "page views", report.Matches["2"][1]["word"], "higher similarity replaces the duplicate")
	assert.Len(t, report.Matches["3"], 1)

	out, err = run(t, "", "match", "-c", candidates, "--query-type", "metric", "--data-set", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "DIMENSION")
	assert.NotContains(t, out, "page views")
	assert.NotContains(t, out, "visits")
	assert.Contains(t, out, "(1 matches)")

	_, err = run(t, "", "match", "-c", candidates, "--query-type", "nope")
	assert.ErrorContains(t, err, "unknown query data type")
}

func TestMatchCommand_ValueAliases(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	candidates := writeFile(t, dir, "candidates.yaml", `
query: 北京 pv
scanners:
  - candidates:
      - data_set_id: 4
        match:
          element: {id: 3, data_set_id: 4, type: VALUE, name: 北京, aliases: [北京市, bj, peking]}
          word: 北京
          similarity: 1
`)

	out, err := run(t, "", "match", "-c", candidates, "-o", "json")
	require.NoError(t, err)

	var report struct {
		Matches map[string][]schema.Match `json:"matches"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	require.Len(t, report.Matches["4"], 1)
	assert.Equal(t, []string{"北京市"}, report.Matches["4"][0].Element.Aliases)
}

func TestVerifyCommand(t *testing.T) {
	t.Chdir(t.TempDir())

	out, err := run(t, "", "verify", "--verify-driver", "sqlite", "--verify-dsn", ":memory:", "SELECT 1")
	require.NoError(t, err)
	assert.Equal(t, "OK\n", out)

	_, err = run(t, "", "verify", "--verify-driver", "sqlite", "--verify-dsn", ":memory:", "SELECT * FROM missing_table")
	assert.ErrorContains(t, err, "rejected")
}

func TestVersionCommand(t *testing.T) {
	t.Chdir(t.TempDir())

	out, err := run(t, "", "version")
	require.NoError(t, err)
	assert.Contains(t, out, "sqlrewrite v"+Version)
	assert.Contains(t, out, "dialects: ansi")
}

func TestCompletionCommand(t *testing.T) {
	out, err := run(t, "", "completion", "bash")
	require.NoError(t, err)
	assert.Contains(t, out, "sqlrewrite")
}
