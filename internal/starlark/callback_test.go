package starlark

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/sqlrewrite/internal/testutil"
	"github.com/leapstack-labs/sqlrewrite/pkg/ast"
	"github.com/leapstack-labs/sqlrewrite/pkg/dialect"
	"github.com/leapstack-labs/sqlrewrite/pkg/format"
	"github.com/leapstack-labs/sqlrewrite/pkg/parser"
	"github.com/leapstack-labs/sqlrewrite/pkg/rewrite"
)

const callbackSource = `
def coalesce(args):
    return args + ["0"]

def str_to_date(args):
    return (args[0], "'%Y-%m-%d'")

def upper(args):
    return args[0]

def not_a_list(args):
    return 1

def bad_sql(args):
    return ["a +"]

def fails(args):
    fail("nope")
`

func loadCallbacks(t *testing.T) *Callbacks {
	t.Helper()
	dir := t.TempDir()
	writeStar(t, dir, "functions.star", callbackSource)
	functions, err := NewLoader(dir).Load()
	require.NoError(t, err)
	return NewCallbacks(functions, dialect.Default(), 4, testutil.NewTestLogger(t))
}

func parseArgs(t *testing.T, texts ...string) []ast.Expr {
	t.Helper()
	args := make([]ast.Expr, len(texts))
	for i, text := range texts {
		e, err := parser.ParseExpr(text)
		require.NoError(t, err)
		args[i] = e
	}
	return args
}

func renderArgs(args []ast.Expr) []string {
	out := make([]string, len(args))
	for i, a := range args {
		out[i] = format.Expr(a, nil)
	}
	return out
}

func TestCallbacks_Call(t *testing.T) {
	cb := loadCallbacks(t)

	tests := []struct {
		name      string
		function  string
		args      []string
		want      []string
		errSubstr string
	}{
		{name: "list result", function: "coalesce", args: []string{"a", "b + 1"}, want: []string{"a", "b + 1", "0"}},
		{name: "tuple result", function: "str_to_date", args: []string{"dt"}, want: []string{"dt", "'%Y-%m-%d'"}},
		{name: "string result", function: "upper", args: []string{"t.name", "x"}, want: []string{"t.name"}},
		{name: "wrong result type", function: "not_a_list", args: []string{"a"}, errSubstr: "must be a list of strings"},
		{name: "unparsable fragment", function: "bad_sql", args: []string{"a"}, errSubstr: "argument 0"},
		{name: "starlark failure", function: "fails", args: []string{"a"}, errSubstr: "nope"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := cb.Call(cb.functions[tt.function], parseArgs(t, tt.args...))
			if tt.errSubstr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errSubstr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, renderArgs(out))
		})
	}
}

func TestCallbacks_FailureKeepsArgs(t *testing.T) {
	logger, buf := testutil.NewCaptureLogger()
	dir := t.TempDir()
	writeStar(t, dir, "functions.star", callbackSource)
	functions, err := NewLoader(dir).Load()
	require.NoError(t, err)
	cb := NewCallbacks(functions, nil, 1, logger)

	args := parseArgs(t, "a", "b")
	out := cb.Map()["fails"](args)

	assert.Equal(t, []string{"a", "b"}, renderArgs(out))
	assert.Contains(t, buf.String(), `"msg":"function callback failed"`)
	assert.Contains(t, buf.String(), `"function":"fails"`)
}

func TestCallbacks_WithRewriter(t *testing.T) {
	cb := loadCallbacks(t)
	r := rewrite.New(rewrite.WithLogger(testutil.NewTestLogger(t)))

	got := r.ReplaceFunction(
		"SELECT ifnull(pv, uv) FROM t WHERE to_date(dt) = '2024-01-01'",
		map[string]string{"ifnull": "coalesce", "to_date": "str_to_date"},
		cb.Map(),
	)
	assert.Equal(t, "SELECT coalesce(pv, uv, 0) FROM t WHERE str_to_date(dt, '%Y-%m-%d') = '2024-01-01'", got)
}

func TestCallbacks_Concurrent(t *testing.T) {
	cb := loadCallbacks(t)
	fn := cb.Map()["coalesce"]
	args := parseArgs(t, "a")

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			out := fn(args)
			assert.Equal(t, []string{"a", "0"}, renderArgs(out))
		}()
	}
	wg.Wait()
	assert.LessOrEqual(t, cb.pool.Size(), 4)
}
