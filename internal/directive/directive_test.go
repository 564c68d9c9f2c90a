package directive

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/sqlrewrite/pkg/ast"
	"github.com/leapstack-labs/sqlrewrite/pkg/rewrite"
)

const sample = `
exact: false
functions_dir: functions
directives:
  - kind: fields
    map: {pv: page_views}
  - kind: select_fields
    exact: true
    map: {uv: visitors}
  - kind: agg
    map:
      sum__pv: page_views
      uv: {field: visitors, operator: count distinct}
  - kind: function
    map: {to_date: str_to_date}
  - kind: value
    map:
      city: {sz: shenzhen, 1: one}
  - kind: having_value
    map:
      city: {bj: beijing}
  - kind: field_by_value
    map:
      shenzhen: [city, region]
  - kind: expression
    map: {ratio: "pv / uv"}
  - kind: table
    table: analytics.events
  - kind: alias
  - kind: DATE_DIFF
`

func TestParse(t *testing.T) {
	f, err := Parse([]byte(sample), true)
	require.NoError(t, err)

	assert.Equal(t, "functions", f.FunctionsDir)
	assert.Equal(t, []rewrite.Directive{
		{Kind: rewrite.KindFields, Fields: map[string]string{"pv": "page_views"}},
		{Kind: rewrite.KindSelectFields, Exact: true, Fields: map[string]string{"uv": "visitors"}},
		{Kind: rewrite.KindAgg, Aggs: map[string]rewrite.AggTarget{
			"pv": {Field: "page_views", Operator: rewrite.AggSum},
			"uv": {Field: "visitors", Operator: rewrite.AggCountDistinct},
		}},
		{Kind: rewrite.KindFunction, Functions: map[string]string{"to_date": "str_to_date"}},
		{Kind: rewrite.KindValue, Values: map[string]map[string]string{"city": {"sz": "shenzhen", "1": "one"}}},
		{Kind: rewrite.KindHavingValue, Values: map[string]map[string]string{"city": {"bj": "beijing"}}},
		{Kind: rewrite.KindFieldByValue, FieldsByValue: map[string][]string{"shenzhen": {"city", "region"}}},
		{Kind: rewrite.KindExpression, Fields: map[string]string{"ratio": "pv / uv"}},
		{Kind: rewrite.KindTable, Table: "analytics.events"},
		{Kind: rewrite.KindAlias},
		{Kind: rewrite.KindDateDiff},
	}, f.Directives)
	assert.True(t, f.NeedsCallbacks())
}

func TestParse_DefaultExact(t *testing.T) {
	f, err := Parse([]byte("directives:\n  - kind: fields\n    map: {a: b}\n"), true)
	require.NoError(t, err)
	require.Len(t, f.Directives, 1)
	assert.True(t, f.Directives[0].Exact)
	assert.False(t, f.NeedsCallbacks())
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name      string
		doc       string
		errSubstr string
	}{
		{name: "not yaml", doc: "directives: [", errSubstr: "invalid directives"},
		{name: "unknown kind", doc: "directives:\n  - kind: explode\n", errSubstr: `unknown rewrite kind "explode"`},
		{name: "unknown key", doc: "directives:\n  - kind: alias\n    mapp: {}\n", errSubstr: "mapp"},
		{name: "missing map", doc: "directives:\n  - kind: fields\n", errSubstr: "map is required"},
		{name: "map on alias", doc: "directives:\n  - kind: alias\n    map: {a: b}\n", errSubstr: "takes no map"},
		{name: "table without name", doc: "directives:\n  - kind: table\n", errSubstr: "needs a table"},
		{name: "table on fields", doc: "directives:\n  - kind: fields\n    table: t\n    map: {a: b}\n", errSubstr: "takes no table"},
		{name: "bad agg key", doc: "directives:\n  - kind: agg\n    map: {pv: page_views}\n", errSubstr: "agg__field"},
		{name: "agg without field", doc: "directives:\n  - kind: agg\n    map: {pv: {operator: sum}}\n", errSubstr: "field is required"},
		{name: "nested value map", doc: "directives:\n  - kind: value\n    map: {city: sz}\n", errSubstr: "directive 1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc), false)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalid))
			assert.Contains(t, err.Error(), tt.errSubstr)
		})
	}
}

func TestLoad_ResolvesFunctionsDir(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "directives.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o644))

	f, err := Load(path, false)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "functions"), f.FunctionsDir)

	_, err = Load(filepath.Join(dir, "missing.yaml"), false)
	assert.ErrorContains(t, err, "failed to read directives")
}

func TestSimple(t *testing.T) {
	d, err := Simple("date_diff", "")
	require.NoError(t, err)
	assert.Equal(t, rewrite.Directive{Kind: rewrite.KindDateDiff}, d)

	d, err = Simple("table", "db.t")
	require.NoError(t, err)
	assert.Equal(t, rewrite.Directive{Kind: rewrite.KindTable, Table: "db.t"}, d)

	_, err = Simple("table", "")
	assert.Error(t, err)
	_, err = Simple("fields", "")
	assert.ErrorContains(t, err, "needs a directives file")
	_, err = Simple("nope", "")
	assert.Error(t, err)
}

func TestAttachCallbacks(t *testing.T) {
	f, err := Parse([]byte(sample), false)
	require.NoError(t, err)

	cb := map[string]rewrite.FunctionCallback{
		"str_to_date": func(args []ast.Expr) []ast.Expr { return args },
	}
	f.AttachCallbacks(cb)

	for _, d := range f.Directives {
		if d.Kind == rewrite.KindFunction {
			assert.Len(t, d.Callbacks, 1)
		} else {
			assert.Nil(t, d.Callbacks)
		}
	}
}
