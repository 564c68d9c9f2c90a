package ast_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/sqlrewrite/pkg/ast"
	"github.com/leapstack-labs/sqlrewrite/pkg/parser"
)

func mustParse(t *testing.T, sql string) ast.Statement {
	t.Helper()
	stmt, err := parser.Parse(sql)
	require.NoError(t, err)
	return stmt
}

func columnNames(node ast.Node) []string {
	var names []string
	ast.Inspect(node, func(n ast.Node) {
		if col, ok := n.(*ast.Column); ok {
			names = append(names, col.Name)
		}
	})
	return names
}

func TestWalk_VisitsSubqueries(t *testing.T) {
	stmt := mustParse(t, "SELECT a FROM (SELECT b FROM t) s JOIN u ON s.c = u.d WHERE e IN (SELECT f FROM v) AND EXISTS (SELECT g FROM w) GROUP BY h HAVING sum(i) > 1 ORDER BY j")

	assert.Equal(t, []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j"}, columnNames(stmt))
}

func TestWalk_Prune(t *testing.T) {
	stmt := mustParse(t, "SELECT a, sum(b) FROM t WHERE c = 1")

	var names []string
	ast.Walk(stmt, func(n ast.Node) bool {
		if _, ok := n.(*ast.FuncCall); ok {
			return false
		}
		if col, ok := n.(*ast.Column); ok {
			names = append(names, col.Name)
		}
		return true
	})
	assert.Equal(t, []string{"a", "c"}, names)
}

func TestRewrite(t *testing.T) {
	e, err := parser.ParseExpr("a + f(b, c) * 2")
	require.NoError(t, err)

	var visited []string
	out := ast.Rewrite(e, func(e ast.Expr) (ast.Expr, bool) {
		switch x := e.(type) {
		case *ast.Column:
			visited = append(visited, x.Name)
			return &ast.Column{Name: x.Name + "2"}, false
		case *ast.FuncCall:
			return ast.Number("0"), true
		}
		return e, false
	})

	assert.Equal(t, []string{"a"}, visited)
	assert.True(t, ast.Equal(&ast.Binary{
		Op:   ast.OpAdd,
		Left: &ast.Column{Name: "a2"},
		Right: &ast.Binary{
			Op:    ast.OpMul,
			Left:  ast.Number("0"),
			Right: ast.Number("2"),
		},
	}, out))
	assert.Nil(t, ast.Rewrite(nil, func(e ast.Expr) (ast.Expr, bool) { return e, false }))
}

func TestConditions(t *testing.T) {
	e, err := parser.ParseCondition("a = 1 AND (b = 2 OR c > 3) AND NOT d = 4")
	require.NoError(t, err)

	conds := ast.Conditions(e)
	require.Len(t, conds, 4)
	assert.IsType(t, &ast.Comparison{}, conds[0])
	assert.IsType(t, &ast.Comparison{}, conds[1])
	assert.IsType(t, &ast.Comparison{}, conds[2])
	assert.IsType(t, &ast.Not{}, conds[3])
	assert.Empty(t, ast.Conditions(nil))
}

func TestPlainSelects(t *testing.T) {
	stmt := mustParse(t, "SELECT a FROM (SELECT b FROM t1) s JOIN (x JOIN (SELECT c FROM t2) y ON x.k = y.k) p ON s.k = p.k WHERE d IN (SELECT e FROM t3) UNION SELECT f FROM t4")

	selects := ast.PlainSelects(stmt)
	var firsts []string
	for _, sel := range selects {
		col := sel.Items[0].Expr.(*ast.Column)
		firsts = append(firsts, col.Name)
	}
	assert.Equal(t, []string{"a", "b", "c", "f"}, firsts)
}

func TestColumnOf(t *testing.T) {
	tests := []struct {
		expr string
		want string
		ok   bool
	}{
		{expr: "a", want: "a", ok: true},
		{expr: "t.a", want: "a", ok: true},
		{expr: "sum(a)", want: "a", ok: true},
		{expr: "round(a, 2)"},
		{expr: "sum(a + 1)"},
		{expr: "1"},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			e, err := parser.ParseExpr(tt.expr)
			require.NoError(t, err)
			col, ok := ast.ColumnOf(e)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, col.Name)
			}
		})
	}
}
