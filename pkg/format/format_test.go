package format

import (
	"testing"

	"github.com/leapstack-labs/sqlrewrite/pkg/ast"
	"github.com/leapstack-labs/sqlrewrite/pkg/dialect"
	"github.com/leapstack-labs/sqlrewrite/pkg/parser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQL_RoundTrip(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "simple select",
			input:    "select a, b from t",
			expected: "SELECT a, b FROM t",
		},
		{
			name:     "alias and function case kept",
			input:    "SELECT sum(amount) AS amount, COUNT(DISTINCT user_id) uv FROM t",
			expected: "SELECT sum(amount) AS amount, COUNT(DISTINCT user_id) AS uv FROM t",
		},
		{
			name:     "where with and or",
			input:    "SELECT a FROM t WHERE x = 1 AND (y <> 'b' OR z != 'c')",
			expected: "SELECT a FROM t WHERE x = 1 AND (y <> 'b' OR z <> 'c')",
		},
		{
			name:     "star and table star",
			input:    "SELECT *, t.* FROM s.t t",
			expected: "SELECT *, t.* FROM s.t AS t",
		},
		{
			name:     "group having order limit",
			input:    "SELECT a, count(*) FROM t GROUP BY a HAVING count(*) > 10 ORDER BY a DESC, 2 ASC LIMIT 5 OFFSET 10",
			expected: "SELECT a, count(*) FROM t GROUP BY a HAVING count(*) > 10 ORDER BY a DESC, 2 ASC LIMIT 5 OFFSET 10",
		},
		{
			name:     "joins",
			input:    "SELECT a FROM t1 LEFT OUTER JOIN t2 ON t1.id = t2.id JOIN t3 USING (id), t4",
			expected: "SELECT a FROM t1 LEFT JOIN t2 ON t1.id = t2.id JOIN t3 USING (id), t4",
		},
		{
			name:     "derived table",
			input:    "SELECT x FROM (SELECT x FROM t WHERE y IN (1, 2)) sub",
			expected: "SELECT x FROM (SELECT x FROM t WHERE y IN (1, 2)) AS sub",
		},
		{
			name:     "parenthesized join tree",
			input:    "SELECT a FROM (t1 JOIN t2 ON t1.k = t2.k) j",
			expected: "SELECT a FROM (t1 JOIN t2 ON t1.k = t2.k) AS j",
		},
		{
			name:     "union with set order by",
			input:    "SELECT a FROM t1 UNION ALL SELECT a FROM t2 ORDER BY a",
			expected: "SELECT a FROM t1 UNION ALL SELECT a FROM t2 ORDER BY a",
		},
		{
			name:     "parenthesized branch keeps its limit",
			input:    "(SELECT a FROM t1 LIMIT 1) EXCEPT SELECT a FROM t2",
			expected: "(SELECT a FROM t1 LIMIT 1) EXCEPT SELECT a FROM t2",
		},
		{
			name:     "predicates",
			input:    "SELECT a FROM t WHERE b NOT BETWEEN 1 AND 2 AND c NOT LIKE 'x%' AND d IS NOT NULL AND e NOT IN (SELECT e FROM u)",
			expected: "SELECT a FROM t WHERE b NOT BETWEEN 1 AND 2 AND c NOT LIKE 'x%' AND d IS NOT NULL AND e NOT IN (SELECT e FROM u)",
		},
		{
			name:     "case cast exists",
			input:    "SELECT CASE WHEN a > 1 THEN 'big' ELSE 'small' END, CAST(b AS DECIMAL(10,2)) FROM t WHERE NOT EXISTS (SELECT 1 FROM u)",
			expected: "SELECT CASE WHEN a > 1 THEN 'big' ELSE 'small' END, CAST(b AS DECIMAL(10, 2)) FROM t WHERE NOT EXISTS (SELECT 1 FROM u)",
		},
		{
			name:     "string escaping and arithmetic",
			input:    "SELECT a * (b + 1) - -2, 'it''s' || c FROM t",
			expected: "SELECT a * (b + 1) - -2, 'it''s' || c FROM t",
		},
		{
			name:     "unicode identifiers",
			input:    "SELECT 部门, sum(访问次数) AS 访问次数 FROM 超音数 WHERE 数据日期 >= '2024-01-01'",
			expected: "SELECT 部门, sum(访问次数) AS 访问次数 FROM 超音数 WHERE 数据日期 >= '2024-01-01'",
		},
		{
			name:     "quoted identifiers",
			input:    "SELECT \"order\", `gross amount` FROM t",
			expected: "SELECT \"order\", \"gross amount\" FROM t",
		},
		{
			name:     "comments dropped",
			input:    "SELECT a -- trailing\nFROM /* inline */ t;",
			expected: "SELECT a FROM t",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stmt, err := parser.Parse(tt.input)
			require.NoError(t, err)

			got := SQL(stmt, dialect.ANSI)
			assert.Equal(t, tt.expected, got)

			// formatting is a fixpoint
			again, err := parser.Parse(got)
			require.NoError(t, err)
			assert.Equal(t, got, SQL(again, dialect.ANSI))
		})
	}
}

func TestSQL_DialectQuoting(t *testing.T) {
	stmt, err := parser.Parse(`SELECT "key", "gross amount" FROM "user"`)
	require.NoError(t, err)

	assert.Equal(t, "SELECT `key`, `gross amount` FROM user", SQL(stmt, dialect.MySQL))
	assert.Equal(t, `SELECT key, "gross amount" FROM "user"`, SQL(stmt, dialect.Postgres))
	assert.Equal(t, `SELECT key, "gross amount" FROM "user"`, SQL(stmt, nil))
}

func TestPretty(t *testing.T) {
	stmt, err := parser.Parse("SELECT a, b AS c FROM t JOIN u ON t.id = u.id WHERE x = 1 GROUP BY a ORDER BY a")
	require.NoError(t, err)

	expected := `SELECT
  a,
  b AS c
FROM t
JOIN u ON t.id = u.id
WHERE
  x = 1
GROUP BY
  a
ORDER BY
  a
`
	assert.Equal(t, expected, Pretty(stmt, dialect.ANSI))
}

func TestExpr_Parenthesizes(t *testing.T) {
	tests := []struct {
		name string
		expr ast.Expr
		want string
	}{
		{
			name: "or under and",
			expr: &ast.And{
				Left:  &ast.Or{Left: &ast.Column{Name: "a"}, Right: &ast.Column{Name: "b"}},
				Right: &ast.Column{Name: "c"},
			},
			want: "(a OR b) AND c",
		},
		{
			name: "addition under multiplication",
			expr: &ast.Binary{
				Op:    ast.OpMul,
				Left:  &ast.Binary{Op: ast.OpAdd, Left: &ast.Column{Name: "a"}, Right: ast.Number("1")},
				Right: &ast.Column{Name: "b"},
			},
			want: "(a + 1) * b",
		},
		{
			name: "right associative subtraction",
			expr: &ast.Binary{
				Op:    ast.OpSub,
				Left:  &ast.Column{Name: "a"},
				Right: &ast.Binary{Op: ast.OpSub, Left: &ast.Column{Name: "b"}, Right: &ast.Column{Name: "c"}},
			},
			want: "a - (b - c)",
		},
		{
			name: "string literal",
			expr: &ast.Comparison{Op: ast.OpEq, Left: &ast.Column{Table: "t", Name: "name"}, Right: ast.String("O'Neil")},
			want: "t.name = 'O''Neil'",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Expr(tt.expr, nil))
		})
	}
}
