package ast_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/leapstack-labs/sqlrewrite/pkg/ast"
)

func TestCloneStatement(t *testing.T) {
	sqls := []string{
		"SELECT DISTINCT a, count(DISTINCT b) AS c, t.* FROM s.t AS x LEFT JOIN (SELECT d FROM u) AS y ON x.k = y.k WHERE a BETWEEN 1 AND 2 AND b NOT LIKE 'x%' AND c IS NULL GROUP BY a HAVING count(*) > 1 ORDER BY a DESC LIMIT 1 OFFSET 2",
		"SELECT CASE WHEN a > 1 THEN 'x' ELSE -a END, CAST(b AS INT) FROM (t1 JOIN t2 USING (k)) WHERE EXISTS (SELECT 1 FROM u) AND c IN (1, 2) AND NOT (d = 1 OR e = 2)",
		"SELECT a FROM t1 UNION ALL SELECT a FROM t2 ORDER BY a LIMIT 3",
	}

	for _, sql := range sqls {
		t.Run(sql, func(t *testing.T) {
			stmt := mustParse(t, sql)
			clone := ast.CloneStatement(stmt)
			assert.True(t, ast.Equal(stmt, clone))

			// the copy shares no nodes with the original
			ast.Inspect(clone, func(n ast.Node) {
				if col, ok := n.(*ast.Column); ok {
					col.Name += "_copy"
				}
			})
			for _, name := range columnNames(stmt) {
				assert.NotContains(t, name, "_copy")
			}
		})
	}
}

func TestClone_Nil(t *testing.T) {
	assert.Nil(t, ast.Clone(nil))
	assert.Nil(t, ast.CloneStatement(nil))
	assert.Nil(t, ast.CloneSelect(nil))
}

func TestSelects(t *testing.T) {
	stmt := mustParse(t, "SELECT a FROM t1 EXCEPT SELECT a FROM t2 INTERSECT SELECT a FROM t3")
	set, ok := stmt.(*ast.SetOp)
	if assert.True(t, ok) {
		assert.Len(t, ast.Selects(set), 3)
		assert.Equal(t, ast.Except, set.Ops[0].Kind)
		assert.Equal(t, ast.Intersect, set.Ops[1].Kind)
	}
	assert.Len(t, ast.Selects(mustParse(t, "SELECT 1")), 1)
}
