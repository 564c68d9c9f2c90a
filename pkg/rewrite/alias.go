package rewrite

import (
	"github.com/leapstack-labs/sqlrewrite/pkg/ast"
)

// replaceAlias resolves references to aliased function items of the select
// list. An unqualified column named like the alias in WHERE, GROUP BY,
// HAVING or ORDER BY is replaced with a copy of the aliased call. The
// select list itself is left untouched.
func replaceAlias(sel *ast.Select) {
	aliases := make(map[string]*ast.FuncCall)
	for _, item := range sel.Items {
		call, ok := item.Expr.(*ast.FuncCall)
		if ok && item.Alias != "" {
			aliases[item.Alias] = call
		}
	}
	if len(aliases) == 0 {
		return
	}

	resolve := func(e ast.Expr) ast.Expr {
		return ast.Rewrite(e, func(e ast.Expr) (ast.Expr, bool) {
			col, ok := e.(*ast.Column)
			if !ok || col.Table != "" {
				return e, false
			}
			if call, found := aliases[col.Name]; found {
				return ast.Clone(call), true
			}
			return e, false
		})
	}

	sel.Where = resolve(sel.Where)
	for i, g := range sel.GroupBy {
		sel.GroupBy[i] = resolve(g)
	}
	sel.Having = resolve(sel.Having)
	for _, o := range sel.OrderBy {
		o.Expr = resolve(o.Expr)
	}
}
