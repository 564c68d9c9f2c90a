package rewrite

import (
	"github.com/leapstack-labs/sqlrewrite/pkg/ast"
)

// replaceSelectFields renames the column of each select item that is a bare
// column or a single-argument call wrapping one.
func replaceSelectFields(sel *ast.Select, fields map[string]string) {
	for _, item := range sel.Items {
		col, ok := ast.ColumnOf(item.Expr)
		if !ok {
			continue
		}
		newName := fields[col.Name]
		if newName == "" {
			continue
		}
		col.Name = newName
		if item.Alias != "" {
			item.Alias = newName
		}
	}
}

// replaceAggFields rewrites aggregate select items whose column argument is
// in aggs. Items of any other shape are skipped.
func replaceAggFields(sel *ast.Select, aggs map[string]AggTarget) {
	for _, item := range sel.Items {
		call, ok := item.Expr.(*ast.FuncCall)
		if !ok {
			continue
		}
		col, ok := ast.ColumnOf(call)
		if !ok {
			continue
		}
		target, ok := aggs[col.Name]
		if !ok {
			continue
		}

		switch {
		case target.Operator.IsCountDistinct():
			call.Name = "COUNT"
			call.Distinct = true
		case target.Operator != AggUnknown:
			call.Name = target.Operator.String()
			call.Distinct = false
		}
		if target.Field != "" {
			col.Name = target.Field
			if item.Alias != "" {
				item.Alias = target.Field
			}
		}
	}
}

// replaceFields renames columns across every clause of every plain select
// reachable from stmt, and in a set operation's ORDER BY.
func (r *Rewriter) replaceFields(stmt ast.Statement, fields map[string]string, exact bool) {
	if len(fields) == 0 {
		return
	}
	rename := func(e ast.Expr) ast.Expr {
		return ast.Rewrite(e, func(e ast.Expr) (ast.Expr, bool) {
			if col, ok := e.(*ast.Column); ok {
				if newName, found := r.lookup(col.Name, fields, exact); found {
					col.Name = newName
				}
			}
			return e, false
		})
	}

	if set, ok := stmt.(*ast.SetOp); ok {
		for _, o := range set.OrderBy {
			o.Expr = rename(o.Expr)
		}
	}

	for _, sel := range ast.PlainSelects(stmt) {
		sel.Where = rename(sel.Where)
		for _, item := range sel.Items {
			item.Expr = rename(item.Expr)
			if newAlias := fields[item.Alias]; item.Alias != "" && newAlias != "" {
				item.Alias = newAlias
			}
		}
		for _, o := range sel.OrderBy {
			o.Expr = rename(o.Expr)
		}
		for i, g := range sel.GroupBy {
			sel.GroupBy[i] = rename(g)
		}
		sel.Having = rename(sel.Having)
		for _, j := range sel.Joins {
			j.On = rename(j.On)
		}
		renameParenJoins(sel.From, rename)
		for _, j := range sel.Joins {
			renameParenJoins(j.Right, rename)
		}
	}
}

// renameParenJoins applies rename to the join conditions of a parenthesized
// join tree.
func renameParenJoins(f ast.FromItem, rename func(ast.Expr) ast.Expr) {
	paren, ok := f.(*ast.ParenFrom)
	if !ok {
		return
	}
	renameParenJoins(paren.From, rename)
	for _, j := range paren.Joins {
		j.On = rename(j.On)
		renameParenJoins(j.Right, rename)
	}
}
