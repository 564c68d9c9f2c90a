package rewrite

import (
	"log/slog"

	"github.com/leapstack-labs/sqlrewrite/pkg/ast"
	"github.com/leapstack-labs/sqlrewrite/pkg/format"
	"github.com/leapstack-labs/sqlrewrite/pkg/parser"
)

// exprReplacer substitutes field references with parsed expressions.
type exprReplacer struct {
	r     *Rewriter
	exprs map[string]string
}

// ReplaceExpression rewrites a single expression text. A bare column key is
// replaced by its expression text verbatim; otherwise the expression is
// rewritten and rendered. Text that does not parse is returned unchanged.
func (r *Rewriter) ReplaceExpression(expr string, exprs map[string]string) string {
	e, err := parser.ParseExpr(expr)
	if err != nil {
		r.logger.Debug("expression left unchanged", slog.String("expr", expr), slog.Any("error", err))
		return expr
	}
	if col, ok := e.(*ast.Column); ok {
		if v, found := exprs[col.Name]; found {
			return v
		}
	}
	er := &exprReplacer{r: r, exprs: exprs}
	return format.Expr(er.deep(e), r.dialect)
}

// replaceByExpression applies the expression map to the select list, HAVING,
// WHERE and ORDER BY of every plain select reachable from stmt.
func (r *Rewriter) replaceByExpression(stmt ast.Statement, exprs map[string]string) {
	if len(exprs) == 0 {
		return
	}
	er := &exprReplacer{r: r, exprs: exprs}
	for _, sel := range ast.PlainSelects(stmt) {
		for _, item := range sel.Items {
			er.selectItem(item)
		}
		sel.Having = er.deep(sel.Having)
		sel.Where = er.deep(sel.Where)
		for _, o := range sel.OrderBy {
			if repl, ok := er.node(o.Expr); ok {
				o.Expr = repl
			}
		}
	}
}

// selectItem replaces a column or single-column call item and keeps the
// output name stable by aliasing it with the original column name.
func (er *exprReplacer) selectItem(item *ast.SelectItem) {
	col, ok := ast.ColumnOf(item.Expr)
	if !ok {
		item.Expr = er.deep(item.Expr)
		return
	}
	repl, ok := er.node(item.Expr)
	if !ok {
		return
	}
	item.Expr = repl
	if item.Alias == "" {
		item.Alias = col.Name
	}
}

// deep replaces every column and single-column call inside e.
func (er *exprReplacer) deep(e ast.Expr) ast.Expr {
	return ast.Rewrite(e, func(e ast.Expr) (ast.Expr, bool) {
		if repl, ok := er.node(e); ok {
			return repl, true
		}
		return e, false
	})
}

// node replaces e when it is a column key, or a call whose single column
// argument is a key. A replacement that aggregates by itself takes the
// place of the whole call; otherwise it becomes the call's argument.
func (er *exprReplacer) node(e ast.Expr) (ast.Expr, bool) {
	switch x := e.(type) {
	case *ast.Column:
		return er.parse(x.Name)
	case *ast.FuncCall:
		col, ok := ast.ColumnOf(x)
		if !ok {
			return nil, false
		}
		repl, ok := er.parse(col.Name)
		if !ok {
			return nil, false
		}
		if er.aggregates(repl) {
			return repl, true
		}
		x.Args[0] = repl
		return x, true
	}
	return nil, false
}

func (er *exprReplacer) parse(field string) (ast.Expr, bool) {
	text, ok := er.exprs[field]
	if !ok || text == "" {
		return nil, false
	}
	e, err := parser.ParseExpr(text)
	if err != nil {
		er.r.logger.Warn("replacement expression does not parse",
			slog.String("field", field),
			slog.String("expr", text),
			slog.Any("error", err))
		return nil, false
	}
	return e, true
}

// aggregates reports whether e contains an aggregate call.
func (er *exprReplacer) aggregates(e ast.Expr) bool {
	found := false
	ast.Walk(e, func(n ast.Node) bool {
		if call, ok := n.(*ast.FuncCall); ok && er.r.dialect.IsAggregate(call.Name) {
			found = true
		}
		return !found
	})
	return found
}
