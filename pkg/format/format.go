package format

import (
	"github.com/leapstack-labs/sqlrewrite/pkg/ast"
	"github.com/leapstack-labs/sqlrewrite/pkg/dialect"
)

// SQL renders a statement on a single line. A nil dialect means ANSI.
func SQL(stmt ast.Statement, d *dialect.Dialect) string {
	p := newPrinter(d, false)
	p.formatStatement(stmt)
	return p.String()
}

// Pretty renders a statement with one clause per line and indented clause
// bodies, terminated by a newline.
func Pretty(stmt ast.Statement, d *dialect.Dialect) string {
	p := newPrinter(d, true)
	p.formatStatement(stmt)
	return p.String()
}

// Expr renders a single expression.
func Expr(e ast.Expr, d *dialect.Dialect) string {
	p := newPrinter(d, false)
	p.formatExpr(e)
	return p.String()
}
