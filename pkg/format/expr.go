package format

import (
	"github.com/leapstack-labs/sqlrewrite/pkg/ast"
)

// Operator precedence used to parenthesize synthesized trees. Parsed trees
// carry explicit *ast.Paren nodes and never need it.
const (
	precOr = iota + 1
	precAnd
	precNot
	precCompare
	precAdd
	precMul
	precUnary
	precPrimary
)

func precedence(e ast.Expr) int {
	switch x := e.(type) {
	case *ast.Or:
		return precOr
	case *ast.And:
		return precAnd
	case *ast.Not:
		return precNot
	case *ast.Comparison, *ast.In, *ast.Between, *ast.Like, *ast.IsNull:
		return precCompare
	case *ast.Binary:
		switch x.Op {
		case ast.OpMul, ast.OpDiv, ast.OpMod:
			return precMul
		}
		return precAdd
	case *ast.Unary:
		return precUnary
	}
	return precPrimary
}

// operand prints e, wrapping it in parentheses when it binds looser than
// min.
func (p *Printer) operand(e ast.Expr, min int) {
	if precedence(e) < min {
		p.write("(")
		p.formatExpr(e)
		p.write(")")
		return
	}
	p.formatExpr(e)
}

func (p *Printer) formatExpr(e ast.Expr) {
	switch x := e.(type) {
	case nil:
	case *ast.Column:
		if x.Table != "" {
			p.ident(x.Table)
			p.write(".")
		}
		p.ident(x.Name)
	case *ast.Star:
		if x.Table != "" {
			p.ident(x.Table)
			p.write(".")
		}
		p.write("*")
	case *ast.Literal:
		p.formatLiteral(x)
	case *ast.FuncCall:
		p.write(x.Name)
		p.write("(")
		if x.Distinct {
			p.kw("DISTINCT ")
		}
		p.formatList(len(x.Args), func(i int) { p.formatExpr(x.Args[i]) }, ",", false)
		p.write(")")
	case *ast.Comparison:
		p.operand(x.Left, precCompare)
		p.write(" " + string(x.Op) + " ")
		p.operand(x.Right, precCompare+1)
	case *ast.And:
		p.operand(x.Left, precAnd)
		p.kw(" AND ")
		p.operand(x.Right, precAnd+1)
	case *ast.Or:
		p.operand(x.Left, precOr)
		p.kw(" OR ")
		p.operand(x.Right, precOr+1)
	case *ast.Not:
		p.kw("NOT ")
		p.operand(x.Expr, precNot)
	case *ast.Paren:
		p.write("(")
		p.formatExpr(x.Expr)
		p.write(")")
	case *ast.Binary:
		prec := precedence(x)
		p.operand(x.Left, prec)
		p.write(" " + string(x.Op) + " ")
		p.operand(x.Right, prec+1)
	case *ast.Unary:
		p.write(string(x.Op))
		p.operand(x.Expr, precUnary+1)
	case *ast.In:
		p.operand(x.Expr, precCompare+1)
		p.notKw(x.Not)
		p.kw("IN ")
		if x.Select != nil {
			p.formatSubStatement(x.Select)
			return
		}
		p.write("(")
		p.formatList(len(x.List), func(i int) { p.formatExpr(x.List[i]) }, ",", false)
		p.write(")")
	case *ast.Between:
		p.operand(x.Expr, precCompare+1)
		p.notKw(x.Not)
		p.kw("BETWEEN ")
		p.operand(x.Low, precAdd)
		p.kw(" AND ")
		p.operand(x.High, precAdd)
	case *ast.Like:
		p.operand(x.Expr, precCompare+1)
		p.notKw(x.Not)
		p.kw("LIKE ")
		p.operand(x.Pattern, precAdd)
	case *ast.IsNull:
		p.operand(x.Expr, precCompare+1)
		if x.Not {
			p.kw(" IS NOT NULL")
		} else {
			p.kw(" IS NULL")
		}
	case *ast.Subquery:
		p.formatSubStatement(x.Select)
	case *ast.Exists:
		p.kw("EXISTS ")
		p.formatSubStatement(x.Select)
	case *ast.Case:
		p.kw("CASE")
		if x.Operand != nil {
			p.space()
			p.formatExpr(x.Operand)
		}
		for _, w := range x.Whens {
			p.kw(" WHEN ")
			p.formatExpr(w.Cond)
			p.kw(" THEN ")
			p.formatExpr(w.Result)
		}
		if x.Else != nil {
			p.kw(" ELSE ")
			p.formatExpr(x.Else)
		}
		p.kw(" END")
	case *ast.Cast:
		p.kw("CAST(")
		p.formatExpr(x.Expr)
		p.kw(" AS ")
		p.write(x.Type)
		p.write(")")
	}
}

func (p *Printer) notKw(not bool) {
	if not {
		p.kw(" NOT ")
		return
	}
	p.space()
}

func (p *Printer) formatLiteral(l *ast.Literal) {
	switch l.Kind {
	case ast.LiteralString:
		p.write(quoteString(l.Value))
	case ast.LiteralNull:
		p.kw("NULL")
	default:
		p.write(l.Value)
	}
}
