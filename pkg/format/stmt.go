package format

import (
	"github.com/leapstack-labs/sqlrewrite/pkg/ast"
)

func (p *Printer) formatStatement(stmt ast.Statement) {
	switch s := stmt.(type) {
	case *ast.Select:
		p.formatSelect(s)
	case *ast.SetOp:
		p.formatSetOp(s)
	}
}

func (p *Printer) formatSetOp(s *ast.SetOp) {
	for i, sel := range s.Selects {
		if i > 0 {
			op := s.Ops[i-1]
			p.breakLine()
			p.write(op.Kind.String())
			if op.All {
				p.write(" ALL")
			}
			p.breakLine()
		}
		if sel.OrderBy != nil || sel.Limit != nil || sel.Offset != nil {
			p.write("(")
			p.formatSelect(sel)
			p.write(")")
			continue
		}
		p.formatSelect(sel)
	}
	p.formatTail(s.OrderBy, s.Limit, s.Offset)
}

func (p *Printer) formatSelect(s *ast.Select) {
	p.kw("SELECT")
	if s.Distinct {
		p.kw(" DISTINCT")
	}
	p.body(func() {
		p.formatList(len(s.Items), func(i int) {
			p.formatSelectItem(s.Items[i])
		}, ",", p.pretty)
	})

	if s.From != nil {
		p.breakLine()
		p.kw("FROM")
		p.space()
		p.formatFromItem(s.From)
		p.formatJoins(s.Joins)
	}

	if s.Where != nil {
		p.breakLine()
		p.kw("WHERE")
		p.body(func() { p.formatExpr(s.Where) })
	}

	if len(s.GroupBy) > 0 {
		p.breakLine()
		p.kw("GROUP", "BY")
		p.body(func() {
			p.formatList(len(s.GroupBy), func(i int) {
				p.formatExpr(s.GroupBy[i])
			}, ",", false)
		})
	}

	if s.Having != nil {
		p.breakLine()
		p.kw("HAVING")
		p.body(func() { p.formatExpr(s.Having) })
	}

	p.formatTail(s.OrderBy, s.Limit, s.Offset)
}

func (p *Printer) formatSelectItem(item *ast.SelectItem) {
	p.formatExpr(item.Expr)
	if item.Alias != "" {
		p.kw(" AS ")
		p.ident(item.Alias)
	}
}

func (p *Printer) formatTail(orderBy []*ast.OrderItem, limit, offset ast.Expr) {
	if len(orderBy) > 0 {
		p.breakLine()
		p.kw("ORDER", "BY")
		p.body(func() {
			p.formatList(len(orderBy), func(i int) {
				o := orderBy[i]
				p.formatExpr(o.Expr)
				switch {
				case o.Desc:
					p.kw(" DESC")
				case o.Explicit:
					p.kw(" ASC")
				}
			}, ",", false)
		})
	}
	if limit != nil {
		p.breakLine()
		p.kw("LIMIT")
		p.space()
		p.formatExpr(limit)
	}
	if offset != nil {
		p.breakLine()
		p.kw("OFFSET")
		p.space()
		p.formatExpr(offset)
	}
}

func (p *Printer) formatFromItem(f ast.FromItem) {
	switch x := f.(type) {
	case *ast.Table:
		if x.Schema != "" {
			p.ident(x.Schema)
			p.write(".")
		}
		p.ident(x.Name)
		p.formatAlias(x.Alias)
	case *ast.SubSelect:
		p.formatSubStatement(x.Select)
		p.formatAlias(x.Alias)
	case *ast.ParenFrom:
		p.write("(")
		p.formatFromItem(x.From)
		p.formatJoins(x.Joins)
		p.write(")")
		p.formatAlias(x.Alias)
	}
}

func (p *Printer) formatAlias(alias string) {
	if alias != "" {
		p.kw(" AS ")
		p.ident(alias)
	}
}

func (p *Printer) formatJoins(joins []*ast.Join) {
	for _, j := range joins {
		if j.Kind == ast.JoinComma {
			p.write(", ")
			p.formatFromItem(j.Right)
			continue
		}
		p.breakLine()
		p.kw(j.Kind.String())
		p.space()
		p.formatFromItem(j.Right)
		switch {
		case j.On != nil:
			p.kw(" ON ")
			p.formatExpr(j.On)
		case len(j.Using) > 0:
			p.kw(" USING (")
			p.formatList(len(j.Using), func(i int) { p.ident(j.Using[i]) }, ",", false)
			p.write(")")
		}
	}
}

// formatSubStatement prints a parenthesized statement.
func (p *Printer) formatSubStatement(stmt ast.Statement) {
	p.write("(")
	if p.pretty {
		p.indent()
		p.writeln()
		p.formatStatement(stmt)
		p.dedent()
		p.writeln()
	} else {
		p.formatStatement(stmt)
	}
	p.write(")")
}
