package ast

import "reflect"

// CloneStatement returns a deep copy of a statement.
func CloneStatement(s Statement) Statement {
	switch x := s.(type) {
	case *Select:
		return CloneSelect(x)
	case *SetOp:
		out := &SetOp{
			Ops:     append([]SetOperator(nil), x.Ops...),
			OrderBy: cloneOrder(x.OrderBy),
			Limit:   Clone(x.Limit),
			Offset:  Clone(x.Offset),
		}
		for _, sel := range x.Selects {
			out.Selects = append(out.Selects, CloneSelect(sel))
		}
		return out
	}
	return nil
}

// CloneSelect returns a deep copy of a plain select.
func CloneSelect(s *Select) *Select {
	if s == nil {
		return nil
	}
	out := &Select{
		Distinct: s.Distinct,
		From:     cloneFrom(s.From),
		Joins:    cloneJoins(s.Joins),
		Where:    Clone(s.Where),
		Having:   Clone(s.Having),
		OrderBy:  cloneOrder(s.OrderBy),
		Limit:    Clone(s.Limit),
		Offset:   Clone(s.Offset),
	}
	for _, it := range s.Items {
		out.Items = append(out.Items, &SelectItem{Expr: Clone(it.Expr), Alias: it.Alias})
	}
	out.GroupBy = cloneExprs(s.GroupBy)
	return out
}

func cloneOrder(items []*OrderItem) []*OrderItem {
	if items == nil {
		return nil
	}
	out := make([]*OrderItem, len(items))
	for i, o := range items {
		out[i] = &OrderItem{Expr: Clone(o.Expr), Desc: o.Desc, Explicit: o.Explicit}
	}
	return out
}

func cloneJoins(joins []*Join) []*Join {
	if joins == nil {
		return nil
	}
	out := make([]*Join, len(joins))
	for i, j := range joins {
		out[i] = &Join{
			Kind:  j.Kind,
			Right: cloneFrom(j.Right),
			On:    Clone(j.On),
			Using: append([]string(nil), j.Using...),
		}
	}
	return out
}

func cloneFrom(f FromItem) FromItem {
	switch x := f.(type) {
	case *Table:
		t := *x
		return &t
	case *SubSelect:
		return &SubSelect{Select: CloneStatement(x.Select), Alias: x.Alias}
	case *ParenFrom:
		return &ParenFrom{From: cloneFrom(x.From), Joins: cloneJoins(x.Joins), Alias: x.Alias}
	}
	return nil
}

func cloneExprs(es []Expr) []Expr {
	if es == nil {
		return nil
	}
	out := make([]Expr, len(es))
	for i, e := range es {
		out[i] = Clone(e)
	}
	return out
}

// Clone returns a deep copy of an expression.
func Clone(e Expr) Expr {
	switch x := e.(type) {
	case nil:
		return nil
	case *Column:
		c := *x
		return &c
	case *Literal:
		l := *x
		return &l
	case *Star:
		s := *x
		return &s
	case *FuncCall:
		return &FuncCall{Name: x.Name, Args: cloneExprs(x.Args), Distinct: x.Distinct}
	case *Comparison:
		return &Comparison{Op: x.Op, Left: Clone(x.Left), Right: Clone(x.Right)}
	case *And:
		return &And{Left: Clone(x.Left), Right: Clone(x.Right)}
	case *Or:
		return &Or{Left: Clone(x.Left), Right: Clone(x.Right)}
	case *Binary:
		return &Binary{Op: x.Op, Left: Clone(x.Left), Right: Clone(x.Right)}
	case *Not:
		return &Not{Expr: Clone(x.Expr)}
	case *Paren:
		return &Paren{Expr: Clone(x.Expr)}
	case *Unary:
		return &Unary{Op: x.Op, Expr: Clone(x.Expr)}
	case *In:
		return &In{Expr: Clone(x.Expr), Not: x.Not, List: cloneExprs(x.List), Select: CloneStatement(x.Select)}
	case *Between:
		return &Between{Expr: Clone(x.Expr), Not: x.Not, Low: Clone(x.Low), High: Clone(x.High)}
	case *Like:
		return &Like{Expr: Clone(x.Expr), Not: x.Not, Pattern: Clone(x.Pattern)}
	case *IsNull:
		return &IsNull{Expr: Clone(x.Expr), Not: x.Not}
	case *Subquery:
		return &Subquery{Select: CloneStatement(x.Select)}
	case *Exists:
		return &Exists{Select: CloneStatement(x.Select)}
	case *Case:
		out := &Case{Operand: Clone(x.Operand), Else: Clone(x.Else)}
		for _, w := range x.Whens {
			out.Whens = append(out.Whens, &When{Cond: Clone(w.Cond), Result: Clone(w.Result)})
		}
		return out
	case *Cast:
		return &Cast{Expr: Clone(x.Expr), Type: x.Type}
	}
	return nil
}

// Equal reports whether two nodes are structurally identical.
func Equal(a, b Node) bool {
	return reflect.DeepEqual(a, b)
}
