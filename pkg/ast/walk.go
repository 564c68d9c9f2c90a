package ast

// Walk traverses a tree depth-first and calls fn for each node, including
// nodes inside subqueries. If fn returns false, the children of that node
// are skipped.
func Walk(node Node, fn func(Node) bool) {
	if node == nil || !fn(node) {
		return
	}
	switch n := node.(type) {
	case *Select:
		for _, item := range n.Items {
			Walk(item, fn)
		}
		walkFrom(n.From, fn)
		for _, j := range n.Joins {
			Walk(j, fn)
		}
		walkExpr(n.Where, fn)
		for _, g := range n.GroupBy {
			walkExpr(g, fn)
		}
		walkExpr(n.Having, fn)
		for _, o := range n.OrderBy {
			Walk(o, fn)
		}
		walkExpr(n.Limit, fn)
		walkExpr(n.Offset, fn)
	case *SetOp:
		for _, s := range n.Selects {
			Walk(s, fn)
		}
		for _, o := range n.OrderBy {
			Walk(o, fn)
		}
		walkExpr(n.Limit, fn)
		walkExpr(n.Offset, fn)
	case *SelectItem:
		walkExpr(n.Expr, fn)
	case *OrderItem:
		walkExpr(n.Expr, fn)
	case *Join:
		walkFrom(n.Right, fn)
		walkExpr(n.On, fn)
	case *SubSelect:
		walkStmt(n.Select, fn)
	case *ParenFrom:
		walkFrom(n.From, fn)
		for _, j := range n.Joins {
			Walk(j, fn)
		}
	case *Table, *Column, *Literal, *Star:
		// leaves
	case *FuncCall:
		for _, a := range n.Args {
			walkExpr(a, fn)
		}
	case *Comparison:
		walkExpr(n.Left, fn)
		walkExpr(n.Right, fn)
	case *And:
		walkExpr(n.Left, fn)
		walkExpr(n.Right, fn)
	case *Or:
		walkExpr(n.Left, fn)
		walkExpr(n.Right, fn)
	case *Binary:
		walkExpr(n.Left, fn)
		walkExpr(n.Right, fn)
	case *Not:
		walkExpr(n.Expr, fn)
	case *Paren:
		walkExpr(n.Expr, fn)
	case *Unary:
		walkExpr(n.Expr, fn)
	case *In:
		walkExpr(n.Expr, fn)
		for _, e := range n.List {
			walkExpr(e, fn)
		}
		walkStmt(n.Select, fn)
	case *Between:
		walkExpr(n.Expr, fn)
		walkExpr(n.Low, fn)
		walkExpr(n.High, fn)
	case *Like:
		walkExpr(n.Expr, fn)
		walkExpr(n.Pattern, fn)
	case *IsNull:
		walkExpr(n.Expr, fn)
	case *Subquery:
		walkStmt(n.Select, fn)
	case *Exists:
		walkStmt(n.Select, fn)
	case *Case:
		walkExpr(n.Operand, fn)
		for _, w := range n.Whens {
			walkExpr(w.Cond, fn)
			walkExpr(w.Result, fn)
		}
		walkExpr(n.Else, fn)
	case *Cast:
		walkExpr(n.Expr, fn)
	}
}

// Inspect calls fn for every node under node. It is Walk without pruning.
func Inspect(node Node, fn func(Node)) {
	Walk(node, func(n Node) bool {
		fn(n)
		return true
	})
}

func walkExpr(e Expr, fn func(Node) bool) {
	if e != nil {
		Walk(e, fn)
	}
}

func walkStmt(s Statement, fn func(Node) bool) {
	if s != nil {
		Walk(s, fn)
	}
}

func walkFrom(f FromItem, fn func(Node) bool) {
	if f != nil {
		Walk(f, fn)
	}
}

// Rewrite rebuilds an expression tree. fn is called for e before its
// children; the returned expression takes e's place. When fn reports skip,
// the children of the returned expression are not visited. Subquery
// statements are not entered.
func Rewrite(e Expr, fn func(Expr) (Expr, bool)) Expr {
	if e == nil {
		return nil
	}
	e, skip := fn(e)
	if skip || e == nil {
		return e
	}
	switch n := e.(type) {
	case *FuncCall:
		for i, a := range n.Args {
			n.Args[i] = Rewrite(a, fn)
		}
	case *Comparison:
		n.Left = Rewrite(n.Left, fn)
		n.Right = Rewrite(n.Right, fn)
	case *And:
		n.Left = Rewrite(n.Left, fn)
		n.Right = Rewrite(n.Right, fn)
	case *Or:
		n.Left = Rewrite(n.Left, fn)
		n.Right = Rewrite(n.Right, fn)
	case *Binary:
		n.Left = Rewrite(n.Left, fn)
		n.Right = Rewrite(n.Right, fn)
	case *Not:
		n.Expr = Rewrite(n.Expr, fn)
	case *Paren:
		n.Expr = Rewrite(n.Expr, fn)
	case *Unary:
		n.Expr = Rewrite(n.Expr, fn)
	case *In:
		n.Expr = Rewrite(n.Expr, fn)
		for i, x := range n.List {
			n.List[i] = Rewrite(x, fn)
		}
	case *Between:
		n.Expr = Rewrite(n.Expr, fn)
		n.Low = Rewrite(n.Low, fn)
		n.High = Rewrite(n.High, fn)
	case *Like:
		n.Expr = Rewrite(n.Expr, fn)
		n.Pattern = Rewrite(n.Pattern, fn)
	case *IsNull:
		n.Expr = Rewrite(n.Expr, fn)
	case *Case:
		n.Operand = Rewrite(n.Operand, fn)
		for _, w := range n.Whens {
			w.Cond = Rewrite(w.Cond, fn)
			w.Result = Rewrite(w.Result, fn)
		}
		n.Else = Rewrite(n.Else, fn)
	case *Cast:
		n.Expr = Rewrite(n.Expr, fn)
	}
	return e
}

// Conditions flattens AND/OR trees into their terminal conditions, left to
// right. Parentheses are looked through.
func Conditions(e Expr) []Expr {
	var out []Expr
	var visit func(Expr)
	visit = func(e Expr) {
		switch x := e.(type) {
		case nil:
		case *And:
			visit(x.Left)
			visit(x.Right)
		case *Or:
			visit(x.Left)
			visit(x.Right)
		case *Paren:
			visit(x.Expr)
		default:
			out = append(out, x)
		}
	}
	visit(e)
	return out
}

// PlainSelects returns every plain select reachable from stmt through set
// operation branches and FROM/JOIN derived tables, outermost first.
// Subqueries inside expressions are not included.
func PlainSelects(stmt Statement) []*Select {
	var out []*Select
	var visitStmt func(Statement)
	var visitFrom func(FromItem)
	visitFrom = func(f FromItem) {
		switch x := f.(type) {
		case *SubSelect:
			visitStmt(x.Select)
		case *ParenFrom:
			visitFrom(x.From)
			for _, j := range x.Joins {
				visitFrom(j.Right)
			}
		}
	}
	visitStmt = func(s Statement) {
		for _, sel := range Selects(s) {
			out = append(out, sel)
			visitFrom(sel.From)
			for _, j := range sel.Joins {
				visitFrom(j.Right)
			}
		}
	}
	visitStmt(stmt)
	return out
}
