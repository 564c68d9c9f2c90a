// Package ast defines the query tree produced by the parser and rewritten
// by the rewrite package.
//
// The node sets are closed: every Statement, FromItem and Expr variant is
// declared in this package and sealed through unexported marker methods, so
// a type switch over them is exhaustive.
package ast

// Node is implemented by every tree node.
type Node interface {
	node()
}

// Statement is a query statement: *Select or *SetOp.
type Statement interface {
	Node
	stmtNode()
}

// FromItem is a FROM clause source: *Table, *SubSelect or *ParenFrom.
type FromItem interface {
	Node
	fromNode()
}

// ---------- Statements ----------

// Select is a plain SELECT statement.
type Select struct {
	Distinct bool
	Items    []*SelectItem
	From     FromItem // nil for SELECT without FROM
	Joins    []*Join
	Where    Expr
	GroupBy  []Expr
	Having   Expr
	OrderBy  []*OrderItem
	Limit    Expr
	Offset   Expr
}

func (*Select) node()     {}
func (*Select) stmtNode() {}

// SetOpKind is the kind of a set operation.
type SetOpKind int

// Set operation kinds.
const (
	Union SetOpKind = iota
	Intersect
	Except
)

func (k SetOpKind) String() string {
	switch k {
	case Intersect:
		return "INTERSECT"
	case Except:
		return "EXCEPT"
	default:
		return "UNION"
	}
}

// SetOperator joins two adjacent branches of a SetOp.
type SetOperator struct {
	Kind SetOpKind
	All  bool
}

// SetOp is a compound statement: branches combined by UNION, INTERSECT or
// EXCEPT with an optional set-level ORDER BY / LIMIT / OFFSET.
type SetOp struct {
	Selects []*Select
	Ops     []SetOperator // len(Ops) == len(Selects)-1
	OrderBy []*OrderItem
	Limit   Expr
	Offset  Expr
}

func (*SetOp) node()     {}
func (*SetOp) stmtNode() {}

// Selects returns the plain selects of a statement in source order: the
// statement itself for *Select, every branch for *SetOp.
func Selects(stmt Statement) []*Select {
	switch s := stmt.(type) {
	case *Select:
		return []*Select{s}
	case *SetOp:
		return s.Selects
	}
	return nil
}

// SelectItem is one projection of the select list.
type SelectItem struct {
	Expr  Expr
	Alias string
}

func (*SelectItem) node() {}

// OrderItem is one ORDER BY element.
type OrderItem struct {
	Expr Expr
	Desc bool
	// Explicit is set when the direction keyword was written out, so ASC
	// round-trips.
	Explicit bool
}

func (*OrderItem) node() {}

// ---------- FROM ----------

// Table is a (possibly schema-qualified) table reference.
type Table struct {
	Schema string
	Name   string
	Alias  string
}

func (*Table) node()     {}
func (*Table) fromNode() {}

// SubSelect is a derived table: (SELECT ...) alias.
type SubSelect struct {
	Select Statement
	Alias  string
}

func (*SubSelect) node()     {}
func (*SubSelect) fromNode() {}

// ParenFrom is a parenthesized join tree: (a JOIN b ON ...) alias.
type ParenFrom struct {
	From  FromItem
	Joins []*Join
	Alias string
}

func (*ParenFrom) node()     {}
func (*ParenFrom) fromNode() {}

// JoinKind is the kind of a join.
type JoinKind int

// Join kinds.
const (
	JoinPlain JoinKind = iota // JOIN
	JoinInner
	JoinLeft
	JoinRight
	JoinFull
	JoinCross
	JoinComma // FROM a, b
)

func (k JoinKind) String() string {
	switch k {
	case JoinInner:
		return "INNER JOIN"
	case JoinLeft:
		return "LEFT JOIN"
	case JoinRight:
		return "RIGHT JOIN"
	case JoinFull:
		return "FULL JOIN"
	case JoinCross:
		return "CROSS JOIN"
	case JoinComma:
		return ","
	default:
		return "JOIN"
	}
}

// Join is one JOIN clause attached to a select or a ParenFrom.
type Join struct {
	Kind  JoinKind
	Right FromItem
	On    Expr
	Using []string
}

func (*Join) node() {}
