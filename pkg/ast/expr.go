package ast

import "strings"

// Expr is an expression node.
type Expr interface {
	Node
	exprNode()
}

// Column is a (possibly qualified) column reference.
type Column struct {
	Table string
	Name  string
}

func (*Column) node()     {}
func (*Column) exprNode() {}

// FuncCall is a function or aggregate call. Name keeps its source spelling.
type FuncCall struct {
	Name     string
	Args     []Expr
	Distinct bool
}

func (*FuncCall) node()     {}
func (*FuncCall) exprNode() {}

// Is reports whether the call is named name, ignoring case.
func (f *FuncCall) Is(name string) bool {
	return strings.EqualFold(f.Name, name)
}

// CompareOp is a binary comparison operator.
type CompareOp string

// Comparison operators.
const (
	OpEq CompareOp = "="
	OpNe CompareOp = "<>"
	OpLt CompareOp = "<"
	OpLe CompareOp = "<="
	OpGt CompareOp = ">"
	OpGe CompareOp = ">="
)

// Comparison is left <op> right.
type Comparison struct {
	Op    CompareOp
	Left  Expr
	Right Expr
}

func (*Comparison) node()     {}
func (*Comparison) exprNode() {}

// And is left AND right.
type And struct {
	Left  Expr
	Right Expr
}

func (*And) node()     {}
func (*And) exprNode() {}

// Or is left OR right.
type Or struct {
	Left  Expr
	Right Expr
}

func (*Or) node()     {}
func (*Or) exprNode() {}

// LiteralKind is the kind of a literal value.
type LiteralKind int

// Literal kinds.
const (
	LiteralNumber LiteralKind = iota
	LiteralString
	LiteralBool
	LiteralNull
)

// Literal is a constant. Value holds the unquoted text for strings.
type Literal struct {
	Kind  LiteralKind
	Value string
}

func (*Literal) node()     {}
func (*Literal) exprNode() {}

// String returns a string literal.
func String(v string) *Literal { return &Literal{Kind: LiteralString, Value: v} }

// Number returns a numeric literal.
func Number(v string) *Literal { return &Literal{Kind: LiteralNumber, Value: v} }

// Not is NOT expr.
type Not struct {
	Expr Expr
}

func (*Not) node()     {}
func (*Not) exprNode() {}

// Paren is a parenthesized expression.
type Paren struct {
	Expr Expr
}

func (*Paren) node()     {}
func (*Paren) exprNode() {}

// BinaryOp is an arithmetic or concatenation operator.
type BinaryOp string

// Binary operators.
const (
	OpAdd    BinaryOp = "+"
	OpSub    BinaryOp = "-"
	OpMul    BinaryOp = "*"
	OpDiv    BinaryOp = "/"
	OpMod    BinaryOp = "%"
	OpConcat BinaryOp = "||"
)

// Binary is left <op> right for arithmetic and string concatenation.
type Binary struct {
	Op    BinaryOp
	Left  Expr
	Right Expr
}

func (*Binary) node()     {}
func (*Binary) exprNode() {}

// Unary is a signed expression: -expr or +expr.
type Unary struct {
	Op   BinaryOp // OpAdd or OpSub
	Expr Expr
}

func (*Unary) node()     {}
func (*Unary) exprNode() {}

// In is expr [NOT] IN (list) or expr [NOT] IN (subquery).
type In struct {
	Expr   Expr
	Not    bool
	List   []Expr
	Select Statement // set instead of List for subqueries
}

func (*In) node()     {}
func (*In) exprNode() {}

// Between is expr [NOT] BETWEEN low AND high.
type Between struct {
	Expr Expr
	Not  bool
	Low  Expr
	High Expr
}

func (*Between) node()     {}
func (*Between) exprNode() {}

// Like is expr [NOT] LIKE pattern.
type Like struct {
	Expr    Expr
	Not     bool
	Pattern Expr
}

func (*Like) node()     {}
func (*Like) exprNode() {}

// IsNull is expr IS [NOT] NULL.
type IsNull struct {
	Expr Expr
	Not  bool
}

func (*IsNull) node()     {}
func (*IsNull) exprNode() {}

// Subquery is a scalar subquery: (SELECT ...).
type Subquery struct {
	Select Statement
}

func (*Subquery) node()     {}
func (*Subquery) exprNode() {}

// Exists is EXISTS (SELECT ...).
type Exists struct {
	Select Statement
}

func (*Exists) node()     {}
func (*Exists) exprNode() {}

// When is one WHEN ... THEN ... branch.
type When struct {
	Cond   Expr
	Result Expr
}

// Case is a simple (Operand set) or searched CASE expression.
type Case struct {
	Operand Expr
	Whens   []*When
	Else    Expr
}

func (*Case) node()     {}
func (*Case) exprNode() {}

// Cast is CAST(expr AS type).
type Cast struct {
	Expr Expr
	Type string
}

func (*Cast) node()     {}
func (*Cast) exprNode() {}

// Star is * or table.* in a select list or as a function argument.
type Star struct {
	Table string
}

func (*Star) node()     {}
func (*Star) exprNode() {}

// ColumnOf returns the column of a bare column reference, or the column
// argument of a single-argument function call wrapping one.
func ColumnOf(e Expr) (*Column, bool) {
	switch x := e.(type) {
	case *Column:
		return x, true
	case *FuncCall:
		if len(x.Args) == 1 {
			c, ok := x.Args[0].(*Column)
			return c, ok
		}
	}
	return nil, false
}
