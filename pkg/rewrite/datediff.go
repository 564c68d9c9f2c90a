package rewrite

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/leapstack-labs/sqlrewrite/pkg/ast"
	"github.com/leapstack-labs/sqlrewrite/pkg/format"
	"github.com/leapstack-labs/sqlrewrite/pkg/parser"
)

const (
	dateDiffFunction = "datediff"
	dateLayout       = "2006-01-02"
)

// startOperators maps the operator of "datediff(...) <op> N" to the
// operator comparing the column with the start date.
var startOperators = map[ast.CompareOp]ast.CompareOp{
	ast.OpLe: ast.OpGe,
	ast.OpLt: ast.OpGt,
	ast.OpEq: ast.OpGe,
	ast.OpGe: ast.OpGe,
	ast.OpGt: ast.OpGt,
}

// mirrorOperators maps a start operator to the operator bounding the range
// at the reference date.
var mirrorOperators = map[ast.CompareOp]ast.CompareOp{
	ast.OpGt: ast.OpLt,
	ast.OpGe: ast.OpLe,
}

// dateReferences name the current date in the two-argument form.
var dateReferences = map[string]bool{
	"today":             true,
	"current_date":      true,
	"now":               true,
	"current_timestamp": true,
	"sysdate":           true,
}

// maxDateDiffAmount bounds the compared amount so date arithmetic cannot
// overflow.
var maxDateDiffAmount = decimal.NewFromInt(math.MaxInt32)

var errNotDateDiff = errors.New("not a datediff comparison")

// dateDiff is a recognized "datediff(...) <op> N" comparison.
type dateDiff struct {
	unit      string
	column    ast.Expr
	reference time.Time
	op        ast.CompareOp
	amount    decimal.Decimal
}

// replaceDateDiff rewrites datediff comparisons in the WHERE clause of
// every plain select reachable from sel.
func (r *Rewriter) replaceDateDiff(sel *ast.Select) {
	for _, s := range ast.PlainSelects(sel) {
		s.Where = ast.Rewrite(s.Where, func(e ast.Expr) (ast.Expr, bool) {
			cmp, ok := e.(*ast.Comparison)
			if !ok {
				return e, false
			}
			return r.splitDateDiff(cmp), true
		})
	}
}

// splitDateDiff returns the date range equivalent of cmp, or cmp itself
// when it is not a datediff comparison or the range cannot be built.
func (r *Rewriter) splitDateDiff(cmp *ast.Comparison) ast.Expr {
	call, ok := cmp.Left.(*ast.FuncCall)
	if !ok || !call.Is(dateDiffFunction) {
		return cmp
	}
	dd, err := r.parseDateDiff(call, cmp)
	if err != nil {
		r.logger.Warn("datediff filter left unchanged",
			slog.String("expr", format.Expr(cmp, r.dialect)),
			slog.Any("error", err))
		return cmp
	}
	out, err := dd.rangeCondition(r)
	if err != nil {
		r.logger.Warn("datediff filter left unchanged",
			slog.String("expr", format.Expr(cmp, r.dialect)),
			slog.Any("error", err))
		return cmp
	}
	return out
}

// parseDateDiff accepts datediff('unit', col, ref) and datediff(col, ref)
// where ref is a 'YYYY-MM-DD' literal or names the current date.
func (r *Rewriter) parseDateDiff(call *ast.FuncCall, cmp *ast.Comparison) (*dateDiff, error) {
	dd := &dateDiff{unit: "day"}

	args := call.Args
	switch len(args) {
	case 3:
		unit, ok := args[0].(*ast.Literal)
		if !ok || unit.Kind != ast.LiteralString {
			return nil, fmt.Errorf("%w: unit must be a string literal", errNotDateDiff)
		}
		dd.unit = strings.ToLower(unit.Value)
		args = args[1:]
	case 2:
	default:
		return nil, fmt.Errorf("%w: expected 2 or 3 arguments, got %d", errNotDateDiff, len(args))
	}

	if _, ok := args[0].(*ast.Column); !ok {
		return nil, fmt.Errorf("%w: date argument must be a column", errNotDateDiff)
	}
	dd.column = args[0]

	ref, err := r.resolveReference(args[1])
	if err != nil {
		return nil, err
	}
	dd.reference = ref

	if _, ok := startOperators[cmp.Op]; !ok {
		return nil, fmt.Errorf("%w: unsupported operator %s", errNotDateDiff, cmp.Op)
	}
	dd.op = cmp.Op

	amount, err := literalNumber(cmp.Right)
	if err != nil {
		return nil, err
	}
	dd.amount = amount
	return dd, nil
}

func (r *Rewriter) resolveReference(e ast.Expr) (time.Time, error) {
	switch x := e.(type) {
	case *ast.Literal:
		if x.Kind == ast.LiteralString {
			t, err := time.Parse(dateLayout, x.Value)
			if err != nil {
				return time.Time{}, fmt.Errorf("reference date %q: %w", x.Value, err)
			}
			return t, nil
		}
	case *ast.Column:
		if x.Table == "" && dateReferences[strings.ToLower(x.Name)] {
			return r.today(), nil
		}
	case *ast.FuncCall:
		if len(x.Args) == 0 && dateReferences[strings.ToLower(x.Name)] {
			return r.today(), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: unsupported reference date %s", errNotDateDiff, format.Expr(e, nil))
}

func (r *Rewriter) today() time.Time {
	y, m, d := r.now().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// literalNumber reads a numeric literal, optionally signed or quoted.
func literalNumber(e ast.Expr) (decimal.Decimal, error) {
	neg := false
	if u, ok := e.(*ast.Unary); ok {
		neg = u.Op == ast.OpSub
		e = u.Expr
	}
	lit, ok := e.(*ast.Literal)
	if !ok || (lit.Kind != ast.LiteralNumber && lit.Kind != ast.LiteralString) {
		return decimal.Decimal{}, fmt.Errorf("%w: datediff must be compared with a number", errNotDateDiff)
	}
	d, err := decimal.NewFromString(lit.Value)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("datediff amount %q: %w", lit.Value, err)
	}
	if neg {
		d = d.Neg()
	}
	return d, nil
}

// startDate moves the reference date back by the compared amount.
func (dd *dateDiff) startDate() (time.Time, error) {
	half := decimal.NewFromFloat(0.5)
	if dd.unit == "year" && dd.amount.Equal(half) {
		return dd.reference.AddDate(0, -6, 0), nil
	}
	if !dd.amount.IsInteger() {
		return time.Time{}, fmt.Errorf("datediff amount %s must be an integer", dd.amount)
	}
	if dd.amount.Abs().GreaterThan(maxDateDiffAmount) {
		return time.Time{}, fmt.Errorf("datediff amount %s is out of range", dd.amount)
	}
	n := int(dd.amount.IntPart())
	var start time.Time
	switch dd.unit {
	case "day":
		start = dd.reference.AddDate(0, 0, -n)
	case "week":
		start = dd.reference.AddDate(0, 0, -7*n)
	case "month":
		start = dd.reference.AddDate(0, -n, 0)
	case "year":
		start = dd.reference.AddDate(-n, 0, 0)
	default:
		return time.Time{}, fmt.Errorf("%w: unsupported unit %q", errNotDateDiff, dd.unit)
	}
	if y := start.Year(); y < 1 || y > 9999 {
		return time.Time{}, fmt.Errorf("datediff amount %s moves the date out of range", dd.amount)
	}
	return start, nil
}

// rangeCondition builds the replacement condition as text and re-parses it.
// A lower bound alone is produced for > and >=; other operators also bound
// the range at the reference date.
func (dd *dateDiff) rangeCondition(r *Rewriter) (ast.Expr, error) {
	start, err := dd.startDate()
	if err != nil {
		return nil, err
	}
	column := format.Expr(dd.column, r.dialect)
	startOp := startOperators[dd.op]
	lower := fmt.Sprintf("%s %s '%s'", column, startOp, start.Format(dateLayout))

	if dd.op == ast.OpGt || dd.op == ast.OpGe {
		return parser.ParseCondition(lower)
	}
	upper := fmt.Sprintf("%s %s '%s'", column, mirrorOperators[startOp], dd.reference.Format(dateLayout))
	return parser.ParseCondition("(" + lower + " AND " + upper + ")")
}
