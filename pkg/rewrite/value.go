package rewrite

import (
	"slices"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/leapstack-labs/sqlrewrite/pkg/ast"
)

// valueReplacer substitutes literal values compared with known fields.
type valueReplacer struct {
	r      *Rewriter
	values map[string]map[string]string
	exact  bool
}

// replaceValues substitutes values in the WHERE clause of every plain
// select reachable from sel.
func (r *Rewriter) replaceValues(sel *ast.Select, values map[string]map[string]string, exact bool) {
	if len(values) == 0 {
		return
	}
	vr := &valueReplacer{r: r, values: values, exact: exact}
	for _, s := range ast.PlainSelects(sel) {
		s.Where = vr.apply(s.Where)
	}
}

// replaceHavingValues substitutes values in the HAVING clause of sel in
// non-exact mode.
func (r *Rewriter) replaceHavingValues(sel *ast.Select, values map[string]map[string]string) {
	if len(values) == 0 {
		return
	}
	vr := &valueReplacer{r: r, values: values}
	sel.Having = vr.apply(sel.Having)
}

func (vr *valueReplacer) apply(e ast.Expr) ast.Expr {
	return ast.Rewrite(e, func(e ast.Expr) (ast.Expr, bool) {
		switch x := e.(type) {
		case *ast.Comparison:
			vr.comparison(x)
			return x, true
		case *ast.In:
			vr.in(x)
			return x, true
		case *ast.Like:
			vr.like(x)
			return x, true
		}
		return e, false
	})
}

// valueMap returns the value map of the field compared by left: a column or
// a single-argument function of a column.
func (vr *valueReplacer) valueMap(left ast.Expr) map[string]string {
	col, ok := ast.ColumnOf(left)
	if !ok {
		return nil
	}
	return vr.values[col.Name]
}

func (vr *valueReplacer) comparison(cmp *ast.Comparison) {
	m := vr.valueMap(cmp.Left)
	if m == nil {
		return
	}
	lit, ok := cmp.Right.(*ast.Literal)
	if !ok {
		return
	}
	switch lit.Kind {
	case ast.LiteralString:
		if v, found := vr.r.lookup(lit.Value, m, vr.exact); found {
			lit.Value = v
		}
	case ast.LiteralNumber:
		if v := m[lit.Value]; v != "" {
			cmp.Right = typedLiteral(v)
		}
	}
}

// in replaces the string members of an IN list by exact lookup.
func (vr *valueReplacer) in(in *ast.In) {
	if _, ok := in.Expr.(*ast.Column); !ok {
		return
	}
	m := vr.valueMap(in.Expr)
	if m == nil {
		return
	}
	for _, item := range in.List {
		if lit, ok := item.(*ast.Literal); ok && lit.Kind == ast.LiteralString {
			if v := m[lit.Value]; v != "" {
				lit.Value = v
			}
		}
	}
}

// like replaces the value inside a LIKE pattern, keeping its wildcards.
func (vr *valueReplacer) like(like *ast.Like) {
	m := vr.valueMap(like.Expr)
	if m == nil {
		return
	}
	lit, ok := like.Pattern.(*ast.Literal)
	if !ok || lit.Kind != ast.LiteralString {
		return
	}
	core := strings.Trim(lit.Value, "%")
	if core == "" {
		return
	}
	if v, found := vr.r.lookup(core, m, vr.exact); found {
		lit.Value = strings.Replace(lit.Value, core, v, 1)
	}
}

// typedLiteral returns a number literal for numeric text and a string
// literal otherwise.
func typedLiteral(v string) *ast.Literal {
	if _, err := decimal.NewFromString(v); err == nil {
		return ast.Number(v)
	}
	return ast.String(v)
}

// replaceFieldNameByValue renames the column of "col = 'value'" filters to
// the first field owning the value when col is not among its owners.
func replaceFieldNameByValue(sel *ast.Select, fieldsByValue map[string][]string) {
	if len(fieldsByValue) == 0 {
		return
	}
	for _, s := range ast.PlainSelects(sel) {
		s.Where = ast.Rewrite(s.Where, func(e ast.Expr) (ast.Expr, bool) {
			cmp, ok := e.(*ast.Comparison)
			if !ok {
				return e, false
			}
			if cmp.Op != ast.OpEq {
				return e, true
			}
			col, ok := cmp.Left.(*ast.Column)
			if !ok {
				return e, true
			}
			lit, ok := cmp.Right.(*ast.Literal)
			if !ok || lit.Kind != ast.LiteralString {
				return e, true
			}
			owners := fieldsByValue[lit.Value]
			if len(owners) > 0 && !slices.Contains(owners, col.Name) {
				col.Name = owners[0]
			}
			return e, true
		})
	}
}
