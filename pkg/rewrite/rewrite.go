// Package rewrite transforms generic SQL produced by the semantic layer into
// schema-correct SQL.
//
// Every operation comes in two forms. The text form (ReplaceFields,
// ReplaceTable, ...) parses, rewrites and renders; SQL that does not parse
// or has the wrong shape is returned unchanged, so callers may pass
// arbitrary SQL through. ApplyStatement works on a parsed tree and reports
// those cases as errors.
//
// A Rewriter holds configuration only and is safe for concurrent use; every
// call owns the tree it rewrites.
package rewrite

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/leapstack-labs/sqlrewrite/pkg/ast"
	"github.com/leapstack-labs/sqlrewrite/pkg/dialect"
	"github.com/leapstack-labs/sqlrewrite/pkg/format"
	"github.com/leapstack-labs/sqlrewrite/pkg/parser"
)

// ErrUnsupported is returned when a directive does not apply to the shape of
// the statement, such as a plain-select rewrite on a UNION.
var ErrUnsupported = errors.New("rewrite not supported for statement")

// DefaultMinSimilarity is the similarity a key must reach to match a word
// in non-exact mode when neither contains the other.
const DefaultMinSimilarity = 0.6

// Rewriter applies rewrite directives to SQL.
type Rewriter struct {
	logger        *slog.Logger
	dialect       *dialect.Dialect
	now           func() time.Time
	minSimilarity float64
}

// Option configures a Rewriter.
type Option func(*Rewriter)

// WithLogger sets the logger for recoverable rewrite failures.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Rewriter) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithDialect sets the dialect used to render output SQL.
func WithDialect(d *dialect.Dialect) Option {
	return func(r *Rewriter) {
		if d != nil {
			r.dialect = d
		}
	}
}

// WithClock sets the clock that resolves today in date-diff filters.
func WithClock(now func() time.Time) Option {
	return func(r *Rewriter) {
		if now != nil {
			r.now = now
		}
	}
}

// WithMinSimilarity sets the threshold for non-exact matching.
func WithMinSimilarity(v float64) Option {
	return func(r *Rewriter) {
		r.minSimilarity = v
	}
}

// New creates a Rewriter.
func New(opts ...Option) *Rewriter {
	r := &Rewriter{
		logger:        slog.New(slog.DiscardHandler),
		dialect:       dialect.Default(),
		now:           time.Now,
		minSimilarity: DefaultMinSimilarity,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Dialect returns the output dialect.
func (r *Rewriter) Dialect() *dialect.Dialect {
	return r.dialect
}

// Rewrite parses sql, applies d and renders the result. Unlike Apply it
// reports parse failures and unsupported statement shapes.
func (r *Rewriter) Rewrite(sql string, d Directive) (string, error) {
	stmt, err := parser.Parse(sql)
	if err != nil {
		return sql, err
	}
	stmt, err = r.ApplyStatement(stmt, d)
	if err != nil {
		return sql, err
	}
	return format.SQL(stmt, r.dialect), nil
}

// Apply parses sql, applies d and renders the result. On any failure the
// input is returned unchanged.
func (r *Rewriter) Apply(sql string, d Directive) string {
	out, err := r.Rewrite(sql, d)
	if err != nil {
		r.logger.Debug("sql left unchanged",
			slog.String("kind", string(d.Kind)),
			slog.String("sql", sql),
			slog.Any("error", err))
		return sql
	}
	return out
}

// ApplyStatement applies d to stmt in place and returns it.
func (r *Rewriter) ApplyStatement(stmt ast.Statement, d Directive) (ast.Statement, error) {
	if stmt == nil {
		return nil, fmt.Errorf("%w: nil statement", ErrUnsupported)
	}
	switch d.Kind {
	case KindFields:
		r.replaceFields(stmt, d.Fields, d.Exact)
		return stmt, nil
	case KindExpression:
		r.replaceByExpression(stmt, d.Fields)
		return stmt, nil
	case KindTable:
		replaceTable(stmt, d.Table)
		return stmt, nil
	}

	sel, ok := stmt.(*ast.Select)
	if !ok {
		return stmt, fmt.Errorf("%w: %s needs a plain select", ErrUnsupported, d.Kind)
	}
	switch d.Kind {
	case KindSelectFields:
		replaceSelectFields(sel, d.Fields)
	case KindAgg:
		replaceAggFields(sel, d.Aggs)
	case KindFunction:
		replaceFunctions(sel, d.Functions, d.Callbacks)
	case KindDateDiff:
		r.replaceDateDiff(sel)
	case KindValue:
		r.replaceValues(sel, d.Values, d.Exact)
	case KindHavingValue:
		r.replaceHavingValues(sel, d.Values)
	case KindFieldByValue:
		replaceFieldNameByValue(sel, d.FieldsByValue)
	case KindAlias:
		replaceAlias(sel)
	default:
		return stmt, fmt.Errorf("%w: unknown kind %q", ErrUnsupported, d.Kind)
	}
	return stmt, nil
}

// ReplaceSelectFields renames columns of the select list of a plain select.
// A bare column or the column argument of a single-argument function is
// renamed; an explicit alias follows the new name.
func (r *Rewriter) ReplaceSelectFields(sql string, fields map[string]string) string {
	return r.Apply(sql, Directive{Kind: KindSelectFields, Fields: fields})
}

// ReplaceAggFields rewrites aggregate calls of the select list whose column
// argument is in aggs: the function becomes the target operator and the
// argument the target field.
func (r *Rewriter) ReplaceAggFields(sql string, aggs map[string]AggTarget) string {
	return r.Apply(sql, Directive{Kind: KindAgg, Aggs: aggs})
}

// ReplaceFields renames columns in every clause of every select, including
// set operation branches, derived tables and joined sub-selects.
func (r *Rewriter) ReplaceFields(sql string, fields map[string]string, exact bool) string {
	return r.Apply(sql, Directive{Kind: KindFields, Fields: fields, Exact: exact})
}

// ReplaceFunction renames function calls. callbacks, keyed by the new
// function name, may rewrite the arguments. It may be nil.
func (r *Rewriter) ReplaceFunction(sql string, functions map[string]string, callbacks map[string]FunctionCallback) string {
	return r.Apply(sql, Directive{Kind: KindFunction, Functions: functions, Callbacks: callbacks})
}

// ReplaceDateDiff turns datediff comparisons in WHERE into date range
// filters.
func (r *Rewriter) ReplaceDateDiff(sql string) string {
	return r.Apply(sql, Directive{Kind: KindDateDiff})
}

// ReplaceTable points every select at table. An empty table leaves sql
// unchanged.
func (r *Rewriter) ReplaceTable(sql, table string) string {
	if table == "" {
		return sql
	}
	return r.Apply(sql, Directive{Kind: KindTable, Table: table})
}

// ReplaceValue substitutes filter values in WHERE.
func (r *Rewriter) ReplaceValue(sql string, values map[string]map[string]string, exact bool) string {
	return r.Apply(sql, Directive{Kind: KindValue, Values: values, Exact: exact})
}

// ReplaceHavingValue substitutes filter values in HAVING, always in
// non-exact mode.
func (r *Rewriter) ReplaceHavingValue(sql string, values map[string]map[string]string) string {
	return r.Apply(sql, Directive{Kind: KindHavingValue, Values: values})
}

// ReplaceFieldNameByValue moves equality filters to the field that owns the
// compared value.
func (r *Rewriter) ReplaceFieldNameByValue(sql string, fieldsByValue map[string][]string) string {
	return r.Apply(sql, Directive{Kind: KindFieldByValue, FieldsByValue: fieldsByValue})
}

// ReplaceAlias resolves references to function aliases of the select list
// in WHERE, GROUP BY, HAVING and ORDER BY.
func (r *Rewriter) ReplaceAlias(sql string) string {
	return r.Apply(sql, Directive{Kind: KindAlias})
}

// ReplaceSQLByExpression substitutes field references with expressions.
func (r *Rewriter) ReplaceSQLByExpression(sql string, exprs map[string]string) string {
	return r.Apply(sql, Directive{Kind: KindExpression, Fields: exprs})
}
