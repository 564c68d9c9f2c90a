package rewrite

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/sqlrewrite/pkg/ast"
)

// Kind names a rewrite operation.
type Kind string

// Rewrite kinds.
const (
	KindFields       Kind = "fields"
	KindSelectFields Kind = "select_fields"
	KindAgg          Kind = "agg"
	KindFunction     Kind = "function"
	KindTable        Kind = "table"
	KindValue        Kind = "value"
	KindHavingValue  Kind = "having_value"
	KindFieldByValue Kind = "field_by_value"
	KindAlias        Kind = "alias"
	KindExpression   Kind = "expression"
	KindDateDiff     Kind = "date_diff"
)

// Kinds lists every rewrite kind.
var Kinds = []Kind{
	KindFields, KindSelectFields, KindAgg, KindFunction, KindTable, KindValue,
	KindHavingValue, KindFieldByValue, KindAlias, KindExpression, KindDateDiff,
}

// ParseKind returns the kind named s.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Kinds {
		if k == known {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown rewrite kind %q", s)
}

// FunctionCallback transforms the arguments of a renamed function call.
type FunctionCallback func(args []ast.Expr) []ast.Expr

// Directive is one rewrite request. Kind selects the operation and which
// payload fields are read.
type Directive struct {
	Kind Kind

	// Exact disables similarity matching for fields and value kinds.
	Exact bool

	// Fields maps old biz names to new ones (fields, select_fields) or
	// field names to replacement expression text (expression).
	Fields map[string]string

	// Aggs maps a field to its new field and aggregate (agg).
	Aggs map[string]AggTarget

	// Functions maps function names to new names (function). Callbacks are
	// keyed by the new name.
	Functions map[string]string
	Callbacks map[string]FunctionCallback

	// Table is the new table name (table).
	Table string

	// Values maps field → old value → new value (value, having_value).
	Values map[string]map[string]string

	// FieldsByValue maps a value to the fields that own it (field_by_value).
	FieldsByValue map[string][]string
}

// AggOperator is an aggregation operator of the semantic layer.
type AggOperator int

// Aggregation operators.
const (
	AggUnknown AggOperator = iota
	AggSum
	AggAvg
	AggMax
	AggMin
	AggCount
	AggCountDistinct
	AggDistinct
	AggTopN
	AggPercentile
)

var aggNames = map[AggOperator]string{
	AggUnknown:       "UNKNOWN",
	AggSum:           "SUM",
	AggAvg:           "AVG",
	AggMax:           "MAX",
	AggMin:           "MIN",
	AggCount:         "COUNT",
	AggCountDistinct: "COUNT_DISTINCT",
	AggDistinct:      "DISTINCT",
	AggTopN:          "TOPN",
	AggPercentile:    "PERCENTILE",
}

func (a AggOperator) String() string {
	if name, ok := aggNames[a]; ok {
		return name
	}
	return aggNames[AggUnknown]
}

// IsCountDistinct reports whether the operator counts distinct values.
func (a AggOperator) IsCountDistinct() bool {
	return a == AggCountDistinct
}

// ParseAggOperator parses an operator name case-insensitively. "count
// distinct", "count_distinct" and "countdistinct" all name AggCountDistinct.
// Unrecognized names yield AggUnknown.
func ParseAggOperator(s string) AggOperator {
	norm := strings.ToUpper(strings.TrimSpace(s))
	norm = strings.Join(strings.Fields(norm), "_")
	if norm == "COUNTDISTINCT" {
		return AggCountDistinct
	}
	for op, name := range aggNames {
		if name == norm {
			return op
		}
	}
	return AggUnknown
}

// MarshalText implements encoding.TextMarshaler.
func (a AggOperator) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *AggOperator) UnmarshalText(text []byte) error {
	*a = ParseAggOperator(string(text))
	return nil
}

// AggTarget is the replacement of an aggregated field.
type AggTarget struct {
	Field    string      `mapstructure:"field" yaml:"field"`
	Operator AggOperator `mapstructure:"operator" yaml:"operator"`
}

// aggKeySep separates the aggregate from the field in upstream keys such as
// "sum__amount".
const aggKeySep = "__"

// DecodeAggKey splits an "agg__field" key into its aggregate and field.
// It reports false when the key does not follow the convention.
func DecodeAggKey(key string) (agg, field string, ok bool) {
	agg, field, found := strings.Cut(key, aggKeySep)
	if !found || agg == "" || field == "" {
		return "", "", false
	}
	return agg, field, true
}

// DecodeAggFieldMap builds an aggregation map from "agg__field" → new field
// entries. The result is keyed by the original field; keys that do not
// follow the convention are skipped.
func DecodeAggFieldMap(m map[string]string) map[string]AggTarget {
	out := make(map[string]AggTarget, len(m))
	for key, newField := range m {
		agg, field, ok := DecodeAggKey(key)
		if !ok {
			continue
		}
		out[field] = AggTarget{Field: newField, Operator: ParseAggOperator(agg)}
	}
	return out
}
