package schema

import (
	"fmt"
	"strings"
)

// ElementType is the kind of a schema element.
type ElementType int

// Element types.
const (
	TypeUnknown ElementType = iota
	TypeMetric
	TypeDimension
	TypeEntity
	TypeValue
	TypeTerm
	TypeDataSet
	TypeID
)

var elementTypeNames = map[ElementType]string{
	TypeUnknown:   "UNKNOWN",
	TypeMetric:    "METRIC",
	TypeDimension: "DIMENSION",
	TypeEntity:    "ENTITY",
	TypeValue:     "VALUE",
	TypeTerm:      "TERM",
	TypeDataSet:   "DATASET",
	TypeID:        "ID",
}

// String returns the upper-case name of the type.
func (t ElementType) String() string {
	if name, ok := elementTypeNames[t]; ok {
		return name
	}
	return elementTypeNames[TypeUnknown]
}

// ParseElementType converts a name to an ElementType, case-insensitively.
func ParseElementType(s string) (ElementType, error) {
	norm := strings.ToUpper(strings.TrimSpace(s))
	for t, name := range elementTypeNames {
		if name == norm && t != TypeUnknown {
			return t, nil
		}
	}
	return TypeUnknown, fmt.Errorf("unknown element type %q", s)
}

// Protected reports whether filters never remove elements of this type.
func (t ElementType) Protected() bool {
	return t == TypeEntity || t == TypeDataSet || t == TypeID
}

// MarshalText implements encoding.TextMarshaler.
func (t ElementType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *ElementType) UnmarshalText(text []byte) error {
	v, err := ParseElementType(string(text))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// QueryDataType selects which matches survive filtering.
type QueryDataType int

// Query data types.
const (
	QueryAll QueryDataType = iota
	QueryTag
	QueryMetric
	QueryDimension
)

var queryDataTypeNames = map[QueryDataType]string{
	QueryAll:       "ALL",
	QueryTag:       "TAG",
	QueryMetric:    "METRIC",
	QueryDimension: "DIMENSION",
}

func (q QueryDataType) String() string {
	if name, ok := queryDataTypeNames[q]; ok {
		return name
	}
	return "ALL"
}

// ParseQueryDataType converts a name to a QueryDataType. The empty string
// is QueryAll.
func ParseQueryDataType(s string) (QueryDataType, error) {
	norm := strings.ToUpper(strings.TrimSpace(s))
	if norm == "" {
		return QueryAll, nil
	}
	for q, name := range queryDataTypeNames {
		if name == norm {
			return q, nil
		}
	}
	return QueryAll, fmt.Errorf("unknown query data type %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (q QueryDataType) MarshalText() ([]byte, error) {
	return []byte(q.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (q *QueryDataType) UnmarshalText(text []byte) error {
	v, err := ParseQueryDataType(string(text))
	if err != nil {
		return err
	}
	*q = v
	return nil
}

// Element is a metric, dimension, value or other named entity of a
// dataset's schema.
type Element struct {
	ID        int64       `json:"id" yaml:"id"`
	DataSetID int64       `json:"data_set_id" yaml:"data_set_id"`
	Type      ElementType `json:"type" yaml:"type"`
	BizName   string      `json:"biz_name,omitempty" yaml:"biz_name,omitempty"`
	Name      string      `json:"name" yaml:"name"`
	Aliases   []string    `json:"aliases,omitempty" yaml:"aliases,omitempty"`
	IsTag     bool        `json:"is_tag,omitempty" yaml:"is_tag,omitempty"`
}

// ElementKey identifies an element regardless of its display fields.
type ElementKey struct {
	Type ElementType
	ID   int64
}

// Key returns the identity of e.
func (e Element) Key() ElementKey {
	return ElementKey{Type: e.Type, ID: e.ID}
}

// AliasesFor returns the aliases of e exposed to matching. A VALUE element
// only exposes aliases containing its own name; other types expose all of
// them.
func AliasesFor(e Element) []string {
	if e.Type != TypeValue || e.Name == "" || len(e.Aliases) == 0 {
		return e.Aliases
	}
	out := make([]string, 0, len(e.Aliases))
	for _, alias := range e.Aliases {
		if strings.Contains(alias, e.Name) {
			out = append(out, alias)
		}
	}
	return out
}

// DistinctElements removes elements that repeat an earlier element's ID,
// keeping the first. A list of TERM elements is returned as is.
func DistinctElements(elements []Element) []Element {
	if len(elements) == 0 || elements[0].Type == TypeTerm {
		return elements
	}
	seen := make(map[int64]bool, len(elements))
	out := make([]Element, 0, len(elements))
	for _, e := range elements {
		if seen[e.ID] {
			continue
		}
		seen[e.ID] = true
		out = append(out, e)
	}
	return out
}
