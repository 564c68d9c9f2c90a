// Package directive reads rewrite directives from YAML files.
//
// A directives file lists rewrites applied in order:
//
//	exact: false
//	functions_dir: functions
//	directives:
//	  - kind: fields
//	    map: {pv: page_views}
//	  - kind: agg
//	    map:
//	      sum__pv: page_views
//	      uv: {field: visitors, operator: count_distinct}
//	  - kind: value
//	    exact: true
//	    map: {city: {sz: shenzhen}}
//	  - kind: table
//	    table: analytics.events
//	  - kind: date_diff
package directive

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-viper/mapstructure/v2"
	"gopkg.in/yaml.v3"

	"github.com/leapstack-labs/sqlrewrite/pkg/rewrite"
)

// ErrInvalid is returned for directives files that do not decode.
var ErrInvalid = errors.New("invalid directives")

// File is a decoded directives file.
type File struct {
	// FunctionsDir holds the Starlark callbacks for function directives,
	// resolved against the file's directory.
	FunctionsDir string
	Directives   []rewrite.Directive
}

type rawFile struct {
	Exact        *bool            `yaml:"exact"`
	FunctionsDir string           `yaml:"functions_dir"`
	Directives   []map[string]any `yaml:"directives"`
}

type rawDirective struct {
	Kind  string `mapstructure:"kind"`
	Exact *bool  `mapstructure:"exact"`
	Map   any    `mapstructure:"map"`
	Table string `mapstructure:"table"`
}

// Load reads and decodes the directives file at path. exact is the match
// mode for directives and files that do not set one.
func Load(path string, exact bool) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // G304: path is supplied by the user
	if err != nil {
		return nil, fmt.Errorf("failed to read directives: %w", err)
	}
	f, err := Parse(data, exact)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if f.FunctionsDir != "" && !filepath.IsAbs(f.FunctionsDir) {
		f.FunctionsDir = filepath.Join(filepath.Dir(path), f.FunctionsDir)
	}
	return f, nil
}

// Parse decodes a directives document.
func Parse(data []byte, exact bool) (*File, error) {
	var raw rawFile
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if raw.Exact != nil {
		exact = *raw.Exact
	}

	f := &File{FunctionsDir: raw.FunctionsDir}
	for i, m := range raw.Directives {
		d, err := decodeDirective(m, exact)
		if err != nil {
			return nil, fmt.Errorf("%w: directive %d: %w", ErrInvalid, i+1, err)
		}
		f.Directives = append(f.Directives, d)
	}
	return f, nil
}

// Simple builds a directive for kinds configured by at most a table name.
func Simple(kind, table string) (rewrite.Directive, error) {
	k, err := rewrite.ParseKind(kind)
	if err != nil {
		return rewrite.Directive{}, err
	}
	switch k {
	case rewrite.KindDateDiff, rewrite.KindAlias:
		return rewrite.Directive{Kind: k}, nil
	case rewrite.KindTable:
		if table == "" {
			return rewrite.Directive{}, errors.New("table directive needs a table name")
		}
		return rewrite.Directive{Kind: k, Table: table}, nil
	default:
		return rewrite.Directive{}, fmt.Errorf("kind %s needs a directives file", k)
	}
}

// AttachCallbacks sets callbacks on every function directive.
func (f *File) AttachCallbacks(callbacks map[string]rewrite.FunctionCallback) {
	for i := range f.Directives {
		if f.Directives[i].Kind == rewrite.KindFunction {
			f.Directives[i].Callbacks = callbacks
		}
	}
}

// NeedsCallbacks reports whether any directive renames functions.
func (f *File) NeedsCallbacks() bool {
	for _, d := range f.Directives {
		if d.Kind == rewrite.KindFunction {
			return true
		}
	}
	return false
}

func decodeDirective(m map[string]any, exact bool) (rewrite.Directive, error) {
	var raw rawDirective
	if err := decode(m, &raw); err != nil {
		return rewrite.Directive{}, err
	}
	kind, err := rewrite.ParseKind(raw.Kind)
	if err != nil {
		return rewrite.Directive{}, err
	}
	d := rewrite.Directive{Kind: kind, Exact: exact}
	if raw.Exact != nil {
		d.Exact = *raw.Exact
	}

	if kind == rewrite.KindTable {
		if raw.Table == "" {
			return d, errors.New("table directive needs a table")
		}
		d.Table = raw.Table
		return d, nil
	}
	if raw.Table != "" {
		return d, fmt.Errorf("%s directive takes no table", kind)
	}

	switch kind {
	case rewrite.KindFields, rewrite.KindSelectFields, rewrite.KindExpression:
		err = decodePayload(raw.Map, &d.Fields)
	case rewrite.KindFunction:
		err = decodePayload(raw.Map, &d.Functions)
	case rewrite.KindValue, rewrite.KindHavingValue:
		err = decodePayload(raw.Map, &d.Values)
	case rewrite.KindFieldByValue:
		err = decodePayload(raw.Map, &d.FieldsByValue)
	case rewrite.KindAgg:
		d.Aggs, err = decodeAggs(raw.Map)
	default:
		if raw.Map != nil {
			err = fmt.Errorf("%s directive takes no map", kind)
		}
	}
	return d, err
}

func decodePayload(in any, out any) error {
	if in == nil {
		return errors.New("map is required")
	}
	return decode(in, out)
}

// decodeAggs accepts "agg__field: new_field" entries and structured
// "field: {field, operator}" entries.
func decodeAggs(in any) (map[string]rewrite.AggTarget, error) {
	var entries map[string]any
	if err := decodePayload(in, &entries); err != nil {
		return nil, err
	}
	aggs := make(map[string]rewrite.AggTarget, len(entries))
	for key, v := range entries {
		if newField, ok := v.(string); ok {
			agg, field, ok := rewrite.DecodeAggKey(key)
			if !ok {
				return nil, fmt.Errorf("agg key %q must look like agg__field", key)
			}
			aggs[field] = rewrite.AggTarget{Field: newField, Operator: rewrite.ParseAggOperator(agg)}
			continue
		}
		var target rewrite.AggTarget
		if err := decode(v, &target); err != nil {
			return nil, fmt.Errorf("agg %q: %w", key, err)
		}
		if target.Field == "" {
			return nil, fmt.Errorf("agg %q: field is required", key)
		}
		aggs[key] = target
	}
	return aggs, nil
}

func decode(in, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       mapstructure.TextUnmarshallerHookFunc(),
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		Result:           out,
	})
	if err != nil {
		return err
	}
	return dec.Decode(in)
}
