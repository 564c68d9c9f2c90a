package starlark

import (
	"fmt"
	"log/slog"

	"go.starlark.net/starlark"

	"github.com/leapstack-labs/sqlrewrite/pkg/ast"
	"github.com/leapstack-labs/sqlrewrite/pkg/dialect"
	"github.com/leapstack-labs/sqlrewrite/pkg/format"
	"github.com/leapstack-labs/sqlrewrite/pkg/parser"
	"github.com/leapstack-labs/sqlrewrite/pkg/rewrite"
)

// Callbacks turns loaded functions into rewrite callbacks.
type Callbacks struct {
	functions map[string]*Function
	pool      *ThreadPool
	dialect   *dialect.Dialect
	logger    *slog.Logger
}

// NewCallbacks wraps functions. Arguments are rendered for d before they
// reach a callback.
func NewCallbacks(functions map[string]*Function, d *dialect.Dialect, poolSize int, logger *slog.Logger) *Callbacks {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Callbacks{
		functions: functions,
		pool:      NewThreadPool(poolSize, logger),
		dialect:   d,
		logger:    logger,
	}
}

// Names returns the callback names.
func (c *Callbacks) Names() []string {
	names := make([]string, 0, len(c.functions))
	for name := range c.functions {
		names = append(names, name)
	}
	return names
}

// Map returns a callback for every loaded function.
func (c *Callbacks) Map() map[string]rewrite.FunctionCallback {
	out := make(map[string]rewrite.FunctionCallback, len(c.functions))
	for name, fn := range c.functions {
		out[name] = c.callback(fn)
	}
	return out
}

// callback runs fn. A failing callback is logged and leaves the
// arguments unchanged.
func (c *Callbacks) callback(fn *Function) rewrite.FunctionCallback {
	return func(args []ast.Expr) []ast.Expr {
		out, err := c.Call(fn, args)
		if err != nil {
			c.logger.Warn("function callback failed", "function", fn.Name, "error", err)
			return args
		}
		return out
	}
}

// Call runs fn on args and parses the returned SQL fragments.
func (c *Callbacks) Call(fn *Function, args []ast.Expr) ([]ast.Expr, error) {
	texts := make([]starlark.Value, len(args))
	for i, arg := range args {
		texts[i] = starlark.String(format.Expr(arg, c.dialect))
	}

	thread := c.pool.Get("callback:" + fn.Name)
	defer c.pool.Put(thread)

	result, err := starlark.Call(thread, fn.fn, starlark.Tuple{starlark.NewList(texts)}, nil)
	if err != nil {
		return nil, err
	}

	fragments, err := resultFragments(result)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", fn.Name, err)
	}
	out := make([]ast.Expr, len(fragments))
	for i, text := range fragments {
		e, err := parser.ParseExpr(text)
		if err != nil {
			return nil, fmt.Errorf("%s: argument %d: %w", fn.Name, i, err)
		}
		out[i] = e
	}
	return out, nil
}

// resultFragments reads a callback result: a list or tuple of strings, or
// a single string for a one-argument call.
func resultFragments(v starlark.Value) ([]string, error) {
	switch val := v.(type) {
	case starlark.String:
		return []string{string(val)}, nil
	case starlark.Indexable:
		out := make([]string, val.Len())
		for i := 0; i < val.Len(); i++ {
			s, ok := starlark.AsString(val.Index(i))
			if !ok {
				return nil, fmt.Errorf("result index %d: want string, got %s", i, val.Index(i).Type())
			}
			out[i] = s
		}
		return out, nil
	default:
		return nil, fmt.Errorf("result must be a list of strings, got %s", v.Type())
	}
}
