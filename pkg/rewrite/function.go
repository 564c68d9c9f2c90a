package rewrite

import (
	"strings"

	"github.com/leapstack-labs/sqlrewrite/pkg/ast"
)

// functionRenamer renames calls found in a case-insensitive function map.
type functionRenamer struct {
	names     map[string]string
	callbacks map[string]FunctionCallback
}

func newFunctionRenamer(functions map[string]string, callbacks map[string]FunctionCallback) *functionRenamer {
	fr := &functionRenamer{
		names:     make(map[string]string, len(functions)),
		callbacks: make(map[string]FunctionCallback, len(callbacks)),
	}
	for k, v := range functions {
		fr.names[strings.ToLower(k)] = v
	}
	for k, cb := range callbacks {
		fr.callbacks[strings.ToLower(k)] = cb
	}
	return fr
}

// rename renames one call and, when withCallback is set, hands its
// arguments to the callback registered for the new name.
func (fr *functionRenamer) rename(call *ast.FuncCall, withCallback bool) {
	newName := fr.names[strings.ToLower(call.Name)]
	if newName == "" {
		return
	}
	call.Name = newName
	if !withCallback {
		return
	}
	if cb := fr.callbacks[strings.ToLower(newName)]; cb != nil {
		call.Args = cb(call.Args)
	}
}

// all renames every call inside e.
func (fr *functionRenamer) all(e ast.Expr) ast.Expr {
	return ast.Rewrite(e, func(e ast.Expr) (ast.Expr, bool) {
		if call, ok := e.(*ast.FuncCall); ok {
			fr.rename(call, true)
		}
		return e, false
	})
}

// top renames e when it is itself a call.
func (fr *functionRenamer) top(e ast.Expr, withCallback bool) {
	if call, ok := e.(*ast.FuncCall); ok {
		fr.rename(call, withCallback)
	}
}

// replaceFunctions renames function calls in every plain select reachable
// from sel. WHERE and the select list are searched recursively; GROUP BY
// and ORDER BY only at the top of each element; HAVING only on the left
// side of its terminal comparisons.
func replaceFunctions(sel *ast.Select, functions map[string]string, callbacks map[string]FunctionCallback) {
	if len(functions) == 0 {
		return
	}
	fr := newFunctionRenamer(functions, callbacks)
	for _, s := range ast.PlainSelects(sel) {
		s.Where = fr.all(s.Where)
		for _, g := range s.GroupBy {
			fr.top(g, true)
		}
		for _, item := range s.Items {
			item.Expr = fr.all(item.Expr)
		}
		for _, cond := range ast.Conditions(s.Having) {
			if cmp, ok := cond.(*ast.Comparison); ok {
				fr.top(cmp.Left, false)
			}
		}
		for _, o := range s.OrderBy {
			fr.top(o.Expr, false)
		}
	}
}
