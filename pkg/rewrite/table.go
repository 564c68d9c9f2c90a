package rewrite

import (
	"strings"

	"github.com/leapstack-labs/sqlrewrite/pkg/ast"
)

// replaceTable points the FROM table and joined tables of every plain
// select reachable from stmt at table. Derived tables and joined sub-selects
// are recursed into rather than replaced. A dotted name sets the schema. A
// renamed table without an alias keeps its old name as alias when columns
// of the select are qualified with it.
func replaceTable(stmt ast.Statement, table string) {
	if table == "" {
		return
	}
	schema, name, found := strings.Cut(table, ".")
	if !found {
		schema, name = "", table
	}
	for _, sel := range ast.PlainSelects(stmt) {
		tr := tableRenamer{schema: schema, name: name, qualifiers: qualifiers(sel)}
		tr.rename(sel.From)
		for _, j := range sel.Joins {
			tr.rename(j.Right)
		}
	}
}

type tableRenamer struct {
	schema, name string
	qualifiers   map[string]bool
}

// rename renames f when it is a table, and the tables of a parenthesized
// join tree. Derived tables are left to the caller, which visits their
// selects on its own.
func (tr tableRenamer) rename(f ast.FromItem) {
	switch x := f.(type) {
	case *ast.Table:
		if x.Alias == "" && !strings.EqualFold(x.Name, tr.name) && tr.qualifiers[strings.ToLower(x.Name)] {
			x.Alias = x.Name
		}
		x.Schema = tr.schema
		x.Name = tr.name
	case *ast.ParenFrom:
		tr.rename(x.From)
		for _, j := range x.Joins {
			tr.rename(j.Right)
		}
	}
}

// qualifiers lists the lower-cased table qualifiers of columns and stars
// under sel.
func qualifiers(sel *ast.Select) map[string]bool {
	out := make(map[string]bool)
	ast.Inspect(sel, func(n ast.Node) {
		switch x := n.(type) {
		case *ast.Column:
			if x.Table != "" {
				out[strings.ToLower(x.Table)] = true
			}
		case *ast.Star:
			if x.Table != "" {
				out[strings.ToLower(x.Table)] = true
			}
		}
	})
	return out
}
