// Package format renders query trees back to SQL text.
//
// SQL renders a statement on one line; Pretty lays it out one clause per
// line with indented bodies. Both are stable: formatting the parse of a
// formatted statement yields the same text.
package format

import (
	"bytes"
	"strings"

	"github.com/leapstack-labs/sqlrewrite/pkg/dialect"
)

const indentSize = 2

// Printer handles SQL formatting.
type Printer struct {
	dialect     *dialect.Dialect
	output      *bytes.Buffer
	pretty      bool
	depth       int
	atLineStart bool
}

func newPrinter(d *dialect.Dialect, pretty bool) *Printer {
	if d == nil {
		d = dialect.Default()
	}
	return &Printer{
		dialect:     d,
		output:      &bytes.Buffer{},
		pretty:      pretty,
		atLineStart: true,
	}
}

// String returns the formatted output.
func (p *Printer) String() string {
	if p.pretty {
		return strings.TrimRight(p.output.String(), "\n") + "\n"
	}
	return p.output.String()
}

func (p *Printer) write(s string) {
	if p.atLineStart && len(s) > 0 && s[0] != '\n' {
		p.writeIndent()
	}
	p.output.WriteString(s)
	p.atLineStart = false
}

func (p *Printer) writeln() {
	p.output.WriteByte('\n')
	p.atLineStart = true
}

func (p *Printer) writeIndent() {
	for i := 0; i < p.depth*indentSize; i++ {
		p.output.WriteByte(' ')
	}
	p.atLineStart = false
}

func (p *Printer) indent() {
	p.depth++
}

func (p *Printer) dedent() {
	if p.depth > 0 {
		p.depth--
	}
}

func (p *Printer) space() {
	p.output.WriteByte(' ')
}

// kw prints keywords separated by spaces.
func (p *Printer) kw(words ...string) {
	for i, w := range words {
		if i > 0 {
			p.space()
		}
		p.write(w)
	}
}

// breakLine separates clauses: a newline in pretty mode, a space otherwise.
func (p *Printer) breakLine() {
	if p.pretty {
		p.writeln()
		return
	}
	p.space()
}

// body prints a clause body, indented on its own lines in pretty mode.
func (p *Printer) body(fn func()) {
	if !p.pretty {
		p.space()
		fn()
		return
	}
	p.indent()
	p.writeln()
	fn()
	p.dedent()
}

// formatList prints a list of items with separators.
// count is the number of items, format is called for each index,
// sep is the separator string, multiline adds newlines after separators.
func (p *Printer) formatList(count int, format func(i int), sep string, multiline bool) {
	for i := 0; i < count; i++ {
		format(i)
		if i < count-1 {
			p.write(sep)
			if multiline {
				p.writeln()
			} else {
				p.space()
			}
		}
	}
}

// ident prints an identifier, quoting it when the dialect requires.
func (p *Printer) ident(name string) {
	p.write(p.dialect.QuoteIdentifierIfNeeded(name))
}

// quoteString renders a single-quoted string literal.
func quoteString(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
