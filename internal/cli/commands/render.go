package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/leapstack-labs/sqlrewrite/internal/config"
	"github.com/leapstack-labs/sqlrewrite/pkg/rewrite"
	"github.com/leapstack-labs/sqlrewrite/pkg/verify"
)

// Result is the outcome of rewriting one statement.
type Result struct {
	Source   string `json:"source,omitempty"`
	Input    string `json:"input"`
	Output   string `json:"output"`
	Changed  bool   `json:"changed"`
	Verified *bool  `json:"verified,omitempty"`
	Error    string `json:"error,omitempty"`
}

// rewriteOne rewrites sql and, when v is set, checks the output against
// the verify database. Failures are recorded on the result.
func (c *CommandContext) rewriteOne(ctx context.Context, source, sql string, directives []rewrite.Directive, pretty bool, v *verify.Verifier) Result {
	input := strings.TrimSpace(sql)
	res := Result{Source: source, Input: input, Output: input}

	out, err := c.apply(input, directives, pretty)
	if err != nil {
		c.Logger.Warn("sql left unchanged", "source", source, "error", err)
		res.Error = err.Error()
		return res
	}
	res.Output = strings.TrimRight(out, "\n")
	res.Changed = res.Output != input

	if v != nil {
		ok := true
		if err := v.Check(ctx, res.Output); err != nil {
			ok = false
			res.Error = err.Error()
		}
		res.Verified = &ok
	}
	return res
}

// openVerifier opens the configured verify database.
func (c *CommandContext) openVerifier(ctx context.Context) (*verify.Verifier, error) {
	if !c.Cfg.Verify.Enabled() {
		return nil, fmt.Errorf("verification needs verify.driver and verify.dsn (flags --verify-driver, --verify-dsn)")
	}
	return verify.Open(ctx, c.Cfg.Verify.Driver, c.Cfg.Verify.DSN, c.Logger)
}

// renderResults writes results as SQL text or JSON.
func renderResults(w io.Writer, format string, results []Result) error {
	if format == config.OutputJSON {
		return renderJSON(w, results)
	}
	for i, res := range results {
		if len(results) > 1 {
			if i > 0 {
				_, _ = fmt.Fprintln(w)
			}
			_, _ = fmt.Fprintf(w, "-- %s\n", res.Source)
		}
		if res.Error != "" {
			_, _ = fmt.Fprintf(w, "-- error: %s\n", res.Error)
		}
		_, _ = fmt.Fprintln(w, res.Output)
	}
	return nil
}

func renderJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
