// Package commands implements the sqlrewrite subcommands.
package commands

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/sqlrewrite/internal/config"
	"github.com/leapstack-labs/sqlrewrite/internal/directive"
	starctx "github.com/leapstack-labs/sqlrewrite/internal/starlark"
	"github.com/leapstack-labs/sqlrewrite/pkg/format"
	"github.com/leapstack-labs/sqlrewrite/pkg/parser"
	"github.com/leapstack-labs/sqlrewrite/pkg/rewrite"
)

// CommandContext holds common dependencies for commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Rewriter *rewrite.Rewriter
}

// NewCommandContext builds a CommandContext from the command's context.
func NewCommandContext(cmd *cobra.Command) *CommandContext {
	cfg := config.FromContext(cmd.Context())
	logger := config.GetLogger(cmd.Context())
	return &CommandContext{
		Cfg:      cfg,
		Logger:   logger,
		Rewriter: cfg.NewRewriter(logger),
	}
}

// DirectiveOptions selects the directives a command applies.
type DirectiveOptions struct {
	File  string
	Kind  string
	Table string
}

// register adds the directive flags to cmd.
func (o *DirectiveOptions) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&o.File, "directives", "d", "", "YAML file listing the rewrites to apply")
	cmd.Flags().StringVarP(&o.Kind, "kind", "k", "", "Apply a single rewrite that needs no mapping (date_diff, alias, table)")
	cmd.Flags().StringVar(&o.Table, "table", "", "New table name for --kind table")
	cmd.MarkFlagsMutuallyExclusive("directives", "kind")
	_ = cmd.RegisterFlagCompletionFunc("kind", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{string(rewrite.KindDateDiff), string(rewrite.KindAlias), string(rewrite.KindTable)}, cobra.ShellCompDirectiveNoFileComp
	})
}

// Load resolves the directives, attaching Starlark callbacks to function
// renames. The functions directory of the directives file wins over the
// configured one.
func (o *DirectiveOptions) Load(c *CommandContext) ([]rewrite.Directive, error) {
	switch {
	case o.File != "":
	case o.Kind != "":
		d, err := directive.Simple(o.Kind, o.Table)
		if err != nil {
			return nil, err
		}
		return []rewrite.Directive{d}, nil
	default:
		return nil, fmt.Errorf("either --directives or --kind is required")
	}

	f, err := directive.Load(o.File, c.Cfg.ExactReplace)
	if err != nil {
		return nil, err
	}
	if !f.NeedsCallbacks() {
		return f.Directives, nil
	}

	dir := f.FunctionsDir
	if dir == "" {
		dir = c.Cfg.FunctionsDir
	}
	if dir == "" {
		return f.Directives, nil
	}
	functions, err := starctx.NewLoader(dir).Load()
	if err != nil {
		return nil, err
	}
	callbacks := starctx.NewCallbacks(functions, c.Rewriter.Dialect(), c.Cfg.Concurrency, c.Logger)
	c.Logger.Debug("loaded function callbacks", "dir", dir, "count", len(functions))
	f.AttachCallbacks(callbacks.Map())
	return f.Directives, nil
}

// apply parses sql once and runs every directive over it in order. A
// directive that does not fit the statement is skipped. SQL that does not
// parse is returned unchanged with the parse error.
func (c *CommandContext) apply(sql string, directives []rewrite.Directive, pretty bool) (string, error) {
	stmt, err := parser.Parse(sql)
	if err != nil {
		return sql, err
	}
	for _, d := range directives {
		if _, err := c.Rewriter.ApplyStatement(stmt, d); err != nil {
			c.Logger.Debug("directive skipped", "kind", d.Kind, "error", err)
		}
	}
	if pretty {
		return format.Pretty(stmt, c.Rewriter.Dialect()), nil
	}
	return format.SQL(stmt, c.Rewriter.Dialect()), nil
}
