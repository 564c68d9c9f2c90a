package commands

import (
	"context"
	"errors"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/sqlrewrite/pkg/verify"
)

// watchDebounce delays re-runs so editors that write in several steps
// trigger one rewrite.
const watchDebounce = 100 * time.Millisecond

// RewriteOptions holds options for the rewrite command.
type RewriteOptions struct {
	DirectiveOptions
	Input  string
	Pretty bool
	Verify bool
	Watch  bool
}

// NewRewriteCommand creates the rewrite command.
func NewRewriteCommand() *cobra.Command {
	opts := &RewriteOptions{}

	cmd := &cobra.Command{
		Use:   "rewrite [SQL]",
		Short: "Rewrite one SQL statement",
		Long: `Rewrite a SQL statement with the directives of a YAML file.

The SQL is read from the arguments, from --input or from piped stdin.
Directives run in file order. SQL that does not parse is printed unchanged.`,
		Example: `  # Rename fields and point the query at the physical table
  sqlrewrite rewrite -d directives.yaml "SELECT pv FROM t WHERE city = 'sz'"

  # Expand datediff filters into date ranges
  sqlrewrite rewrite --kind date_diff --today 2024-03-15 \
    "SELECT a FROM t WHERE datediff(dt, today) <= 7"

  # Check the result against a database
  sqlrewrite rewrite -d directives.yaml -i query.sql --verify \
    --verify-driver sqlite --verify-dsn ./warehouse.db

  # Re-run whenever the directives or the query change
  sqlrewrite rewrite -d directives.yaml -i query.sql --watch`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRewrite(cmd, args, opts)
		},
	}

	opts.register(cmd)
	cmd.Flags().StringVarP(&opts.Input, "input", "i", "", "Read SQL from file")
	cmd.Flags().BoolVar(&opts.Pretty, "pretty", false, "Print one clause per line")
	cmd.Flags().BoolVar(&opts.Verify, "verify", false, "Check the rewritten SQL against the verify database")
	cmd.Flags().BoolVarP(&opts.Watch, "watch", "w", false, "Re-run when the directives or input file change")

	return cmd
}

func runRewrite(cmd *cobra.Command, args []string, opts *RewriteOptions) error {
	if opts.Watch && opts.File == "" && opts.Input == "" {
		return errors.New("--watch needs --directives or --input")
	}
	ctx := cmd.Context()
	c := NewCommandContext(cmd)

	var v *verify.Verifier
	if opts.Verify {
		var err error
		if v, err = c.openVerifier(ctx); err != nil {
			return err
		}
		defer func() { _ = v.Close() }()
	}

	// Arguments and stdin are read once; an input file is re-read on change.
	var fixedSQL string
	if opts.Input == "" {
		var err error
		if fixedSQL, err = readSQL(cmd, args, ""); err != nil {
			return err
		}
	}

	run := func() error {
		directives, err := opts.Load(c)
		if err != nil {
			return err
		}
		sql := fixedSQL
		if opts.Input != "" {
			if sql, err = readSQL(cmd, nil, opts.Input); err != nil {
				return err
			}
		}
		source := opts.Input
		if source == "" {
			source = "query"
		}
		res := c.rewriteOne(ctx, source, sql, directives, opts.Pretty, v)
		return renderResults(cmd.OutOrStdout(), c.Cfg.Output, []Result{res})
	}

	if err := run(); err != nil {
		return err
	}
	if !opts.Watch {
		return nil
	}

	var files []string
	if opts.File != "" {
		files = append(files, opts.File)
	}
	if opts.Input != "" {
		files = append(files, opts.Input)
	}
	return watchFiles(ctx, c, files, func() {
		if err := run(); err != nil {
			c.Logger.Error("rewrite failed", "error", err)
		}
	})
}

// watchFiles calls onChange after writes to any of files until ctx is
// done. Parent directories are watched so that editors replacing a file
// are seen.
func watchFiles(ctx context.Context, c *CommandContext, files []string, onChange func()) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer func() { _ = watcher.Close() }()

	watched := make(map[string]bool, len(files))
	for _, f := range files {
		abs, err := filepath.Abs(f)
		if err != nil {
			return err
		}
		watched[abs] = true
		if err := watcher.Add(filepath.Dir(abs)); err != nil {
			return err
		}
	}
	c.Logger.Info("watching for changes", "files", files)

	changed := make(chan struct{}, 1)
	var debounceTimer *time.Timer
	for {
		select {
		case <-ctx.Done():
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if abs, _ := filepath.Abs(event.Name); !watched[abs] {
				continue
			}
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(watchDebounce, func() {
				select {
				case changed <- struct{}{}:
				default:
				}
			})

		case <-changed:
			c.Logger.Debug("input changed, rewriting")
			onChange()

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			c.Logger.Error("watcher error", "error", err)
		}
	}
}
