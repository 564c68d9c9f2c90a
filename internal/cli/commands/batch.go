package commands

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/leapstack-labs/sqlrewrite/pkg/verify"
)

// BatchOptions holds options for the batch command.
type BatchOptions struct {
	DirectiveOptions
	OutDir      string
	Pretty      bool
	Verify      bool
	FailOnError bool
}

// NewBatchCommand creates the batch command.
func NewBatchCommand() *cobra.Command {
	opts := &BatchOptions{}

	cmd := &cobra.Command{
		Use:   "batch <path>...",
		Short: "Rewrite many .sql files concurrently",
		Long: `Rewrite every .sql file named on the command line or found below the
given directories. Each file holds one statement. Files are rewritten
concurrently, up to the configured concurrency, and reported in path order.`,
		Example: `  sqlrewrite batch -d directives.yaml queries/
  sqlrewrite batch -d directives.yaml queries/ --out-dir rewritten/ --concurrency 8`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBatch(cmd, args, opts)
		},
	}

	opts.register(cmd)
	cmd.Flags().StringVar(&opts.OutDir, "out-dir", "", "Write rewritten files here instead of printing them")
	cmd.Flags().BoolVar(&opts.Pretty, "pretty", false, "Print one clause per line")
	cmd.Flags().BoolVar(&opts.Verify, "verify", false, "Check every rewritten statement against the verify database")
	cmd.Flags().BoolVar(&opts.FailOnError, "fail-on-error", false, "Exit with an error if any statement failed to parse or verify")

	return cmd
}

func runBatch(cmd *cobra.Command, args []string, opts *BatchOptions) error {
	ctx := cmd.Context()
	c := NewCommandContext(cmd)

	runID := uuid.NewString()
	logger := c.Logger.With("run_id", runID)
	c.Logger = logger
	c.Rewriter = c.Cfg.NewRewriter(logger)

	directives, err := opts.Load(c)
	if err != nil {
		return err
	}
	files, err := collectSQLFiles(args)
	if err != nil {
		return err
	}

	var v *verify.Verifier
	if opts.Verify {
		if v, err = c.openVerifier(ctx); err != nil {
			return err
		}
		defer func() { _ = v.Close() }()
	}

	start := time.Now()
	logger.Info("batch started", "files", len(files), "concurrency", c.Cfg.Concurrency)

	results := make([]Result, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.Cfg.Concurrency)
	for i, file := range files {
		g.Go(func() error {
			content, err := os.ReadFile(file) //nolint:gosec // G304: path comes from the user's arguments
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", file, err)
			}
			results[i] = c.rewriteOne(gctx, file, string(content), directives, opts.Pretty, v)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	var changed, failed int
	for _, res := range results {
		if res.Changed {
			changed++
		}
		if res.Error != "" {
			failed++
		}
	}
	logger.Info("batch finished", "files", len(files), "changed", changed, "failed", failed, "cost", time.Since(start))

	if opts.OutDir != "" {
		if err := writeResults(opts.OutDir, results); err != nil {
			return err
		}
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Rewrote %d files (%d changed, %d failed) into %s\n", len(files), changed, failed, opts.OutDir)
	} else if err := renderResults(cmd.OutOrStdout(), c.Cfg.Output, results); err != nil {
		return err
	}

	if opts.FailOnError && failed > 0 {
		return fmt.Errorf("%d of %d statements failed", failed, len(files))
	}
	return nil
}

// collectSQLFiles expands directories to the .sql files below them. The
// result is sorted and free of duplicates.
func collectSQLFiles(paths []string) ([]string, error) {
	var files []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			files = append(files, p)
			continue
		}
		err = filepath.WalkDir(p, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && strings.EqualFold(filepath.Ext(path), ".sql") {
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	slices.Sort(files)
	files = slices.Compact(files)
	if len(files) == 0 {
		return nil, fmt.Errorf("no .sql files found")
	}
	return files, nil
}

// writeResults writes each output to outDir under its source's base name.
func writeResults(outDir string, results []Result) error {
	if err := os.MkdirAll(outDir, 0o750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	seen := make(map[string]string, len(results))
	for _, res := range results {
		name := filepath.Base(res.Source)
		if prev, ok := seen[name]; ok {
			return fmt.Errorf("%s and %s would both be written to %s", prev, res.Source, name)
		}
		seen[name] = res.Source
		if err := os.WriteFile(filepath.Join(outDir, name), []byte(res.Output+"\n"), 0o644); err != nil { //nolint:gosec // G306: rewritten SQL is not secret
			return fmt.Errorf("failed to write %s: %w", name, err)
		}
	}
	return nil
}
