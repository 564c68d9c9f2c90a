// Package cli provides the command-line interface for sqlrewrite.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/sqlrewrite/internal/cli/commands"
	"github.com/leapstack-labs/sqlrewrite/internal/config"
	"github.com/leapstack-labs/sqlrewrite/pkg/dialect"
	"github.com/leapstack-labs/sqlrewrite/pkg/verify"
)

// Version information (set at build time).
var (
	Version   = "0.1.0"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

// NewRootCmd creates and returns the root command.
func NewRootCmd() *cobra.Command {
	var cfgFile string

	rootCmd := &cobra.Command{
		Use:   "sqlrewrite",
		Short: "sqlrewrite - semantic SQL rewriting",
		Long: `sqlrewrite turns the generic SQL produced by a semantic layer into SQL
that runs against the physical schema.

It renames fields, aggregates, functions, tables and filter values, expands
datediff filters into date ranges, and merges schema element matches.`,
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// Skip config loading for help and completion commands
			if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "__complete" {
				return nil
			}

			cfg, err := config.Load(cfgFile, cmd.Root().PersistentFlags())
			if err != nil {
				return err
			}
			logger := cfg.NewLogger(cmd.ErrOrStderr())
			if cfg.File() != "" {
				logger.Debug("using config file", "path", cfg.File())
			}

			ctx := config.WithConfig(cmd.Context(), cfg)
			ctx = config.WithLogger(ctx, logger)
			cmd.SetContext(ctx)
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.SetVersionTemplate(`{{.Name}} {{.Version}}
`)

	// Global persistent flags
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default: ./sqlrewrite.yaml)")
	flags.String("dialect", "", "Output SQL dialect")
	flags.String("log-level", "", "Log level (debug|info|warn|error)")
	flags.String("log-format", "", "Log format (text|json)")
	flags.StringP("output", "o", "", "Output format (text|json)")
	flags.Bool("exact-replace", false, "Match names exactly instead of by similarity")
	flags.Float64("min-similarity", 0, "Similarity a name must reach to match in non-exact mode")
	flags.String("today", "", "Date (YYYY-MM-DD) used for today in datediff filters")
	flags.Int("concurrency", 0, "Maximum statements rewritten at once")
	flags.String("functions-dir", "", "Directory of Starlark function callbacks")
	flags.String("verify-driver", "", "Driver of the verify database")
	flags.String("verify-dsn", "", "Data source name of the verify database")

	_ = rootCmd.RegisterFlagCompletionFunc("dialect", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return dialect.List(), cobra.ShellCompDirectiveNoFileComp
	})
	_ = rootCmd.RegisterFlagCompletionFunc("output", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{config.OutputText, config.OutputJSON}, cobra.ShellCompDirectiveNoFileComp
	})
	_ = rootCmd.RegisterFlagCompletionFunc("verify-driver", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return verify.Drivers(), cobra.ShellCompDirectiveNoFileComp
	})

	rootCmd.AddCommand(commands.NewVersionCommand(Version, GitCommit, BuildDate))
	rootCmd.AddCommand(commands.NewRewriteCommand())
	rootCmd.AddCommand(commands.NewBatchCommand())
	rootCmd.AddCommand(commands.NewMatchCommand())
	rootCmd.AddCommand(commands.NewVerifyCommand())
	rootCmd.AddCommand(commands.NewREPLCommand())
	rootCmd.AddCommand(NewCompletionCommand())

	return rootCmd
}

// Execute runs the root command. An interrupt cancels the command context.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd := NewRootCmd()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}

// NewCompletionCommand creates the completion command.
func NewCompletionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for sqlrewrite.

To load completions:

Bash:
  $ source <(sqlrewrite completion bash)

  # To load completions for each session, execute once:
  # Linux:
  $ sqlrewrite completion bash > /etc/bash_completion.d/sqlrewrite
  # macOS:
  $ sqlrewrite completion bash > $(brew --prefix)/etc/bash_completion.d/sqlrewrite

Zsh:
  $ sqlrewrite completion zsh > "${fpath[1]}/_sqlrewrite"

Fish:
  $ sqlrewrite completion fish > ~/.config/fish/completions/sqlrewrite.fish

PowerShell:
  PS> sqlrewrite completion powershell | Out-String | Invoke-Expression
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(out)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
			return nil
		},
	}
	return cmd
}
