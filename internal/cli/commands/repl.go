package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/sqlrewrite/pkg/rewrite"
	"github.com/leapstack-labs/sqlrewrite/pkg/verify"
)

const (
	replPrompt     = "sqlrewrite> "
	replContPrompt = "       ...> "
)

// NewREPLCommand creates the repl command.
func NewREPLCommand() *cobra.Command {
	opts := &DirectiveOptions{}

	cmd := &cobra.Command{
		Use:   "repl",
		Short: "Rewrite SQL interactively",
		Long: `Start an interactive shell that rewrites every statement entered.

Statements end with a semicolon and may span lines. Type .help for the
shell commands.`,
		Example: `  sqlrewrite repl -d directives.yaml
  sqlrewrite repl --kind date_diff --today 2024-03-15`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runREPL(cmd, opts)
		},
	}
	opts.register(cmd)
	return cmd
}

// replSession is the state of one REPL run.
type replSession struct {
	ctx        context.Context
	c          *CommandContext
	opts       *DirectiveOptions
	directives []rewrite.Directive
	verifier   *verify.Verifier
	pretty     bool
	verifyOn   bool
	out        io.Writer
	errOut     io.Writer
	buf        strings.Builder
}

func runREPL(cmd *cobra.Command, opts *DirectiveOptions) error {
	c := NewCommandContext(cmd)
	s := &replSession{
		ctx:    cmd.Context(),
		c:      c,
		opts:   opts,
		out:    cmd.OutOrStdout(),
		errOut: cmd.ErrOrStderr(),
	}
	if err := s.reload(); err != nil {
		return err
	}
	if c.Cfg.Verify.Enabled() {
		v, err := c.openVerifier(s.ctx)
		if err != nil {
			return err
		}
		defer func() { _ = v.Close() }()
		s.verifier = v
	}

	historyFile := ""
	if home, err := os.UserHomeDir(); err == nil {
		historyFile = filepath.Join(home, ".sqlrewrite_history")
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          replPrompt,
		HistoryFile:     historyFile,
		AutoComplete:    newREPLCompleter(),
		InterruptPrompt: "^C",
		EOFPrompt:       ".quit",
	})
	if err != nil {
		return fmt.Errorf("failed to initialize REPL: %w", err)
	}
	defer func() { _ = rl.Close() }()

	_, _ = fmt.Fprintf(s.out, "sqlrewrite REPL (dialect: %s, %d directives)\n", c.Rewriter.Dialect().Name, len(s.directives))
	_, _ = fmt.Fprintln(s.out, "Type .help for commands, .quit to exit")
	_, _ = fmt.Fprintln(s.out)

	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			s.buf.Reset()
			rl.SetPrompt(replPrompt)
			continue
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		quit, pending := s.handleLine(line)
		if quit {
			return nil
		}
		if pending {
			rl.SetPrompt(replContPrompt)
		} else {
			rl.SetPrompt(replPrompt)
		}
	}
}

// handleLine processes one input line. It reports whether the session
// should end and whether a statement is still being accumulated.
func (s *replSession) handleLine(line string) (quit, pending bool) {
	line = strings.TrimSpace(line)
	if line == "" {
		return false, s.buf.Len() > 0
	}
	if s.buf.Len() == 0 && strings.HasPrefix(line, ".") {
		return s.handleDotCommand(line), false
	}

	s.buf.WriteString(line)
	if !strings.HasSuffix(line, ";") {
		s.buf.WriteString(" ")
		return false, true
	}

	sql := strings.TrimSuffix(s.buf.String(), ";")
	s.buf.Reset()

	var v *verify.Verifier
	if s.verifyOn {
		v = s.verifier
	}
	res := s.c.rewriteOne(s.ctx, "repl", sql, s.directives, s.pretty, v)
	if res.Error != "" {
		_, _ = fmt.Fprintf(s.errOut, "Error: %s\n", res.Error)
	}
	_, _ = fmt.Fprintln(s.out, res.Output)
	_, _ = fmt.Fprintln(s.out)
	return false, false
}

func (s *replSession) reload() error {
	directives, err := s.opts.Load(s.c)
	if err != nil {
		return err
	}
	s.directives = directives
	return nil
}

func (s *replSession) handleDotCommand(line string) bool {
	command := strings.ToLower(strings.Fields(line)[0])

	switch command {
	case ".quit", ".exit":
		return true

	case ".help":
		printREPLHelp(s.out)

	case ".directives":
		for i, d := range s.directives {
			_, _ = fmt.Fprintf(s.out, "%d. %s\n", i+1, d.Kind)
		}

	case ".reload":
		if err := s.reload(); err != nil {
			_, _ = fmt.Fprintf(s.errOut, "Error: %v\n", err)
			break
		}
		_, _ = fmt.Fprintf(s.out, "Loaded %d directives\n", len(s.directives))

	case ".pretty":
		s.pretty = !s.pretty
		_, _ = fmt.Fprintf(s.out, "Pretty output %s\n", onOff(s.pretty))

	case ".verify":
		if s.verifier == nil {
			_, _ = fmt.Fprintln(s.errOut, "Error: no verify database configured")
			break
		}
		s.verifyOn = !s.verifyOn
		_, _ = fmt.Fprintf(s.out, "Verification %s\n", onOff(s.verifyOn))

	case ".clear":
		_, _ = fmt.Fprint(s.out, "\033[H\033[2J")

	default:
		_, _ = fmt.Fprintf(s.errOut, "Unknown command: %s (type .help for commands)\n", command)
	}
	return false
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

func printREPLHelp(w io.Writer) {
	help := `
Commands:
  .help           Show this help message
  .directives     List the loaded directives
  .reload         Reload the directives file
  .pretty         Toggle one-clause-per-line output
  .verify         Toggle checking against the verify database
  .clear          Clear the screen
  .quit / .exit   Exit the REPL

Tips:
  - SQL statements must end with a semicolon (;)
  - Use arrow keys to navigate history
`
	_, _ = fmt.Fprintln(w, help)
}

// newREPLCompleter completes dot-commands and common SQL keywords.
func newREPLCompleter() *readline.PrefixCompleter {
	var items []readline.PrefixCompleterInterface
	for _, cmd := range []string{".help", ".directives", ".reload", ".pretty", ".verify", ".clear", ".quit", ".exit"} {
		items = append(items, readline.PcItem(cmd))
	}
	for _, kw := range []string{"SELECT", "FROM", "WHERE", "GROUP BY", "HAVING", "ORDER BY", "LIMIT", "UNION"} {
		items = append(items, readline.PcItem(kw))
	}
	return readline.NewPrefixCompleter(items...)
}
