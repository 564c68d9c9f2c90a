package commands

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// errNoInput is returned when no SQL was given and stdin is a terminal.
var errNoInput = errors.New("no SQL given: pass it as an argument, with --input, or on stdin")

// readSQL returns the SQL from the arguments, the input file or piped stdin.
func readSQL(cmd *cobra.Command, args []string, inputFile string) (string, error) {
	switch {
	case len(args) > 0:
		return strings.Join(args, " "), nil
	case inputFile != "":
		content, err := os.ReadFile(inputFile) //nolint:gosec // G304: path is supplied by the user
		if err != nil {
			return "", fmt.Errorf("failed to read file: %w", err)
		}
		return string(content), nil
	case !isTerminal(cmd.InOrStdin()):
		content, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(content), nil
	default:
		return "", errNoInput
	}
}

// isTerminal reports whether r is an interactive terminal.
func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	return ok && term.IsTerminal(int(f.Fd())) //nolint:gosec // G115: file descriptors fit in int
}
