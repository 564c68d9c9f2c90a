package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/sqlrewrite/internal/config"
	"github.com/leapstack-labs/sqlrewrite/pkg/verify"
)

// NewVerifyCommand creates the verify command.
func NewVerifyCommand() *cobra.Command {
	var input string

	cmd := &cobra.Command{
		Use:   "verify [SQL]",
		Short: "Check that SQL is accepted by the verify database",
		Long: `Ask the verify database to plan a statement without running it.

The database is configured with verify.driver and verify.dsn, or the
--verify-driver and --verify-dsn flags. Supported drivers: ` + strings.Join(verify.Drivers(), ", ") + `.`,
		Example: `  sqlrewrite verify --verify-driver sqlite --verify-dsn ./warehouse.db "SELECT * FROM events"
  sqlrewrite verify --verify-driver postgres --verify-dsn 'postgres://localhost/analytics' -i query.sql`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			c := NewCommandContext(cmd)

			sql, err := readSQL(cmd, args, input)
			if err != nil {
				return err
			}
			v, err := c.openVerifier(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = v.Close() }()

			checkErr := v.Check(ctx, sql)
			if c.Cfg.Output == config.OutputJSON {
				res := Result{Input: strings.TrimSpace(sql), Output: strings.TrimSpace(sql)}
				ok := checkErr == nil
				res.Verified = &ok
				if checkErr != nil {
					res.Error = checkErr.Error()
				}
				if err := renderJSON(cmd.OutOrStdout(), res); err != nil {
					return err
				}
				return checkErr
			}
			if checkErr != nil {
				return checkErr
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "OK")
			return nil
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "", "Read SQL from file")
	return cmd
}
