// Package main provides the sqlrewrite CLI.
package main

import (
	"os"

	"github.com/leapstack-labs/sqlrewrite/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
