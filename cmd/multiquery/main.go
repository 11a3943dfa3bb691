// Package main provides the multiquery command.
package main

import (
	"os"

	"github.com/leapstack-labs/multiquery/internal/cli"

	// Register database adapters.
	_ "github.com/leapstack-labs/multiquery/pkg/adapters/duckdb"
	_ "github.com/leapstack-labs/multiquery/pkg/adapters/mysql"
	_ "github.com/leapstack-labs/multiquery/pkg/adapters/postgres"
	_ "github.com/leapstack-labs/multiquery/pkg/adapters/sqlite"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
