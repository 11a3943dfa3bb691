// Package duckdb provides a DuckDB database adapter for multiquery.
//
// This file registers the DuckDB adapter with the adapter registry.
// Import this package with a blank identifier to register the adapter:
//
//	import _ "github.com/leapstack-labs/multiquery/pkg/adapters/duckdb"
package duckdb

import (
	"log/slog"

	"github.com/leapstack-labs/multiquery/pkg/adapter"
	"github.com/leapstack-labs/multiquery/pkg/core"
)

func init() {
	adapter.Register(core.DialectDuckDB, func(logger *slog.Logger) adapter.Adapter { return New(logger) })
}
