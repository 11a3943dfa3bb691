// Package postgres provides a PostgreSQL database adapter for multiquery.
//
// This file registers the PostgreSQL adapter with the adapter registry.
// Import this package with a blank identifier to register the adapter:
//
//	import _ "github.com/leapstack-labs/multiquery/pkg/adapters/postgres"
package postgres

import (
	"log/slog"

	"github.com/leapstack-labs/multiquery/pkg/adapter"
	"github.com/leapstack-labs/multiquery/pkg/core"
)

func init() {
	adapter.Register(core.DialectPostgres, func(logger *slog.Logger) adapter.Adapter { return New(logger) })
}
