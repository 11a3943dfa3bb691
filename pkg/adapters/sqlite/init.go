// Package sqlite provides a SQLite database adapter for multiquery.
//
// This file registers the SQLite adapter with the adapter registry.
// Import this package with a blank identifier to register the adapter:
//
//	import _ "github.com/leapstack-labs/multiquery/pkg/adapters/sqlite"
package sqlite

import (
	"log/slog"

	"github.com/leapstack-labs/multiquery/pkg/adapter"
	"github.com/leapstack-labs/multiquery/pkg/core"
)

func init() {
	adapter.Register(core.DialectSQLite, func(logger *slog.Logger) adapter.Adapter { return New(logger) })
}
