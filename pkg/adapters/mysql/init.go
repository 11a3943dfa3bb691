// Package mysql provides a MySQL database adapter for multiquery.
//
// This file registers the MySQL adapter with the adapter registry.
// Import this package with a blank identifier to register the adapter:
//
//	import _ "github.com/leapstack-labs/multiquery/pkg/adapters/mysql"
package mysql

import (
	"log/slog"

	"github.com/leapstack-labs/multiquery/pkg/adapter"
	"github.com/leapstack-labs/multiquery/pkg/core"
)

func init() {
	adapter.Register(core.DialectMySQL, func(logger *slog.Logger) adapter.Adapter { return New(logger) })
}
