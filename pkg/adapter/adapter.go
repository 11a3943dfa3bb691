// Package adapter provides the database adapter contract for multiquery.
//
// This package contains the public contract that all database adapters must
// implement, the dialect registry used to resolve targets, and a base
// implementation for adapters built on database/sql.
// Concrete adapter implementations are in pkg/adapters/ subdirectories.
package adapter

import (
	"context"

	"github.com/leapstack-labs/multiquery/pkg/core"
)

// RowFunc receives each normalized row as soon as it is decoded. Returning
// an error stops the stream.
type RowFunc func(row *core.Row) error

// Adapter defines the interface that all database adapters must implement.
// An adapter owns one connection pool for one target.
type Adapter interface {
	// Connect establishes the connection pool. It makes a single attempt and
	// pings the backend so that auth and network failures surface here.
	Connect(ctx context.Context, cfg core.AdapterConfig) error

	// Close releases the pool. It is safe to call on an adapter that never
	// connected.
	Close() error

	// Stream runs the query text verbatim and hands every row to fn in the
	// backend's result order. Rows are never buffered.
	Stream(ctx context.Context, sql string, fn RowFunc) error

	// Dialect returns the backend kind served by this adapter.
	Dialect() core.Dialect
}
