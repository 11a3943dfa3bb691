package adapter

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/leapstack-labs/multiquery/pkg/core"
	"github.com/leapstack-labs/multiquery/pkg/normalize"
)

// BaseSQLAdapter provides common database/sql functionality for adapters.
// Embed this struct in concrete adapter implementations to get standard
// Close and Stream implementations; the embedding adapter supplies the
// dialect's decoder chain.
type BaseSQLAdapter struct {
	DB     *sql.DB
	Cfg    core.AdapterConfig
	Logger *slog.Logger
	Chain  *normalize.SQLChain
}

// Close closes the database connection.
func (b *BaseSQLAdapter) Close() error {
	if b.DB != nil {
		if b.Logger != nil {
			b.Logger.Debug("closing database connection", slog.String("target", b.Cfg.Name))
		}
		err := b.DB.Close()
		b.DB = nil
		return err
	}
	return nil
}

// IsConnected returns true if the database connection is established.
func (b *BaseSQLAdapter) IsConnected() bool {
	return b.DB != nil
}

// Attach pings db and adopts it as the adapter's pool. The pool is closed
// when the ping fails.
func (b *BaseSQLAdapter) Attach(ctx context.Context, db *sql.DB, cfg core.AdapterConfig) error {
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return err
	}
	b.DB = db
	b.Cfg = cfg
	return nil
}

// Stream executes a SQL statement and hands each normalized row to fn.
func (b *BaseSQLAdapter) Stream(ctx context.Context, sqlStr string, fn RowFunc) error {
	if b.DB == nil {
		return fmt.Errorf("database connection not established")
	}
	if b.Chain == nil {
		return fmt.Errorf("no decoder chain configured")
	}

	rows, err := b.DB.QueryContext(ctx, sqlStr)
	if err != nil {
		return err
	}
	defer func() { _ = rows.Close() }()

	colTypes, err := rows.ColumnTypes()
	if err != nil {
		return fmt.Errorf("failed to read column types: %w", err)
	}
	names := make([]string, len(colTypes))
	types := make([]string, len(colTypes))
	for i, ct := range colTypes {
		names[i] = ct.Name()
		types[i] = ct.DatabaseTypeName()
	}
	cols := normalize.Columns(names, types)

	values := make([]any, len(cols))
	ptrs := make([]any, len(cols))
	for i := range values {
		ptrs[i] = &values[i]
	}
	cells := make([]normalize.SQLCell, len(cols))

	count := 0
	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return fmt.Errorf("failed to scan row: %w", err)
		}
		for i, col := range cols {
			cells[i] = normalize.SQLCell{Value: values[i], Type: col.Type}
		}

		row, err := normalize.Build(b.Cfg.Name, cols, cells, b.Chain)
		if err != nil {
			return err
		}
		if err := fn(row); err != nil {
			return err
		}
		count++
	}
	if err := rows.Err(); err != nil {
		return err
	}

	if b.Logger != nil {
		b.Logger.Debug("stream finished", slog.String("target", b.Cfg.Name), slog.Int("rows", count))
	}
	return nil
}
