package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/leapstack-labs/multiquery/pkg/adapter"
	"github.com/leapstack-labs/multiquery/pkg/core"
	"github.com/leapstack-labs/multiquery/pkg/normalize"
)

// Adapter implements the adapter.Adapter interface for PostgreSQL.
// It talks to the server through a native pgx pool so that cells can be
// decoded by type OID rather than through database/sql.
type Adapter struct {
	Pool   *pgxpool.Pool
	Cfg    core.AdapterConfig
	Logger *slog.Logger
	chain  *normalize.Chain[Cell]
}

// New creates a new PostgreSQL adapter instance.
// If logger is nil, a discard logger is used.
func New(logger *slog.Logger) *Adapter {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Adapter{Logger: logger, chain: Chain()}
}

// Dialect returns the SQL dialect for this adapter.
func (a *Adapter) Dialect() core.Dialect {
	return core.DialectPostgres
}

// Connect opens a connection pool for the URI and pings the server.
func (a *Adapter) Connect(ctx context.Context, cfg core.AdapterConfig) error {
	poolCfg, err := pgxpool.ParseConfig(cfg.URI)
	if err != nil {
		return fmt.Errorf("invalid postgres connection string: %w", err)
	}

	a.Logger.Debug("connecting to postgres",
		slog.String("target", cfg.Name),
		slog.String("host", poolCfg.ConnConfig.Host),
		slog.String("database", poolCfg.ConnConfig.Database))

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return fmt.Errorf("failed to open postgres connection: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return fmt.Errorf("failed to ping postgres: %w", err)
	}

	a.Pool = pool
	a.Cfg = cfg
	return nil
}

// Close closes the connection pool.
func (a *Adapter) Close() error {
	if a.Pool != nil {
		a.Logger.Debug("closing database connection", slog.String("target", a.Cfg.Name))
		a.Pool.Close()
		a.Pool = nil
	}
	return nil
}

// IsConnected returns true if the connection pool is open.
func (a *Adapter) IsConnected() bool {
	return a.Pool != nil
}

// Stream executes a SQL statement and hands each normalized row to fn.
func (a *Adapter) Stream(ctx context.Context, sql string, fn adapter.RowFunc) error {
	if a.Pool == nil {
		return fmt.Errorf("database connection not established")
	}

	rows, err := a.Pool.Query(ctx, sql)
	if err != nil {
		return err
	}
	defer rows.Close()

	typeMap := rows.Conn().TypeMap()
	fields := rows.FieldDescriptions()
	names := make([]string, len(fields))
	types := make([]string, len(fields))
	for i, f := range fields {
		names[i] = f.Name
		types[i] = typeName(typeMap, f.DataTypeOID)
	}
	cols := normalize.Columns(names, types)
	cells := make([]Cell, len(fields))

	count := 0
	for rows.Next() {
		raw := rows.RawValues()
		for i, f := range fields {
			cells[i] = Cell{Map: typeMap, OID: f.DataTypeOID, Format: f.Format, Raw: raw[i]}
		}

		row, err := normalize.Build(a.Cfg.Name, cols, cells, a.chain)
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

	a.Logger.Debug("stream finished", slog.String("target", a.Cfg.Name), slog.Int("rows", count))
	return nil
}

// typeName resolves an OID to its registered name, or the number for types
// the connection does not know (enums, domains, extension types).
func typeName(m *pgtype.Map, oid uint32) string {
	if t, ok := m.TypeForOID(oid); ok {
		return t.Name
	}
	return fmt.Sprintf("oid:%d", oid)
}

// Ensure Adapter implements adapter.Adapter interface
var _ adapter.Adapter = (*Adapter)(nil)
