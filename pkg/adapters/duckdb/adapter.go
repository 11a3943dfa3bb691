package duckdb

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/leapstack-labs/multiquery/pkg/adapter"
	"github.com/leapstack-labs/multiquery/pkg/core"

	_ "github.com/marcboeker/go-duckdb" // duckdb driver
)

const memoryPath = ":memory:"

// Adapter implements the adapter.Adapter interface for DuckDB.
type Adapter struct {
	adapter.BaseSQLAdapter
}

// New creates a new DuckDB adapter instance.
// If logger is nil, a discard logger is used.
func New(logger *slog.Logger) *Adapter {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Adapter{
		BaseSQLAdapter: adapter.BaseSQLAdapter{Logger: logger, Chain: Chain()},
	}
}

// Dialect returns the SQL dialect for this adapter.
func (a *Adapter) Dialect() core.Dialect {
	return core.DialectDuckDB
}

// Connect opens the database named by the URI.
// duckdb:// or duckdb://:memory: opens an in-memory database.
func (a *Adapter) Connect(ctx context.Context, cfg core.AdapterConfig) error {
	path, params, err := parseURI(core.StripScheme(cfg.URI))
	if err != nil {
		return err
	}

	a.Logger.Debug("connecting to duckdb",
		slog.String("target", cfg.Name),
		slog.String("path", path),
		slog.Any("extensions", params.Extensions))

	db, err := sql.Open("duckdb", params.dsn(path))
	if err != nil {
		return fmt.Errorf("failed to open duckdb connection: %w", err)
	}
	if path == memoryPath {
		db.SetMaxOpenConns(1)
	}

	if err := a.Attach(ctx, db, cfg); err != nil {
		return fmt.Errorf("failed to ping duckdb: %w", err)
	}

	if err := a.loadExtensions(ctx, params.Extensions); err != nil {
		_ = a.Close()
		return err
	}
	return nil
}

func (a *Adapter) loadExtensions(ctx context.Context, exts []string) error {
	for _, ext := range exts {
		stmt := fmt.Sprintf("INSTALL %s; LOAD %s;", ext, ext)
		if _, err := a.DB.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to load extension %s: %w", ext, err)
		}
		a.Logger.Debug("loaded extension", slog.String("target", a.Cfg.Name), slog.String("extension", ext))
	}
	return nil
}

// Ensure Adapter implements adapter.Adapter interface
var _ adapter.Adapter = (*Adapter)(nil)
