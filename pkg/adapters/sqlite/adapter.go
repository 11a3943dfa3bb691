package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"github.com/leapstack-labs/multiquery/pkg/adapter"
	"github.com/leapstack-labs/multiquery/pkg/core"

	_ "modernc.org/sqlite" // sqlite driver
)

const memoryPath = ":memory:"

// Adapter implements the adapter.Adapter interface for SQLite.
type Adapter struct {
	adapter.BaseSQLAdapter
}

// New creates a new SQLite adapter instance.
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
	return core.DialectSQLite
}

// Connect opens the database file named by the URI.
// sqlite://:memory: (or an empty path) opens an in-memory database.
func (a *Adapter) Connect(ctx context.Context, cfg core.AdapterConfig) error {
	dsn := buildDSN(cfg.URI)

	a.Logger.Debug("connecting to sqlite", slog.String("target", cfg.Name), slog.String("path", dsn))

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return fmt.Errorf("failed to open sqlite connection: %w", err)
	}
	if isMemory(dsn) {
		// every pooled connection would otherwise get its own empty database
		db.SetMaxOpenConns(1)
	}

	if err := a.Attach(ctx, db, cfg); err != nil {
		return fmt.Errorf("failed to ping sqlite: %w", err)
	}
	return nil
}

// buildDSN strips the scheme and maps an empty path to an in-memory database.
func buildDSN(uri string) string {
	dsn := core.StripScheme(uri)
	if dsn == "" || strings.HasPrefix(dsn, "?") {
		return memoryPath + dsn
	}
	return dsn
}

func isMemory(dsn string) bool {
	return strings.HasPrefix(dsn, memoryPath) || strings.Contains(dsn, "mode=memory")
}

// Ensure Adapter implements adapter.Adapter interface
var _ adapter.Adapter = (*Adapter)(nil)
