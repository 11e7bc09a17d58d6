package database

import (
	"context"
	"fmt"
	"log/slog"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"

	"github.com/udelar-dtx/dtx_backend/config"
)

// NewEntDriver opens PostgreSQL and wraps it in an ent SQL driver.
func NewEntDriver(cfg config.DatabaseConfig) (dialect.Driver, error) {
	return NewEntDriverFromConfig(FromCentralConfig(cfg))
}

// NewEntDriverFromConfig creates an ent driver from package Config. With query
// logging enabled every statement is logged at debug level.
func NewEntDriverFromConfig(cfg Config) (dialect.Driver, error) {
	db, err := openSQLDB(cfg)
	if err != nil {
		return nil, err
	}

	var drv dialect.Driver = entsql.OpenDB(dialect.Postgres, db)
	if cfg.LogQueries {
		drv = dialect.DebugWithContext(drv, func(ctx context.Context, v ...any) {
			slog.DebugContext(ctx, "sql", "stmt", fmt.Sprint(v...))
		})
	}
	return drv, nil
}
