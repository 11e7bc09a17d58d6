// Package store persists patients and daily records in PostgreSQL using
// ent's SQL driver and query builders.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	entschema "entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/dialect/sql/sqlgraph"

	"github.com/udelar-dtx/dtx_backend/internal/schema"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("record already exists")
)

// Store implements Patients and Records over a single ent driver.
type Store struct {
	drv dialect.Driver
	now func() time.Time
}

func New(drv dialect.Driver) *Store {
	return &Store{drv: drv, now: time.Now}
}

func (s *Store) builder() *entsql.DialectBuilder {
	return entsql.Dialect(dialect.Postgres)
}

// Migrate creates or updates all tables.
func (s *Store) Migrate(ctx context.Context) error {
	m, err := entschema.NewMigrate(s.drv)
	if err != nil {
		return fmt.Errorf("create migrate: %w", err)
	}
	if err := m.Create(ctx, schema.Tables...); err != nil {
		return fmt.Errorf("migrate tables: %w", err)
	}
	return nil
}

// Close releases the underlying driver.
func (s *Store) Close() error {
	return s.drv.Close()
}

func (s *Store) query(ctx context.Context, q string, args []any) (*entsql.Rows, error) {
	rows := &entsql.Rows{}
	if err := s.drv.Query(ctx, q, args, rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *Store) exec(ctx context.Context, q string, args []any) (int64, error) {
	var res sql.Result
	if err := s.drv.Exec(ctx, q, args, &res); err != nil {
		if sqlgraph.IsUniqueConstraintError(err) {
			return 0, fmt.Errorf("%w: %v", ErrDuplicate, err)
		}
		return 0, err
	}
	return res.RowsAffected()
}

func nullTime(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}
