package db

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/odyssey-erp/recon-portal/internal/platform/db/migrations"
)

// Migrator applies the embedded schema migrations.
type Migrator struct {
	db *sql.DB
	fs fs.FS
}

// NewMigrator wraps the pool in a database/sql handle for goose.
func NewMigrator(pool *pgxpool.Pool) *Migrator {
	return &Migrator{db: stdlib.OpenDBFromPool(pool), fs: migrations.FS}
}

func (m *Migrator) prepare() error {
	goose.SetBaseFS(m.fs)
	if err := goose.SetDialect("pgx"); err != nil {
		return fmt.Errorf("platform/db: goose dialect: %w", err)
	}
	return nil
}

// Up applies every pending migration.
func (m *Migrator) Up(ctx context.Context) error {
	if err := m.prepare(); err != nil {
		return err
	}
	if err := goose.UpContext(ctx, m.db, "."); err != nil {
		return fmt.Errorf("platform/db: migrate up: %w", err)
	}
	return nil
}

// Reset rolls every migration back and applies them again, leaving an empty schema.
func (m *Migrator) Reset(ctx context.Context) error {
	if err := m.prepare(); err != nil {
		return err
	}
	if err := goose.ResetContext(ctx, m.db, "."); err != nil {
		return fmt.Errorf("platform/db: migrate reset: %w", err)
	}
	return m.Up(ctx)
}

// Close releases the database/sql wrapper.
func (m *Migrator) Close() error {
	return m.db.Close()
}
