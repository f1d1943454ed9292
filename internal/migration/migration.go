package migration

import (
	"context"
	"fmt"

	"gokeyword/internal/errors"

	"github.com/jmoiron/sqlx"
)

// DefaultRegionTable is the reference table used when none is configured
const DefaultRegionTable = "korean_regions"

// Migrator defines the interface for database migration operations
type Migrator interface {
	Run(ctx context.Context, db *sqlx.DB) error
	Version() string
}

// MigrationRunner creates the region reference schema. Every step is
// idempotent so it runs on each startup.
type MigrationRunner struct {
	version string
	table   string
}

// NewRunner creates a new migration runner for the given reference table
func NewRunner(table string) *MigrationRunner {
	if table == "" {
		table = DefaultRegionTable
	}
	return &MigrationRunner{
		version: "1.0.0",
		table:   table,
	}
}

// Version returns the migration version
func (r *MigrationRunner) Version() string {
	return r.version
}

// Run executes all database migrations in the correct order
func (r *MigrationRunner) Run(ctx context.Context, db *sqlx.DB) error {
	if err := r.createRegionTable(ctx, db); err != nil {
		return errors.Wrapf(err, "failed to create %s table", r.table)
	}

	if err := r.createIndexes(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create indexes")
	}

	return nil
}

func (r *MigrationRunner) createRegionTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id SERIAL PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			level_1 VARCHAR(50) NOT NULL,
			level_2 VARCHAR(50),
			level_3 VARCHAR(50)
		)
	`, r.table))
	return err
}

func (r *MigrationRunner) createIndexes(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, fmt.Sprintf(
		`CREATE INDEX IF NOT EXISTS idx_%s_name ON %s (name)`, r.table, r.table))
	return err
}

var _ Migrator = (*MigrationRunner)(nil)
