package postgres

import (
	"context"
	"errors"
	"fmt"

	"gokeyword/domain/core"
	"gokeyword/domain/region"
	"gokeyword/ports"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

const undefinedTable = "42P01"

// regionRepository implements the RegionRepository interface
type regionRepository struct {
	db    *sqlx.DB
	table string
}

// NewRegionRepository creates a new PostgreSQL region reference repository.
// table must be a trusted identifier; it is interpolated into queries.
func NewRegionRepository(db *sqlx.DB, table string) ports.RegionRepository {
	return &regionRepository{db: db, table: table}
}

// List retrieves every reference record ordered by id
func (r *regionRepository) List(ctx context.Context) ([]region.Record, error) {
	query := fmt.Sprintf(`SELECT
		id, name, level_1, COALESCE(level_2, '') AS level_2, COALESCE(level_3, '') AS level_3
	FROM %s ORDER BY id`, r.table)

	var records []region.Record
	if err := r.db.SelectContext(ctx, &records, query); err != nil {
		return nil, r.classify(err, "failed to list regions")
	}
	return records, nil
}

// ReplaceAll truncates the table and bulk loads records with COPY in one
// transaction, so readers never observe a half-written reference.
func (r *regionRepository) ReplaceAll(ctx context.Context, records []region.Record) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, fmt.Sprintf("TRUNCATE TABLE %s RESTART IDENTITY", r.table)); err != nil {
		return r.classify(err, "failed to truncate regions")
	}

	stmt, err := tx.PrepareContext(ctx, pq.CopyIn(r.table, "name", "level_1", "level_2", "level_3"))
	if err != nil {
		return fmt.Errorf("failed to prepare copy: %w", err)
	}

	for _, rec := range records {
		if _, err := stmt.ExecContext(ctx, rec.Name, rec.Level1, rec.Level2, rec.Level3); err != nil {
			stmt.Close()
			return fmt.Errorf("failed to copy region %q: %w", rec.Name, err)
		}
	}
	if _, err := stmt.ExecContext(ctx); err != nil {
		stmt.Close()
		return fmt.Errorf("failed to flush copy: %w", err)
	}
	if err := stmt.Close(); err != nil {
		return fmt.Errorf("failed to close copy: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit regions: %w", err)
	}
	return nil
}

// Count returns the number of reference records
func (r *regionRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.GetContext(ctx, &n, fmt.Sprintf("SELECT COUNT(*) FROM %s", r.table)); err != nil {
		return 0, r.classify(err, "failed to count regions")
	}
	return n, nil
}

// classify maps a missing table to ErrReferenceUnavailable; everything else
// is wrapped as is.
func (r *regionRepository) classify(err error, message string) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == undefinedTable {
		return core.NewReferenceUnavailableError(fmt.Errorf("%s: table %s does not exist", message, r.table))
	}
	return fmt.Errorf("%s: %w", message, err)
}
