package database

import (
	"context"

	"gokeyword/internal"
	"gokeyword/internal/config"
	"gokeyword/internal/errors"
	"gokeyword/internal/migration"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// Open connects to the reference database and applies migrations.
// It returns a CONFIG_INVALID error when no DATABASE_URL is set.
func Open(ctx context.Context, cfg config.DatabaseConfig, logger *internal.Logger) (*sqlx.DB, error) {
	if !cfg.Enabled() {
		return nil, errors.ConfigInvalid("DATABASE_URL is required")
	}

	db, err := sqlx.ConnectContext(ctx, "postgres", cfg.DSN())
	if err != nil {
		return nil, errors.WithCode(errors.CodeDatabaseError, errors.Wrap(err, "failed to connect to database"))
	}

	if err := Migrate(ctx, db, cfg.Table, logger); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// Migrate creates the reference table and its index when missing
func Migrate(ctx context.Context, db *sqlx.DB, table string, logger *internal.Logger) error {
	runner := migration.NewRunner(table)
	if err := runner.Run(ctx, db); err != nil {
		return errors.WithCode(errors.CodeDatabaseError, errors.Wrap(err, "database migration failed"))
	}
	if logger != nil {
		logger.Info("schema %s ready for table %s", runner.Version(), table)
	}
	return nil
}
