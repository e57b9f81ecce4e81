package postgres

import (
	"context"
	"database/sql"
	_ "embed"
)

//go:embed migrations/000001_init.up.sql
var initMigrationUp string

//go:embed migrations/000001_init.down.sql
var initMigrationDown string

// MigrateUp executes the database migrations. The baseline schema names the
// tags column "tags"; deployments running with a different TagsColumn manage
// that column themselves.
func MigrateUp(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, initMigrationUp)
	return err
}

// MigrateDown executes the database migrations in reverse order.
func MigrateDown(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, initMigrationDown)
	return err
}
