package store

import (
	"context"
	"database/sql"
)

// schema contains the DDL for all sourcewatch tables.
// Each statement uses IF NOT EXISTS for idempotency.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS settings (
		key        TEXT PRIMARY KEY,
		value      TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS attempts (
		id            TEXT PRIMARY KEY,
		resource_name TEXT NOT NULL,
		type_id       TEXT NOT NULL,
		control       TEXT NOT NULL,
		created_at    TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_attempts_created_at ON attempts(created_at)`,
}

func migrate(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
