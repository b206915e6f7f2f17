package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Initialize the Postgres schema.
func InitSchema(ctx context.Context, db *sql.DB) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	createSessionsQuery := `
	CREATE TABLE IF NOT EXISTS sessions (
		id UUID PRIMARY KEY,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		last_activity TIMESTAMPTZ NOT NULL DEFAULT now()
	);
	`

	createPackageTypesQuery := `
	CREATE TABLE IF NOT EXISTS package_types (
		id SERIAL PRIMARY KEY,
		name TEXT NOT NULL UNIQUE
	);
	`

	createPackagesQuery := `
	CREATE TABLE IF NOT EXISTS packages (
		id UUID PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		weight DOUBLE PRECISION NOT NULL,
		price DOUBLE PRECISION NOT NULL,
		type_id INTEGER NOT NULL REFERENCES package_types(id),
		session_id UUID NOT NULL REFERENCES sessions(id),
		shipping_cost VARCHAR(50),
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);
	`

	createPackagesIndexQuery := `
	CREATE INDEX IF NOT EXISTS idx_packages_session_created
	ON packages(session_id, created_at);
	`

	createTasksQuery := `
	CREATE TABLE IF NOT EXISTS tasks (
		id UUID PRIMARY KEY,
		name TEXT NOT NULL,
		payload JSONB NOT NULL,
		status TEXT NOT NULL,
		retry_count INTEGER NOT NULL DEFAULT 0,
		max_retries INTEGER NOT NULL,
		scheduled_at TIMESTAMPTZ NOT NULL,
		locked_until TIMESTAMPTZ,
		locked_by UUID,
		processed_at TIMESTAMPTZ,
		error TEXT,
		created_at TIMESTAMPTZ NOT NULL
	);
	`

	createTasksIndexQuery := `
	CREATE INDEX IF NOT EXISTS idx_tasks_status_scheduled
	ON tasks(status, scheduled_at);
	`

	createTasksDlqQuery := `
	CREATE TABLE IF NOT EXISTS tasks_dlq (
		id UUID PRIMARY KEY,
		name TEXT NOT NULL,
		payload JSONB NOT NULL,
		retry_count INTEGER NOT NULL,
		error TEXT,
		failed_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		created_at TIMESTAMPTZ NOT NULL
	);
	`

	statements := []string{
		createSessionsQuery,
		createPackageTypesQuery,
		createPackagesQuery,
		createPackagesIndexQuery,
		createTasksQuery,
		createTasksIndexQuery,
		createTasksDlqQuery,
	}

	for i, stmt := range statements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}

// SeedPackageTypes inserts the reference package types, but only when the
// table is empty so redeploys never duplicate or rename existing rows.
func SeedPackageTypes(ctx context.Context, db *sql.DB) error {
	if db == nil {
		return errors.New("seed package types: DB is nil")
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("seed package types: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var count int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM package_types;`).Scan(&count); err != nil {
		return fmt.Errorf("seed package types: count rows: %w", err)
	}

	if count > 0 {
		return tx.Commit()
	}

	names := []string{"clothing", "electronics", "miscellaneous"}
	for _, name := range names {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO package_types (name) VALUES ($1);`, name); err != nil {
			return fmt.Errorf("seed package types: insert %q: %w", name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed package types: commit tx: %w", err)
	}

	return nil
}
