package database

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"
)

// migrations is the ordered schema history. Each group runs in one transaction
// and its version is the 1-based index into this slice. Append only.
var migrations = [][]string{
	// 1: reference data and businesses
	{
		`CREATE TABLE IF NOT EXISTS countries (
			id   TEXT PRIMARY KEY,
			name TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS provinces (
			id         TEXT PRIMARY KEY,
			name       TEXT NOT NULL,
			country_id TEXT NOT NULL REFERENCES countries(id),
			population BIGINT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_provinces_country ON provinces(country_id)`,
		`CREATE TABLE IF NOT EXISTS cities (
			id          TEXT PRIMARY KEY,
			name        TEXT NOT NULL,
			province_id TEXT NOT NULL REFERENCES provinces(id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_cities_province ON cities(province_id)`,
		`CREATE TABLE IF NOT EXISTS categories (
			id   TEXT PRIMARY KEY,
			name TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS businesses (
			id                SERIAL PRIMARY KEY,
			name              TEXT NOT NULL,
			phone             TEXT NOT NULL DEFAULT '',
			category_id       TEXT REFERENCES categories(id),
			sent              BOOLEAN NOT NULL DEFAULT FALSE,
			country_id        TEXT REFERENCES countries(id),
			province_id       TEXT REFERENCES provinces(id),
			city_id           TEXT REFERENCES cities(id),
			contact_count     INTEGER NOT NULL DEFAULT 0,
			last_contacted_at TIMESTAMPTZ,
			created_at        TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at        TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
	},
	// 2: contact history
	{
		`CREATE TABLE IF NOT EXISTS contact_history (
			id           SERIAL PRIMARY KEY,
			business_id  INTEGER NOT NULL REFERENCES businesses(id) ON DELETE CASCADE,
			contacted_at TIMESTAMPTZ NOT NULL,
			medium       TEXT NOT NULL,
			notes        TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_contact_history_business ON contact_history(business_id, contacted_at DESC)`,
	},
}

// SchemaVersion is the version a fully migrated database reports
func SchemaVersion() int {
	return len(migrations)
}

// Migrate applies every pending migration group and returns how many ran
func Migrate(ctx context.Context, db *sqlx.DB, logger *slog.Logger) (int, error) {
	_, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		version    INTEGER PRIMARY KEY,
		applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`)
	if err != nil {
		return 0, fmt.Errorf("create schema_migrations: %w", err)
	}

	var current int
	if err := db.GetContext(ctx, &current, "SELECT COALESCE(MAX(version), 0) FROM schema_migrations"); err != nil {
		return 0, fmt.Errorf("read schema version: %w", err)
	}

	applied := 0
	for i := current; i < len(migrations); i++ {
		version := i + 1
		if err := applyMigration(ctx, db, version, migrations[i]); err != nil {
			return applied, err
		}
		logger.Info("migration applied", "version", version)
		applied++
	}
	return applied, nil
}

func applyMigration(ctx context.Context, db *sqlx.DB, version int, stmts []string) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("migration %d: begin: %w", version, err)
	}
	defer tx.Rollback()

	for i, stmt := range stmts {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration %d statement %d: %w", version, i+1, err)
		}
	}
	if _, err := tx.ExecContext(ctx, "INSERT INTO schema_migrations (version) VALUES ($1)", version); err != nil {
		return fmt.Errorf("migration %d: record version: %w", version, err)
	}
	return tx.Commit()
}
