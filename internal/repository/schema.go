package repository

import (
	"context"
	"database/sql"
	"fmt"
)

const schema = `
	CREATE TABLE IF NOT EXISTS datasets (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		base_year INTEGER NOT NULL,
		period_count INTEGER NOT NULL,
		employees INTEGER NOT NULL,
		created_at TEXT NOT NULL
	);
	CREATE TABLE IF NOT EXISTS period_records (
		dataset_id TEXT NOT NULL,
		seq INTEGER NOT NULL,
		employee TEXT NOT NULL,
		subgroup TEXT NOT NULL,
		label TEXT NOT NULL,
		period_date TEXT NOT NULL,
		year INTEGER NOT NULL,
		cost REAL,
		PRIMARY KEY (dataset_id, seq),
		FOREIGN KEY (dataset_id) REFERENCES datasets(id)
	);
	CREATE INDEX IF NOT EXISTS idx_period_records_subgroup ON period_records (dataset_id, subgroup);
`

// Migrate creates the dataset tables when missing.
func Migrate(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("migrate schema: %w", err)
	}
	return nil
}
