package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/godilite/workforce-analytics/internal/repository/models"
)

const dateLayout = "2006-01-02"

// ErrNotFound is returned when a dataset id is unknown.
var ErrNotFound = errors.New("dataset not found")

type DatasetRepository struct {
	db *sql.DB
}

func NewDatasetRepository(db *sql.DB) *DatasetRepository {
	return &DatasetRepository{db: db}
}

// SaveDataset stores the dataset and its records in one transaction.
func (s *DatasetRepository) SaveDataset(ctx context.Context, ds models.Dataset, rows []models.PeriodRow) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin SaveDataset: %w", err)
	}
	defer tx.Rollback()

	const insertDataset = `
		INSERT INTO datasets (id, name, base_year, period_count, employees, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	if _, err := tx.ExecContext(ctx, insertDataset,
		ds.ID, ds.Name, ds.BaseYear, ds.PeriodCount, ds.Employees, ds.CreatedAt.UTC().Format(time.RFC3339),
	); err != nil {
		return fmt.Errorf("insert dataset: %w", err)
	}

	const insertRecord = `
		INSERT INTO period_records (dataset_id, seq, employee, subgroup, label, period_date, year, cost)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	stmt, err := tx.PrepareContext(ctx, insertRecord)
	if err != nil {
		return fmt.Errorf("prepare insert records: %w", err)
	}
	defer stmt.Close()

	for _, r := range rows {
		if _, err := stmt.ExecContext(ctx,
			ds.ID, r.Seq, r.Employee, r.Subgroup, r.Label, r.PeriodDate.UTC().Format(dateLayout), r.Year, r.Cost,
		); err != nil {
			return fmt.Errorf("insert record %d: %w", r.Seq, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit SaveDataset: %w", err)
	}
	return nil
}

// GetDataset fetches dataset metadata.
func (s *DatasetRepository) GetDataset(ctx context.Context, id string) (models.Dataset, error) {
	const query = `
		SELECT id, name, base_year, period_count, employees, created_at
		FROM datasets
		WHERE id = ?
	`

	var ds models.Dataset
	var created string
	err := s.db.QueryRowContext(ctx, query, id).Scan(&ds.ID, &ds.Name, &ds.BaseYear, &ds.PeriodCount, &ds.Employees, &created)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Dataset{}, ErrNotFound
		}
		return models.Dataset{}, fmt.Errorf("query GetDataset: %w", err)
	}

	ds.CreatedAt, err = time.Parse(time.RFC3339, created)
	if err != nil {
		return models.Dataset{}, fmt.Errorf("parse created_at: %w", err)
	}
	return ds, nil
}

// ListSubgroups returns the subgroups that have at least one cost, sorted.
func (s *DatasetRepository) ListSubgroups(ctx context.Context, datasetID string) ([]string, error) {
	const query = `
		SELECT DISTINCT subgroup
		FROM period_records
		WHERE dataset_id = ? AND cost IS NOT NULL
		ORDER BY subgroup
	`

	rows, err := s.db.QueryContext(ctx, query, datasetID)
	if err != nil {
		return nil, fmt.Errorf("query ListSubgroups: %w", err)
	}
	defer rows.Close()

	var results []string
	for rows.Next() {
		var sg string
		if err := rows.Scan(&sg); err != nil {
			return nil, fmt.Errorf("scan ListSubgroups row: %w", err)
		}
		results = append(results, sg)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ListSubgroups: %w", err)
	}
	return results, nil
}

// LoadRecords returns every record of the dataset in reshape order.
func (s *DatasetRepository) LoadRecords(ctx context.Context, datasetID string) ([]models.PeriodRow, error) {
	const query = `
		SELECT seq, employee, subgroup, label, period_date, year, cost
		FROM period_records
		WHERE dataset_id = ?
		ORDER BY seq
	`

	rows, err := s.db.QueryContext(ctx, query, datasetID)
	if err != nil {
		return nil, fmt.Errorf("query LoadRecords: %w", err)
	}
	defer rows.Close()

	var results []models.PeriodRow
	for rows.Next() {
		var r models.PeriodRow
		var date string
		if err := rows.Scan(&r.Seq, &r.Employee, &r.Subgroup, &r.Label, &date, &r.Year, &r.Cost); err != nil {
			return nil, fmt.Errorf("scan LoadRecords row: %w", err)
		}
		r.PeriodDate, err = time.Parse(dateLayout, date)
		if err != nil {
			return nil, fmt.Errorf("parse period_date %q: %w", date, err)
		}
		results = append(results, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate LoadRecords: %w", err)
	}
	return results, nil
}
