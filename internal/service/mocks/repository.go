package mocks

import (
	"context"
	"errors"
	"sort"

	"github.com/godilite/workforce-analytics/internal/repository"
	"github.com/godilite/workforce-analytics/internal/repository/models"
)

// MockDatasetRepository is a mock implementation of the DatasetRepository interface
// for testing the service layer.
type MockDatasetRepository struct {
	SaveDatasetFunc   func(ctx context.Context, ds models.Dataset, rows []models.PeriodRow) error
	GetDatasetFunc    func(ctx context.Context, id string) (models.Dataset, error)
	ListSubgroupsFunc func(ctx context.Context, datasetID string) ([]string, error)
	LoadRecordsFunc   func(ctx context.Context, datasetID string) ([]models.PeriodRow, error)
}

// SaveDataset implements the DatasetRepository interface
func (m *MockDatasetRepository) SaveDataset(ctx context.Context, ds models.Dataset, rows []models.PeriodRow) error {
	if m.SaveDatasetFunc != nil {
		return m.SaveDatasetFunc(ctx, ds, rows)
	}
	return errors.New("SaveDatasetFunc not implemented")
}

// GetDataset implements the DatasetRepository interface
func (m *MockDatasetRepository) GetDataset(ctx context.Context, id string) (models.Dataset, error) {
	if m.GetDatasetFunc != nil {
		return m.GetDatasetFunc(ctx, id)
	}
	return models.Dataset{}, errors.New("GetDatasetFunc not implemented")
}

// ListSubgroups implements the DatasetRepository interface
func (m *MockDatasetRepository) ListSubgroups(ctx context.Context, datasetID string) ([]string, error) {
	if m.ListSubgroupsFunc != nil {
		return m.ListSubgroupsFunc(ctx, datasetID)
	}
	return nil, errors.New("ListSubgroupsFunc not implemented")
}

// LoadRecords implements the DatasetRepository interface
func (m *MockDatasetRepository) LoadRecords(ctx context.Context, datasetID string) ([]models.PeriodRow, error) {
	if m.LoadRecordsFunc != nil {
		return m.LoadRecordsFunc(ctx, datasetID)
	}
	return nil, errors.New("LoadRecordsFunc not implemented")
}

// Stored returns a mock backed by rows captured from a SaveDataset call,
// so a test can import then analyze without a database.
func Stored() *MockDatasetRepository {
	var (
		saved models.Dataset
		rows  []models.PeriodRow
	)
	m := &MockDatasetRepository{}
	m.SaveDatasetFunc = func(_ context.Context, ds models.Dataset, r []models.PeriodRow) error {
		saved, rows = ds, r
		return nil
	}
	m.GetDatasetFunc = func(_ context.Context, id string) (models.Dataset, error) {
		if saved.ID == "" || id != saved.ID {
			return models.Dataset{}, repository.ErrNotFound
		}
		return saved, nil
	}
	m.ListSubgroupsFunc = func(_ context.Context, _ string) ([]string, error) {
		seen := map[string]bool{}
		var out []string
		for _, r := range rows {
			if r.Cost.Valid && !seen[r.Subgroup] {
				seen[r.Subgroup] = true
				out = append(out, r.Subgroup)
			}
		}
		sort.Strings(out)
		return out, nil
	}
	m.LoadRecordsFunc = func(_ context.Context, _ string) ([]models.PeriodRow, error) {
		return rows, nil
	}
	return m
}
