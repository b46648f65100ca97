package service

import (
	"context"

	"github.com/godilite/workforce-analytics/internal/repository/models"
)

// DatasetRepository defines the storage operations the service needs.
type DatasetRepository interface {
	SaveDataset(ctx context.Context, ds models.Dataset, rows []models.PeriodRow) error
	GetDataset(ctx context.Context, id string) (models.Dataset, error)
	ListSubgroups(ctx context.Context, datasetID string) ([]string, error)
	LoadRecords(ctx context.Context, datasetID string) ([]models.PeriodRow, error)
}
