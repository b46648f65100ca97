package grpc

import (
	"context"
	"time"

	"github.com/godilite/workforce-analytics/internal/analytics"
	"github.com/godilite/workforce-analytics/internal/ingest"
	"github.com/godilite/workforce-analytics/internal/service"
)

// Cacher defines the interface for cache operations.
type Cacher interface {
	Close() error
	Get(ctx context.Context, key string, dest any) error
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
}

type AnalyticsService interface {
	ImportDataset(ctx context.Context, name string, table *ingest.Table) (service.DatasetInfo, error)
	ListSubgroups(ctx context.Context, datasetID string) (service.SubgroupList, error)
	Analyze(ctx context.Context, req service.AnalysisRequest) (*analytics.Report, error)
	Export(ctx context.Context, req service.AnalysisRequest) (service.ExportResult, error)
}
