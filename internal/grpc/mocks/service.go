package mocks

import (
	"context"
	"errors"

	"github.com/godilite/workforce-analytics/internal/analytics"
	"github.com/godilite/workforce-analytics/internal/ingest"
	"github.com/godilite/workforce-analytics/internal/service"
)

// MockAnalyticsService is a mock implementation of the AnalyticsService interface
// for testing the handler layer. It uses function-based mocking for flexibility.
type MockAnalyticsService struct {
	ImportDatasetFunc func(ctx context.Context, name string, table *ingest.Table) (service.DatasetInfo, error)
	ListSubgroupsFunc func(ctx context.Context, datasetID string) (service.SubgroupList, error)
	AnalyzeFunc       func(ctx context.Context, req service.AnalysisRequest) (*analytics.Report, error)
	ExportFunc        func(ctx context.Context, req service.AnalysisRequest) (service.ExportResult, error)
}

// ImportDataset implements the AnalyticsService interface
func (m *MockAnalyticsService) ImportDataset(ctx context.Context, name string, table *ingest.Table) (service.DatasetInfo, error) {
	if m.ImportDatasetFunc != nil {
		return m.ImportDatasetFunc(ctx, name, table)
	}
	return service.DatasetInfo{}, errors.New("ImportDatasetFunc not implemented")
}

// ListSubgroups implements the AnalyticsService interface
func (m *MockAnalyticsService) ListSubgroups(ctx context.Context, datasetID string) (service.SubgroupList, error) {
	if m.ListSubgroupsFunc != nil {
		return m.ListSubgroupsFunc(ctx, datasetID)
	}
	return service.SubgroupList{}, errors.New("ListSubgroupsFunc not implemented")
}

// Analyze implements the AnalyticsService interface
func (m *MockAnalyticsService) Analyze(ctx context.Context, req service.AnalysisRequest) (*analytics.Report, error) {
	if m.AnalyzeFunc != nil {
		return m.AnalyzeFunc(ctx, req)
	}
	return nil, errors.New("AnalyzeFunc not implemented")
}

// Export implements the AnalyticsService interface
func (m *MockAnalyticsService) Export(ctx context.Context, req service.AnalysisRequest) (service.ExportResult, error) {
	if m.ExportFunc != nil {
		return m.ExportFunc(ctx, req)
	}
	return service.ExportResult{}, errors.New("ExportFunc not implemented")
}
