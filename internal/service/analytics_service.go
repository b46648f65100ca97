package service

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/godilite/workforce-analytics/internal/analytics"
	"github.com/godilite/workforce-analytics/internal/export"
	"github.com/godilite/workforce-analytics/internal/ingest"
	"github.com/godilite/workforce-analytics/internal/repository"
	"github.com/godilite/workforce-analytics/internal/repository/models"
	"github.com/google/uuid"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

const (
	dbTimeout = 5 * time.Second
)

var (
	ErrDatasetNotFound = errors.New("dataset not found")
	ErrStorageFailure  = errors.New("storage failure")
)

// AnalyticsService imports cost tables and analyzes their subgroups.
type AnalyticsService struct {
	storage  DatasetRepository
	analyzer *analytics.Analyzer
	settings Settings
	logger   *zap.Logger
	now      func() time.Time
}

// NewAnalyticsService creates a new AnalyticsService instance.
func NewAnalyticsService(storage DatasetRepository, settings Settings, logger *zap.Logger) *AnalyticsService {
	if storage == nil {
		panic("storage must not be nil")
	}
	if logger == nil {
		l, _ := zap.NewProduction()
		logger = l
	}
	return &AnalyticsService{
		storage:  storage,
		analyzer: analytics.NewAnalyzer(logger),
		settings: settings,
		logger:   logger,
		now:      time.Now,
	}
}

func (s *AnalyticsService) storageErr(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return ErrDatasetNotFound
	}
	return fmt.Errorf("%w: %v", ErrStorageFailure, err)
}

// ImportDataset reshapes a decoded table and stores its long-form records.
func (s *AnalyticsService) ImportDataset(ctx context.Context, name string, table *ingest.Table) (DatasetInfo, error) {
	if table == nil {
		return DatasetInfo{}, &analytics.ConfigurationError{Reason: "empty table", Required: analytics.RequiredColumns}
	}

	records, err := analytics.Reshape(table.Rows, table.PeriodColumns, analytics.AnchorMonth(s.settings.BaseYear))
	if err != nil {
		return DatasetInfo{}, err
	}

	ds := models.Dataset{
		ID:          uuid.NewString(),
		Name:        name,
		BaseYear:    s.settings.BaseYear,
		PeriodCount: len(table.PeriodColumns),
		Employees:   len(table.Rows),
		CreatedAt:   s.now().UTC(),
	}

	dbCtx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	if err := s.storage.SaveDataset(dbCtx, ds, toPeriodRows(records)); err != nil {
		s.logger.Error("failed to store dataset", zap.String("name", name), zap.Error(err))
		return DatasetInfo{}, s.storageErr(err)
	}

	subgroups := analytics.Subgroups(records)
	s.logger.Info("dataset imported",
		zap.String("dataset_id", ds.ID),
		zap.String("name", name),
		zap.Int("employees", ds.Employees),
		zap.Int("periods", ds.PeriodCount),
		zap.Int("records", len(records)))

	return DatasetInfo{
		ID:              ds.ID,
		Name:            name,
		Employees:       ds.Employees,
		Periods:         ds.PeriodCount,
		Records:         len(records),
		Subgroups:       subgroups,
		DefaultSubgroup: analytics.DefaultSubgroup(subgroups, s.settings.PreferredSubgroup),
	}, nil
}

// ListSubgroups returns the selectable subgroups and the default selection.
func (s *AnalyticsService) ListSubgroups(ctx context.Context, datasetID string) (SubgroupList, error) {
	dbCtx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	if _, err := s.storage.GetDataset(dbCtx, datasetID); err != nil {
		return SubgroupList{}, s.storageErr(err)
	}
	subgroups, err := s.storage.ListSubgroups(dbCtx, datasetID)
	if err != nil {
		return SubgroupList{}, s.storageErr(err)
	}

	return SubgroupList{
		Subgroups: subgroups,
		Default:   analytics.DefaultSubgroup(subgroups, s.settings.PreferredSubgroup),
	}, nil
}

// Analyze runs the analytics pipeline for the requested subgroup.
func (s *AnalyticsService) Analyze(ctx context.Context, req AnalysisRequest) (*analytics.Report, error) {
	params, err := s.resolveParams(req)
	if err != nil {
		return nil, err
	}

	records, err := s.loadRecords(ctx, req.DatasetID)
	if err != nil {
		return nil, err
	}

	subgroup := req.Subgroup
	if subgroup == "" {
		subgroup = analytics.DefaultSubgroup(analytics.Subgroups(records), s.settings.PreferredSubgroup)
	}

	report, err := s.analyzer.Analyze(ctx, records, subgroup, params)
	if err != nil {
		if errors.Is(err, analytics.ErrNoData) {
			s.logger.Info("no data for subgroup", zap.String("dataset_id", req.DatasetID), zap.String("subgroup", subgroup))
		}
		return nil, err
	}

	s.logger.Info("subgroup analyzed",
		zap.String("dataset_id", req.DatasetID),
		zap.String("subgroup", subgroup),
		zap.Int("employees", report.Group.Employees),
		zap.Float64("delta_total", report.Group.DeltaTotal),
		zap.Stringer("params", params))

	return report, nil
}

// Export analyzes the subgroup and renders the result workbook.
func (s *AnalyticsService) Export(ctx context.Context, req AnalysisRequest) (ExportResult, error) {
	report, err := s.Analyze(ctx, req)
	if err != nil {
		return ExportResult{}, err
	}

	var buf bytes.Buffer
	if err := export.WriteWorkbook(&buf, report); err != nil {
		return ExportResult{}, fmt.Errorf("export %s: %w", report.Subgroup, err)
	}
	return ExportResult{Filename: export.Filename(report.Subgroup), Content: buf.Bytes()}, nil
}

func (s *AnalyticsService) resolveParams(req AnalysisRequest) (analytics.Params, error) {
	p := s.settings.Defaults
	if req.AbsenceThreshold != nil {
		if !s.settings.ThresholdBounds.Contains(*req.AbsenceThreshold) {
			return p, &analytics.ConfigurationError{Reason: fmt.Sprintf("absence threshold %d outside [%d, %d]",
				*req.AbsenceThreshold, s.settings.ThresholdBounds.Min, s.settings.ThresholdBounds.Max)}
		}
		p.AbsenceThreshold = float64(*req.AbsenceThreshold)
	}
	// top-N only sets the ranking width, so it is pinned into range instead of rejected.
	if req.TopN != nil {
		p.TopN = s.settings.TopNBounds.Clamp(*req.TopN)
		if p.TopN != *req.TopN {
			s.logger.Debug("top-N clamped", zap.Int("requested", *req.TopN), zap.Int("applied", p.TopN))
		}
	}
	return p, p.Validate()
}

func (s *AnalyticsService) loadRecords(ctx context.Context, datasetID string) ([]analytics.PeriodRecord, error) {
	dbCtx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	if _, err := s.storage.GetDataset(dbCtx, datasetID); err != nil {
		return nil, s.storageErr(err)
	}
	rows, err := s.storage.LoadRecords(dbCtx, datasetID)
	if err != nil {
		s.logger.Error("failed to load records", zap.String("dataset_id", datasetID), zap.Error(err))
		return nil, s.storageErr(err)
	}
	return toRecords(rows), nil
}

func toPeriodRows(records []analytics.PeriodRecord) []models.PeriodRow {
	return lo.Map(records, func(r analytics.PeriodRecord, i int) models.PeriodRow {
		return models.PeriodRow{
			Seq:        i,
			Employee:   r.Employee,
			Subgroup:   r.Subgroup,
			Label:      r.Label,
			PeriodDate: r.Date,
			Year:       r.Year,
			Cost:       sql.NullFloat64{Float64: r.Cost.Float64, Valid: r.Cost.Valid},
		}
	})
}

func toRecords(rows []models.PeriodRow) []analytics.PeriodRecord {
	return lo.Map(rows, func(r models.PeriodRow, _ int) analytics.PeriodRecord {
		return analytics.PeriodRecord{
			Employee: r.Employee,
			Subgroup: r.Subgroup,
			Label:    r.Label,
			Date:     r.PeriodDate.UTC(),
			Year:     r.Year,
			Cost:     analytics.NullFloat{Float64: r.Cost.Float64, Valid: r.Cost.Valid},
		}
	})
}
