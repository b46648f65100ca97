package grpc

import (
	"bytes"
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	pb "github.com/godilite/workforce-analytics/api/v1"
	"github.com/godilite/workforce-analytics/internal/analytics"
	"github.com/godilite/workforce-analytics/internal/ingest"
	"github.com/godilite/workforce-analytics/internal/service"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	defaultCacheDuration = 10 * time.Minute
	defaultGRPCTimeout   = 30 * time.Second
)

type CacheKeyType string

const (
	cacheKeySubgroups CacheKeyType = "grpc:subgroups"
	cacheKeyAnalysis  CacheKeyType = "grpc:analysis"
)

type GRPCHandlers struct {
	pb.UnimplementedWorkforceAnalyticsServer
	analytics AnalyticsService
	cache     Cacher
	logger    *zap.Logger
	sfGroup   singleflight.Group
	cacheTTL  time.Duration
}

// NewGRPCHandlers initializes the gRPC handlers.
func NewGRPCHandlers(svc AnalyticsService, cache Cacher, logger *zap.Logger, ttl time.Duration) *GRPCHandlers {
	if svc == nil {
		panic("nil AnalyticsService provided to NewGRPCHandlers")
	}
	if cache == nil {
		panic("nil Cacher provided to NewGRPCHandlers")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = defaultCacheDuration
	}
	return &GRPCHandlers{
		analytics: svc,
		cache:     cache,
		logger:    logger.Named("grpc-handler"),
		cacheTTL:  ttl,
	}
}

// normalizeKey builds a cache key from its parts. Empty parts stand for
// server-side defaults and are written as "-".
func normalizeKey(prefix CacheKeyType, parts ...string) string {
	var b strings.Builder
	b.WriteString(string(prefix))
	for _, p := range parts {
		b.WriteByte(':')
		if p = strings.TrimSpace(p); p == "" {
			p = "-"
		}
		b.WriteString(p)
	}
	return b.String()
}

func optionalKeyPart(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

func (s *GRPCHandlers) handleError(ctx context.Context, op string, err error) error {
	switch ctx.Err() {
	case context.Canceled:
		s.logger.Warn("request canceled", zap.String("op", op))
		return status.Error(codes.Canceled, "request canceled")
	case context.DeadlineExceeded:
		s.logger.Warn("request timeout", zap.String("op", op))
		return status.Error(codes.DeadlineExceeded, "request timed out")
	}

	switch {
	case errors.Is(err, analytics.ErrConfiguration):
		s.logger.Info("invalid input", zap.String("op", op), zap.Error(err))
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, service.ErrDatasetNotFound):
		s.logger.Info("dataset not found", zap.String("op", op))
		return status.Error(codes.NotFound, "dataset not found")
	case errors.Is(err, analytics.ErrNoData):
		s.logger.Info("no data for selection", zap.String("op", op), zap.Error(err))
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, service.ErrStorageFailure):
		s.logger.Error("storage failure", zap.String("op", op), zap.Error(err))
		return status.Error(codes.Internal, "database error")
	case errors.Is(err, analytics.ErrInvariant):
		s.logger.Error("invariant violated", zap.String("op", op), zap.Error(err))
		return status.Errorf(codes.Internal, "%s failed: %v", op, err)
	default:
		s.logger.Error("unexpected error", zap.String("op", op), zap.Error(err))
		return status.Errorf(codes.Internal, "%s failed: %v", op, err)
	}
}

func (s *GRPCHandlers) ImportDataset(ctx context.Context, req *pb.ImportDatasetRequest) (*pb.ImportDatasetResponse, error) {
	if len(req.Content) == 0 {
		return nil, status.Error(codes.InvalidArgument, "content is required")
	}

	format, err := resolveFormat(req.Format, req.Name)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	ctx, cancel := context.WithTimeout(ctx, defaultGRPCTimeout)
	defer cancel()

	table, err := ingest.Read(bytes.NewReader(req.Content), format, req.Sheet)
	if err != nil {
		if errors.Is(err, analytics.ErrConfiguration) {
			return nil, s.handleError(ctx, "ImportDataset", err)
		}
		s.logger.Info("unreadable upload", zap.String("name", req.Name), zap.Error(err))
		return nil, status.Errorf(codes.InvalidArgument, "read %s: %v", format, err)
	}

	info, err := s.analytics.ImportDataset(ctx, req.Name, table)
	if err != nil {
		return nil, s.handleError(ctx, "ImportDataset", err)
	}
	return &pb.ImportDatasetResponse{
		DatasetID:       info.ID,
		Name:            info.Name,
		Employees:       info.Employees,
		Periods:         info.Periods,
		Records:         info.Records,
		Subgroups:       info.Subgroups,
		DefaultSubgroup: info.DefaultSubgroup,
	}, nil
}

func (s *GRPCHandlers) ListSubgroups(ctx context.Context, req *pb.ListSubgroupsRequest) (*pb.ListSubgroupsResponse, error) {
	datasetID, err := requireDatasetID(req.DatasetID)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultGRPCTimeout)
	defer cancel()

	cacheKey := normalizeKey(cacheKeySubgroups, datasetID)

	list, err := FindAndCache(ctx, s.cache, &s.sfGroup, cacheKey, s.cacheTTL, s.logger, func(fetchCtx context.Context) (service.SubgroupList, error) {
		return s.analytics.ListSubgroups(fetchCtx, datasetID)
	})
	if err != nil {
		return nil, s.handleError(ctx, "ListSubgroups", err)
	}
	return &pb.ListSubgroupsResponse{Subgroups: list.Subgroups, DefaultSubgroup: list.Default}, nil
}

func (s *GRPCHandlers) AnalyzeSubgroup(ctx context.Context, req *pb.AnalyzeSubgroupRequest) (*pb.AnalyzeSubgroupResponse, error) {
	analysisReq, err := analysisRequest(req.DatasetID, req.Subgroup, req.AbsenceThreshold, req.TopN)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultGRPCTimeout)
	defer cancel()

	cacheKey := normalizeKey(cacheKeyAnalysis,
		analysisReq.DatasetID,
		analysisReq.Subgroup,
		optionalKeyPart(analysisReq.AbsenceThreshold),
		optionalKeyPart(analysisReq.TopN))

	report, err := FindAndCache(ctx, s.cache, &s.sfGroup, cacheKey, s.cacheTTL, s.logger, func(fetchCtx context.Context) (*analytics.Report, error) {
		return s.analytics.Analyze(fetchCtx, analysisReq)
	})
	if err != nil {
		return nil, s.handleError(ctx, "AnalyzeSubgroup", err)
	}
	return &pb.AnalyzeSubgroupResponse{Report: report}, nil
}

func (s *GRPCHandlers) ExportAnalysis(ctx context.Context, req *pb.ExportAnalysisRequest) (*pb.ExportAnalysisResponse, error) {
	analysisReq, err := analysisRequest(req.DatasetID, req.Subgroup, req.AbsenceThreshold, req.TopN)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultGRPCTimeout)
	defer cancel()

	result, err := s.analytics.Export(ctx, analysisReq)
	if err != nil {
		return nil, s.handleError(ctx, "ExportAnalysis", err)
	}
	return &pb.ExportAnalysisResponse{Filename: result.Filename, Content: result.Content}, nil
}

func resolveFormat(format, name string) (ingest.Format, error) {
	if format != "" {
		return ingest.ParseFormat(format)
	}
	if name == "" {
		return "", errors.New("format or a file name with an extension is required")
	}
	return ingest.FormatFromFilename(name)
}

func requireDatasetID(id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", status.Error(codes.InvalidArgument, "dataset_id is required")
	}
	return id, nil
}

func analysisRequest(datasetID, subgroup string, threshold, topN *int) (service.AnalysisRequest, error) {
	id, err := requireDatasetID(datasetID)
	if err != nil {
		return service.AnalysisRequest{}, err
	}
	return service.AnalysisRequest{
		DatasetID:        id,
		Subgroup:         strings.TrimSpace(subgroup),
		AbsenceThreshold: threshold,
		TopN:             topN,
	}, nil
}
