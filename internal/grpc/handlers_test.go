package grpc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	pb "github.com/godilite/workforce-analytics/api/v1"
	"github.com/godilite/workforce-analytics/internal/analytics"
	"github.com/godilite/workforce-analytics/internal/grpc/mocks"
	"github.com/godilite/workforce-analytics/internal/ingest"
	"github.com/godilite/workforce-analytics/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func intPtr(v int) *int { return &v }

func sampleReport() *analytics.Report {
	return &analytics.Report{
		Subgroup: "soins",
		Params:   analytics.DefaultParams(),
		Employees: []analytics.EmployeeSummary{
			{Employee: "Alice", Subgroup: "soins", MeanA: analytics.Defined(2000), MeanB: analytics.Defined(2200),
				VarAbs: analytics.Defined(200), VarRel: analytics.Defined(10), Volatility: analytics.Defined(100)},
			{Employee: "Zoe", Subgroup: "soins", MeanB: analytics.Defined(1800)},
		},
		Group: analytics.GroupSummary{YearA: 2024, YearB: 2025, TotalA: 24000, TotalB: 48000, DeltaTotal: 24000,
			DeltaPercent: analytics.Defined(100), Employees: 2, Entering: 1},
	}
}

// TestNewGRPCHandlers tests the constructor
func TestNewGRPCHandlers(t *testing.T) {
	t.Run("valid parameters", func(t *testing.T) {
		mockService := &mocks.MockAnalyticsService{}
		mockCache := &mocks.MockCacher{}
		ttl := 5 * time.Minute

		handlers := NewGRPCHandlers(mockService, mockCache, zap.NewNop(), ttl)

		assert.NotNil(t, handlers)
		assert.Equal(t, mockService, handlers.analytics)
		assert.Equal(t, mockCache, handlers.cache)
		assert.Equal(t, ttl, handlers.cacheTTL)
		assert.NotNil(t, handlers.logger)
	})

	t.Run("nil service panics", func(t *testing.T) {
		assert.Panics(t, func() {
			NewGRPCHandlers(nil, &mocks.MockCacher{}, zap.NewNop(), time.Minute)
		})
	})

	t.Run("nil cache panics", func(t *testing.T) {
		assert.Panics(t, func() {
			NewGRPCHandlers(&mocks.MockAnalyticsService{}, nil, zap.NewNop(), time.Minute)
		})
	})

	t.Run("non-positive TTL uses default", func(t *testing.T) {
		for _, ttl := range []time.Duration{0, -time.Minute} {
			handlers := NewGRPCHandlers(&mocks.MockAnalyticsService{}, &mocks.MockCacher{}, nil, ttl)
			assert.Equal(t, defaultCacheDuration, handlers.cacheTTL)
		}
	})
}

// TestNormalizeKey tests cache key generation
func TestNormalizeKey(t *testing.T) {
	t.Run("all parts present", func(t *testing.T) {
		key := normalizeKey(cacheKeyAnalysis, "ds-1", "soins", "1500", "10")
		assert.Equal(t, "grpc:analysis:ds-1:soins:1500:10", key)
	})

	t.Run("defaults are marked", func(t *testing.T) {
		key := normalizeKey(cacheKeyAnalysis, "ds-1", "", optionalKeyPart(nil), " ")
		assert.Equal(t, "grpc:analysis:ds-1:-:-:-", key)
	})

	t.Run("different prefixes", func(t *testing.T) {
		assert.NotEqual(t, normalizeKey(cacheKeySubgroups, "ds-1"), normalizeKey(cacheKeyAnalysis, "ds-1"))
	})

	t.Run("explicit default differs from omitted", func(t *testing.T) {
		threshold := 1500
		assert.NotEqual(t,
			normalizeKey(cacheKeyAnalysis, "ds-1", "soins", optionalKeyPart(&threshold)),
			normalizeKey(cacheKeyAnalysis, "ds-1", "soins", optionalKeyPart(nil)))
	})
}

// TestHandleError tests error handling and status code mapping
func TestHandleError(t *testing.T) {
	handlers := &GRPCHandlers{logger: zap.NewNop()}

	t.Run("context canceled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		err := handlers.handleError(ctx, "test_operation", errors.New("some error"))

		assert.Equal(t, codes.Canceled, status.Code(err))
		assert.Contains(t, err.Error(), "request canceled")
	})

	t.Run("context deadline exceeded", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), time.Nanosecond)
		defer cancel()
		time.Sleep(time.Millisecond)

		err := handlers.handleError(ctx, "test_operation", errors.New("some error"))

		assert.Equal(t, codes.DeadlineExceeded, status.Code(err))
		assert.Contains(t, err.Error(), "request timed out")
	})

	cases := []struct {
		name    string
		err     error
		code    codes.Code
		message string
	}{
		{"configuration error", &analytics.ConfigurationError{Reason: "missing required columns", Required: analytics.RequiredColumns}, codes.InvalidArgument, "Salarie, Sous_groupe"},
		{"no data", &analytics.NoDataError{Subgroup: "direction"}, codes.NotFound, `"direction"`},
		{"unknown dataset", service.ErrDatasetNotFound, codes.NotFound, "dataset not found"},
		{"storage failure", fmt.Errorf("%w: %v", service.ErrStorageFailure, errors.New("locked")), codes.Internal, "database error"},
		{"invariant", &analytics.InvariantError{Employee: "Alice", Reason: "timeline not sorted"}, codes.Internal, "timeline not sorted"},
		{"unknown error", errors.New("connection lost"), codes.Internal, "test_operation failed"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := handlers.handleError(context.Background(), "test_operation", tc.err)

			assert.Equal(t, tc.code, status.Code(err))
			assert.Contains(t, err.Error(), tc.message)
		})
	}
}

func TestImportDataset(t *testing.T) {
	csv := []byte("Salarie;Sous_groupe;01-2024;02-2024\nAlice;soins;2 000,50;\nBob;admin;1800;1900\n")

	t.Run("reads upload and returns dataset info", func(t *testing.T) {
		mockService := &mocks.MockAnalyticsService{
			ImportDatasetFunc: func(_ context.Context, name string, table *ingest.Table) (service.DatasetInfo, error) {
				assert.Equal(t, "costs.csv", name)
				assert.Equal(t, []string{"01-2024", "02-2024"}, table.PeriodColumns)
				require.Len(t, table.Rows, 2)
				assert.Equal(t, analytics.Defined(2000.5), table.Rows[0].Costs[0])
				assert.False(t, table.Rows[0].Costs[1].Valid)
				return service.DatasetInfo{ID: "ds-1", Name: name, Employees: 2, Periods: 2, Records: 4,
					Subgroups: []string{"admin", "soins"}, DefaultSubgroup: "soins"}, nil
			},
		}
		handlers := NewGRPCHandlers(mockService, &mocks.MockCacher{}, zap.NewNop(), time.Minute)

		resp, err := handlers.ImportDataset(context.Background(), &pb.ImportDatasetRequest{
			Name:    "costs.csv",
			Content: csv,
		})

		require.NoError(t, err)
		assert.Equal(t, "ds-1", resp.DatasetID)
		assert.Equal(t, 4, resp.Records)
		assert.Equal(t, "soins", resp.DefaultSubgroup)
		assert.Equal(t, []string{"admin", "soins"}, resp.Subgroups)
	})

	t.Run("missing content", func(t *testing.T) {
		handlers := NewGRPCHandlers(&mocks.MockAnalyticsService{}, &mocks.MockCacher{}, zap.NewNop(), time.Minute)

		_, err := handlers.ImportDataset(context.Background(), &pb.ImportDatasetRequest{Name: "costs.csv"})

		assert.Equal(t, codes.InvalidArgument, status.Code(err))
	})

	t.Run("unknown format", func(t *testing.T) {
		handlers := NewGRPCHandlers(&mocks.MockAnalyticsService{}, &mocks.MockCacher{}, zap.NewNop(), time.Minute)

		_, err := handlers.ImportDataset(context.Background(), &pb.ImportDatasetRequest{
			Name:    "costs.ods",
			Content: csv,
		})

		assert.Equal(t, codes.InvalidArgument, status.Code(err))
	})

	t.Run("missing required columns", func(t *testing.T) {
		handlers := NewGRPCHandlers(&mocks.MockAnalyticsService{}, &mocks.MockCacher{}, zap.NewNop(), time.Minute)

		_, err := handlers.ImportDataset(context.Background(), &pb.ImportDatasetRequest{
			Format:  "csv",
			Content: []byte("Nom;01-2024\nAlice;100\n"),
		})

		assert.Equal(t, codes.InvalidArgument, status.Code(err))
		assert.Contains(t, err.Error(), "Salarie")
	})

	t.Run("non-finite cost", func(t *testing.T) {
		handlers := NewGRPCHandlers(&mocks.MockAnalyticsService{}, &mocks.MockCacher{}, zap.NewNop(), time.Minute)

		_, err := handlers.ImportDataset(context.Background(), &pb.ImportDatasetRequest{
			Format:  "csv",
			Content: []byte("Salarie;Sous_groupe;01-2024\nAlice;soins;NaN\n"),
		})

		assert.Equal(t, codes.InvalidArgument, status.Code(err))
		assert.Contains(t, err.Error(), "not a number")
	})
}

func TestListSubgroups(t *testing.T) {
	t.Run("requires dataset id", func(t *testing.T) {
		handlers := NewGRPCHandlers(&mocks.MockAnalyticsService{}, &mocks.MockCacher{}, zap.NewNop(), time.Minute)

		_, err := handlers.ListSubgroups(context.Background(), &pb.ListSubgroupsRequest{DatasetID: "  "})

		assert.Equal(t, codes.InvalidArgument, status.Code(err))
	})

	t.Run("unknown dataset", func(t *testing.T) {
		mockService := &mocks.MockAnalyticsService{
			ListSubgroupsFunc: func(context.Context, string) (service.SubgroupList, error) {
				return service.SubgroupList{}, service.ErrDatasetNotFound
			},
		}
		handlers := NewGRPCHandlers(mockService, &mocks.MockCacher{}, zap.NewNop(), time.Minute)

		_, err := handlers.ListSubgroups(context.Background(), &pb.ListSubgroupsRequest{DatasetID: "missing"})

		assert.Equal(t, codes.NotFound, status.Code(err))
	})

	t.Run("success", func(t *testing.T) {
		mockService := &mocks.MockAnalyticsService{
			ListSubgroupsFunc: func(_ context.Context, id string) (service.SubgroupList, error) {
				assert.Equal(t, "ds-1", id)
				return service.SubgroupList{Subgroups: []string{"admin", "soins"}, Default: "soins"}, nil
			},
		}
		handlers := NewGRPCHandlers(mockService, &mocks.MockCacher{}, zap.NewNop(), time.Minute)

		resp, err := handlers.ListSubgroups(context.Background(), &pb.ListSubgroupsRequest{DatasetID: "ds-1"})

		require.NoError(t, err)
		assert.Equal(t, "soins", resp.DefaultSubgroup)
		assert.Equal(t, []string{"admin", "soins"}, resp.Subgroups)
	})
}

func TestAnalyzeSubgroup(t *testing.T) {
	t.Run("passes overrides and encodes undefined as null", func(t *testing.T) {
		mockService := &mocks.MockAnalyticsService{
			AnalyzeFunc: func(_ context.Context, req service.AnalysisRequest) (*analytics.Report, error) {
				assert.Equal(t, "ds-1", req.DatasetID)
				assert.Equal(t, "soins", req.Subgroup)
				require.NotNil(t, req.AbsenceThreshold)
				assert.Equal(t, 1200, *req.AbsenceThreshold)
				assert.Nil(t, req.TopN)
				return sampleReport(), nil
			},
		}
		handlers := NewGRPCHandlers(mockService, &mocks.MockCacher{}, zap.NewNop(), time.Minute)

		resp, err := handlers.AnalyzeSubgroup(context.Background(), &pb.AnalyzeSubgroupRequest{
			DatasetID:        "ds-1",
			Subgroup:         " soins ",
			AbsenceThreshold: intPtr(1200),
		})

		require.NoError(t, err)
		require.NotNil(t, resp.Report)
		assert.Equal(t, 24000.0, resp.Report.Group.DeltaTotal)

		data, err := json.Marshal(resp)
		require.NoError(t, err)
		var decoded struct {
			Report struct {
				Employees []map[string]any `json:"employees"`
			} `json:"report"`
		}
		require.NoError(t, json.Unmarshal(data, &decoded))
		require.Len(t, decoded.Report.Employees, 2)
		zoe := decoded.Report.Employees[1]
		assert.Equal(t, "Zoe", zoe["employee"])
		assert.Contains(t, zoe, "var_abs")
		assert.Nil(t, zoe["var_abs"])
	})

	t.Run("requires dataset id", func(t *testing.T) {
		handlers := NewGRPCHandlers(&mocks.MockAnalyticsService{}, &mocks.MockCacher{}, zap.NewNop(), time.Minute)

		_, err := handlers.AnalyzeSubgroup(context.Background(), &pb.AnalyzeSubgroupRequest{TopN: intPtr(5)})

		assert.Equal(t, codes.InvalidArgument, status.Code(err))
	})

	t.Run("out of range parameter", func(t *testing.T) {
		mockService := &mocks.MockAnalyticsService{
			AnalyzeFunc: func(context.Context, service.AnalysisRequest) (*analytics.Report, error) {
				return nil, &analytics.ConfigurationError{Reason: "absence threshold 5000 outside [0, 3000]"}
			},
		}
		handlers := NewGRPCHandlers(mockService, &mocks.MockCacher{}, zap.NewNop(), time.Minute)

		_, err := handlers.AnalyzeSubgroup(context.Background(), &pb.AnalyzeSubgroupRequest{DatasetID: "ds-1", AbsenceThreshold: intPtr(5000)})

		assert.Equal(t, codes.InvalidArgument, status.Code(err))
	})

	t.Run("empty subgroup", func(t *testing.T) {
		mockService := &mocks.MockAnalyticsService{
			AnalyzeFunc: func(_ context.Context, req service.AnalysisRequest) (*analytics.Report, error) {
				return nil, &analytics.NoDataError{Subgroup: req.Subgroup}
			},
		}
		handlers := NewGRPCHandlers(mockService, &mocks.MockCacher{}, zap.NewNop(), time.Minute)

		_, err := handlers.AnalyzeSubgroup(context.Background(), &pb.AnalyzeSubgroupRequest{DatasetID: "ds-1", Subgroup: "direction"})

		assert.Equal(t, codes.NotFound, status.Code(err))
	})

	t.Run("serves repeated requests from cache", func(t *testing.T) {
		var calls atomic.Int32
		mockService := &mocks.MockAnalyticsService{
			AnalyzeFunc: func(context.Context, service.AnalysisRequest) (*analytics.Report, error) {
				calls.Add(1)
				return sampleReport(), nil
			},
		}
		cache := mocks.NewInMemoryCache()
		handlers := NewGRPCHandlers(mockService, cache, zap.NewNop(), time.Minute)
		req := &pb.AnalyzeSubgroupRequest{DatasetID: "ds-1", Subgroup: "soins"}
		key := "grpc:analysis:ds-1:soins:-:-"

		_, err := handlers.AnalyzeSubgroup(context.Background(), req)
		require.NoError(t, err)
		require.Eventually(t, func() bool { return cache.Has(key) }, time.Second, 10*time.Millisecond)

		resp, err := handlers.AnalyzeSubgroup(context.Background(), req)
		require.NoError(t, err)
		assert.Equal(t, "soins", resp.Report.Subgroup)

		gets, _ := cache.Calls()
		assert.Equal(t, 2, gets)
		assert.GreaterOrEqual(t, calls.Load(), int32(1))
	})
}

func TestExportAnalysis(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		mockService := &mocks.MockAnalyticsService{
			ExportFunc: func(_ context.Context, req service.AnalysisRequest) (service.ExportResult, error) {
				assert.Equal(t, "ds-1", req.DatasetID)
				require.NotNil(t, req.TopN)
				assert.Equal(t, 7, *req.TopN)
				return service.ExportResult{Filename: "analyse_soins.xlsx", Content: []byte("PK")}, nil
			},
		}
		handlers := NewGRPCHandlers(mockService, &mocks.MockCacher{}, zap.NewNop(), time.Minute)

		resp, err := handlers.ExportAnalysis(context.Background(), &pb.ExportAnalysisRequest{DatasetID: "ds-1", TopN: intPtr(7)})

		require.NoError(t, err)
		assert.Equal(t, "analyse_soins.xlsx", resp.Filename)
		assert.Equal(t, []byte("PK"), resp.Content)
	})

	t.Run("storage failure", func(t *testing.T) {
		mockService := &mocks.MockAnalyticsService{
			ExportFunc: func(context.Context, service.AnalysisRequest) (service.ExportResult, error) {
				return service.ExportResult{}, fmt.Errorf("%w: %v", service.ErrStorageFailure, errors.New("io"))
			},
		}
		handlers := NewGRPCHandlers(mockService, &mocks.MockCacher{}, zap.NewNop(), time.Minute)

		_, err := handlers.ExportAnalysis(context.Background(), &pb.ExportAnalysisRequest{DatasetID: "ds-1"})

		assert.Equal(t, codes.Internal, status.Code(err))
	})
}
