package app

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	pb "github.com/godilite/workforce-analytics/api/v1"
	"github.com/godilite/workforce-analytics/internal/config"
	handler "github.com/godilite/workforce-analytics/internal/grpc"
	"github.com/godilite/workforce-analytics/internal/repository"
	"github.com/godilite/workforce-analytics/internal/service"
	"github.com/godilite/workforce-analytics/pkg/cache"
	dbbuilder "github.com/godilite/workforce-analytics/pkg/database"
	grpcsrv "github.com/godilite/workforce-analytics/pkg/grpc/server"

	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

type App struct {
	logger     *zap.Logger
	dbPool     *sql.DB
	cache      handler.Cacher
	grpcServer *grpcsrv.Server
}

func NewApp(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	analysis, err := config.LoadAnalysis(cfg.AnalysisConfigPath)
	if err != nil {
		return nil, err
	}
	settings := analysis.Settings()
	logger.Info("Analysis settings loaded",
		zap.String("path", cfg.AnalysisConfigPath),
		zap.Int("base_year", settings.BaseYear),
		zap.Stringer("defaults", settings.Defaults))

	dbPool, err := dbbuilder.New(
		dbbuilder.WithDriver(cfg.DBDriver),
		dbbuilder.WithDataSource(cfg.DBPath),
		dbbuilder.WithInit(repository.Migrate),
	)
	if err != nil {
		return nil, fmt.Errorf("database init failed: %w", err)
	}
	logger.Info("Database pool initialized", zap.String("path", cfg.DBPath))

	var cacheClient handler.Cacher = cache.Noop{}
	if cfg.CacheEnabled {
		redisCache, err := cache.New(ctx, cache.WithAddress(cfg.RedisAddr))
		if err != nil {
			dbPool.Close()
			return nil, fmt.Errorf("cache init failed: %w", err)
		}
		cacheClient = redisCache
		logger.Info("Cache client initialized", zap.String("addr", cfg.RedisAddr), zap.Duration("ttl", cfg.CacheTTL))
	} else {
		logger.Info("Result cache disabled")
	}

	datasetRepo := repository.NewDatasetRepository(dbPool)

	analyticsService := service.NewAnalyticsService(datasetRepo, settings, logger)

	grpcHandlers := handler.NewGRPCHandlers(analyticsService, cacheClient, logger, cfg.CacheTTL)

	grpcServer, err := grpcsrv.New(
		grpcsrv.WithPort(cfg.GRPCPort),
		grpcsrv.WithLogger(logger),
		grpcsrv.WithReflection(cfg.GRPCReflectionEnabled),
		grpcsrv.WithLogging(cfg.GRPCLoggingEnabled),
	)
	if err != nil {
		cacheClient.Close()
		dbPool.Close()
		return nil, fmt.Errorf("failed to create gRPC server: %w", err)
	}

	grpcServer.RegisterService(&pb.WorkforceAnalytics_ServiceDesc, grpcHandlers)

	return &App{
		logger:     logger,
		dbPool:     dbPool,
		cache:      cacheClient,
		grpcServer: grpcServer,
	}, nil
}

// Run starts the application and blocks until ctx is done.
func (a *App) Run(ctx context.Context) error {
	a.logger.Info("application starting", zap.String("addr", a.grpcServer.Addr().String()))

	a.grpcServer.Start()
	<-ctx.Done()

	a.logger.Info("application shutting down")
	return a.shutdown()
}

func (a *App) shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := a.grpcServer.Shutdown(ctx); err != nil {
		a.logger.Warn("gRPC shutdown did not complete gracefully", zap.Error(err))
	}
	if err := a.cache.Close(); err != nil {
		a.logger.Error("cache shutdown error", zap.Error(err))
	}
	if err := a.dbPool.Close(); err != nil {
		a.logger.Error("database shutdown error", zap.Error(err))
	}

	a.logger.Info("graceful shutdown completed")
	_ = a.logger.Sync()
	return nil
}
