package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/dance-class-api/api/swagger"
	"github.com/noah-isme/dance-class-api/internal/handler"
	internalmiddleware "github.com/noah-isme/dance-class-api/internal/middleware"
	"github.com/noah-isme/dance-class-api/internal/repository"
	"github.com/noah-isme/dance-class-api/internal/service"
	"github.com/noah-isme/dance-class-api/pkg/cache"
	"github.com/noah-isme/dance-class-api/pkg/config"
	"github.com/noah-isme/dance-class-api/pkg/database"
	"github.com/noah-isme/dance-class-api/pkg/jobs"
	"github.com/noah-isme/dance-class-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/dance-class-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/dance-class-api/pkg/middleware/requestid"
	"github.com/noah-isme/dance-class-api/pkg/storage"
)

// @title Dance Class API
// @version 1.0.0
// @description Class catalog, schedule and per-user preferences for a dance community.
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	metricsSvc := service.NewMetricsService()
	validate := validator.New()
	loc := cfg.Catalog.Location()

	store, closeStore, err := openStore(ctx, cfg, logr)
	if err != nil {
		logr.Fatal("failed to open preference store", zap.String("backend", cfg.Preferences.Backend), zap.Error(err))
	}
	defer closeStore()

	source, err := openCatalogSource(cfg)
	if err != nil {
		logr.Fatal("failed to open catalog source", zap.Error(err))
	}
	catalogSvc := service.NewCatalogService(source, loc, metricsSvc, logr)
	if _, err := catalogSvc.Load(ctx); err != nil {
		logr.Fatal("failed to load catalog", zap.Error(err))
	}
	if cfg.Catalog.Watch && cfg.Catalog.Source == config.CatalogSourceFile {
		watcher := service.NewCatalogWatcher(cfg.Catalog.DataDir, catalogSvc, cfg.Catalog.WatchDebounce, logr)
		if err := watcher.Start(ctx); err != nil {
			logr.Warn("catalog watcher disabled", zap.Error(err))
		} else {
			defer watcher.Stop()
		}
	}

	prefRepo := repository.NewPreferenceRepository(store, cfg.Preferences.KeyPrefix)
	preferenceSvc := service.NewPreferenceService(prefRepo, metricsSvc, logr)
	userSvc := service.NewUserService(prefRepo, validate, metricsSvc, logr, firstOrigin(cfg.CORS.AllowedOrigins))
	sessionSvc := service.NewSessionService(prefRepo, catalogSvc, preferenceSvc, userSvc, metricsSvc, cfg.JWT, logr)
	scheduleSvc := service.NewScheduleService(loc, logr)
	classSvc := service.NewClassService(catalogSvc, validate, metricsSvc, logr)
	dashboardSvc := service.NewDashboardService(service.DashboardServiceConfig{FeaturedLimit: cfg.Dashboard.FeaturedLimit}, logr)

	exportHandler := handler.NewExportHandler(catalogSvc, nil)
	if cfg.Exports.Enabled {
		exportSvc, queue, err := buildExports(ctx, cfg, store, catalogSvc, scheduleSvc, metricsSvc, logr)
		if err != nil {
			logr.Fatal("failed to initialise exports", zap.Error(err))
		}
		defer queue.Stop()
		exportHandler = handler.NewExportHandler(catalogSvc, exportSvc)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(metricsSvc, "/metrics", "/health"))
	r.Use(internalmiddleware.WithResponseMeta())

	metricsHandler := handler.NewMetricsHandler(metricsSvc, catalogSvc)
	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	handler.RegisterRoutes(r.Group(cfg.APIPrefix), handler.Handlers{
		Session:    handler.NewSessionHandler(sessionSvc),
		Schedule:   handler.NewScheduleHandler(catalogSvc, scheduleSvc),
		Class:      handler.NewClassHandler(classSvc),
		Preference: handler.NewPreferenceHandler(catalogSvc, preferenceSvc),
		Profile:    handler.NewProfileHandler(catalogSvc, userSvc),
		Dashboard:  handler.NewDashboardHandler(catalogSvc, dashboardSvc),
		Export:     exportHandler,
	}, sessionSvc)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env, "catalog", source.Describe())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Warn("server shutdown", zap.Error(err))
	}
	logr.Info("server stopped")
}

// openStore selects the key-value backend for per-user state.
func openStore(ctx context.Context, cfg *config.Config, logr *zap.Logger) (repository.KVStore, func(), error) {
	switch cfg.Preferences.Backend {
	case config.PreferencesBackendRedis:
		client, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			return nil, nil, err
		}
		return repository.NewRedisStore(client, logr), func() { _ = client.Close() }, nil
	case config.PreferencesBackendPostgres:
		db, err := database.NewPostgres(cfg.Database)
		if err != nil {
			return nil, nil, err
		}
		if err := database.Migrate(ctx, db, repository.KVSchema); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		return repository.NewSQLStore(db), func() { _ = db.Close() }, nil
	case config.PreferencesBackendSQLite:
		db, err := database.NewSQLite(cfg.SQLite)
		if err != nil {
			return nil, nil, err
		}
		if err := database.Migrate(ctx, db, repository.SQLiteKVSchema); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		return repository.NewSQLStore(db), func() { _ = db.Close() }, nil
	case config.PreferencesBackendMemory, "":
		return repository.NewMemoryStore(), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown preferences backend %q", cfg.Preferences.Backend)
	}
}

func openCatalogSource(cfg *config.Config) (repository.CatalogSource, error) {
	switch cfg.Catalog.Source {
	case config.CatalogSourceHTTP:
		if cfg.Catalog.BaseURL == "" {
			return nil, errors.New("CATALOG_BASE_URL is required for the http source")
		}
		return repository.NewHTTPSource(cfg.Catalog.BaseURL, nil, cfg.Catalog.FetchTimeout), nil
	case config.CatalogSourceFile, "":
		return repository.NewFileSource(cfg.Catalog.DataDir)
	default:
		return nil, fmt.Errorf("unknown catalog source %q", cfg.Catalog.Source)
	}
}

func buildExports(ctx context.Context, cfg *config.Config, store repository.KVStore, catalog *service.CatalogService, schedule *service.ScheduleService, metrics *service.MetricsService, logr *zap.Logger) (*service.ExportService, *jobs.Queue, error) {
	files, err := storage.NewLocalStorage(cfg.Exports.StorageDir)
	if err != nil {
		return nil, nil, err
	}
	signer := storage.NewSignedURLSigner(cfg.Exports.SignedURLSecret, cfg.Exports.SignedURLTTL)
	renderer := service.NewScheduleExportService(catalog, schedule, files, signer,
		service.ExportConfig{APIPrefix: cfg.APIPrefix, ResultTTL: cfg.Exports.SignedURLTTL}, logr, nil, nil)

	jobRepo := repository.NewExportJobRepository(store, cfg.Preferences.KeyPrefix)
	worker := service.NewExportWorker(jobRepo, renderer, metrics, cfg.Exports.WorkerRetries, logr)
	queue := jobs.NewQueue(service.ExportJobType, worker.Handle, jobs.QueueConfig{
		Workers:    cfg.Exports.WorkerConcurrency,
		MaxRetries: cfg.Exports.WorkerRetries,
		Logger:     logr,
		OnGiveUp: func(job jobs.Job, err error) {
			logr.Error("export job abandoned", zap.String("job_id", job.ID), zap.Int("attempt", job.Attempt), zap.Error(err))
		},
	})
	queue.Start(ctx)

	exportSvc := service.NewExportService(jobRepo, queue, renderer, metrics, logr, service.ExportServiceConfig{
		ResultTTL:       cfg.Exports.SignedURLTTL,
		CleanupInterval: cfg.Exports.CleanupInterval,
	})
	exportSvc.RecoverPendingJobs(ctx)
	exportSvc.StartCleanup(ctx)
	return exportSvc, queue, nil
}

func firstOrigin(origins []string) string {
	if len(origins) == 0 {
		return ""
	}
	return origins[0]
}
