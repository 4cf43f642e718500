package app

import (
	"context"
	"errors"
	"net/http"

	"time-report-go/internal/config"
	"time-report-go/internal/db"
	"time-report-go/internal/domain/money"
	revenuedomain "time-report-go/internal/domain/revenue"
	trackingdomain "time-report-go/internal/domain/tracking"
	userdomain "time-report-go/internal/domain/user"
	"time-report-go/internal/observability"
	"time-report-go/internal/rates"
	"time-report-go/internal/repository/inmemory"
	revenuerepo "time-report-go/internal/repository/postgres/revenue"
	trackingrepo "time-report-go/internal/repository/postgres/tracking"
	userrepo "time-report-go/internal/repository/postgres/user"
	"time-report-go/internal/resilience"
	"time-report-go/internal/storage"
	"time-report-go/internal/transport/httpserver"
	"time-report-go/internal/transport/httpserver/handler"
	commonhandler "time-report-go/internal/transport/httpserver/handler/common"
	revenuehandler "time-report-go/internal/transport/httpserver/handler/revenue"
	trackinghandler "time-report-go/internal/transport/httpserver/handler/tracking"
	"time-report-go/pkg/logger"

	"gorm.io/gorm"
)

const serviceName = "time-report"

type App struct {
	cfg            config.Config
	log            logger.Logger
	httpServer     *http.Server
	db             *gorm.DB
	shutdownTracer observability.ShutdownFunc
}

func New(ctx context.Context, log logger.Logger) (*App, error) {
	log.Info("app: loading config")
	cfg, err := config.Load(log)
	if err != nil {
		return nil, err
	}

	log.Info("app: initializing tracing", "enabled", cfg.OTLPEndpoint != "")
	shutdownTracer, err := observability.InitTracer(ctx, cfg.OTLPEndpoint, serviceName)
	if err != nil {
		return nil, err
	}

	log.Info("app: initializing database")
	dbConn, err := db.NewPostgres(ctx, cfg.DB, log)
	if err != nil {
		_ = shutdownTracer(ctx)
		return nil, err
	}
	if err := db.Migrate(ctx, dbConn, log); err != nil {
		_ = shutdownTracer(ctx)
		return nil, err
	}

	var metrics *observability.Metrics
	var rateObserver rates.Observer
	var cacheObserver inmemory.CacheObserver
	if cfg.MetricsEnabled {
		metrics = observability.NewMetrics()
		rateObserver = metrics
		cacheObserver = metrics
	}

	log.Info("app: initializing services")
	rateProvider := rates.NewProvider(
		rates.NewHTTPClient(&http.Client{Timeout: cfg.Rates.Timeout}, cfg.Rates.URL, money.Code(cfg.Rates.Pivot)),
		rates.Config{
			TTL:      cfg.Rates.TTL,
			MaxStale: cfg.Rates.MaxStale,
			Resilience: resilience.Config{
				MaxRetries:     cfg.Rates.MaxRetries,
				InitialBackoff: cfg.Rates.InitialBackoff,
			},
		},
		log,
		rateObserver,
	)

	var images trackingdomain.ImageStore
	if cfg.Supabase.URL != "" && cfg.Storage.ServiceKey != "" {
		images = storage.NewClient(&http.Client{Timeout: cfg.Storage.Timeout}, storage.Config{
			BaseURL:    cfg.Supabase.URL,
			ServiceKey: cfg.Storage.ServiceKey,
			Bucket:     cfg.Storage.Bucket,
			Resilience: resilience.Config{
				MaxRetries:     cfg.Rates.MaxRetries,
				InitialBackoff: cfg.Rates.InitialBackoff,
			},
		}, log)
	} else {
		log.Warn("app: storage not configured, client images will not be deleted")
	}

	profiles := userdomain.NewService(userrepo.NewPostgres(dbConn), inmemory.NewTTLCache[userdomain.Profile](cfg.ViewCacheTTL))
	tracking := trackingdomain.NewService(trackingrepo.NewPostgres(dbConn), inmemory.NewViewCache(cacheObserver), images, cfg.ViewCacheTTL)
	revenue := revenuedomain.NewService(revenuerepo.NewPostgres(dbConn), rateProvider, profiles)

	handlers := handler.New(
		commonhandler.New(profiles, rateProvider, log),
		trackinghandler.New(tracking, log),
		revenuehandler.New(revenue, rateProvider, log),
	)

	log.Info("app: initializing router")
	router := httpserver.NewRouter(cfg, handlers, profiles, metrics, log)

	log.Info("app: initializing http server")
	srv := httpserver.New(cfg, router)

	return &App{
		cfg:            cfg,
		log:            log,
		httpServer:     srv,
		db:             dbConn,
		shutdownTracer: shutdownTracer,
	}, nil
}

func (a *App) HTTPServer() *http.Server {
	return a.httpServer
}

func (a *App) Close(ctx context.Context) error {
	var errs []error
	if a.shutdownTracer != nil {
		if err := a.shutdownTracer(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	if a.db != nil {
		sqlDB, err := a.db.DB()
		if err != nil {
			errs = append(errs, err)
		} else if err := sqlDB.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
