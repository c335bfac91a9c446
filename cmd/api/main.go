package main

import (
	"context"
	"database/sql"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/swagger"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"mrireport/docs"
	"mrireport/internal/config"
	"mrireport/internal/dashboard"
	"mrireport/internal/database"
	"mrireport/internal/database/migration"
	handlers "mrireport/internal/http/handler"
	"mrireport/internal/http/middleware"
	"mrireport/internal/logging"
	"mrireport/internal/metrics"
	"mrireport/internal/otel"
	"mrireport/internal/report"
	"mrireport/internal/repository"
	"mrireport/internal/repository/postgres"
	"mrireport/internal/service"
	"mrireport/internal/storage"
)

// multipart framing and the JSON request field on top of the image itself
const bodyOverhead = 1 << 20

// @title MRI Report API
// @version 1.0
// @description Generates MRI tumor detection reports and serves admin dashboard statistics.
// @BasePath /
func main() {
	// Load configuration from environment variables (.env auto-loaded if present)
	cfg := config.Load()

	loc := logging.Location(cfg.Timezone)
	log := logging.New(os.Stdout, loc, cfg.LogLevel)
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := otel.Init(ctx, log)
	if err != nil {
		log.Fatal("tracing_init_failed", zap.Error(err))
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	domainMetrics, err := metrics.New(reg)
	if err != nil {
		log.Fatal("metrics_init_failed", zap.Error(err))
	}
	httpMetrics, err := middleware.NewPrometheusMiddleware(reg)
	if err != nil {
		log.Fatal("metrics_init_failed", zap.Error(err))
	}

	// The archive needs both PostgreSQL and object storage. Image keys need storage only.
	var (
		db   *sql.DB
		repo repository.ReportRepository
	)
	if cfg.Report.Archive {
		db, err = database.NewPostgres(cfg.Database)
		if err != nil {
			log.Fatal("database_connect_failed", zap.Error(err))
		}
		defer db.Close()

		if err := migration.EnsureMigrated(ctx, db, log, cfg.Database.Host); err != nil {
			log.Fatal("database_migration_failed", zap.Error(err))
		}
		repo = postgres.NewReportPostgres(db)
	}

	var objStore storage.Storage
	if cfg.Report.Archive || cfg.MinIO.Endpoint != "" {
		objStore, err = storage.NewMinIO(cfg.MinIO)
		if err != nil {
			log.Fatal("object_storage_init_failed", zap.Error(err))
		}
	}

	reportSvc := service.NewReportService(objStore, repo,
		report.NewRenderer(report.WithLogger(log)),
		domainMetrics, log,
		service.Options{
			Archive:        cfg.Report.Archive,
			ArchivePrefix:  cfg.Report.ArchivePrefix,
			ImageKeyPrefix: cfg.Report.ImageKeyPrefix,
			ImageMaxBytes:  cfg.Report.ImageMaxBytes,
			PresignExpiry:  cfg.Report.PresignExpiry,
		},
	)

	src, mongoClient := dashboardSource(cfg, log)
	if mongoClient != nil {
		defer mongoClient.Disconnect(context.Background())
	}
	dash := dashboard.NewStore(src,
		dashboard.WithStoreLogger(log),
		dashboard.WithRefreshObserver(domainMetrics),
	)
	// Mount-time fetch; a failure leaves the dashboard in its unavailable state.
	go func() {
		rctx, cancel := context.WithTimeout(ctx, cfg.Dashboard.Timeout)
		defer cancel()
		_, _ = dash.Refresh(rctx)
	}()

	var scheduler *dashboard.Scheduler
	if cfg.Dashboard.RefreshCron != "" {
		scheduler, err = dashboard.NewScheduler(dash, cfg.Dashboard.RefreshCron, cfg.Dashboard.Timeout, log)
		if err != nil {
			log.Fatal("dashboard_scheduler_init_failed", zap.Error(err))
		}
		scheduler.Start()
	}

	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler(),
		BodyLimit:    int(cfg.Report.ImageMaxBytes) + bodyOverhead,
	})

	// Register global middleware
	// RequestID middleware adds/propagates X-Request-ID and stores it in context
	app.Use(middleware.RequestID())
	app.Use(otelfiber.Middleware())
	app.Use(httpMetrics.Handler())
	// JSON Logger middleware for structured request logs
	app.Use(middleware.Logger(log))

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})))

	// Register HTTP routes with injected services
	handlers.RegisterRoutes(app, db, reportSvc, dash, handlers.RouteOptions{
		MaxImageBytes:  cfg.Report.ImageMaxBytes,
		RefreshTimeout: cfg.Dashboard.Timeout,
	})

	// Swagger UI with dynamic host and scheme
	app.Get("/swagger/*", func(c *fiber.Ctx) error {
		scheme := c.Protocol()
		if proto := c.Get("X-Forwarded-Proto"); proto != "" {
			scheme = strings.Split(proto, ",")[0]
		}

		docs.SwaggerInfo.Host = c.Get("Host")
		docs.SwaggerInfo.Schemes = []string{scheme}

		return swagger.HandlerDefault(c)
	})

	addr := ":" + cfg.Port
	go func() {
		log.Info("server_starting", zap.String("addr", addr))
		if err := app.Listen(addr); err != nil {
			log.Error("server_stopped", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if scheduler != nil {
		scheduler.Stop(shutdownCtx)
	}
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error("server_shutdown_failed", zap.Error(err))
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Error("tracing_shutdown_failed", zap.Error(err))
	}
	log.Info("server_shutdown_complete")
}

// dashboardSource picks the statistics backend. The Mongo client, if any, is owned by the caller.
func dashboardSource(cfg *config.AppConfig, log *zap.Logger) (dashboard.Source, *mongo.Client) {
	switch cfg.Dashboard.Source {
	case "mongo":
		client, mdb, err := database.NewMongo(cfg.Mongo)
		if err != nil {
			log.Fatal("mongo_connect_failed", zap.Error(err))
		}
		return dashboard.NewMongoSource(mdb), client
	case "http", "":
		return dashboard.NewHTTPSource(cfg.Dashboard.URL, cfg.Dashboard.Timeout), nil
	default:
		log.Fatal("dashboard_source_invalid", zap.String("source", cfg.Dashboard.Source))
		return nil, nil
	}
}
