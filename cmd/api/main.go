package main

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/swagger"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"docstore/docs"
	"docstore/internal/config"
	"docstore/internal/database"
	"docstore/internal/database/migration"
	handlers "docstore/internal/http/handler"
	"docstore/internal/http/middleware"
	"docstore/internal/logger"
	"docstore/internal/metrics"
	tracing "docstore/internal/otel"
	"docstore/internal/repository/sqlrepo"
	"docstore/internal/service"
	"docstore/internal/storage"
)

const (
	// Multipart framing overhead allowed on top of the file size limit.
	bodyLimitSlack  = 1 << 20
	shutdownTimeout = 10 * time.Second
)

// @title Document Storage API
// @version 1.0
// @description Upload, list, download and delete PDF documents.
// @BasePath /api
func main() {
	cfg := config.Load()
	log := logger.New(cfg.Log)
	loc := logger.Location(cfg.Log.Location)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := tracing.Init(ctx, log)
	if err != nil {
		log.WithError(err).Fatal("failed to initialize tracing")
	}

	db, err := database.Open(cfg.Database)
	if err != nil {
		log.WithError(err).WithField("driver", cfg.Database.Driver).Fatal("failed to connect to database")
	}
	defer db.Close()

	if err := migration.EnsureMigrated(ctx, db, cfg.Database.Driver, log); err != nil {
		log.WithError(err).Fatal("failed to migrate database")
	}

	store, err := newStorage(cfg)
	if err != nil {
		log.WithError(err).WithField("driver", cfg.Storage.Driver).Fatal("failed to initialize storage")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	promMiddleware, err := middleware.NewPrometheusMiddleware(reg)
	if err != nil {
		log.WithError(err).Fatal("failed to register http metrics")
	}
	docMetrics, err := metrics.NewDocumentMetrics(reg)
	if err != nil {
		log.WithError(err).Fatal("failed to register document metrics")
	}

	docRepo := sqlrepo.NewDocumentSQL(db)
	docSvc := service.NewDocumentService(
		service.Config{MaxFileSize: cfg.Storage.MaxFileSizeBytes},
		store, docRepo, log, docMetrics,
	)

	app := newApp(cfg, db, docSvc, log, loc, promMiddleware, reg)

	go func() {
		<-ctx.Done()
		log.Info("shutting down")
		if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
			log.WithError(err).Error("server shutdown failed")
		}
	}()

	log.WithFields(logrus.Fields{
		"port":           cfg.Port,
		"api_prefix":     cfg.APIPrefix,
		"storage_driver": cfg.Storage.Driver,
		"db_driver":      cfg.Database.Driver,
		"max_file_size":  cfg.Storage.MaxFileSizeBytes,
	}).Info("server starting")

	if err := app.Listen(":" + cfg.Port); err != nil {
		log.WithError(err).Error("failed to start server")
	}

	flushCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := shutdownTracing(flushCtx); err != nil {
		log.WithError(err).Warn("tracing shutdown failed")
	}
}

func newStorage(cfg *config.AppConfig) (storage.Storage, error) {
	switch cfg.Storage.Driver {
	case config.StorageMinIO:
		return storage.NewMinIO(cfg.MinIO)
	case config.StorageLocal, "":
		return storage.NewLocal(cfg.Storage.UploadDir)
	default:
		return nil, errors.New("unsupported storage driver: " + cfg.Storage.Driver)
	}
}

func newApp(cfg *config.AppConfig, db *sql.DB, docSvc service.DocumentService, log *logrus.Logger, loc *time.Location, prom *middleware.PrometheusMiddleware, reg *prometheus.Registry) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler:          handlers.ErrorHandler(cfg.Storage.MaxFileSizeBytes),
		BodyLimit:             int(cfg.Storage.MaxFileSizeBytes) + bodyLimitSlack,
		DisableStartupMessage: true,
	})

	app.Use(cors.New(cors.Config{AllowOrigins: cfg.CORSOrigin}))
	app.Use(otelfiber.Middleware())
	app.Use(middleware.RequestID())
	app.Use(middleware.Logger(log, loc))
	app.Use(middleware.NoSniff())
	app.Use(prom.Handler())

	app.Get(middleware.MetricsPath, adaptor.HTTPHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	handlers.RegisterRoutes(app, db, docSvc, cfg.APIPrefix)

	// Swagger UI with dynamic host and scheme
	app.Get("/swagger/*", func(c *fiber.Ctx) error {
		scheme := c.Protocol()
		if proto := c.Get("X-Forwarded-Proto"); proto != "" {
			scheme = strings.Split(proto, ",")[0]
		}

		docs.SwaggerInfo.Host = c.Get("Host")
		docs.SwaggerInfo.Schemes = []string{scheme}
		docs.SwaggerInfo.BasePath = cfg.APIPrefix

		return swagger.HandlerDefault(c)
	})

	return app
}
