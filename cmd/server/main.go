package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/gst-aqn42/TP1/internal/attachments"
	"github.com/gst-aqn42/TP1/internal/bibtex"
	"github.com/gst-aqn42/TP1/internal/config"
	"github.com/gst-aqn42/TP1/internal/core"
	"github.com/gst-aqn42/TP1/internal/database"
	"github.com/gst-aqn42/TP1/internal/logging"
	"github.com/gst-aqn42/TP1/internal/metrics"
	"github.com/gst-aqn42/TP1/internal/notify"
	"github.com/gst-aqn42/TP1/internal/web"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	// Load and validate configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Setup structured logging based on config
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("configuration loaded",
		"port", cfg.Server.Port,
		"db_max_conns", cfg.Database.MaxConns,
		"storage", cfg.Storage.Backend,
		"upload_max_concurrent", cfg.Import.MaxConcurrentUploads,
		"rate_limit_enabled", cfg.Rate.Enabled,
	)

	ctx := context.Background()

	q, closeDB, err := openDatabase(ctx, cfg.Database)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer closeDB()

	files, err := openStorage(cfg.Storage)
	if err != nil {
		slog.Error("failed to open attachment storage", "error", err)
		os.Exit(1)
	}

	notifier, err := openNotifier(cfg.Notify)
	if err != nil {
		slog.Error("failed to set up notifications", "error", err)
		os.Exit(1)
	}

	venues := bibtex.DefaultVenues()
	if cfg.Import.VenuesFile != "" {
		if venues, err = bibtex.LoadVenues(cfg.Import.VenuesFile); err != nil {
			slog.Error("failed to load venue catalogue", "path", cfg.Import.VenuesFile, "error", err)
			os.Exit(1)
		}
	}

	m := metrics.New()
	service := core.NewService(q, files, core.Options{
		Logger:               slog.Default(),
		Venues:               venues,
		JWTSecret:            []byte(cfg.Security.JWTSecret),
		TokenTTL:             cfg.Security.TokenTTL,
		MaxConcurrentUploads: cfg.Import.MaxConcurrentUploads,
		MaxWaitTime:          cfg.Import.MaxWaitTime,
		ImportTimeout:        cfg.Import.Timeout,
		MaxBibFileSize:       cfg.Import.MaxBibFileSize,
		MaxPDFSize:           cfg.Import.MaxPDFSize,
		OnImportOutcome:      m.ObserveImport,
		Notifier:             notifier,
	})
	m.GaugeFunc("uploads_active", "PDF uploads currently being stored", func() float64 {
		return float64(service.Uploads().ActiveCount())
	})
	m.GaugeFunc("import_running", "1 while a batch import is running", func() float64 {
		if service.ImportRunning() {
			return 1
		}
		return 0
	})

	if cfg.Security.AdminPassword != "" {
		if err := service.SeedAdmin(ctx, cfg.Security.AdminUsername, cfg.Security.AdminPassword); err != nil {
			slog.Error("failed to seed admin account", "error", err)
			os.Exit(1)
		}
	} else {
		slog.Warn("ADMIN_PASSWORD not set, no admin account seeded")
	}

	server := web.NewServer(service, cfg, m)

	// Create cancellable context for background jobs
	jobCtx, cancelJobs := context.WithCancel(context.Background())
	go service.StartAuditPurgeScheduler(jobCtx, core.AuditPurgeConfig{
		RetentionDays: cfg.Audit.RetentionDays,
		CheckInterval: cfg.Audit.CheckInterval,
	})

	// Graceful shutdown
	done := make(chan struct{})
	go func() {
		defer close(done)
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")
		cancelJobs()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		// Stop accepting requests first, then wait for uploads and an
		// in-flight import to finish.
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
		if status := service.Uploads().Status(); status.Active > 0 || service.ImportRunning() {
			slog.Info("waiting for uploads to complete", "active", status.Active, "import_running", service.ImportRunning())
			if err := service.WaitForDrain(shutdownCtx); err != nil {
				slog.Warn("uploads did not complete in time", "error", err)
			} else {
				slog.Info("all uploads completed")
			}
		}
	}()

	if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server failed", "error", err)
		cancelJobs()
		os.Exit(1)
	}
	<-done
	slog.Info("server stopped")
}

// openDatabase returns the in-memory store for memory:// URLs and a pgx
// pool otherwise.
func openDatabase(ctx context.Context, cfg config.DatabaseConfig) (database.Querier, func(), error) {
	if cfg.InMemory() {
		slog.Warn("using in-memory database, data is lost on restart")
		return database.NewMemory(), func() {}, nil
	}

	// Parse and configure connection pool
	poolConfig, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, nil, err
	}
	poolConfig.MaxConns = int32(cfg.MaxConns)
	poolConfig.MinConns = int32(cfg.MinConns)
	poolConfig.MaxConnLifetime = cfg.MaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.MaxConnIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, nil, err
	}

	// Log which database we connected to
	if u, err := url.Parse(cfg.URL); err == nil {
		slog.Info("connected to database", "name", strings.TrimPrefix(u.Path, "/"))
	} else {
		slog.Info("connected to database")
	}

	if cfg.Migrate {
		if err := database.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, nil, err
		}
		slog.Info("database schema applied")
	}
	return database.New(pool), pool.Close, nil
}

func openStorage(cfg config.StorageConfig) (attachments.Store, error) {
	switch strings.ToLower(cfg.Backend) {
	case "s3":
		slog.Info("storing PDFs in S3", "bucket", cfg.S3Bucket, "prefix", cfg.S3Prefix)
		return attachments.NewS3Store(attachments.S3Config{
			Bucket:   cfg.S3Bucket,
			Prefix:   cfg.S3Prefix,
			Region:   cfg.S3Region,
			Endpoint: cfg.S3Endpoint,
		})
	default:
		slog.Info("storing PDFs on disk", "dir", cfg.Dir)
		return attachments.NewDiskStore(cfg.Dir)
	}
}

func openNotifier(cfg config.NotifyConfig) (core.ArticleNotifier, error) {
	switch strings.ToLower(cfg.Backend) {
	case "ses":
		slog.Info("sending article notices through SES", "from", cfg.From, "region", cfg.SESRegion)
		return notify.NewSES(notify.SESConfig{
			Region:   cfg.SESRegion,
			Endpoint: cfg.SESEndpoint,
			From:     cfg.From,
		})
	default:
		slog.Info("article notices are logged only")
		return notify.NewLog(slog.Default().With("component", "notify")), nil
	}
}
