package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"casedesk/internal/blob"
	"casedesk/internal/casework"
	"casedesk/internal/dialog"
	"casedesk/internal/handler"
	"casedesk/internal/middleware"
	"casedesk/internal/notify"
	"casedesk/internal/organization"
	"casedesk/internal/recordstore"
	"casedesk/pkg/config"
	"casedesk/pkg/database"
	"casedesk/pkg/jwtutil"
	"casedesk/pkg/logger"
	"casedesk/prometheus"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

func main() {
	// Load configuration from .env file and environment variables
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	logger.InitLogger(cfg)
	log := logger.GetLogger()
	defer func() { _ = log.Sync() }()
	log.Info("Starting casedesk...", zap.String("environment", cfg.Server.Env))

	jwtutil.Initialize(&cfg.JWT)
	log.Info("JWT utilities initialized")

	prometheus.InitMetrics(cfg)
	log.Info("Prometheus metrics initialized")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	backend, err := openBackend(cfg)
	if err != nil {
		log.Fatal("Failed to open record store", zap.String("driver", cfg.Store.Driver), zap.Error(err))
	}
	if cfg.Store.ImportDir != "" {
		if err := importCollections(ctx, cfg.Store.ImportDir, backend, log); err != nil {
			log.Fatal("Failed to import collections", zap.String("dir", cfg.Store.ImportDir), zap.Error(err))
		}
	}
	store := recordstore.New(backend, log)
	defer func() {
		if err := store.Close(); err != nil {
			log.Error("Failed to close record store", zap.Error(err))
		}
	}()
	log.Info("Record store ready", zap.String("driver", cfg.Store.Driver))

	svc := casework.New(store, log)
	created, err := svc.Bootstrap(ctx, cfg.Auth.BootstrapEmail, cfg.Auth.BootstrapPassword, cfg.Auth.BootstrapName)
	if err != nil {
		log.Fatal("Failed to bootstrap super admin", zap.Error(err))
	}
	if created {
		log.Info("Bootstrap super admin created", zap.String("email", cfg.Auth.BootstrapEmail))
	}

	hub := notify.NewHub(notify.Options{
		Capacity:   cfg.Notify.Capacity,
		MaxVisible: cfg.Notify.MaxVisible,
		ToastTTL:   cfg.Notify.ToastTTL,
	})

	dialogs := dialog.NewRegistry(cfg.Dialog.TTL,
		dialog.WithLogger(log),
		dialog.WithExpireHook(func(d dialog.Dialog) {
			prometheus.RecordDialog("expired")
			notify.SendInfo(hub.For(d.OwnerID), d.Title+" expired", "The confirmation was not answered in time. Nothing was changed.")
		}),
	)
	defer func() { _ = dialogs.Close() }()

	var orgStore organization.Store = organization.NewLocalStore(store)
	if cfg.Hosted.URL != "" {
		orgStore = organization.NewHostedClient(cfg.Hosted.URL, cfg.Hosted.APIKey, cfg.Hosted.Table, cfg.Hosted.Timeout)
		log.Info("Using hosted organizations table", zap.String("url", cfg.Hosted.URL), zap.String("table", cfg.Hosted.Table))
	}
	orgs := organization.NewDirectory(orgStore, log)
	orgs.OnFallback = prometheus.HostedFallbackCounter.Inc

	exports, err := blob.Open(ctx, blob.Config{
		Driver:    cfg.Blob.Driver,
		Dir:       cfg.Blob.Dir,
		Bucket:    cfg.Blob.S3Bucket,
		Region:    cfg.Blob.S3Region,
		Endpoint:  cfg.Blob.S3Endpoint,
		PathStyle: cfg.Blob.S3PathStyle,
	})
	if err != nil {
		log.Fatal("Failed to open export storage", zap.String("driver", cfg.Blob.Driver), zap.Error(err))
	}

	e := echo.New()
	e.HideBanner = true

	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORS())
	e.Use(middleware.RequestIDMiddleware)
	e.Use(prometheus.Middleware())
	e.Use(middleware.RequestLogger)

	api := &handler.API{
		Config:  cfg,
		Service: svc,
		Hub:     hub,
		Dialogs: dialogs,
		Orgs:    orgs,
		Blob:    exports,
	}
	api.Register(e)

	go func() {
		port := cfg.Server.Port
		log.Info("Starting server", zap.String("port", port))
		if err := e.Start(":" + port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error("Server shutdown failed", zap.Error(err))
	}
}

// openBackend builds the record store backend named by STORE_DRIVER
func openBackend(cfg *config.Config) (recordstore.Backend, error) {
	switch cfg.Store.Driver {
	case "memory":
		return recordstore.NewMemoryBackend(), nil
	case "sqlite":
		return recordstore.NewSQLiteBackend(cfg.Store.SQLitePath)
	case "postgres":
		db, err := database.InitDB(&cfg.DB)
		if err != nil {
			return nil, err
		}
		return recordstore.NewGormBackend(db)
	default:
		return recordstore.NewFileBackend(filepath.Clean(cfg.Store.DataDir))
	}
}

// importCollections seeds an empty backend with the JSON collections found in dir
func importCollections(ctx context.Context, dir string, dst recordstore.Backend, log *zap.Logger) error {
	existing, err := dst.Keys(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		log.Info("Record store already holds data, skipping import", zap.Int("keys", len(existing)))
		return nil
	}
	src, err := recordstore.NewFileBackend(dir)
	if err != nil {
		return err
	}
	n, err := recordstore.Migrate(ctx, src, dst)
	if err != nil {
		return err
	}
	log.Info("Collections imported", zap.String("dir", dir), zap.Int("keys", n))
	return nil
}
