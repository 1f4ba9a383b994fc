package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/portfolio-site/portfolio-api/handlers"
	"github.com/portfolio-site/portfolio-api/internal/auth"
	"github.com/portfolio-site/portfolio-api/internal/config"
	"github.com/portfolio-site/portfolio-api/internal/mail"
	"github.com/portfolio-site/portfolio-api/internal/portfolio/repository"
	"github.com/portfolio-site/portfolio-api/internal/portfolio/service"
	"github.com/portfolio-site/portfolio-api/internal/server"
	"github.com/portfolio-site/portfolio-api/internal/storage"
	"github.com/portfolio-site/portfolio-api/internal/tokens"
	"github.com/portfolio-site/portfolio-api/internal/upload"
	"github.com/portfolio-site/portfolio-api/pkg/logger"
	"github.com/portfolio-site/portfolio-api/pkg/metrics"
)

const shutdownTimeout = 30 * time.Second

func main() {
	// initialize logging (can be controlled with LOG_LEVEL env: debug|info|warn|error|fatal)
	logger.Init(os.Getenv("LOG_LEVEL"))

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}
	logger.Init(cfg.Server.LogLevel)
	if err := cfg.Validate(); err != nil {
		logger.Fatalf("invalid configuration: %v", err)
	}
	if cfg.Server.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	logger.Infof("config loaded: env=%s store=%s uploads=%s mail=%s redis=%v",
		cfg.Server.Environment, cfg.Store.Driver, cfg.Upload.Driver, cfg.Mail.Driver, cfg.Redis.Addr() != "")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := repository.Open(ctx, cfg)
	if err != nil {
		logger.Fatalf("failed to open store: %v", err)
	}
	defer closeStore()

	passwords := auth.NewPasswords(auth.DefaultCost)
	var seedHash string
	if cfg.Admin.BootstrapPassword != "" {
		if seedHash, err = passwords.Hash(cfg.Admin.BootstrapPassword); err != nil {
			logger.Fatalf("hash ADMIN_PASSWORD: %v", err)
		}
	}
	docs := repository.NewGuard(store, seedHash)
	if err := docs.Init(ctx); err != nil {
		if errors.Is(err, repository.ErrNoAdminPassword) {
			logger.Fatalf("ADMIN_PASSWORD is required until a portfolio document exists (or run cmd/seed -password)")
		}
		logger.Fatalf("failed to initialize portfolio: %v", err)
	}

	blobs, err := storage.Open(ctx, cfg.Upload, cfg.MinIO)
	if err != nil {
		logger.Fatalf("failed to open upload storage: %v", err)
	}
	logger.Infof("uploads: %s", blobs.Name())

	transport, err := mail.New(cfg.Mail)
	if err != nil {
		logger.Fatalf("failed to configure mail: %v", err)
	}
	mail.Verify(transport, cfg.Mail)
	mailer := mail.Instrumented{Mailer: transport}

	// Redis is optional: only the shared rate limiter uses it
	var rdb *redis.Client
	if addr := cfg.Redis.Addr(); addr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Warnf("failed to connect to Redis (%s): %v", addr, err)
			_ = rdb.Close()
			rdb = nil
		} else {
			logger.Infof("connected to Redis at %s", addr)
			defer rdb.Close()
		}
	}

	metrics.RegisterCollectors(prometheus.DefaultRegisterer)

	checks := map[string]handlers.Check{
		"store": func(ctx context.Context) error {
			_, err := store.Load(ctx)
			if errors.Is(err, repository.ErrNotFound) {
				return nil
			}
			return err
		},
	}
	if rdb != nil && cfg.RateLimit.UseRedis {
		checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	}

	r := server.New(server.Deps{
		Config:      cfg,
		Auth:        auth.NewService(docs, passwords, tokens.NewManager(cfg.JWT.Secret, cfg.JWT.TTL)),
		Content:     service.NewContentService(docs, cfg.Server.PublicBaseURL),
		Submissions: service.NewSubmissionService(docs, mailer, cfg.Mail.From, cfg.Mail.To, cfg.Mail.Timeout),
		Uploads:     upload.NewService(blobs, docs, cfg.Upload.MaxImageSize, cfg.Upload.MaxCVSize),
		Limiters:    server.Limiters(cfg.RateLimit, rdb),
		UploadsDir:  storage.LocalRoot(blobs),
		Checks:      checks,
		Metrics:     promhttp.Handler(),
	})

	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Infof("Starting portfolio API on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		logger.Fatalf("server failed: %v", err)
	case <-ctx.Done():
	}

	logger.Infof("shutdown signal received, closing server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("graceful shutdown failed: %v", err)
		return
	}
	logger.Infof("HTTP server closed")
}
