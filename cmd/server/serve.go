package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/Skotchmaster/konveksi/internal/cache"
	"github.com/Skotchmaster/konveksi/internal/config"
	"github.com/Skotchmaster/konveksi/internal/httpserver"
	"github.com/Skotchmaster/konveksi/internal/metrics"
	"github.com/Skotchmaster/konveksi/internal/middleware/auth"
	"github.com/Skotchmaster/konveksi/internal/mykafka"
	"github.com/Skotchmaster/konveksi/internal/repo"
	"github.com/Skotchmaster/konveksi/internal/search"
	"github.com/Skotchmaster/konveksi/internal/service"
	"github.com/Skotchmaster/konveksi/internal/storage"
	pkgdb "github.com/Skotchmaster/konveksi/pkg/db"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return serve(cmd.Context())
	},
}

func serve(ctx context.Context) error {
	cfg, logger, db, err := boot(ctx)
	if err != nil {
		return err
	}
	if err := cfg.RequireServe(); err != nil {
		_ = pkgdb.Close(db)
		return err
	}
	defer func() {
		if err := pkgdb.Close(db); err != nil {
			logger.Error("db_close_error", "error", err)
		}
	}()

	if err := migrate(ctx, db); err != nil {
		return err
	}

	infra, err := connectInfra(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer infra.close(logger)

	e := httpserver.New(buildDeps(cfg, logger, db, infra))

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           e,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		ReadHeaderTimeout: 3 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http_listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting_down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown_error", "error", err)
	}
	logger.Info("shutdown_complete")
	return nil
}

// infra holds the optional backends. Each is nil when not configured.
type infra struct {
	producer *mykafka.Producer
	search   *search.Client
	cache    *cache.Cache
	disk     storage.Disk
	metrics  *metrics.Metrics
}

func connectInfra(ctx context.Context, cfg config.Config, logger *slog.Logger) (*infra, error) {
	in := &infra{metrics: metrics.New()}

	dialCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if len(cfg.KafkaBrokers) > 0 {
		p, err := mykafka.NewProducer(dialCtx, cfg.KafkaBrokers, mykafka.Topics())
		if err != nil {
			logger.Warn("kafka_unavailable", "brokers", cfg.KafkaBrokers, "error", err)
		} else {
			in.producer = p
		}
	}

	if cfg.Search.URL != "" {
		c, err := search.NewClient(dialCtx, cfg.Search)
		if err == nil {
			err = c.EnsureIndex(dialCtx)
		}
		if err != nil {
			logger.Warn("search_unavailable", "url", cfg.Search.URL, "error", err)
		} else {
			in.search = c
		}
	}

	if cfg.Cache.Addr != "" {
		c, err := cache.Connect(dialCtx, cfg.Cache)
		if err != nil {
			logger.Warn("cache_unavailable", "addr", cfg.Cache.Addr, "error", err)
		} else {
			in.cache = c
		}
	}

	switch cfg.StorageDriver {
	case storage.DriverS3:
		d, err := storage.NewS3Disk(dialCtx, cfg.S3)
		if err != nil {
			return nil, fmt.Errorf("storage: %w", err)
		}
		in.disk = d
	default:
		d, err := storage.NewLocalDisk(cfg.LocalRoot)
		if err != nil {
			return nil, fmt.Errorf("storage: %w", err)
		}
		in.disk = d
	}

	logger.Info("infra_ready",
		"kafka", in.producer != nil,
		"search", in.search != nil,
		"cache", in.cache != nil,
		"storage", cfg.StorageDriver,
	)
	return in, nil
}

func (in *infra) close(logger *slog.Logger) {
	if in.producer != nil {
		if err := in.producer.Close(); err != nil {
			logger.Error("kafka_close_error", "error", err)
		}
	}
	if err := in.cache.Close(); err != nil {
		logger.Error("cache_close_error", "error", err)
	}
}

func (in *infra) publisher() service.Publisher {
	if in.producer == nil {
		return service.NopPublisher{}
	}
	return in.producer
}

func (in *infra) index() service.ProductIndex {
	if in.search == nil {
		return nil
	}
	return in.search
}

func buildDeps(cfg config.Config, logger *slog.Logger, db *gorm.DB, in *infra) *httpserver.Deps {
	r := repo.New(db)
	events := in.publisher()
	uploads := storage.NewUploader(in.disk, cfg.UploadMaxBytes)

	authSvc := &service.AuthService{Repo: r, JWTSecret: cfg.JWTSecret, TokenTTL: cfg.TokenTTL, Events: events}

	return &httpserver.Deps{
		Auth: &httpserver.AuthHTTP{Svc: authSvc, SecureCookies: cfg.SecureCookies},
		Catalog: &httpserver.CatalogHTTP{Svc: &service.CatalogService{
			Repo:    r,
			Cache:   in.cache,
			Index:   in.index(),
			Uploads: uploads,
			Events:  events,
			Metrics: in.metrics,
		}},
		Orders: &httpserver.OrderHTTP{Svc: &service.OrderService{
			Repo:    r,
			Cache:   in.cache,
			Events:  events,
			Metrics: in.metrics,
		}},
		Designs:  &httpserver.DesignHTTP{Svc: &service.DesignService{Repo: r, Uploads: uploads}},
		Messages: &httpserver.MessageHTTP{Svc: &service.MessageService{Repo: r, Events: events}},
		Assets:   &httpserver.AssetsHTTP{Disk: in.disk},

		Gate:    auth.NewGate(authSvc),
		Metrics: in.metrics,
		Logger:  logger,
		Ready: func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},

		ClientURLs:    cfg.ClientURLs,
		BodyLimit:     cfg.BodyLimit,
		SecureCookies: cfg.SecureCookies,
		CSRF:          cfg.CSRF,
	}
}
