package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/Skotchmaster/forum_api/internal/config"
	"github.com/Skotchmaster/forum_api/internal/db"
	"github.com/Skotchmaster/forum_api/internal/es"
	"github.com/Skotchmaster/forum_api/internal/events"
	"github.com/Skotchmaster/forum_api/internal/logging"
	loggingmw "github.com/Skotchmaster/forum_api/internal/middleware/logging"
	"github.com/Skotchmaster/forum_api/internal/repo"
	"github.com/Skotchmaster/forum_api/internal/revocation"
	"github.com/Skotchmaster/forum_api/internal/service"
	"github.com/Skotchmaster/forum_api/internal/tokens"
	httpserver "github.com/Skotchmaster/forum_api/internal/transport/http"
)

func main() {
	cfg := config.Load()

	logger := logging.New(cfg.LogLevel)
	slog.SetDefault(logger)
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid_config", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	gdb, err := db.Open(ctx, cfg.DBDriver, cfg.DatabaseURL)
	if err != nil {
		logger.Error("db_open_failed", "error", err)
		os.Exit(1)
	}
	if err := db.Migrate(gdb); err != nil {
		logger.Error("db_migrate_failed", "error", err)
		os.Exit(1)
	}
	r := repo.New(gdb)

	var publisher events.Publisher = events.Nop{}
	if len(cfg.KafkaBrokers) > 0 {
		if err := events.EnsureTopics(ctx, cfg.KafkaBrokers[0], events.Topics...); err != nil {
			logger.Warn("kafka_topics_not_created", "error", err)
		}
		prod, err := events.NewProducer(cfg.KafkaBrokers)
		if err != nil {
			logger.Error("kafka_producer_failed", "error", err)
			os.Exit(1)
		}
		publisher = prod
	}

	var indexer service.BoardIndexer = es.Nop{}
	var searcher service.Searcher = &service.DBSearcher{Repo: r}
	if cfg.ESURL != "" {
		client, err := es.NewClient(ctx, es.ClientConfig{URL: cfg.ESURL, User: cfg.ESUser, Password: cfg.ESPassword}, logger)
		if err != nil {
			logger.Error("elasticsearch_unavailable", "error", err)
			os.Exit(1)
		}
		idx := &es.BoardIndex{Client: client, Index: cfg.ESIndex, Refs: r}
		if err := idx.EnsureIndex(ctx); err != nil {
			logger.Error("elasticsearch_index_failed", "error", err)
			os.Exit(1)
		}
		indexer = idx
		if cfg.SearchBackend == "elasticsearch" {
			searcher = idx
		}
	}

	var revoked revocation.Store = r
	if cfg.RevocationStore == "memory" {
		revoked = revocation.NewMemory()
	}
	pruner := &revocation.Pruner{Store: revoked, Interval: cfg.RevocationPruneInterval, Log: logger}
	go pruner.Run(ctx)

	authSvc := &service.AuthService{
		Repo:    r,
		Tokens:  tokens.NewService(cfg.SecretKey, cfg.TokenTTL),
		Revoked: revoked,
		Events:  publisher,
		Index:   indexer,
	}

	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = httpserver.ErrorHandler
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(
		middleware.Recover(),
		middleware.RequestID(),
		loggingmw.RequestLogger(logger),
		middleware.CORS(),
		middleware.Secure(),
	)

	httpserver.Register(e, &httpserver.Deps{
		Ready:       func(ctx context.Context) error { return db.Ping(ctx, gdb) },
		Auth:        authSvc,
		AuthHTTP:    &httpserver.AuthHTTP{Svc: authSvc},
		UserHTTP:    &httpserver.UserHTTP{Svc: &service.UserService{Repo: r, Events: publisher, Index: indexer}},
		BoardHTTP:   &httpserver.BoardHTTP{Svc: &service.BoardService{Repo: r, Events: publisher, Index: indexer}},
		CommentHTTP: &httpserver.CommentHTTP{Svc: &service.CommentService{Repo: r, Events: publisher}},
		SearchHTTP:  &httpserver.SearchHTTP{Svc: &service.SearchService{Backend: searcher}},
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		logger.Info("http_server_listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http_server_error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server_shutdown_error", "error", err)
	}
	if err := publisher.Close(); err != nil {
		logger.Error("kafka_close_error", "error", err)
	}
	if sqlDB, err := gdb.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			logger.Error("db_close_error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
