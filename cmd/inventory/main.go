package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/Skotchmaster/inventory/internal/config"
	"github.com/Skotchmaster/inventory/internal/db"
	"github.com/Skotchmaster/inventory/internal/es"
	"github.com/Skotchmaster/inventory/internal/httpserver"
	"github.com/Skotchmaster/inventory/internal/logging"
	authmw "github.com/Skotchmaster/inventory/internal/middleware/auth"
	loggingmw "github.com/Skotchmaster/inventory/internal/middleware/logging"
	"github.com/Skotchmaster/inventory/internal/mykafka"
	"github.com/Skotchmaster/inventory/internal/repo"
	"github.com/Skotchmaster/inventory/internal/service"
	"github.com/Skotchmaster/inventory/internal/tokens"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.LogLevel).With("service", cfg.ServiceName)
	slog.SetDefault(logger)

	if cfg.SecretGenerated {
		logger.Warn("JWT_SECRET not set, using a generated secret; tokens will not survive a restart")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	gdb, err := db.Open(ctx, cfg.DatabaseURL)
	if err == nil {
		err = db.Migrate(ctx, gdb)
	}
	cancel()
	if err != nil {
		log.Fatalf("db: %v", err)
	}

	rp := &repo.GormRepo{DB: gdb}
	issuer := tokens.NewIssuer(cfg.Secret(), cfg.TokenTTL)

	authSvc := &service.AuthService{Repo: rp, Tokens: issuer}
	productSvc := &service.ProductService{Repo: rp, StrictDelete: cfg.StrictDeleteOwnership}

	var producer *mykafka.Producer
	if len(cfg.KafkaBrokers) > 0 {
		producer, err = mykafka.NewProducer(cfg.KafkaBrokers)
		if err != nil {
			log.Fatalf("kafka: %v", err)
		}
		authSvc.Events = producer
		productSvc.Events = producer
		logger.Info("kafka producer enabled", "brokers", cfg.KafkaBrokers)
	}

	if cfg.ESURL != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		client, err := es.NewClient(ctx, es.Config{URL: cfg.ESURL, User: cfg.ESUser, Password: cfg.ESPassword})
		if err == nil {
			ix := &es.ProductIndex{Client: client, Index: cfg.ESIndex}
			if err = ix.EnsureIndex(ctx); err == nil {
				productSvc.Index = ix
				logger.Info("search index enabled", "index", cfg.ESIndex)
			}
		}
		cancel()
		if err != nil {
			logger.Warn("elasticsearch unavailable, search falls back to the database", "error", err)
		}
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(echomw.Secure())
	e.Use(echomw.BodyLimit("1M"))
	e.Use(loggingmw.RequestLogger(logger))
	e.Use(echomw.CORS())
	if cfg.RequestTimeout > 0 {
		e.Use(echomw.ContextTimeout(cfg.RequestTimeout))
	}

	httpserver.Register(e, &httpserver.Deps{
		AuthHandler:    &httpserver.AuthHTTP{Svc: authSvc, CookieSecure: cfg.CookieSecure},
		ProductHandler: &httpserver.ProductHTTP{Svc: productSvc},
		AuthMW:         authmw.New(issuer),
		Ready:          func(ctx context.Context) error { return db.Ping(ctx, gdb) },
		CookieSecure:   cfg.CookieSecure,
		StrictDelete:   cfg.StrictDeleteOwnership,
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           e,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		ReadHeaderTimeout: 3 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info("inventory listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}
	if producer != nil {
		if err := producer.Close(); err != nil {
			logger.Error("kafka close error", "error", err)
		}
	}
	if err := db.Close(gdb); err != nil {
		logger.Error("db close error", "error", err)
	}

	logger.Info("inventory stopped")
}
