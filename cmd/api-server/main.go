package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"novelhub/internal/backend"
	"novelhub/internal/backend/pgdirect"
	"novelhub/internal/backend/postgrest"
	"novelhub/internal/backend/realtime"
	"novelhub/internal/config"
	"novelhub/internal/http-api/handler"
	"novelhub/internal/logger"
	"novelhub/internal/metrics"
	"novelhub/internal/notify"
	"novelhub/internal/service"
	"novelhub/internal/session"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("could not load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}
	logg, err := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatal(err)
	}
	if err := run(cfg, logg); err != nil {
		logg.Error("api server stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logg *slog.Logger) error {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	var m *metrics.Metrics
	if cfg.PrometheusEnabled {
		m = metrics.New()
	}

	rest := postgrest.NewClient(postgrest.Options{
		BaseURL:   cfg.BackendURL,
		AnonKey:   cfg.BackendAnonKey,
		RateLimit: cfg.RateLimit,
		RateBurst: cfg.RateBurst,
		Logger:    logg,
		Metrics:   m,
	})

	var db backend.DataSource = rest
	if cfg.BackendMode == config.ModePostgres {
		src, err := pgdirect.Open(cfg.DatabaseURL, pgdirect.Options{Logger: logg, Metrics: m})
		if err != nil {
			return err
		}
		defer src.Close()
		db = src
		logg.Info("using direct database connection")
	}

	live, err := realtime.NewClient(cfg.BackendURL, cfg.BackendAnonKey, realtime.WithLogger(logg))
	if err != nil {
		return err
	}

	var store session.Store = session.NewMemoryStore()
	if cfg.RedisURL != "" {
		rs, err := session.NewRedisStore(cfg.RedisURL, cfg.RedisPassword, cfg.SessionTTL)
		if err != nil {
			return err
		}
		defer rs.Close()
		store = rs
		logg.Info("sessions stored in redis")
	}

	opts := service.Options{
		Timeout:    cfg.RequestTimeout,
		RetryMax:   cfg.RetryMax,
		RetryDelay: cfg.RetryDelay,
		Notifier:   notify.NewLog(logg),
		Metrics:    m,
		Logger:     logg,
	}
	services := service.NewSet(db, rest, live, cfg.UploadLimit(), opts)

	// one request may run every retry of its slowest call
	handler.SetRequestTimeout(cfg.RequestTimeout * time.Duration(cfg.RetryMax+1))
	router := handler.NewRouter(handler.Services{
		Auth:     rest,
		Sessions: session.NewRegistry(rest, store, cfg.BackendJWTSecret),
		Novels:   services.Novels,
		Ranking:  services.Ranking,
		Chapters: services.Chapters,
		Votes:    services.Votes,
		Reviews:  services.Reviews,
		Comments: services.Comments,
		Library:  services.Library,
		Progress: services.Progress,
		Profiles: services.Profiles,
		Storage:  services.Storage,
	}, handler.RouterOptions{
		Logger:        logg,
		Metrics:       m,
		CORSOrigins:   cfg.CORSOrigins,
		SecureCookies: !cfg.IsDevelopment(),
		BackendMode:   cfg.BackendMode,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logg.Info("api server listening", "addr", srv.Addr, "backend", cfg.BackendMode)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logg.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
