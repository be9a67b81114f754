package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/geocoder89/tasktracker/internal/auth"
	"github.com/geocoder89/tasktracker/internal/config"
	"github.com/geocoder89/tasktracker/internal/db"
	"github.com/geocoder89/tasktracker/internal/domain/user"
	httpx "github.com/geocoder89/tasktracker/internal/http"
	"github.com/geocoder89/tasktracker/internal/http/middlewares"
	"github.com/geocoder89/tasktracker/internal/observability"
	"github.com/geocoder89/tasktracker/internal/redisclient"
	"github.com/geocoder89/tasktracker/internal/repo"
	"github.com/geocoder89/tasktracker/internal/repo/memory"
	"github.com/geocoder89/tasktracker/internal/repo/postgres"
	"github.com/geocoder89/tasktracker/internal/security"
	"github.com/geocoder89/tasktracker/internal/service"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	// Load the config set up
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	// start up the observability logger
	log := observability.NewLogger(cfg.Env, "tasktracker-api")
	slog.SetDefault(log)

	if err := run(cfg, log); err != nil {
		log.Error("api exited", "err", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracer, err := observability.InitTracer(ctx, "tasktracker-api", cfg.Env, cfg.OTLPEndpoint)
	if err != nil {
		return fmt.Errorf("init tracer: %w", err)
	}
	defer func() {
		tctx, cancel := config.WithTimeout(5 * time.Second)
		defer cancel()
		_ = shutdownTracer(tctx)
	}()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	prom := observability.NewProm(reg)

	var (
		store repo.Store
		ping  func(context.Context) error
	)

	switch cfg.StoreDriver {
	case "memory":
		log.Warn("using in-memory store; data is lost on restart")
		store = memory.NewStore()
	default:
		pool, err := db.NewPool(ctx, cfg.DBURL)
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		defer pool.Close()

		if err := db.Migrate(ctx, pool, log); err != nil {
			return err
		}

		store = postgres.NewStore(pool, prom)
		ping = pool.Ping
	}

	hasher := security.NewHasher(0)

	if cfg.SeedStaff() {
		accounts := service.NewRegistrationService(store, hasher, log)
		created, err := accounts.EnsureStaff(ctx, user.RegisterRequest{
			Username: cfg.AdminUsername,
			Email:    cfg.AdminEmail,
			Password: cfg.AdminPassword,
		})
		if err != nil {
			return fmt.Errorf("seed staff user: %w", err)
		}
		log.Info("staff user checked", "username", cfg.AdminUsername, "created", created)
	}

	var counter middlewares.Counter
	if cfg.RedisAddr != "" {
		rdb := redisclient.New(redisclient.Config{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer rdb.Close()

		pctx, cancel := context.WithTimeout(ctx, 2*time.Second)
		err := rdb.Ping(pctx)
		cancel()
		if err != nil {
			// the limiter fails open, so a missing redis only weakens rate limiting
			log.Warn("redis unreachable at startup", "addr", cfg.RedisAddr, "err", err)
		}
		counter = rdb
	}

	router := httpx.NewRouter(log, httpx.Deps{
		Env:                cfg.Env,
		Store:              store,
		JWT:                auth.NewManager(cfg.JWTSecret, cfg.AccessTTL),
		Hasher:             hasher,
		Prom:               prom,
		Gatherer:           reg,
		RateCounter:        counter,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		Ping:               ping,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	return serve(ctx, srv, log, cfg)
}

// serve blocks until ctx is cancelled, then drains in-flight requests.
func serve(ctx context.Context, srv *http.Server, log *slog.Logger, cfg config.Config) error {
	errCh := make(chan error, 1)

	go func() {
		log.Info("Server starting", "port", cfg.Port, "env", cfg.Env, "store", cfg.StoreDriver)
		err := srv.ListenAndServe()

		if err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("server shutting down")

	sctx, cancel := config.WithTimeout(10 * time.Second)
	defer cancel()

	if err := srv.Shutdown(sctx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	log.Info("shutdown complete")
	return nil
}
