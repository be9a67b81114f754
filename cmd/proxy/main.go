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

	"github.com/geocoder89/tasktracker/internal/config"
	httpx "github.com/geocoder89/tasktracker/internal/http"
	"github.com/geocoder89/tasktracker/internal/observability"
	"github.com/geocoder89/tasktracker/internal/proxy"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	cfg, err := config.LoadProxy()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	log := observability.NewLogger(cfg.Env, "tasktracker-proxy")
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracer, err := observability.InitTracer(ctx, "tasktracker-proxy", cfg.Env, cfg.OTLPEndpoint)
	if err != nil {
		log.Error("init tracer", "err", err)
		os.Exit(1)
	}
	defer func() {
		tctx, cancel := config.WithTimeout(5 * time.Second)
		defer cancel()
		_ = shutdownTracer(tctx)
	}()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	prom := observability.NewProm(reg)

	// one pooled client for the life of the process
	upstream := proxy.NewClient(cfg.UpstreamBaseURL, &http.Client{}, prom)

	router := httpx.NewProxyRouter(log, httpx.ProxyDeps{
		Env:      cfg.Env,
		Upstream: upstream,
		Prom:     prom,
		Gatherer: reg,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.ProxyPort),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("Proxy starting", "port", cfg.ProxyPort, "upstream", cfg.UpstreamBaseURL)
		err := srv.ListenAndServe()

		if err != nil && err != http.ErrServerClosed {
			log.Error("proxy failed", "err", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("proxy shutting down")

	sctx, cancel := config.WithTimeout(10 * time.Second)
	defer cancel()

	if err := srv.Shutdown(sctx); err != nil {
		log.Error("graceful shutdown failed", "err", err)
		return
	}
	log.Info("shutdown complete")
}
