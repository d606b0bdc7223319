package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	httphandler "github.com/ericfisherdev/graduates/internal/adapter/driving/http"
	webhandler "github.com/ericfisherdev/graduates/internal/adapter/driving/web"
	"github.com/ericfisherdev/graduates/internal/metrics"
)

func newServeCmd(st *cliState) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		Long:  `Apply pending migrations and serve the read API, admin UI, public listing and metrics.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, st)
		},
	}
}

func runServe(cmd *cobra.Command, st *cliState) error {
	cfg, logger := st.cfg, st.logger

	logger.Info("config loaded",
		"listen_addr", cfg.ListenAddr,
		"db_path", cfg.DBPath,
		"base_url", cfg.BaseURL,
		"install_salt_configured", cfg.InstallSalt != "",
		"admin_token_configured", cfg.AdminToken != "",
	)

	// Setup signal-based context (SIGINT, SIGTERM).
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := openApp(ctx, st)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := a.db.Close(); closeErr != nil {
			logger.Error("error closing database", "error", closeErr)
		}
	}()
	logger.Info("database ready", "path", a.db.Path())
	if !a.operators.Enabled() {
		logger.Warn("admin screens disabled; set GRADUATES_ADMIN_TOKEN to enable them")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics.Register(reg)

	mux := http.NewServeMux()

	apiHandler := httphandler.NewHandler(a.listing, a.graduates, a.guard, cfg.BaseURL, logger)
	httphandler.RegisterAPIRoutes(mux, apiHandler, reg)

	webHandler := webhandler.NewHandler(a.credentials, a.graduates, a.operators, cfg.BaseURL, logger)
	webhandler.RegisterRoutes(mux, webHandler)

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           httphandler.ApplyMiddleware(mux, logger),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("http server starting", "addr", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	// Wait for shutdown signal or a listener failure.
	select {
	case <-ctx.Done():
		logger.Info("shutting down")
	case err := <-serveErr:
		if err != nil {
			return err
		}
	}

	// Graceful shutdown with 10s timeout for in-flight requests.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}

	logger.Info("shutdown complete")
	return nil
}
