package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"storefront/internal/infra/config"
	"storefront/internal/infra/logging"
	"storefront/internal/platform/di"
)

const shutdownTimeout = 25 * time.Second

// storefront serve: run the HTTP API until SIGINT/SIGTERM.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Load(envFile)
		if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
			cfg.Port = trimPort(addr)
		}

		log, err := logging.New(cfg.IsProduction(), cfg.LogLevel)
		if err != nil {
			return err
		}
		defer func() { _ = log.Sync() }()

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		cont, err := di.NewContainer(ctx, cfg, log)
		if err != nil {
			return err
		}
		defer func() {
			if err := cont.Close(); err != nil {
				log.Warn("[boot] close failed", zap.Error(err))
			}
		}()

		go cont.Registry.Run(ctx, cfg.SessionSweepInterval)

		// No WriteTimeout: websocket streams are long-lived.
		srv := &http.Server{
			Addr:              cfg.Addr(),
			Handler:           cont.Router(),
			ReadHeaderTimeout: 10 * time.Second,
			IdleTimeout:       60 * time.Second,
		}

		errCh := make(chan error, 1)
		go func() {
			log.Info("[boot] listening", zap.String("addr", srv.Addr), zap.String("backend", cont.Backend))
			errCh <- srv.ListenAndServe()
		}()

		select {
		case err := <-errCh:
			if !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		case <-ctx.Done():
		}

		log.Info("[boot] shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Warn("[boot] server shutdown error", zap.Error(err))
		}
		log.Info("[boot] server stopped")
		return nil
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address, overrides PORT (e.g. :9090)")
}

func trimPort(addr string) string {
	for i := len(addr) - 1; i >= 0; i-- {
		if addr[i] == ':' {
			return addr[i+1:]
		}
	}
	return addr
}
