package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"movie-awards/internal/httpapi"
)

func cmdServe() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:     "serve",
		Aliases: []string{"server", "standalone"},
		Short:   "Serve lookups over plain HTTP for local development",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if addr != "" {
				cfg.Serve.Addr = addr
			}
			log := logger.With("mode", "serve")

			h, closeFn, err := buildHandler(cmd.Context(), cfg, log)
			if err != nil {
				return errors.Wrap(err, "failed to setup server")
			}
			defer closeFn()

			s := &http.Server{
				Handler:      httpapi.NewRouter(h, log.With("component", "router")),
				Addr:         cfg.Serve.Addr,
				ReadTimeout:  cfg.Serve.Timeout,
				WriteTimeout: cfg.Serve.Timeout,
				IdleTimeout:  cfg.Serve.Timeout,
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			go func() {
				<-ctx.Done()
				shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Serve.Timeout)
				defer cancel()
				if err := s.Shutdown(shutdownCtx); err != nil {
					log.Warn("shutdown failed", "err", err)
				}
			}()

			log.Info("serving...", "address", s.Addr, "timeout", cfg.Serve.Timeout.String())
			if err := s.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return errors.Wrap(err, "server failed")
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "[SERVE_ADDR] listen address")
	return cmd
}
