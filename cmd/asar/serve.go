package main

import (
	"context"
	"errors"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/abolfazlirani/asar-backend-app/internal/logging"
)

func newServeCmd(root *rootOptions) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API and run scheduled jobs",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			container, err := root.container(ctx, nil)
			if err != nil {
				return err
			}
			defer container.Close()

			cfg := container.Config
			if addr != "" {
				cfg.Server.Addr = addr
			}
			logger := logging.HTTPLogger(container.LoggerProvider())

			server := &http.Server{
				Addr:         cfg.Server.Addr,
				Handler:      container.Handler(),
				ReadTimeout:  cfg.Server.ReadTimeout,
				WriteTimeout: cfg.Server.WriteTimeout,
			}

			container.Start(ctx)

			errCh := make(chan error, 1)
			go func() {
				logger.Info("http.server.listening", "addr", server.Addr, "environment", cfg.Environment)
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
			defer cancel()
			logger.Info("http.server.shutdown")
			if err := server.Shutdown(shutdownCtx); err != nil {
				return err
			}
			return <-errCh
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address, overrides ASAR_ADDR and PORT")
	return cmd
}
