package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/Houmeecl/pilotonotary-backend/internal/config"
	"github.com/Houmeecl/pilotonotary-backend/internal/server"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func serveCmd() *cobra.Command {
	var addr, storage string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API, websocket hub and scheduled jobs",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			if addr != "" {
				cfg.HTTPAddr = addr
			}
			if storage != "" {
				cfg.StorageDriver = storage
			}

			logger, err := server.NewLogger(cfg)
			if err != nil {
				return err
			}
			defer logger.Sync() //nolint:errcheck

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if err := server.Run(ctx, cfg, logger); err != nil {
				logger.Error("server stopped with error", zap.Error(err))
				return err
			}
			logger.Info("server stopped")
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides HTTP_ADDR)")
	cmd.Flags().StringVar(&storage, "storage", "", "storage driver: postgres or memory (overrides STORAGE_DRIVER)")
	return cmd
}
