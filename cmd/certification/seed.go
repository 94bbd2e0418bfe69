package main

import (
	"fmt"
	"os"

	"github.com/Houmeecl/pilotonotary-backend/internal/config"
	"github.com/Houmeecl/pilotonotary-backend/internal/repository"
	"github.com/Houmeecl/pilotonotary-backend/internal/seed"
	"github.com/Houmeecl/pilotonotary-backend/internal/server"

	"github.com/spf13/cobra"
)

func seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed [file.yaml]",
		Short: "Create users and POS locations from a YAML file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			logger, err := server.NewLogger(cfg)
			if err != nil {
				return err
			}
			defer logger.Sync() //nolint:errcheck

			fh, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer fh.Close()

			f, err := seed.Parse(fh)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			pool, err := config.ConnectDB(ctx, cfg.DSN(), logger)
			if err != nil {
				return err
			}
			defer pool.Close()

			res, err := seed.Apply(ctx, repository.NewStore(pool), f, logger)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "users created=%d skipped=%d, pos locations created=%d\n",
				res.UsersCreated, res.UsersSkipped, res.POSCreated)
			return nil
		},
	}
}
