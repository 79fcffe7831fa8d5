package main

import (
	"context"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/portkey-logistics/portkey/internal/observability"
	"github.com/portkey-logistics/portkey/internal/persistence"
)

func migrateCmd() *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply SQL migrations to Postgres",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			logger, err := observability.NewLogger(cfg.Logger)
			if err != nil {
				return err
			}
			defer logger.Sync() //nolint:errcheck

			if dir == "" {
				dir = cfg.Postgres.MigrationsDir
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
			if err != nil {
				return err
			}
			defer pg.Close()

			if pg.PoolHandle() == nil {
				logger.Warn("POSTGRES_DSN not set; nothing to migrate")
				return nil
			}
			if err := persistence.RunMigrations(ctx, pg.PoolHandle(), dir, logger); err != nil {
				logger.Error("migration failed", zap.Error(err))
				return err
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&dir, "dir", "d", "", "Migrations directory (defaults to POSTGRES_MIGRATIONS_DIR)")

	return cmd
}
