package main

import (
	"context"

	"github.com/smallbiznis/storeledger/internal/config"
	"github.com/smallbiznis/storeledger/internal/migration"
	"github.com/smallbiznis/storeledger/internal/observability"
	"github.com/smallbiznis/storeledger/pkg/db"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database migrations and exit",
	Long: `Apply the embedded migrations to the configured database. Postgres uses the
versioned SQL files; mysql and sqlite are migrated from the models.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		var log *zap.Logger
		var cfg config.Config
		app := fx.New(
			fx.NopLogger,
			config.Module,
			observability.Module,
			db.Module,
			// Migrations run while the graph is built.
			migration.Module,
			fx.Populate(&log, &cfg),
		)
		if err := app.Err(); err != nil {
			return err
		}
		return runOnce(cmd.Context(), app, func(context.Context) error {
			log.Info("migrations applied", zap.String("db_type", cfg.DBType))
			return nil
		})
	},
}
