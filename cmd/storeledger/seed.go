package main

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/storeledger/internal/config"
	"github.com/smallbiznis/storeledger/internal/seed"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load the demo ledger for one tenant",
	Example: `  # Seed tenant 42
  storeledger seed --org 42

  # Seed tenant 42 and the platform payables
  storeledger seed --org 42 --platform`,
	RunE: runSeed,
}

func init() {
	seedCmd.Flags().Int64("org", 0, "Tenant id to seed (required)")
	seedCmd.Flags().Bool("platform", false, "Also seed the platform payable ledger")
	_ = seedCmd.MarkFlagRequired("org")
}

func runSeed(cmd *cobra.Command, args []string) error {
	orgID, _ := cmd.Flags().GetInt64("org")
	withPlatform, _ := cmd.Flags().GetBool("platform")
	if orgID <= 0 {
		return errors.New("--org must be a positive tenant id")
	}

	var seeder *seed.Seeder
	var log *zap.Logger
	var cfg config.Config
	app := fx.New(
		fx.NopLogger,
		coreModules(),
		fx.Provide(seed.New),
		fx.Populate(&seeder, &log, &cfg),
	)
	if err := app.Err(); err != nil {
		return err
	}

	return runOnce(cmd.Context(), app, func(ctx context.Context) error {
		report, err := seeder.Run(ctx, snowflake.ID(orgID), withPlatform)
		if err != nil {
			return err
		}
		log.Info("seed finished",
			zap.Int64("org_id", orgID),
			zap.Int64("platform_org_id", cfg.PlatformOrgID),
			zap.Int("platform_accounts", report.PlatformAccounts),
			zap.Int("tenant_accounts", report.TenantAccounts),
			zap.Int("invoices", report.Invoices),
			zap.Int("cashflow_days", report.CashflowDays),
		)
		return nil
	})
}
