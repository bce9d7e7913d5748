package main

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/storeledger/internal/account"
	"github.com/smallbiznis/storeledger/internal/cache"
	"github.com/smallbiznis/storeledger/internal/cashflow"
	"github.com/smallbiznis/storeledger/internal/clock"
	"github.com/smallbiznis/storeledger/internal/config"
	"github.com/smallbiznis/storeledger/internal/events"
	"github.com/smallbiznis/storeledger/internal/invoice"
	"github.com/smallbiznis/storeledger/internal/ledger"
	"github.com/smallbiznis/storeledger/internal/migration"
	"github.com/smallbiznis/storeledger/internal/observability"
	"github.com/smallbiznis/storeledger/pkg/db"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
)

var version = "0.1.0"

const startTimeout = 30 * time.Second

var rootCmd = &cobra.Command{
	Use:   "storeledger",
	Short: "Retail financial ledger: payables, receivables, invoices and daily cash flow",
	Long: `storeledger keeps the payable and receivable ledgers, subscription invoices
and the daily cash-flow book of every tenant, and derives overdue status,
period totals, MRR and cash-flow consistency from them.

Configuration is read from the environment (and a .env file when present).`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.AddCommand(serveCmd, migrateCmd, seedCmd, verifyCmd)
}

// coreModules are the infrastructure and ledger services every command needs.
func coreModules() fx.Option {
	return fx.Options(
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		migration.Module,
		clock.Module,
		events.Module,
		cache.Module,
		ledger.Module,
		account.Module,
		invoice.Module,
		cashflow.Module,
	)
}

func RegisterSnowflake() (*snowflake.Node, error) {
	return snowflake.NewNode(1)
}

// runOnce starts app, runs fn and stops app again. It is used by the
// one-shot commands that do not serve traffic.
func runOnce(ctx context.Context, app *fx.App, fn func(context.Context) error) error {
	startCtx, cancel := context.WithTimeout(ctx, startTimeout)
	defer cancel()
	if err := app.Start(startCtx); err != nil {
		return err
	}

	runErr := fn(ctx)

	stopCtx, stopCancel := context.WithTimeout(context.Background(), startTimeout)
	defer stopCancel()
	if err := app.Stop(stopCtx); err != nil && runErr == nil {
		return err
	}
	return runErr
}
