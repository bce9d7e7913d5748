package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/smallbiznis/storeledger/internal/integrity"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
)

var verifyCmd = &cobra.Command{
	Use:   "verify-cashflow",
	Short: "Re-verify recent cash-flow days of every tenant once",
	Long: `Run the integrity job a single time and print its result as JSON. The command
fails when any stored day does not reconcile with its transactions.`,
	RunE: runVerify,
}

func runVerify(cmd *cobra.Command, args []string) error {
	var job *integrity.Job
	app := fx.New(
		fx.NopLogger,
		coreModules(),
		fx.Provide(integrity.New),
		fx.Populate(&job),
	)
	if err := app.Err(); err != nil {
		return err
	}

	return runOnce(cmd.Context(), app, func(ctx context.Context) error {
		result, err := job.RunOnce(ctx)
		out, encErr := json.MarshalIndent(result, "", "  ")
		if encErr != nil {
			return encErr
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(out))
		if err != nil {
			return err
		}
		if result.Inconsistent > 0 {
			return fmt.Errorf("%d inconsistent cash-flow day(s)", result.Inconsistent)
		}
		return nil
	})
}
