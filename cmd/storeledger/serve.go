package main

import (
	"github.com/smallbiznis/storeledger/internal/financeoverview"
	"github.com/smallbiznis/storeledger/internal/integrity"
	"github.com/smallbiznis/storeledger/internal/server"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API and the scheduled cash-flow verification",
	RunE: func(cmd *cobra.Command, args []string) error {
		app := fx.New(
			coreModules(),
			financeoverview.Module,
			integrity.Module,
			server.Module,
		)
		if err := app.Err(); err != nil {
			return err
		}
		app.Run()
		return nil
	},
}
