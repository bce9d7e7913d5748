package seed

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	accountdomain "github.com/smallbiznis/storeledger/internal/account/domain"
	accountrepo "github.com/smallbiznis/storeledger/internal/account/repository"
	accountservice "github.com/smallbiznis/storeledger/internal/account/service"
	cashflowdomain "github.com/smallbiznis/storeledger/internal/cashflow/domain"
	cashflowrepo "github.com/smallbiznis/storeledger/internal/cashflow/repository"
	cashflowservice "github.com/smallbiznis/storeledger/internal/cashflow/service"
	"github.com/smallbiznis/storeledger/internal/clock"
	"github.com/smallbiznis/storeledger/internal/config"
	"github.com/smallbiznis/storeledger/internal/events"
	invoicedomain "github.com/smallbiznis/storeledger/internal/invoice/domain"
	invoicerepo "github.com/smallbiznis/storeledger/internal/invoice/repository"
	invoiceservice "github.com/smallbiznis/storeledger/internal/invoice/service"
	ledgerdomain "github.com/smallbiznis/storeledger/internal/ledger/domain"
	ledgerservice "github.com/smallbiznis/storeledger/internal/ledger/service"
	"github.com/smallbiznis/storeledger/internal/migration"
	"github.com/smallbiznis/storeledger/internal/orgcontext"
	"github.com/smallbiznis/storeledger/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const tenantOrg = snowflake.ID(1001)

type services struct {
	accounts accountdomain.Service
	invoices invoicedomain.Service
	cashflow cashflowdomain.Service
}

func setup(t *testing.T) (*Seeder, services) {
	t.Helper()

	conn, err := db.OpenInMemory(t.Name())
	require.NoError(t, err)
	require.NoError(t, migration.Apply(conn))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	cfg := config.DefaultLedgerConfig()
	cfg.Timezone = "UTC"
	holder, err := config.NewStaticLedgerConfigHolder(cfg)
	require.NoError(t, err)

	fake := clock.NewFakeClock(time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC))
	calendar := ledgerservice.NewCalendar(ledgerservice.Params{Clock: fake, Ledger: holder})
	publisher := events.NewLogPublisher(zap.NewNop())
	log := zap.NewNop()

	svcs := services{
		accounts: accountservice.New(accountservice.Params{
			DB: conn, Log: log, GenID: node, Repo: accountrepo.Provide(),
			Cfg: config.Config{PlatformOrgID: 1}, Calendar: calendar, Publisher: publisher,
		}),
		invoices: invoiceservice.New(invoiceservice.Params{
			DB: conn, Log: log, GenID: node, Repo: invoicerepo.Provide(),
			Calendar: calendar, Publisher: publisher,
		}),
		cashflow: cashflowservice.New(cashflowservice.Params{
			DB: conn, Log: log, GenID: node, Repo: cashflowrepo.Provide(),
			Calendar: calendar, Publisher: publisher,
		}),
	}

	seeder := New(Params{Log: log, Accounts: svcs.accounts, Invoices: svcs.invoices, Cashflow: svcs.cashflow})
	return seeder, svcs
}

func TestRunSeedsDemoLedger(t *testing.T) {
	seeder, svcs := setup(t)

	report, err := seeder.Run(context.Background(), tenantOrg, true)
	require.NoError(t, err)
	assert.Equal(t, Report{PlatformAccounts: 3, TenantAccounts: 7, Invoices: 4, CashflowDays: 2}, report)

	ctx := orgcontext.WithOrgID(context.Background(), tenantOrg)

	golden, err := svcs.cashflow.GetDay(ctx, cashflowdomain.GetDayRequest{Date: "2024-01-15"})
	require.NoError(t, err)
	assert.Equal(t, int64(385015), golden.ClosingBalance)
	assert.Equal(t, int64(39940), golden.Summary.Net)

	next, err := svcs.cashflow.GetDay(ctx, cashflowdomain.GetDayRequest{Date: "2024-01-16"})
	require.NoError(t, err)
	assert.Equal(t, int64(385015), next.OpeningBalance)
	assert.Equal(t, int64(400475), next.ClosingBalance)

	overdue, err := svcs.invoices.List(ctx, invoicedomain.ListInvoiceRequest{Status: "OVERDUE"})
	require.NoError(t, err)
	require.Len(t, overdue.Invoices, 1)
	assert.Equal(t, "Farmácia Vida", overdue.Invoices[0].ClientName)

	platform, err := svcs.accounts.List(context.Background(), accountdomain.ListAccountRequest{Scope: accountdomain.ScopePlatform})
	require.NoError(t, err)
	assert.Len(t, platform.Accounts, 3)
	assert.Equal(t, ledgerdomain.StatusOverdue, platform.Accounts[1].Status)
}

func TestRunIsIdempotent(t *testing.T) {
	seeder, svcs := setup(t)

	_, err := seeder.Run(context.Background(), tenantOrg, false)
	require.NoError(t, err)
	again, err := seeder.Run(context.Background(), tenantOrg, false)
	require.NoError(t, err)
	assert.Equal(t, Report{}, again)

	ctx := orgcontext.WithOrgID(context.Background(), tenantOrg)
	list, err := svcs.invoices.List(ctx, invoicedomain.ListInvoiceRequest{})
	require.NoError(t, err)
	assert.Equal(t, 4, list.Totals.Count)
	assert.Equal(t, "FAT-202401-00004", list.Invoices[3].InvoiceNumber)
}

func TestRunRequiresOrganization(t *testing.T) {
	seeder, _ := setup(t)
	_, err := seeder.Run(context.Background(), 0, false)
	assert.ErrorIs(t, err, orgcontext.ErrMissingOrganization)
}
