package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	accountdomain "github.com/smallbiznis/storeledger/internal/account/domain"
	accountrepo "github.com/smallbiznis/storeledger/internal/account/repository"
	accountservice "github.com/smallbiznis/storeledger/internal/account/service"
	"github.com/smallbiznis/storeledger/internal/cache"
	cashflowdomain "github.com/smallbiznis/storeledger/internal/cashflow/domain"
	cashflowrepo "github.com/smallbiznis/storeledger/internal/cashflow/repository"
	cashflowservice "github.com/smallbiznis/storeledger/internal/cashflow/service"
	"github.com/smallbiznis/storeledger/internal/clock"
	"github.com/smallbiznis/storeledger/internal/config"
	"github.com/smallbiznis/storeledger/internal/events"
	"github.com/smallbiznis/storeledger/internal/financeoverview/domain"
	invoicedomain "github.com/smallbiznis/storeledger/internal/invoice/domain"
	invoicerepo "github.com/smallbiznis/storeledger/internal/invoice/repository"
	invoiceservice "github.com/smallbiznis/storeledger/internal/invoice/service"
	ledgerservice "github.com/smallbiznis/storeledger/internal/ledger/service"
	"github.com/smallbiznis/storeledger/internal/orgcontext"
	"github.com/smallbiznis/storeledger/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fixture struct {
	svc      domain.Service
	accounts accountdomain.Service
	invoices invoicedomain.Service
	cashflow cashflowdomain.Service
	clock    *clock.FakeClock
	ctx      context.Context
}

func setup(t *testing.T) fixture {
	t.Helper()

	conn, err := db.OpenInMemory(t.Name())
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(
		&accountdomain.Account{},
		&invoicedomain.Invoice{},
		&invoicedomain.InvoiceSequence{},
		&cashflowdomain.Day{},
		&cashflowdomain.Transaction{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	cfg := config.DefaultLedgerConfig()
	cfg.Timezone = "UTC"
	holder, err := config.NewStaticLedgerConfigHolder(cfg)
	require.NoError(t, err)

	fake := clock.NewFakeClock(time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC))
	calendar := ledgerservice.NewCalendar(ledgerservice.Params{Clock: fake, Ledger: holder})
	publisher := &events.Recorder{}
	log := zap.NewNop()
	store := cache.NewTTLStore(fake)

	accounts := accountservice.New(accountservice.Params{
		DB: conn, Log: log, GenID: node, Repo: accountrepo.Provide(),
		Cfg: config.Config{PlatformOrgID: 1}, Calendar: calendar, Publisher: publisher, Cache: store,
	})
	invoices := invoiceservice.New(invoiceservice.Params{
		DB: conn, Log: log, GenID: node, Repo: invoicerepo.Provide(),
		Calendar: calendar, Publisher: publisher, Cache: store,
	})
	cashflow := cashflowservice.New(cashflowservice.Params{
		DB: conn, Log: log, GenID: node, Repo: cashflowrepo.Provide(),
		Calendar: calendar, Publisher: publisher, Cache: store,
	})

	svc := NewService(Params{
		Log:      log,
		Calendar: calendar,
		Accounts: accounts,
		Invoices: invoices,
		Cashflow: cashflow,
		Cache:    store,
	})

	return fixture{
		svc:      svc,
		accounts: accounts,
		invoices: invoices,
		cashflow: cashflow,
		clock:    fake,
		ctx:      orgcontext.WithOrgID(context.Background(), snowflake.ID(1001)),
	}
}

func (f fixture) account(t *testing.T, description, direction, due, amount, status string) {
	t.Helper()
	_, err := f.accounts.Create(f.ctx, accountdomain.CreateAccountRequest{
		Description: description,
		Category:    "Operacional",
		DueDate:     due,
		Amount:      amount,
		Direction:   direction,
		Status:      status,
	})
	require.NoError(t, err)
}

func (f fixture) invoice(t *testing.T, client, plan, due, status string) {
	t.Helper()
	_, err := f.invoices.Create(f.ctx, invoicedomain.CreateInvoiceRequest{
		ClientName:  client,
		PlanName:    plan,
		InvoiceDate: "2024-01-01",
		DueDate:     due,
		Status:      status,
	})
	require.NoError(t, err)
}

func seedLedger(t *testing.T, f fixture) {
	f.account(t, "Aluguel", "PAYABLE", "2024-01-10", "3500.00", "")
	f.account(t, "Internet", "PAYABLE", "2024-01-20", "150.00", "")
	f.account(t, "Fornecedor", "PAYABLE", "2024-02-05", "100.00", "")
	f.account(t, "Venda a prazo", "RECEIVABLE", "2024-01-12", "500.00", "RECEIVED")
	f.account(t, "Venda dezembro", "RECEIVABLE", "2023-12-10", "200.00", "RECEIVED")
	f.invoice(t, "Padaria Sol", "Basico", "2024-01-20", "")
	f.invoice(t, "Mercado Lua", "Profissional", "2024-01-05", "PAID")

	_, err := f.cashflow.RecordDay(f.ctx, cashflowdomain.RecordDayRequest{
		Date:           "2024-01-15",
		OpeningBalance: "3450.75",
		Transactions: []cashflowdomain.TransactionInput{
			{Time: "09:15", Description: "Venda #1234", Amount: "159.90", Type: "INCOME"},
			{Time: "10:30", Description: "Pagamento fornecedor", Amount: "300.00", Type: "EXPENSE"},
			{Time: "11:45", Description: "Venda #1235", Amount: "89.90", Type: "INCOME"},
			{Time: "14:20", Description: "Despesa operacional", Amount: "50.00", Type: "EXPENSE"},
			{Time: "16:10", Description: "Venda #1236", Amount: "499.60", Type: "INCOME"},
		},
	})
	require.NoError(t, err)
}

func TestSummaryCards(t *testing.T) {
	f := setup(t)
	seedLedger(t, f)

	summary, err := f.svc.Summary(f.ctx, domain.SummaryRequest{})
	require.NoError(t, err)

	assert.Equal(t, "2024-01-01", summary.Month.From.String())
	assert.Equal(t, "2024-01-31", summary.Month.To.String())

	assert.Equal(t, int64(365000), summary.Payable.Total)
	assert.Equal(t, int64(350000), summary.Payable.Overdue)
	assert.Equal(t, int64(15000), summary.Payable.Pending)

	assert.Equal(t, 3, summary.Receivable.Count)
	assert.Equal(t, int64(79980), summary.Receivable.Total)

	assert.Equal(t, int64(29980), summary.MRR)

	assert.Equal(t, int64(69990), summary.Received.Current)
	assert.Equal(t, int64(20000), summary.Received.Previous)
	assert.InDelta(t, 249.95, summary.Received.ChangePct, 0.0001)

	assert.True(t, summary.Today.HasEntry)
	assert.Equal(t, int64(39940), summary.Today.Net)
	assert.Equal(t, int64(385015), summary.Today.Closing)
}

func TestSummaryWithoutCashflowDay(t *testing.T) {
	f := setup(t)

	summary, err := f.svc.Summary(f.ctx, domain.SummaryRequest{AsOf: "2024-03-01"})
	require.NoError(t, err)
	assert.False(t, summary.Today.HasEntry)
	assert.Equal(t, "2024-03-01", summary.Today.Date.String())
	assert.Zero(t, summary.Received.ChangePct)
}

func TestSummaryIsCachedPerAsOfDate(t *testing.T) {
	f := setup(t)
	seedLedger(t, f)

	first, err := f.svc.Summary(f.ctx, domain.SummaryRequest{AsOf: "2024-01-16"})
	require.NoError(t, err)
	assert.Equal(t, int64(365000), first.Payable.Total)

	f.account(t, "Luz", "PAYABLE", "2024-01-25", "80.00", "")

	// Writes drop today's summary only.
	today, err := f.svc.Summary(f.ctx, domain.SummaryRequest{})
	require.NoError(t, err)
	assert.Equal(t, int64(373000), today.Payable.Total)

	cached, err := f.svc.Summary(f.ctx, domain.SummaryRequest{AsOf: "2024-01-16"})
	require.NoError(t, err)
	assert.Equal(t, int64(365000), cached.Payable.Total)

	f.clock.Advance(31 * time.Second)
	fresh, err := f.svc.Summary(f.ctx, domain.SummaryRequest{AsOf: "2024-01-16"})
	require.NoError(t, err)
	assert.Equal(t, int64(373000), fresh.Payable.Total)
}

func TestSummaryReflectsSettleImmediately(t *testing.T) {
	f := setup(t)
	seedLedger(t, f)

	water, err := f.accounts.Create(f.ctx, accountdomain.CreateAccountRequest{
		Description: "Agua",
		Category:    "Operacional",
		DueDate:     "2024-01-22",
		Amount:      "40.00",
		Direction:   "PAYABLE",
	})
	require.NoError(t, err)

	before, err := f.svc.Summary(f.ctx, domain.SummaryRequest{})
	require.NoError(t, err)
	assert.Equal(t, int64(19000), before.Payable.Pending)

	_, err = f.accounts.Settle(f.ctx, accountdomain.TransitionAccountRequest{
		ID:              water.ID.String(),
		ExpectedVersion: water.Version,
	})
	require.NoError(t, err)

	after, err := f.svc.Summary(f.ctx, domain.SummaryRequest{})
	require.NoError(t, err)
	assert.Equal(t, int64(15000), after.Payable.Pending)
}

func TestSummaryRequiresTenant(t *testing.T) {
	f := setup(t)
	_, err := f.svc.Summary(context.Background(), domain.SummaryRequest{})
	assert.ErrorIs(t, err, domain.ErrInvalidOrganization)
}
