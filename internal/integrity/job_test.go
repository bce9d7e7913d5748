package integrity

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/prometheus/client_golang/prometheus"
	cashflowdomain "github.com/smallbiznis/storeledger/internal/cashflow/domain"
	cashflowrepo "github.com/smallbiznis/storeledger/internal/cashflow/repository"
	cashflowservice "github.com/smallbiznis/storeledger/internal/cashflow/service"
	"github.com/smallbiznis/storeledger/internal/clock"
	"github.com/smallbiznis/storeledger/internal/config"
	"github.com/smallbiznis/storeledger/internal/events"
	ledgerservice "github.com/smallbiznis/storeledger/internal/ledger/service"
	obsmetrics "github.com/smallbiznis/storeledger/internal/observability/metrics"
	"github.com/smallbiznis/storeledger/internal/orgcontext"
	"github.com/smallbiznis/storeledger/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fixture struct {
	job      *Job
	cashflow cashflowdomain.Service
	conn     *gorm.DB
	clock    *clock.FakeClock
	registry *prometheus.Registry
	recorder *events.Recorder
}

func setup(t *testing.T, mutate func(*config.LedgerConfig)) fixture {
	t.Helper()

	conn, err := db.OpenInMemory(t.Name())
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&cashflowdomain.Day{}, &cashflowdomain.Transaction{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	cfg := config.DefaultLedgerConfig()
	cfg.Timezone = "UTC"
	cfg.Integrity.LookbackDays = 7
	if mutate != nil {
		mutate(&cfg)
	}
	holder, err := config.NewStaticLedgerConfigHolder(cfg)
	require.NoError(t, err)

	fake := clock.NewFakeClock(time.Date(2024, 1, 16, 0, 5, 0, 0, time.UTC))
	calendar := ledgerservice.NewCalendar(ledgerservice.Params{Clock: fake, Ledger: holder})
	recorder := &events.Recorder{}

	cashflow := cashflowservice.New(cashflowservice.Params{
		DB: conn, Log: zap.NewNop(), GenID: node, Repo: cashflowrepo.Provide(),
		Calendar: calendar, Publisher: recorder,
	})

	registry := prometheus.NewRegistry()
	job := New(Params{
		Log:      zap.NewNop(),
		Calendar: calendar,
		Cashflow: cashflow,
		Metrics:  obsmetrics.NewIntegrityMetricsForTest(registry),
	})

	return fixture{job: job, cashflow: cashflow, conn: conn, clock: fake, registry: registry, recorder: recorder}
}

func (f fixture) recordDay(t *testing.T, orgID snowflake.ID, date string) {
	t.Helper()
	ctx := orgcontext.WithOrgID(context.Background(), orgID)
	_, err := f.cashflow.RecordDay(ctx, cashflowdomain.RecordDayRequest{
		Date:           date,
		OpeningBalance: "100.00",
		Transactions: []cashflowdomain.TransactionInput{
			{Time: "09:00", Description: "Venda", Amount: "25.50", Type: "INCOME"},
		},
	})
	require.NoError(t, err)
}

func metricValue(t *testing.T, reg *prometheus.Registry, name string) float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		var total float64
		for _, m := range mf.GetMetric() {
			if c := m.GetCounter(); c != nil {
				total += c.GetValue()
			}
			if g := m.GetGauge(); g != nil {
				total += g.GetValue()
			}
		}
		return total
	}
	return 0
}

func TestRunOnceVerifiesEveryTenant(t *testing.T) {
	f := setup(t, nil)

	f.recordDay(t, 1001, "2024-01-14")
	f.recordDay(t, 1001, "2024-01-15")
	f.recordDay(t, 2002, "2024-01-15")
	// Outside the seven-day lookback window.
	f.recordDay(t, 2002, "2024-01-02")

	require.NoError(t, f.conn.Exec(
		`UPDATE cashflow_days SET closing_balance = closing_balance + 1 WHERE org_id = ? AND date = ?`,
		2002, "2024-01-15",
	).Error)

	result, err := f.job.RunOnce(context.Background())
	require.NoError(t, err)

	assert.NotEmpty(t, result.RunID)
	require.Len(t, result.Orgs, 2)
	assert.Equal(t, 3, result.Checked)
	assert.Equal(t, 1, result.Inconsistent)
	assert.True(t, result.Orgs[0].Report.Consistent())
	assert.Equal(t, snowflake.ID(2002), result.Orgs[1].OrgID)
	assert.Equal(t, "2024-01-09", result.Orgs[1].Report.From.String())
	assert.Equal(t, []string{events.CashflowInconsistencyDetected}, f.recorder.Types())

	assert.Equal(t, float64(1), metricValue(t, f.registry, "storeledger_integrity_job_runs_total"))
	assert.Equal(t, float64(3), metricValue(t, f.registry, "storeledger_integrity_days_checked_total"))
	assert.Equal(t, float64(1), metricValue(t, f.registry, "storeledger_integrity_inconsistent_days_total"))
	assert.Equal(t, float64(f.clock.Now().Unix()), metricValue(t, f.registry, "storeledger_integrity_last_success_timestamp_seconds"))
}

func TestRunOnceWithoutDays(t *testing.T) {
	f := setup(t, nil)

	result, err := f.job.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Empty(t, result.Orgs)
	assert.Zero(t, result.Checked)
}

func TestSchedulerRegistersConfiguredSchedule(t *testing.T) {
	f := setup(t, nil)
	holder, err := config.NewStaticLedgerConfigHolder(func() config.LedgerConfig {
		cfg := config.DefaultLedgerConfig()
		cfg.Timezone = "UTC"
		return cfg
	}())
	require.NoError(t, err)

	sched, err := NewScheduler(f.job, holder, zap.NewNop())
	require.NoError(t, err)
	require.NotNil(t, sched)
	assert.Equal(t, 1, sched.Entries())

	sched.Start()
	require.NoError(t, sched.Stop(context.Background()))
}

func TestSchedulerDisabled(t *testing.T) {
	f := setup(t, nil)
	cfg := config.DefaultLedgerConfig()
	cfg.Integrity.Enabled = false
	holder, err := config.NewStaticLedgerConfigHolder(cfg)
	require.NoError(t, err)

	sched, err := NewScheduler(f.job, holder, zap.NewNop())
	require.NoError(t, err)
	assert.Nil(t, sched)
}
