package service

import (
	"testing"
	"time"

	"github.com/smallbiznis/storeledger/internal/clock"
	"github.com/smallbiznis/storeledger/internal/config"
	"github.com/smallbiznis/storeledger/internal/ledger/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalendarTodayUsesLedgerTimezone(t *testing.T) {
	cfg := config.DefaultLedgerConfig()
	cfg.Timezone = "America/Sao_Paulo"
	holder, err := config.NewStaticLedgerConfigHolder(cfg)
	require.NoError(t, err)

	// 01:30 UTC on the 16th is still the 15th in Sao Paulo (UTC-3).
	fake := clock.NewFakeClock(time.Date(2024, 1, 16, 1, 30, 0, 0, time.UTC))
	cal := NewCalendar(Params{Clock: fake, Ledger: holder})

	assert.Equal(t, domain.NewDate(2024, time.January, 15), cal.Today())
}

func TestCalendarResolveAsOf(t *testing.T) {
	holder, err := config.NewStaticLedgerConfigHolder(config.DefaultLedgerConfig())
	require.NoError(t, err)
	cal := NewCalendar(Params{
		Clock:  clock.NewFakeClock(time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)),
		Ledger: holder,
	})

	d, err := cal.ResolveAsOf("")
	require.NoError(t, err)
	assert.Equal(t, "2024-01-15", d.String())

	d, err = cal.ResolveAsOf("2024-02-29")
	require.NoError(t, err)
	assert.Equal(t, "2024-02-29", d.String())

	_, err = cal.ResolveAsOf("29/02/2024")
	assert.True(t, domain.IsValidationError(err))
}
