package config

import (
	"testing"
	"time"

	"github.com/smallbiznis/storeledger/internal/ledger/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("DATABASE_TYPE", "SQLITE")
	t.Setenv("PLATFORM_ORG_ID", "42")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, ,https://b.example")
	t.Setenv("REDIS_DB", "not-a-number")

	cfg := Load()

	assert.Equal(t, "sqlite", cfg.DBType)
	assert.Equal(t, int64(42), cfg.PlatformOrgID)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, 0, cfg.RedisDB)
	assert.False(t, cfg.IsProduction())
}

func TestDefaultLedgerConfigPrepares(t *testing.T) {
	cfg, err := DefaultLedgerConfig().Prepare()
	require.NoError(t, err)

	assert.Equal(t, "America/Sao_Paulo", cfg.Location().String())
	assert.Equal(t, []domain.Plan{
		{Name: "Basico", Price: 9990},
		{Name: "Profissional", Price: 19990},
		{Name: "Enterprise", Price: 49990},
	}, cfg.PlanCatalog())
	assert.Equal(t, 30*time.Second, cfg.SummaryCacheTTL)
}

func TestLedgerConfigRejectsInvalidValues(t *testing.T) {
	cases := map[string]func(c *LedgerConfig){
		"timezone":       func(c *LedgerConfig) { c.Timezone = "Mars/Olympus" },
		"empty plans":    func(c *LedgerConfig) { c.Plans = nil },
		"duplicate plan": func(c *LedgerConfig) { c.Plans = append(c.Plans, c.Plans[0]) },
		"bad price":      func(c *LedgerConfig) { c.Plans[0].Price = "9.999" },
		"negative price": func(c *LedgerConfig) { c.Plans[0].Price = "-1" },
		"bad schedule":   func(c *LedgerConfig) { c.Integrity.Schedule = "every day" },
		"no sequence":    func(c *LedgerConfig) { c.InvoiceNumberTemplate = "FAT-{YYYY}" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := DefaultLedgerConfig()
			cfg.Plans = append([]PlanConfig(nil), cfg.Plans...)
			mutate(&cfg)
			_, err := cfg.Prepare()
			assert.Error(t, err)
		})
	}
}

func TestNewLedgerConfigHolderFallsBackToDefaults(t *testing.T) {
	holder, err := NewLedgerConfigHolder()
	require.NoError(t, err)

	cfg := holder.Get()
	assert.Len(t, cfg.PlanCatalog(), 3)
	assert.Equal(t, DefaultInvoiceNumberTemplate, cfg.InvoiceNumberTemplate)
	assert.Equal(t, 31, cfg.Integrity.LookbackDays)
}
