package config

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"sync/atomic"
	"time"
	_ "time/tzdata"

	"github.com/fsnotify/fsnotify"
	"github.com/robfig/cron/v3"
	invoiceformat "github.com/smallbiznis/storeledger/internal/invoice/format"
	"github.com/smallbiznis/storeledger/internal/ledger/domain"
	"github.com/smallbiznis/storeledger/pkg/money"
	"github.com/spf13/viper"
)

const DefaultInvoiceNumberTemplate = "FAT-{YYYY}{MM}-{SEQ5}"

// PlanConfig is a catalog plan with its monthly price as decimal text.
type PlanConfig struct {
	Name  string `mapstructure:"name"`
	Price string `mapstructure:"price"`
}

type IntegrityConfig struct {
	Enabled      bool   `mapstructure:"enabled"`
	Schedule     string `mapstructure:"schedule"`
	LookbackDays int    `mapstructure:"lookbackDays"`
}

// LedgerConfig is the hot-reloadable part of the configuration.
type LedgerConfig struct {
	Timezone              string          `mapstructure:"timezone"`
	Plans                 []PlanConfig    `mapstructure:"plans"`
	InvoiceNumberTemplate string          `mapstructure:"invoiceNumberTemplate"`
	SummaryCacheTTL       time.Duration   `mapstructure:"summaryCacheTTL"`
	Integrity             IntegrityConfig `mapstructure:"integrity"`

	location *time.Location
	plans    []domain.Plan
}

func DefaultLedgerConfig() LedgerConfig {
	return LedgerConfig{
		Timezone: "America/Sao_Paulo",
		Plans: []PlanConfig{
			{Name: "Basico", Price: "99.90"},
			{Name: "Profissional", Price: "199.90"},
			{Name: "Enterprise", Price: "499.90"},
		},
		InvoiceNumberTemplate: DefaultInvoiceNumberTemplate,
		SummaryCacheTTL:       30 * time.Second,
		Integrity: IntegrityConfig{
			Enabled:      true,
			Schedule:     "5 0 * * *",
			LookbackDays: 31,
		},
	}
}

// Location is the timezone whose calendar defines "today".
func (c LedgerConfig) Location() *time.Location {
	if c.location == nil {
		return time.UTC
	}
	return c.location
}

// PlanCatalog returns the plans with prices in minor units.
func (c LedgerConfig) PlanCatalog() []domain.Plan {
	out := make([]domain.Plan, len(c.plans))
	copy(out, c.plans)
	return out
}

// Prepare validates c and resolves its derived fields.
func (c LedgerConfig) Prepare() (LedgerConfig, error) {
	loc, err := time.LoadLocation(strings.TrimSpace(c.Timezone))
	if err != nil {
		return c, fmt.Errorf("ledger.timezone: %w", err)
	}
	c.location = loc

	if len(c.Plans) == 0 {
		return c, errors.New("ledger.plans cannot be empty")
	}
	seen := make(map[string]struct{}, len(c.Plans))
	c.plans = make([]domain.Plan, 0, len(c.Plans))
	for _, p := range c.Plans {
		name := strings.TrimSpace(p.Name)
		if name == "" {
			return c, errors.New("ledger.plans: plan name is required")
		}
		if _, dup := seen[name]; dup {
			return c, fmt.Errorf("ledger.plans: duplicate plan %q", name)
		}
		seen[name] = struct{}{}
		price, err := money.ParseNonNegative(p.Price)
		if err != nil {
			return c, fmt.Errorf("ledger.plans[%s].price: %w", name, err)
		}
		c.plans = append(c.plans, domain.Plan{Name: name, Price: price})
	}

	if strings.TrimSpace(c.InvoiceNumberTemplate) == "" {
		c.InvoiceNumberTemplate = DefaultInvoiceNumberTemplate
	}
	if err := invoiceformat.Validate(c.InvoiceNumberTemplate); err != nil {
		return c, fmt.Errorf("ledger.invoiceNumberTemplate: %w", err)
	}
	if c.SummaryCacheTTL < 0 {
		return c, errors.New("ledger.summaryCacheTTL cannot be negative")
	}
	if c.Integrity.LookbackDays <= 0 {
		c.Integrity.LookbackDays = DefaultLedgerConfig().Integrity.LookbackDays
	}
	if c.Integrity.Enabled {
		if _, err := cron.ParseStandard(c.Integrity.Schedule); err != nil {
			return c, fmt.Errorf("ledger.integrity.schedule: %w", err)
		}
	}
	return c, nil
}

type LedgerConfigHolder struct {
	current atomic.Value // holds LedgerConfig
}

// NewStaticLedgerConfigHolder wraps an already prepared config; used by tests and tools.
func NewStaticLedgerConfigHolder(cfg LedgerConfig) (*LedgerConfigHolder, error) {
	prepared, err := cfg.Prepare()
	if err != nil {
		return nil, err
	}
	holder := &LedgerConfigHolder{}
	holder.current.Store(prepared)
	return holder, nil
}

func NewLedgerConfigHolder() (*LedgerConfigHolder, error) {
	v := viper.New()

	v.SetConfigName("ledger")
	v.SetConfigType("yml")
	v.AddConfigPath("/etc/storeledger")
	v.AddConfigPath(".")

	v.SetEnvPrefix("STORELEDGER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := DefaultLedgerConfig()
	v.SetDefault("ledger.timezone", defaults.Timezone)
	v.SetDefault("ledger.plans", defaults.Plans)
	v.SetDefault("ledger.invoiceNumberTemplate", defaults.InvoiceNumberTemplate)
	v.SetDefault("ledger.summaryCacheTTL", defaults.SummaryCacheTTL)
	v.SetDefault("ledger.integrity.enabled", defaults.Integrity.Enabled)
	v.SetDefault("ledger.integrity.schedule", defaults.Integrity.Schedule)
	v.SetDefault("ledger.integrity.lookbackDays", defaults.Integrity.LookbackDays)

	fileLoaded := true
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		fileLoaded = false
	}

	cfg, err := decodeLedgerConfig(v)
	if err != nil {
		return nil, err
	}

	holder := &LedgerConfigHolder{}
	holder.current.Store(cfg)

	if fileLoaded {
		v.WatchConfig()
		v.OnConfigChange(func(e fsnotify.Event) {
			updated, err := decodeLedgerConfig(v)
			if err != nil {
				log.Printf("[ledger-config] invalid config ignored: %v", err)
				return
			}
			holder.current.Store(updated)
			log.Printf("[ledger-config] reloaded from %s", e.Name)
		})
	}

	return holder, nil
}

func decodeLedgerConfig(v *viper.Viper) (LedgerConfig, error) {
	var cfg LedgerConfig
	if err := v.UnmarshalKey("ledger", &cfg); err != nil {
		return LedgerConfig{}, err
	}
	return cfg.Prepare()
}

func (h *LedgerConfigHolder) Get() LedgerConfig {
	return h.current.Load().(LedgerConfig)
}
