// Package service resolves the ledger's notion of "today" and the hot-reloadable
// settings every record service reads once per request.
package service

import (
	"strings"

	"github.com/smallbiznis/storeledger/internal/clock"
	"github.com/smallbiznis/storeledger/internal/config"
	"github.com/smallbiznis/storeledger/internal/ledger/domain"
	"go.uber.org/fx"
)

type Params struct {
	fx.In

	Clock  clock.Clock
	Ledger *config.LedgerConfigHolder
}

// Calendar turns the service clock into civil dates in the ledger timezone.
type Calendar struct {
	clock  clock.Clock
	ledger *config.LedgerConfigHolder
}

func NewCalendar(p Params) *Calendar {
	return &Calendar{clock: p.Clock, ledger: p.Ledger}
}

// Today is the current calendar date in the configured timezone.
func (c *Calendar) Today() domain.Date {
	return domain.Today(c.clock.Now(), c.ledger.Get().Location())
}

// ResolveAsOf returns the as-of date for one request: the explicit override when
// given, today otherwise.
func (c *Calendar) ResolveAsOf(raw string) (domain.Date, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return c.Today(), nil
	}
	d, err := domain.ParseDate(raw)
	if err != nil {
		return domain.Date{}, domain.NewValidationError("as_of", "invalid_date", "as_of must be YYYY-MM-DD")
	}
	return d, nil
}

// Settings is a snapshot of the ledger configuration.
func (c *Calendar) Settings() config.LedgerConfig {
	return c.ledger.Get()
}

func (c *Calendar) Clock() clock.Clock {
	return c.clock
}
