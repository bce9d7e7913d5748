package ledger

import (
	"github.com/smallbiznis/storeledger/internal/ledger/service"
	"go.uber.org/fx"
)

var Module = fx.Module("ledger.calendar",
	fx.Provide(service.NewCalendar),
)
