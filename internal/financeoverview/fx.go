package financeoverview

import (
	"github.com/smallbiznis/storeledger/internal/financeoverview/service"
	"go.uber.org/fx"
)

var Module = fx.Module("financeoverview.service",
	fx.Provide(service.NewService),
)
