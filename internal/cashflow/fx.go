package cashflow

import (
	"github.com/smallbiznis/storeledger/internal/cashflow/repository"
	"github.com/smallbiznis/storeledger/internal/cashflow/service"
	"go.uber.org/fx"
)

var Module = fx.Module("cashflow.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
