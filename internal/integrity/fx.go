package integrity

import (
	"context"

	"go.uber.org/fx"
)

var Module = fx.Module("integrity",
	fx.Provide(New),
	fx.Provide(NewScheduler),
	fx.Invoke(startScheduler),
)

func startScheduler(lc fx.Lifecycle, sched *Scheduler) {
	if sched == nil {
		return
	}
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			sched.Start()
			return nil
		},
		OnStop: sched.Stop,
	})
}
