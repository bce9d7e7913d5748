package integrity

import (
	"context"

	"github.com/robfig/cron/v3"
	"github.com/smallbiznis/storeledger/internal/config"
	"go.uber.org/zap"
)

// Scheduler runs the job on the configured cron schedule, in the ledger timezone.
type Scheduler struct {
	cron *cron.Cron
	job  *Job
	log  *zap.Logger
}

// NewScheduler returns nil when the integrity job is disabled.
func NewScheduler(job *Job, ledger *config.LedgerConfigHolder, log *zap.Logger) (*Scheduler, error) {
	settings := ledger.Get()
	if !settings.Integrity.Enabled {
		return nil, nil
	}

	s := &Scheduler{
		cron: cron.New(
			cron.WithLocation(settings.Location()),
			cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
		),
		job: job,
		log: log.Named("integrity.scheduler"),
	}
	if _, err := s.cron.AddFunc(settings.Integrity.Schedule, s.tick); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Scheduler) tick() {
	if _, err := s.job.RunOnce(context.Background()); err != nil {
		s.log.Error("integrity run failed", zap.Error(err))
	}
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop waits for a running pass to finish or ctx to expire.
func (s *Scheduler) Stop(ctx context.Context) error {
	done := s.cron.Stop()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Entries reports how many schedules are registered.
func (s *Scheduler) Entries() int {
	return len(s.cron.Entries())
}
