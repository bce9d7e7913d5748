// Package integrity periodically re-verifies stored cash-flow days for every tenant.
package integrity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/oklog/ulid/v2"
	cashflowdomain "github.com/smallbiznis/storeledger/internal/cashflow/domain"
	ledgerservice "github.com/smallbiznis/storeledger/internal/ledger/service"
	obslogger "github.com/smallbiznis/storeledger/internal/observability/logger"
	obsmetrics "github.com/smallbiznis/storeledger/internal/observability/metrics"
	"github.com/smallbiznis/storeledger/internal/orgcontext"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const jobName = "verify_cashflow"

// DefaultTimeout bounds one full pass over every tenant.
const DefaultTimeout = 5 * time.Minute

type Params struct {
	fx.In

	Log      *zap.Logger
	Calendar *ledgerservice.Calendar
	Cashflow cashflowdomain.Service
	Metrics  *obsmetrics.IntegrityMetrics `optional:"true"`
}

type Job struct {
	log      *zap.Logger
	calendar *ledgerservice.Calendar
	cashflow cashflowdomain.Service
	metrics  *obsmetrics.IntegrityMetrics
}

// OrgResult is the verification outcome for one tenant.
type OrgResult struct {
	OrgID  snowflake.ID                `json:"org_id"`
	Report cashflowdomain.VerifyReport `json:"report"`
}

// Result summarizes one pass.
type Result struct {
	RunID        string      `json:"run_id"`
	Checked      int         `json:"checked"`
	Inconsistent int         `json:"inconsistent"`
	Orgs         []OrgResult `json:"orgs"`
}

func New(p Params) *Job {
	return &Job{
		log:      p.Log.Named("integrity").With(zap.String("component", "integrity")),
		calendar: p.Calendar,
		cashflow: p.Cashflow,
		metrics:  p.Metrics,
	}
}

// RunOnce verifies the lookback window of every tenant with stored days. A
// failing tenant does not stop the others; their errors are joined.
func (j *Job) RunOnce(parent context.Context) (Result, error) {
	start := j.calendar.Clock().Now()
	ctx, cancel := context.WithTimeout(parent, DefaultTimeout)
	defer cancel()

	result := Result{RunID: ulid.MustNew(ulid.Timestamp(start), ulid.DefaultEntropy()).String()}
	log := obslogger.WithContext(ctx, j.log).With(
		zap.String("job", jobName),
		zap.String("run_id", result.RunID),
	)
	log.Info("integrity.job.start")
	j.metrics.IncJobRun(jobName)

	err := j.run(ctx, &result, log)
	j.metrics.ObserveJobDuration(jobName, j.calendar.Clock().Now().Sub(start))

	fields := []zap.Field{
		zap.Int("org_count", len(result.Orgs)),
		zap.Int("checked", result.Checked),
		zap.Int("inconsistent", result.Inconsistent),
	}
	if err != nil {
		j.metrics.IncJobError(jobName, err)
		log.Warn("integrity.job.finish", append(fields, zap.Error(err))...)
		return result, fmt.Errorf("%s: %w", jobName, err)
	}

	j.metrics.ObserveVerification(result.Checked, result.Inconsistent, j.calendar.Clock().Now())
	if result.Inconsistent > 0 {
		log.Warn("integrity.job.finish", fields...)
	} else {
		log.Info("integrity.job.finish", fields...)
	}
	return result, nil
}

func (j *Job) run(ctx context.Context, result *Result, log *zap.Logger) error {
	orgIDs, err := j.cashflow.Organizations(ctx)
	if err != nil {
		return err
	}

	// One as-of date for the whole pass.
	today := j.calendar.Today()
	from := today.AddDays(-j.calendar.Settings().Integrity.LookbackDays)
	var errs error
	for _, orgID := range orgIDs {
		if err := ctx.Err(); err != nil {
			return errors.Join(errs, err)
		}
		orgCtx := orgcontext.WithOrgID(ctx, orgID)
		report, err := j.cashflow.Verify(orgCtx, cashflowdomain.VerifyRequest{
			From: from.String(),
			To:   today.String(),
		})
		if err != nil {
			log.Error("integrity.org.failed", zap.String("org_id", orgID.String()), zap.Error(err))
			errs = errors.Join(errs, fmt.Errorf("org %s: %w", orgID, err))
			continue
		}
		result.Orgs = append(result.Orgs, OrgResult{OrgID: orgID, Report: report})
		result.Checked += report.Checked
		result.Inconsistent += len(report.Inconsistencies)
	}
	return errs
}
