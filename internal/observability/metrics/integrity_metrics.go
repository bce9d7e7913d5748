package metrics

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/prometheus/client_golang/prometheus"
	ledgerdomain "github.com/smallbiznis/storeledger/internal/ledger/domain"
	"gorm.io/gorm"
)

const (
	JobReasonDeadlineExceeded     = "deadline_exceeded"
	JobReasonDBLockTimeout        = "db_lock_timeout"
	JobReasonSerializationFailure = "serialization_failure"
	JobReasonUniqueViolation      = "unique_violation"
	JobReasonVersionConflict      = "version_conflict"
	JobReasonUnknown              = "unknown"
)

// IntegrityMetrics tracks the scheduled cash-flow verification job.
type IntegrityMetrics struct {
	jobRuns        *prometheus.CounterVec
	jobDuration    *prometheus.HistogramVec
	jobErrors      *prometheus.CounterVec
	daysChecked    prometheus.Counter
	inconsistent   prometheus.Counter
	lastSuccessful prometheus.Gauge
}

var (
	integrityOnce    sync.Once
	integrityMetrics *IntegrityMetrics
)

// IntegrityWithConfig returns the process-wide integrity metrics.
func IntegrityWithConfig(cfg Config) *IntegrityMetrics {
	integrityOnce.Do(func() {
		integrityMetrics = newIntegrityMetrics(prometheus.DefaultRegisterer, cfg)
	})
	return integrityMetrics
}

// NewIntegrityMetricsForTest registers the collectors on a private registry.
func NewIntegrityMetricsForTest(registerer prometheus.Registerer) *IntegrityMetrics {
	return newIntegrityMetrics(registerer, Config{ServiceName: "storeledger", Environment: "test"})
}

func newIntegrityMetrics(registerer prometheus.Registerer, cfg Config) *IntegrityMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	labels := constLabels(cfg)

	jobRuns := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        "storeledger_integrity_job_runs_total",
		Help:        "Integrity job runs by name.",
		ConstLabels: labels,
	}, []string{"job"})
	jobDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:        "storeledger_integrity_job_duration_seconds",
		Help:        "Integrity job latency.",
		Buckets:     []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		ConstLabels: labels,
	}, []string{"job"})
	jobErrors := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        "storeledger_integrity_job_errors_total",
		Help:        "Integrity job errors by low-cardinality reason.",
		ConstLabels: labels,
	}, []string{"job", "reason"})
	daysChecked := prometheus.NewCounter(prometheus.CounterOpts{
		Name:        "storeledger_integrity_days_checked_total",
		Help:        "Cash-flow days recomputed by the integrity job.",
		ConstLabels: labels,
	})
	inconsistent := prometheus.NewCounter(prometheus.CounterOpts{
		Name:        "storeledger_integrity_inconsistent_days_total",
		Help:        "Cash-flow days found out of balance.",
		ConstLabels: labels,
	})
	lastSuccessful := prometheus.NewGauge(prometheus.GaugeOpts{
		Name:        "storeledger_integrity_last_success_timestamp_seconds",
		Help:        "Unix time of the last integrity run that completed without error.",
		ConstLabels: labels,
	})

	registerer.MustRegister(jobRuns, jobDuration, jobErrors, daysChecked, inconsistent, lastSuccessful)

	return &IntegrityMetrics{
		jobRuns:        jobRuns,
		jobDuration:    jobDuration,
		jobErrors:      jobErrors,
		daysChecked:    daysChecked,
		inconsistent:   inconsistent,
		lastSuccessful: lastSuccessful,
	}
}

func (m *IntegrityMetrics) IncJobRun(job string) {
	if m == nil {
		return
	}
	m.jobRuns.WithLabelValues(job).Inc()
}

func (m *IntegrityMetrics) ObserveJobDuration(job string, d time.Duration) {
	if m == nil {
		return
	}
	m.jobDuration.WithLabelValues(job).Observe(d.Seconds())
}

func (m *IntegrityMetrics) IncJobError(job string, err error) {
	if m == nil || err == nil {
		return
	}
	m.jobErrors.WithLabelValues(job, ClassifyJobReason(err)).Inc()
}

// ObserveVerification records one completed verification pass.
func (m *IntegrityMetrics) ObserveVerification(checked, inconsistent int, at time.Time) {
	if m == nil {
		return
	}
	m.daysChecked.Add(float64(checked))
	m.inconsistent.Add(float64(inconsistent))
	m.lastSuccessful.Set(float64(at.Unix()))
}

// ClassifyJobReason maps job errors to low-cardinality reasons.
func ClassifyJobReason(err error) string {
	if err == nil {
		return JobReasonUnknown
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return JobReasonDeadlineExceeded
	}
	if errors.Is(err, ledgerdomain.ErrVersionConflict) {
		return JobReasonVersionConflict
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return JobReasonUniqueViolation
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "55P03":
			return JobReasonDBLockTimeout
		case "40001":
			return JobReasonSerializationFailure
		case "23505":
			return JobReasonUniqueViolation
		}
	}
	return JobReasonUnknown
}
