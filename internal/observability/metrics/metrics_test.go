package metrics

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	ledgerdomain "github.com/smallbiznis/storeledger/internal/ledger/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric/noop"
	"gorm.io/gorm"
)

func TestFilterAttributesDropsTenantAndFreeText(t *testing.T) {
	attrs := FilterAttributes(
		attribute.String("org_id", "123"),
		attribute.String("description", "Aluguel"),
		attribute.String("kind", "account"),
	)
	require.Len(t, attrs, 1)
	assert.Equal(t, attribute.Key("kind"), attrs[0].Key)
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordIngested(context.Background(), "account")
		m.RecordSummaryCache(context.Background(), true)
	})
}

func TestNewWithNoopProvider(t *testing.T) {
	m, err := New(Config{}, noop.NewMeterProvider())
	require.NoError(t, err)
	assert.NotPanics(t, func() {
		m.RecordRejected(context.Background(), "invoice", "required")
		m.RecordTransition(context.Background(), "invoice", "PAID")
	})
}

func TestClassifyJobReason(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want string
	}{
		{"deadline", context.DeadlineExceeded, JobReasonDeadlineExceeded},
		{"version", fmt.Errorf("append: %w", ledgerdomain.ErrVersionConflict), JobReasonVersionConflict},
		{"lock_timeout", &pgconn.PgError{Code: "55P03"}, JobReasonDBLockTimeout},
		{"serialization", &pgconn.PgError{Code: "40001"}, JobReasonSerializationFailure},
		{"unique", gorm.ErrDuplicatedKey, JobReasonUniqueViolation},
		{"unknown", errors.New("boom"), JobReasonUnknown},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ClassifyJobReason(tc.err))
		})
	}
}

func TestIntegrityMetricsObserveVerification(t *testing.T) {
	m := NewIntegrityMetricsForTest(prometheus.NewRegistry())

	m.IncJobRun("cashflow_verify")
	m.ObserveVerification(31, 2, time.Unix(1700000000, 0))
	m.IncJobError("cashflow_verify", context.DeadlineExceeded)

	assert.Equal(t, float64(1), testutil.ToFloat64(m.jobRuns.WithLabelValues("cashflow_verify")))
	assert.Equal(t, float64(31), testutil.ToFloat64(m.daysChecked))
	assert.Equal(t, float64(2), testutil.ToFloat64(m.inconsistent))
	assert.Equal(t, float64(1700000000), testutil.ToFloat64(m.lastSuccessful))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.jobErrors.WithLabelValues("cashflow_verify", JobReasonDeadlineExceeded)))
}
