package metrics

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Config configures the metrics provider.
type Config struct {
	Enabled          bool
	ExporterEndpoint string
	ExporterProtocol string
	ServiceName      string
	Environment      string
}

// Metrics exposes ledger instruments. A nil *Metrics is a valid no-op.
type Metrics struct {
	recordsIngested  metric.Int64Counter
	recordsRejected  metric.Int64Counter
	versionConflicts metric.Int64Counter
	transitions      metric.Int64Counter
	inconsistencies  metric.Int64Counter
	summaryCache     metric.Int64Counter
}

// NewProvider configures and registers the meter provider.
func NewProvider(lc fx.Lifecycle, cfg Config, log *zap.Logger) (metric.MeterProvider, error) {
	if !cfg.Enabled {
		provider := noop.NewMeterProvider()
		otel.SetMeterProvider(provider)
		return provider, nil
	}

	exporter, err := newExporter(cfg.ExporterProtocol, cfg.ExporterEndpoint)
	if err != nil {
		return nil, err
	}
	reader := sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(10*time.Second))
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	otel.SetMeterProvider(provider)

	if lc != nil {
		lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				log.Info("shutting down meter provider")
				return provider.Shutdown(ctx)
			},
		})
	}
	log.Info("metrics initialized",
		zap.String("endpoint", cfg.ExporterEndpoint),
		zap.String("protocol", cfg.ExporterProtocol),
	)
	return provider, nil
}

// New creates the ledger instruments on the given provider.
func New(cfg Config, provider metric.MeterProvider) (*Metrics, error) {
	name := strings.TrimSpace(cfg.ServiceName)
	if name == "" {
		name = "storeledger"
	}
	meter := provider.Meter(name)

	m := &Metrics{}
	counters := []struct {
		target *metric.Int64Counter
		name   string
		desc   string
	}{
		{&m.recordsIngested, "storeledger_records_ingested_total", "Accounts, invoices and cash transactions accepted."},
		{&m.recordsRejected, "storeledger_records_rejected_total", "Records rejected by validation."},
		{&m.versionConflicts, "storeledger_version_conflicts_total", "Optimistic concurrency conflicts on record updates."},
		{&m.transitions, "storeledger_status_transitions_total", "Stored status transitions by target status."},
		{&m.inconsistencies, "storeledger_cashflow_inconsistencies_total", "Cash-flow days whose balances disagree with their transactions."},
		{&m.summaryCache, "storeledger_summary_cache_total", "Finance summary cache lookups by result."},
	}
	for _, c := range counters {
		counter, err := meter.Int64Counter(c.name, metric.WithDescription(c.desc))
		if err != nil {
			return nil, err
		}
		*c.target = counter
	}
	return m, nil
}

func (m *Metrics) RecordIngested(ctx context.Context, kind string) {
	if m == nil {
		return
	}
	m.recordsIngested.Add(ctx, 1, metric.WithAttributes(FilterAttributes(
		attribute.String("kind", kind),
	)...))
}

func (m *Metrics) RecordRejected(ctx context.Context, kind, reason string) {
	if m == nil {
		return
	}
	m.recordsRejected.Add(ctx, 1, metric.WithAttributes(FilterAttributes(
		attribute.String("kind", kind),
		attribute.String("reason", reason),
	)...))
}

func (m *Metrics) RecordVersionConflict(ctx context.Context, kind string) {
	if m == nil {
		return
	}
	m.versionConflicts.Add(ctx, 1, metric.WithAttributes(FilterAttributes(
		attribute.String("kind", kind),
	)...))
}

func (m *Metrics) RecordTransition(ctx context.Context, kind, status string) {
	if m == nil {
		return
	}
	m.transitions.Add(ctx, 1, metric.WithAttributes(FilterAttributes(
		attribute.String("kind", kind),
		attribute.String("status", status),
	)...))
}

func (m *Metrics) RecordInconsistency(ctx context.Context, source string) {
	if m == nil {
		return
	}
	m.inconsistencies.Add(ctx, 1, metric.WithAttributes(FilterAttributes(
		attribute.String("source", source),
	)...))
}

func (m *Metrics) RecordSummaryCache(ctx context.Context, hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.summaryCache.Add(ctx, 1, metric.WithAttributes(FilterAttributes(
		attribute.String("result", result),
	)...))
}

func newExporter(protocol, endpoint string) (sdkmetric.Exporter, error) {
	switch strings.ToLower(strings.TrimSpace(protocol)) {
	case "http", "http/protobuf":
		opts := []otlpmetrichttp.Option{otlpmetrichttp.WithInsecure()}
		if endpoint != "" {
			opts = append(opts, otlpmetrichttp.WithEndpoint(endpoint))
		}
		return otlpmetrichttp.New(context.Background(), opts...)
	case "grpc", "":
		opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithInsecure()}
		if endpoint != "" {
			opts = append(opts, otlpmetricgrpc.WithEndpoint(endpoint))
		}
		return otlpmetricgrpc.New(context.Background(), opts...)
	default:
		return nil, fmt.Errorf("unsupported OTLP protocol %q", protocol)
	}
}

// Tenant ids and free text are deliberately absent to keep series bounded.
var allowedLabelKeys = map[attribute.Key]struct{}{
	"kind":   {},
	"reason": {},
	"status": {},
	"source": {},
	"result": {},
	"route":  {},
}

// FilterAttributes keeps only low-cardinality label keys.
func FilterAttributes(attrs ...attribute.KeyValue) []attribute.KeyValue {
	out := make([]attribute.KeyValue, 0, len(attrs))
	for _, attr := range attrs {
		if _, ok := allowedLabelKeys[attr.Key]; ok {
			out = append(out, attr)
		}
	}
	return out
}
