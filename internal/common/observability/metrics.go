package observability

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
)

// Observability owns the OpenTelemetry meter provider. Instruments are
// exported through Prometheus on the same /metrics endpoint as promauto.
type Observability struct {
	meterProvider    *metric.MeterProvider
	meter            otelmetric.Meter
	decisionCounter  otelmetric.Int64Counter
	decisionDuration otelmetric.Float64Histogram
}

func New(serviceName string, registerer prometheus.Registerer) (*Observability, error) {
	exporter, err := otelprom.New(otelprom.WithRegisterer(registerer))
	if err != nil {
		return nil, err
	}

	provider := metric.NewMeterProvider(metric.WithReader(exporter))
	otel.SetMeterProvider(provider)

	meter := provider.Meter(serviceName)

	decisionCounter, err := meter.Int64Counter(
		"loan.decision.outcomes",
		otelmetric.WithDescription("Number of loan decisions produced"),
	)
	if err != nil {
		return nil, err
	}

	decisionDuration, err := meter.Float64Histogram(
		"loan.decision.duration",
		otelmetric.WithDescription("Time from record to verdict"),
		otelmetric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	return &Observability{
		meterProvider:    provider,
		meter:            meter,
		decisionCounter:  decisionCounter,
		decisionDuration: decisionDuration,
	}, nil
}

func (o *Observability) Meter() otelmetric.Meter {
	return o.meter
}

// RecordDecision is safe on a nil receiver so callers without metrics can skip wiring.
func (o *Observability) RecordDecision(ctx context.Context, verdict, origin string, cached bool, duration time.Duration) {
	if o == nil {
		return
	}
	attrs := otelmetric.WithAttributes(
		attribute.String("verdict", verdict),
		attribute.String("origin", origin),
		attribute.Bool("cached", cached),
	)
	o.decisionCounter.Add(ctx, 1, attrs)
	o.decisionDuration.Record(ctx, float64(duration.Microseconds())/1000, attrs)
}

func (o *Observability) Shutdown(ctx context.Context) error {
	if o == nil || o.meterProvider == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return o.meterProvider.Shutdown(ctx)
}
