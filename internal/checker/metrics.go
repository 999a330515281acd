package checker

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "symptom-checker/internal/checker"

// instruments are no-ops until the process installs a MeterProvider.
type instruments struct {
	diagnoses metric.Int64Counter
	urgent    metric.Int64Counter
	sessions  metric.Int64UpDownCounter
}

func newInstruments() instruments {
	meter := otel.Meter(meterName)
	var in instruments
	var err error
	if in.diagnoses, err = meter.Int64Counter("checker.diagnoses",
		metric.WithDescription("Completed diagnoses by top result")); err != nil {
		otel.Handle(err)
	}
	if in.urgent, err = meter.Int64Counter("checker.urgent_results",
		metric.WithDescription("Diagnoses that included an urgent result")); err != nil {
		otel.Handle(err)
	}
	if in.sessions, err = meter.Int64UpDownCounter("checker.sessions.active",
		metric.WithDescription("Open wizard sessions")); err != nil {
		otel.Handle(err)
	}
	return in
}

func (in instruments) recordDiagnosis(ctx context.Context, results []Result) {
	top := "Unknown"
	if len(results) > 0 {
		top = results[0].Name
	}
	if in.diagnoses != nil {
		in.diagnoses.Add(ctx, 1, metric.WithAttributes(attribute.String("result", top)))
	}
	if in.urgent != nil && HasUrgent(results) {
		in.urgent.Add(ctx, 1)
	}
}

func (in instruments) sessionOpened(ctx context.Context) {
	if in.sessions != nil {
		in.sessions.Add(ctx, 1)
	}
}

func (in instruments) sessionClosed(ctx context.Context) {
	if in.sessions != nil {
		in.sessions.Add(ctx, -1)
	}
}
