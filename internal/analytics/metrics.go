package analytics

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// MeterName is the instrumentation scope of the decision counter.
const MeterName = "github.com/roach88/actionroute/internal/analytics"

// DecisionsMetric counts terminal decisions.
const DecisionsMetric = "actionroute.decisions"

// MetricsRecorder counts decisions with an OpenTelemetry counter.
type MetricsRecorder struct {
	decisions metric.Int64Counter
}

// NewMetricsRecorder creates a MetricsRecorder on meter. A nil meter uses
// the global meter provider.
func NewMetricsRecorder(meter metric.Meter) (*MetricsRecorder, error) {
	if meter == nil {
		meter = otel.Meter(MeterName)
	}
	counter, err := meter.Int64Counter(DecisionsMetric,
		metric.WithDescription("Terminal action resolution decisions"),
		metric.WithUnit("{decision}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create decision counter: %w", err)
	}
	return &MetricsRecorder{decisions: counter}, nil
}

// Record implements Recorder.
func (r *MetricsRecorder) Record(ctx context.Context, e Event) error {
	r.decisions.Add(ctx, 1, metric.WithAttributes(
		attribute.String("decision", string(e.Decision)),
		attribute.String("action_id", e.ActionID),
		attribute.String("effect", e.EffectKind),
		attribute.Bool("simulated", e.Simulated),
	))
	return nil
}
