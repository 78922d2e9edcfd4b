package weave

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// engineMetrics holds the otel counters recorded by the facade. All fields
// are nil when no meter is configured, and each record method is a no-op
// then.
type engineMetrics struct {
	mutations       metric.Int64Counter
	shadowCommitted metric.Int64Counter
	shadowReaped    metric.Int64Counter
}

func newEngineMetrics(meter metric.Meter) (*engineMetrics, error) {
	if meter == nil {
		return &engineMetrics{}, nil
	}

	var m engineMetrics
	var err error
	if m.mutations, err = meter.Int64Counter("weave.graph.mutations",
		metric.WithDescription("Graph mutations applied, by operation")); err != nil {
		return nil, err
	}
	if m.shadowCommitted, err = meter.Int64Counter("weave.shadow.committed",
		metric.WithDescription("Shadow nodes promoted to committed status")); err != nil {
		return nil, err
	}
	if m.shadowReaped, err = meter.Int64Counter("weave.shadow.reaped",
		metric.WithDescription("Shadow nodes deleted by bulk reap")); err != nil {
		return nil, err
	}
	return &m, nil
}

func (m *engineMetrics) recordMutation(ctx context.Context, op string) {
	if m.mutations == nil {
		return
	}
	m.mutations.Add(ctx, 1, metric.WithAttributes(attribute.String("op", op)))
}

func (m *engineMetrics) recordCommitted(ctx context.Context, n int) {
	if m.shadowCommitted == nil || n == 0 {
		return
	}
	m.shadowCommitted.Add(ctx, int64(n))
}

func (m *engineMetrics) recordReaped(ctx context.Context, n int) {
	if m.shadowReaped == nil || n == 0 {
		return
	}
	m.shadowReaped.Add(ctx, int64(n))
}
