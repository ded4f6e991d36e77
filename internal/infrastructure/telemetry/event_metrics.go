package telemetry

import (
	"context"
	"fmt"

	"github.com/medrent/backend/internal/domain/shared"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// DomainEventMetrics counts published domain events by type and aggregate.
// It subscribes to every event type.
type DomainEventMetrics struct {
	published metric.Int64Counter
}

// NewDomainEventMetrics registers the counter on provider, or on the
// global meter provider when provider is nil.
func NewDomainEventMetrics(provider metric.MeterProvider) (*DomainEventMetrics, error) {
	if provider == nil {
		provider = otel.GetMeterProvider()
	}
	counter, err := provider.Meter(TracerName).Int64Counter(
		"medrent.domain_events",
		metric.WithDescription("Domain events published"),
		metric.WithUnit("{event}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create domain event counter: %w", err)
	}
	return &DomainEventMetrics{published: counter}, nil
}

// Handle records one event
func (m *DomainEventMetrics) Handle(ctx context.Context, event shared.DomainEvent) error {
	m.published.Add(ctx, 1, metric.WithAttributes(
		attribute.String("event_type", event.EventType()),
		attribute.String("aggregate_type", event.AggregateType()),
	))
	return nil
}

// EventTypes is empty: the handler receives all events
func (m *DomainEventMetrics) EventTypes() []string {
	return nil
}

var _ shared.EventHandler = (*DomainEventMetrics)(nil)
