package ports

import (
	"context"
	"time"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
)

// EventPublisher hands committed domain events to live subscribers and sinks.
// Publish must not block on any transport.
type EventPublisher interface {
	Publish(ctx context.Context, events ...order.DomainEvent)
}

// OfferScheduler owns the per-order claim window timers.
type OfferScheduler interface {
	StartOffer(orderID kernel.UUID, d time.Duration)
	CancelOffer(orderID kernel.UUID)
	Active(orderID kernel.UUID) bool
}

// StatusCache is a read-through cache in front of the ledger for the resync path.
type StatusCache interface {
	Get(ctx context.Context, id kernel.UUID) (order.Summary, bool, error)
	Put(ctx context.Context, summary order.Summary) error
}

// Clock abstracts time for timer-driven tests.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a plain function to Clock.
type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time { return f() }
