// Package eventsink runs an outbound event transport behind a bounded queue so
// the dispatcher never waits on a broker.
package eventsink

import (
	"context"
	"log/slog"

	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/pkg/pump"
)

// DefaultQueueSize is used when a sink is built with a non-positive size.
const DefaultQueueSize = 1024

// WriteFunc delivers one event. Errors are logged and the event is dropped.
type WriteFunc func(ctx context.Context, e order.DomainEvent) error

// Async is a dispatcher sink that hands events to WriteFunc on one goroutine,
// in publish order.
type Async struct {
	name   string
	pump   *pump.Pump[order.DomainEvent]
	closer func() error
	logger *slog.Logger
}

// NewAsync builds a sink. closer, if not nil, runs once the queue is drained.
func NewAsync(name string, size int, write WriteFunc, closer func() error, logger *slog.Logger) *Async {
	if size <= 0 {
		size = DefaultQueueSize
	}
	logger = logger.With("component", "sink", "sink", name)

	return &Async{
		name:   name,
		closer: closer,
		logger: logger,
		pump: pump.New(size, func(ctx context.Context, e order.DomainEvent) {
			if err := write(ctx, e); err != nil {
				logger.WarnContext(ctx, "event not delivered",
					"event", e.EventName(), "order_id", e.AggregateID().String(), "error", err)
			}
		}),
	}
}

func (a *Async) Name() string {
	return a.name
}

// Publish enqueues e. A full queue drops the event.
func (a *Async) Publish(ctx context.Context, e order.DomainEvent) {
	if !a.pump.Offer(e) {
		a.logger.WarnContext(ctx, "sink queue full, event dropped",
			"event", e.EventName(), "order_id", e.AggregateID().String())
	}
}

// Run delivers events until ctx is done, flushes what is queued and then
// releases the transport.
func (a *Async) Run(ctx context.Context) error {
	a.pump.Start(ctx)
	a.logger.InfoContext(ctx, "sink started")

	<-ctx.Done()
	a.pump.Wait()

	a.logger.Info("sink stopped")
	if a.closer != nil {
		return a.closer()
	}
	return nil
}
