package commands

import (
	"context"
	"log/slog"
	"time"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/core/ports"
	"orderflow/internal/pkg/keylock"
)

// OfferPolicy controls the claim window and how often an unclaimed order is
// offered again before it is cancelled.
type OfferPolicy struct {
	Window      time.Duration
	MaxReoffers int
}

func DefaultOfferPolicy() OfferPolicy {
	return OfferPolicy{Window: order.DefaultOfferWindow}
}

// OrderSection is the single write path into the ledger. It serializes all
// mutations of one order and performs their side effects in commit order:
// offer timer first, then event publication, both before the section is released.
//
// Example:
//
//	summary, err := section.Mutate(ctx, orderID, func(o *order.Order, now time.Time) error {
//	    return o.Apply(order.Change{To: order.Preparing, Actor: actor, At: now})
//	})
type OrderSection struct {
	uowFactory OrderUoWFactory
	locks      *keylock.Locker[kernel.UUID]
	offers     ports.OfferScheduler
	publisher  ports.EventPublisher
	clock      ports.Clock
	logger     *slog.Logger
}

func NewOrderSection(
	uowFactory OrderUoWFactory,
	locks *keylock.Locker[kernel.UUID],
	offers ports.OfferScheduler,
	publisher ports.EventPublisher,
	clock ports.Clock,
	logger *slog.Logger,
) *OrderSection {
	return &OrderSection{
		uowFactory: uowFactory,
		locks:      locks,
		offers:     offers,
		publisher:  publisher,
		clock:      clock,
		logger:     logger,
	}
}

// Now is the section's clock.
func (s *OrderSection) Now() time.Time {
	return s.clock.Now()
}

// Read loads the order outside the section. The result may be stale by the
// time the caller acts on it.
func (s *OrderSection) Read(ctx context.Context, id kernel.UUID) (*order.Order, error) {
	return s.uowFactory.Create().OrderRepository().Get(ctx, id)
}

// Create stores a newly placed order and publishes its events.
func (s *OrderSection) Create(ctx context.Context, aggregate *order.Order) error {
	unlock, err := s.locks.Lock(ctx, aggregate.ID())
	if err != nil {
		return err
	}
	defer unlock()

	uow := s.uowFactory.Create()
	if err = uow.Begin(ctx); err != nil {
		return err
	}
	defer func() {
		_ = uow.Rollback(ctx)
	}()

	if err = uow.OrderRepository().Add(ctx, aggregate); err != nil {
		return err
	}
	if err = uow.Commit(ctx); err != nil {
		return err
	}

	s.afterCommit(ctx, aggregate)
	return nil
}

// Mutate loads the order inside its exclusive section, runs fn and commits the
// result. When fn or the ledger fails nothing is written, no timer is touched
// and no event is published.
func (s *OrderSection) Mutate(
	ctx context.Context,
	id kernel.UUID,
	fn func(o *order.Order, now time.Time) error,
) (order.Summary, error) {
	unlock, err := s.locks.Lock(ctx, id)
	if err != nil {
		return order.Summary{}, err
	}
	defer unlock()

	uow := s.uowFactory.Create()
	if err = uow.Begin(ctx); err != nil {
		return order.Summary{}, err
	}
	defer func() {
		_ = uow.Rollback(ctx)
	}()

	repo := uow.OrderRepository()
	aggregate, err := repo.Get(ctx, id)
	if err != nil {
		return order.Summary{}, err
	}

	if err = fn(aggregate, s.clock.Now()); err != nil {
		return aggregate.Summary(), err
	}

	if err = repo.Update(ctx, aggregate); err != nil {
		return order.Summary{}, err
	}
	if err = uow.Commit(ctx); err != nil {
		return order.Summary{}, err
	}

	s.afterCommit(ctx, aggregate)
	return aggregate.Summary(), nil
}

func (s *OrderSection) afterCommit(ctx context.Context, aggregate *order.Order) {
	if aggregate.Status() == order.Available {
		s.offers.StartOffer(aggregate.ID(), aggregate.OfferRemaining(s.clock.Now()))
	} else {
		s.offers.CancelOffer(aggregate.ID())
	}

	s.publisher.Publish(ctx, aggregate.DomainEvents()...)
	aggregate.ClearDomainEvents()
}
