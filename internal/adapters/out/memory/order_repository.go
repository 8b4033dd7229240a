package memory

import (
	"context"
	"fmt"
	"sort"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/core/ports"
	"orderflow/internal/pkg/errs"
)

type orderRepository struct {
	uow *UnitOfWork
}

func (r *orderRepository) Add(ctx context.Context, aggregate *order.Order) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := aggregate.Validate(); err != nil {
		return err
	}
	if _, exists := r.uow.lookup(aggregate.ID()); exists {
		return fmt.Errorf("%w: %s", ports.ErrOrderAlreadyExists, aggregate.ID())
	}

	if err := r.uow.stage(stagedWrite{snapshot: aggregate.Snapshot(), isNew: true}); err != nil {
		return err
	}
	aggregate.MarkPersisted()
	return nil
}

func (r *orderRepository) Update(ctx context.Context, aggregate *order.Order) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := aggregate.Validate(); err != nil {
		return err
	}
	current, exists := r.uow.lookup(aggregate.ID())
	if !exists {
		return errs.NewObjectNotFoundError("order", aggregate.ID().String())
	}
	if current.Version != aggregate.PersistedVersion() {
		return errs.NewVersionIsInvalidErrorWithCause("order",
			fmt.Errorf("stored version is %d, expected %d", current.Version, aggregate.PersistedVersion()))
	}

	w := stagedWrite{snapshot: aggregate.Snapshot(), expectedVersion: aggregate.PersistedVersion()}
	if err := r.uow.stage(w); err != nil {
		return err
	}
	aggregate.MarkPersisted()
	return nil
}

func (r *orderRepository) Get(ctx context.Context, id kernel.UUID) (*order.Order, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := id.Validate(); err != nil {
		return nil, err
	}
	snap, ok := r.uow.lookup(id)
	if !ok {
		return nil, errs.NewObjectNotFoundError("order", id.String())
	}
	return order.RestoreOrder(snap)
}

func (r *orderRepository) ListByStatus(ctx context.Context, status order.Status) ([]*order.Order, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	snaps := filter(r.uow.view(), func(s order.Snapshot) bool { return s.Status == status })
	sort.Slice(snaps, func(i, j int) bool { return snaps[i].CreatedAt.Before(snaps[j].CreatedAt) })
	return restoreAll(snaps)
}

func (r *orderRepository) ListActive(ctx context.Context, f ports.ActiveOrderFilter) ([]*order.Order, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	snaps := filter(r.uow.view(), func(s order.Snapshot) bool {
		if s.Status.IsTerminal() {
			return false
		}
		if !f.CustomerID.IsZero() && !f.CustomerID.IsEqual(s.CustomerID) {
			return false
		}
		if !f.RestaurantID.IsZero() && !f.RestaurantID.IsEqual(s.RestaurantID) {
			return false
		}
		if !f.CourierID.IsZero() && (s.CourierID == nil || !f.CourierID.IsEqual(*s.CourierID)) {
			return false
		}
		return true
	})
	sort.Slice(snaps, func(i, j int) bool { return snaps[i].CreatedAt.After(snaps[j].CreatedAt) })
	return restoreAll(snaps)
}

func filter(in []order.Snapshot, keep func(order.Snapshot) bool) []order.Snapshot {
	out := in[:0:0]
	for _, s := range in {
		if keep(s) {
			out = append(out, s)
		}
	}
	return out
}

func restoreAll(snaps []order.Snapshot) ([]*order.Order, error) {
	orders := make([]*order.Order, 0, len(snaps))
	for _, snap := range snaps {
		o, err := order.RestoreOrder(snap)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, nil
}
