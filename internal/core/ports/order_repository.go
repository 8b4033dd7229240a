package ports

import (
	"context"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
)

// OrderRepository is the Order Ledger: the single source of truth for order state.
// Writers call Add/Update only from inside the order's exclusive section.
type OrderRepository interface {
	// Add persists a newly placed order. An existing id yields ErrOrderAlreadyExists.
	Add(ctx context.Context, aggregate *order.Order) error

	// Update persists a transition. The stored version must still equal
	// aggregate.PersistedVersion(); otherwise errs.ErrVersionIsInvalid is
	// returned and nothing is written.
	Update(ctx context.Context, aggregate *order.Order) error

	// Get returns the order or an errs.ObjectNotFoundError.
	Get(ctx context.Context, id kernel.UUID) (*order.Order, error)

	// ListByStatus returns every order currently in status, oldest first.
	ListByStatus(ctx context.Context, status order.Status) ([]*order.Order, error)

	// ListActive returns non-terminal orders matching the filter, newest first.
	ListActive(ctx context.Context, filter ActiveOrderFilter) ([]*order.Order, error)
}

// ActiveOrderFilter narrows ListActive to one party. Zero ids are ignored.
type ActiveOrderFilter struct {
	CustomerID   kernel.UUID
	CourierID    kernel.UUID
	RestaurantID kernel.UUID
}
