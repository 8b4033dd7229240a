package queries

import (
	"context"

	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/core/ports"
)

type ListAvailableOrdersQueryHandler struct {
	uowFactory ports.UnitOfWorkFactory
}

func NewListAvailableOrdersQueryHandler(uowFactory ports.UnitOfWorkFactory) ListAvailableOrdersQueryHandler {
	return ListAvailableOrdersQueryHandler{uowFactory: uowFactory}
}

// Handle returns the orders currently on offer, oldest offer first.
func (h ListAvailableOrdersQueryHandler) Handle(
	ctx context.Context,
	query ListAvailableOrdersQuery,
) ([]order.Summary, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	orders, err := h.uowFactory.Create().OrderRepository().ListByStatus(ctx, order.Available)
	if err != nil {
		return nil, err
	}
	return summarize(orders), nil
}
