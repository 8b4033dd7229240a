package queries

import (
	"context"

	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/core/ports"
)

type ListActiveOrdersQueryHandler struct {
	uowFactory ports.UnitOfWorkFactory
}

func NewListActiveOrdersQueryHandler(uowFactory ports.UnitOfWorkFactory) ListActiveOrdersQueryHandler {
	return ListActiveOrdersQueryHandler{uowFactory: uowFactory}
}

// Handle returns matching orders newest first.
func (h ListActiveOrdersQueryHandler) Handle(ctx context.Context, query ListActiveOrdersQuery) ([]order.Summary, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	orders, err := h.uowFactory.Create().OrderRepository().ListActive(ctx, query.Filter())
	if err != nil {
		return nil, err
	}
	return summarize(orders), nil
}

func summarize(orders []*order.Order) []order.Summary {
	out := make([]order.Summary, 0, len(orders))
	for _, o := range orders {
		out = append(out, o.Summary())
	}
	return out
}
