package queries

import (
	"context"
	"fmt"
	"log/slog"

	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/core/ports"
)

// GetOrderQueryHandler reads through the status cache into the ledger.
// Actors that are not a party to the order get order.ErrUnauthorized.
type GetOrderQueryHandler struct {
	uowFactory ports.UnitOfWorkFactory
	cache      ports.StatusCache
	logger     *slog.Logger
}

// NewGetOrderQueryHandler creates the handler. cache may be nil.
func NewGetOrderQueryHandler(
	uowFactory ports.UnitOfWorkFactory,
	cache ports.StatusCache,
	logger *slog.Logger,
) GetOrderQueryHandler {
	return GetOrderQueryHandler{uowFactory: uowFactory, cache: cache, logger: logger}
}

func (h GetOrderQueryHandler) Handle(ctx context.Context, query GetOrderQuery) (order.Summary, error) {
	if err := query.Validate(); err != nil {
		return order.Summary{}, err
	}

	if h.cache != nil {
		cached, ok, err := h.cache.Get(ctx, query.OrderID())
		if err != nil {
			h.logger.WarnContext(ctx, "status cache read failed", "order_id", query.OrderID(), "error", err)
		}
		if ok {
			return authorize(cached, query.Actor())
		}
	}

	aggregate, err := h.uowFactory.Create().OrderRepository().Get(ctx, query.OrderID())
	if err != nil {
		return order.Summary{}, err
	}
	summary := aggregate.Summary()

	if h.cache != nil {
		if err = h.cache.Put(ctx, summary); err != nil {
			h.logger.WarnContext(ctx, "status cache write failed", "order_id", summary.ID, "error", err)
		}
	}
	return authorize(summary, query.Actor())
}

func authorize(summary order.Summary, actor order.Actor) (order.Summary, error) {
	if !summary.IsParty(actor) {
		return order.Summary{}, fmt.Errorf("%w: %s is not a party to order %s", order.ErrUnauthorized, actor, summary.ID)
	}
	return summary, nil
}
