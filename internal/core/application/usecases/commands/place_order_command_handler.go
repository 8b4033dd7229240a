package commands

import (
	"context"

	"orderflow/internal/core/domain/model/order"
)

// PlaceOrderCommandHandler creates orders in the pending status.
// Placing an id that already exists fails with ports.ErrOrderAlreadyExists.
type PlaceOrderCommandHandler struct {
	section *OrderSection
}

func NewPlaceOrderCommandHandler(section *OrderSection) PlaceOrderCommandHandler {
	return PlaceOrderCommandHandler{section: section}
}

func (h PlaceOrderCommandHandler) Handle(ctx context.Context, cmd PlaceOrderCommand) (order.Summary, error) {
	if err := cmd.Validate(); err != nil {
		return order.Summary{}, err
	}

	aggregate, err := order.NewOrder(
		cmd.OrderID(),
		cmd.RestaurantID(),
		cmd.CustomerID(),
		cmd.Location(),
		cmd.Amount(),
		h.section.Now(),
	)
	if err != nil {
		return order.Summary{}, err
	}

	if err = h.section.Create(ctx, aggregate); err != nil {
		return order.Summary{}, err
	}
	return aggregate.Summary(), nil
}
