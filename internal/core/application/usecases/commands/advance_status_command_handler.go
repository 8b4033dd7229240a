package commands

import (
	"context"
	"time"

	"orderflow/internal/core/domain/model/order"
)

// AdvanceStatusCommandHandler drives the state machine for external actors.
// Illegal edges fail with order.ErrIllegalTransition, edges the actor may not
// take fail with order.ErrUnauthorized; both come wrapped in *order.TransitionError.
type AdvanceStatusCommandHandler struct {
	section *OrderSection
	policy  OfferPolicy
}

func NewAdvanceStatusCommandHandler(section *OrderSection, policy OfferPolicy) AdvanceStatusCommandHandler {
	return AdvanceStatusCommandHandler{section: section, policy: policy}
}

func (h AdvanceStatusCommandHandler) Handle(ctx context.Context, cmd AdvanceStatusCommand) (order.Summary, error) {
	if err := cmd.Validate(); err != nil {
		return order.Summary{}, err
	}

	return h.section.Mutate(ctx, cmd.OrderID(), func(o *order.Order, now time.Time) error {
		return o.Apply(order.Change{
			To:          cmd.Target(),
			Actor:       cmd.Actor(),
			At:          now,
			OfferWindow: h.policy.Window,
		})
	})
}
