package commands

import (
	"context"
	"errors"

	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/core/ports"
)

// ReconcileResult counts what one sweep did.
type ReconcileResult struct {
	Expired int
	Rearmed int
}

// ReconcileOffersCommandHandler restores offer timers from the ledger. Overdue
// offers are expired through the regular expiry path, offers without a live
// timer (for example after a restart) get one for their remaining window.
type ReconcileOffersCommandHandler struct {
	uowFactory OrderUoWFactory
	offers     ports.OfferScheduler
	clock      ports.Clock
	expire     ExpireOfferCommandHandler
}

func NewReconcileOffersCommandHandler(
	uowFactory OrderUoWFactory,
	offers ports.OfferScheduler,
	clock ports.Clock,
	expire ExpireOfferCommandHandler,
) ReconcileOffersCommandHandler {
	return ReconcileOffersCommandHandler{
		uowFactory: uowFactory,
		offers:     offers,
		clock:      clock,
		expire:     expire,
	}
}

func (h ReconcileOffersCommandHandler) Handle(ctx context.Context, cmd ReconcileOffersCommand) (ReconcileResult, error) {
	if err := cmd.Validate(); err != nil {
		return ReconcileResult{}, err
	}

	available, err := h.uowFactory.Create().OrderRepository().ListByStatus(ctx, order.Available)
	if err != nil {
		return ReconcileResult{}, err
	}

	var result ReconcileResult
	now := h.clock.Now()
	for _, o := range available {
		if err = ctx.Err(); err != nil {
			return result, err
		}

		left := o.OfferRemaining(now)
		if left > 0 {
			if !h.offers.Active(o.ID()) {
				h.offers.StartOffer(o.ID(), left)
				result.Rearmed++
			}
			continue
		}

		expireCmd, err := NewExpireOfferCommand(o.ID())
		if err != nil {
			return result, err
		}
		_, err = h.expire.Handle(ctx, expireCmd)
		switch {
		case errors.Is(err, ErrOfferAlreadyResolved):
		case err != nil:
			return result, err
		default:
			result.Expired++
		}
	}
	return result, nil
}
