package commands

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/core/ports"
)

// ErrOfferAlreadyResolved is returned when a timer fires for an order that has
// already left the available status. It is expected under races and never
// reaches a client.
var ErrOfferAlreadyResolved = errors.New("offer already resolved")

var errOfferNotDue = errors.New("offer window still open")

// ExpireOfferCommandHandler closes an elapsed offer window: the order moves to
// expired and then back to available or to cancelled per the offer policy.
type ExpireOfferCommandHandler struct {
	section *OrderSection
	offers  ports.OfferScheduler
	policy  OfferPolicy
	logger  *slog.Logger
}

func NewExpireOfferCommandHandler(
	section *OrderSection,
	offers ports.OfferScheduler,
	policy OfferPolicy,
	logger *slog.Logger,
) ExpireOfferCommandHandler {
	return ExpireOfferCommandHandler{
		section: section,
		offers:  offers,
		policy:  policy,
		logger:  logger.With("component", "offer-expiry"),
	}
}

func (h ExpireOfferCommandHandler) Handle(ctx context.Context, cmd ExpireOfferCommand) (order.Summary, error) {
	if err := cmd.Validate(); err != nil {
		return order.Summary{}, err
	}

	summary, err := h.section.Mutate(ctx, cmd.OrderID(), func(o *order.Order, now time.Time) error {
		if o.Status() != order.Available {
			return ErrOfferAlreadyResolved
		}
		if left := o.OfferRemaining(now); left > 0 {
			h.offers.StartOffer(o.ID(), left)
			return errOfferNotDue
		}
		return o.Expire(now, h.policy.Window, h.policy.MaxReoffers)
	})
	if errors.Is(err, errOfferNotDue) {
		return summary, nil
	}
	if err != nil {
		return summary, err
	}

	h.logger.InfoContext(ctx, "offer expired", "order_id", summary.ID, "status", summary.Status)
	return summary, nil
}

// OnExpiry adapts the handler to the offer supervisor callback. A stale timer
// is logged at debug level; other failures are logged as errors.
func (h ExpireOfferCommandHandler) OnExpiry(ctx context.Context, orderID kernel.UUID) {
	cmd, err := NewExpireOfferCommand(orderID)
	if err != nil {
		h.logger.ErrorContext(ctx, "invalid expiry", "order_id", orderID, "error", err)
		return
	}

	_, err = h.Handle(ctx, cmd)
	switch {
	case errors.Is(err, ErrOfferAlreadyResolved):
		h.logger.DebugContext(ctx, "offer timer raced a resolution", "order_id", orderID)
	case err != nil:
		h.logger.ErrorContext(ctx, "offer expiry failed", "order_id", orderID, "error", err)
	}
}
