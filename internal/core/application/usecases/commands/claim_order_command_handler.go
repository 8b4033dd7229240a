package commands

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
)

// ErrOrderNotClaimable means the order was not on offer when the claim arrived.
// The claim never reached the arbiter.
var ErrOrderNotClaimable = errors.New("order is not claimable")

var errClaimLost = errors.New("claim lost")

type ClaimOutcome string

const (
	ClaimWon  ClaimOutcome = "won"
	ClaimLost ClaimOutcome = "lost"
)

// ClaimResult is the arbiter's decision for one claim attempt.
type ClaimResult struct {
	Outcome     ClaimOutcome
	OrderID     kernel.UUID
	CourierID   kernel.UUID
	AttemptedAt time.Time
	Order       order.Summary // set only when the claim was won
}

// ClaimOrderCommandHandler is the claim arbiter. Claims for one order are decided
// one at a time inside the order's section; the first claim that finds the order
// available wins, every later one loses.
//
// Example:
//
//	result, err := handler.Handle(ctx, cmd)
//	switch {
//	case errors.Is(err, ErrOrderNotClaimable):
//	    // offer already gone
//	case err != nil:
//	    return err
//	case result.Outcome == ClaimLost:
//	    // another courier was faster
//	}
type ClaimOrderCommandHandler struct {
	section *OrderSection
	logger  *slog.Logger
}

func NewClaimOrderCommandHandler(section *OrderSection, logger *slog.Logger) ClaimOrderCommandHandler {
	return ClaimOrderCommandHandler{
		section: section,
		logger:  logger.With("component", "claim-arbiter"),
	}
}

func (h ClaimOrderCommandHandler) Handle(ctx context.Context, cmd ClaimOrderCommand) (ClaimResult, error) {
	if err := cmd.Validate(); err != nil {
		return ClaimResult{}, err
	}

	attempt := ClaimResult{
		OrderID:     cmd.OrderID(),
		CourierID:   cmd.CourierID(),
		AttemptedAt: h.section.Now(),
	}

	current, err := h.section.Read(ctx, cmd.OrderID())
	if err != nil {
		return ClaimResult{}, err
	}
	if current.Status() != order.Available {
		return ClaimResult{}, ErrOrderNotClaimable
	}

	summary, err := h.section.Mutate(ctx, cmd.OrderID(), func(o *order.Order, now time.Time) error {
		if o.Status() != order.Available {
			return errClaimLost
		}
		return o.Accept(cmd.CourierID(), now)
	})
	switch {
	case errors.Is(err, errClaimLost):
		attempt.Outcome = ClaimLost
	case err != nil:
		return ClaimResult{}, err
	default:
		attempt.Outcome = ClaimWon
		attempt.Order = summary
	}

	h.logger.InfoContext(ctx, "claim resolved",
		"order_id", attempt.OrderID,
		"courier_id", attempt.CourierID,
		"attempted_at", attempt.AttemptedAt,
		"outcome", attempt.Outcome)

	return attempt, nil
}
