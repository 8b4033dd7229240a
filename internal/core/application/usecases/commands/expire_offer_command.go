package commands

import (
	"errors"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/pkg/errs"
	"orderflow/internal/pkg/guard"
)

var ErrExpireOfferCommandIsNotConstructed = errors.New(
	"ExpireOfferCommand must be created via NewExpireOfferCommand constructor",
)

// ExpireOfferCommand is raised by the offer timer of one order.
type ExpireOfferCommand struct { //nolint:recvcheck //using for validation
	orderID kernel.UUID

	guard guard.ConstructorGuard
}

func NewExpireOfferCommand(orderID kernel.UUID) (ExpireOfferCommand, error) {
	if err := orderID.Validate(); err != nil {
		return ExpireOfferCommand{}, errs.NewValueIsRequiredErrorWithCause("orderID", err)
	}
	return ExpireOfferCommand{orderID: orderID, guard: guard.NewConstructorGuard()}, nil
}

func (c ExpireOfferCommand) Validate() error {
	return c.guard.Validate(ErrExpireOfferCommandIsNotConstructed)
}

func (c ExpireOfferCommand) OrderID() kernel.UUID {
	return c.orderID
}
