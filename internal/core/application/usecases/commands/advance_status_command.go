package commands

import (
	"errors"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/pkg/errs"
	"orderflow/internal/pkg/guard"
)

var ErrAdvanceStatusCommandIsNotConstructed = errors.New(
	"AdvanceStatusCommand must be created via NewAdvanceStatusCommand constructor",
)

// AdvanceStatusCommand asks for one state-machine step on behalf of an actor:
// kitchen progress by the restaurant, pickup and delivery by the rider,
// cancellation by the customer or an operator.
type AdvanceStatusCommand struct { //nolint:recvcheck //using for validation
	orderID kernel.UUID
	target  order.Status
	actor   order.Actor

	guard guard.ConstructorGuard
}

func NewAdvanceStatusCommand(orderID kernel.UUID, target order.Status, actor order.Actor) (AdvanceStatusCommand, error) {
	cmd := AdvanceStatusCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setOrderID(orderID),
		cmd.setTarget(target),
		cmd.setActor(actor),
	); err != nil {
		return AdvanceStatusCommand{}, err
	}

	return cmd, nil
}

func (c AdvanceStatusCommand) Validate() error {
	return c.guard.Validate(ErrAdvanceStatusCommandIsNotConstructed)
}

func (c AdvanceStatusCommand) OrderID() kernel.UUID { return c.orderID }
func (c AdvanceStatusCommand) Target() order.Status { return c.target }
func (c AdvanceStatusCommand) Actor() order.Actor   { return c.actor }

func (c *AdvanceStatusCommand) setOrderID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause("orderID", err)
	}
	c.orderID = id
	return nil
}

func (c *AdvanceStatusCommand) setTarget(target order.Status) error {
	if err := target.Validate(); err != nil {
		return err
	}
	c.target = target
	return nil
}

func (c *AdvanceStatusCommand) setActor(actor order.Actor) error {
	// system transitions are internal and never requested from outside
	valid, err := order.NewActor(actor.Role, actor.ID)
	if err != nil {
		return err
	}
	c.actor = valid
	return nil
}
