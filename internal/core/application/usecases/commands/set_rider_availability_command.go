package commands

import (
	"errors"
	"fmt"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/pkg/errs"
	"orderflow/internal/pkg/guard"
)

var ErrSetRiderAvailabilityCommandIsNotConstructed = errors.New(
	"SetRiderAvailabilityCommand must be created via NewSetRiderAvailabilityCommand constructor",
)

// SetRiderAvailabilityCommand pauses or resumes offers for a connected rider.
// Riders may only toggle themselves; admins may toggle anyone.
type SetRiderAvailabilityCommand struct { //nolint:recvcheck //using for validation
	courierID kernel.UUID
	available bool
	actor     order.Actor

	guard guard.ConstructorGuard
}

func NewSetRiderAvailabilityCommand(
	courierID kernel.UUID,
	available bool,
	actor order.Actor,
) (SetRiderAvailabilityCommand, error) {
	cmd := SetRiderAvailabilityCommand{
		available: available,
		guard:     guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setCourierID(courierID),
		cmd.setActor(actor, courierID),
	); err != nil {
		return SetRiderAvailabilityCommand{}, err
	}

	return cmd, nil
}

func (c SetRiderAvailabilityCommand) Validate() error {
	return c.guard.Validate(ErrSetRiderAvailabilityCommandIsNotConstructed)
}

func (c SetRiderAvailabilityCommand) CourierID() kernel.UUID { return c.courierID }
func (c SetRiderAvailabilityCommand) Available() bool        { return c.available }
func (c SetRiderAvailabilityCommand) Actor() order.Actor     { return c.actor }

func (c *SetRiderAvailabilityCommand) setCourierID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause("courierID", err)
	}
	c.courierID = id
	return nil
}

func (c *SetRiderAvailabilityCommand) setActor(actor order.Actor, courierID kernel.UUID) error {
	if _, err := order.NewActor(actor.Role, actor.ID); err != nil {
		return err
	}
	switch {
	case actor.Role == order.RoleAdmin:
	case actor.Role == order.RoleRider && actor.ID.IsEqual(courierID):
	default:
		return fmt.Errorf("%w: %s may not change availability of rider %s", order.ErrUnauthorized, actor, courierID)
	}
	c.actor = actor
	return nil
}
