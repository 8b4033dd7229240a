package order

import (
	"fmt"
	"time"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/pkg/errs"
)

// DefaultOfferWindow applies when a Change into Available carries no window.
const DefaultOfferWindow = 60 * time.Second

// Change is a request to move the order along one edge.
type Change struct {
	To    Status
	Actor Actor
	At    time.Time

	// CourierID is required for Available -> Accepted and ignored otherwise.
	CourierID *kernel.UUID
	// OfferWindow sets the claim deadline when entering Available.
	OfferWindow time.Duration
}

// Apply validates the edge and the actor's authority, then mutates the order.
// On error the order is unchanged.
//
// Example:
//
//	err := o.Apply(order.Change{To: order.Preparing, Actor: restaurant, At: time.Now()})
//	if errors.Is(err, order.ErrUnauthorized) {
//	    // the actor does not own this order
//	}
func (o *Order) Apply(c Change) error {
	if err := o.Validate(); err != nil {
		return err
	}
	if err := c.To.Validate(); err != nil {
		return err
	}

	from := o.status
	if !from.CanTransitionTo(c.To) {
		return &TransitionError{OrderID: o.id, From: from, To: c.To, Actor: c.Actor, Err: ErrIllegalTransition}
	}
	if !o.Authorize(c.To, c.Actor) {
		return &TransitionError{OrderID: o.id, From: from, To: c.To, Actor: c.Actor, Err: ErrUnauthorized}
	}
	if c.To == Accepted {
		if c.CourierID == nil {
			return errs.NewValueIsRequiredError("courierID")
		}
		if err := c.CourierID.Validate(); err != nil {
			return errs.NewValueIsRequiredErrorWithCause("courierID", err)
		}
	}

	o.offerExpiresAt = nil
	switch c.To {
	case Available:
		window := c.OfferWindow
		if window <= 0 {
			window = DefaultOfferWindow
		}
		expiresAt := c.At.Add(window)
		o.offerExpiresAt = &expiresAt
		o.offerAttempts++
	case Accepted:
		courierID := *c.CourierID
		o.courierID = &courierID
	}

	o.status = c.To
	o.updatedAt = c.At
	o.version++

	summary := o.Summary()
	o.raise(StatusChanged{Order: summary, From: from, To: c.To, Actor: c.Actor, At: c.At})
	switch c.To {
	case Available:
		o.raise(OrderAvailable{Order: summary, ExpiresAt: *o.offerExpiresAt, Attempt: o.offerAttempts, At: c.At})
	case Accepted:
		o.raise(OrderClaimed{Order: summary, CourierID: *c.CourierID, At: c.At})
	case Expired:
		o.raise(OrderExpired{Order: summary, Attempt: o.offerAttempts, At: c.At})
	}
	return nil
}

// Accept assigns the winning courier. Only the claim arbiter calls it.
func (o *Order) Accept(courierID kernel.UUID, at time.Time) error {
	return o.Apply(Change{To: Accepted, Actor: SystemActor(), At: at, CourierID: &courierID})
}

// Expire closes the offer window and folds the order back: re-offered with a
// fresh window while attempts stay within maxReoffers, cancelled otherwise.
func (o *Order) Expire(at time.Time, window time.Duration, maxReoffers int) error {
	if err := o.Apply(Change{To: Expired, Actor: SystemActor(), At: at}); err != nil {
		return err
	}
	if o.offerAttempts <= maxReoffers {
		return o.Apply(Change{To: Available, Actor: SystemActor(), At: at, OfferWindow: window})
	}
	return o.Apply(Change{To: Cancelled, Actor: SystemActor(), At: at})
}

// Authorize reports whether actor may move the order from its current status to to.
// It does not check that the edge itself is legal.
func (o *Order) Authorize(to Status, actor Actor) bool {
	from := o.status
	admin := actor.Role == RoleAdmin
	restaurant := actor.is(RoleRestaurant, o.restaurantID)

	switch {
	case actor.IsSystem():
		// The system never performs kitchen or rider steps.
		return to == Accepted || to == Expired || to == Cancelled || from == Expired
	case to == Cancelled:
		return from.InKitchen() && (admin || actor.is(RoleCustomer, o.customerID))
	case to == Accepted, to == Expired, from == Expired:
		return false
	case to == Confirmed, to == Preparing, to == Available:
		return admin || restaurant
	case to == PickedUp, to == InTransit, to == Delivered:
		return o.courierID != nil && actor.is(RoleRider, *o.courierID)
	default:
		return false
	}
}

// String is used in logs.
func (c Change) String() string {
	return fmt.Sprintf("-> %s by %s", c.To, c.Actor)
}
