package order

import (
	"errors"
	"fmt"
	"time"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/pkg/errs"
)

// Order is the aggregate root of the lifecycle. It is not safe for concurrent
// mutation; callers serialize writers per order id.
type Order struct {
	id           kernel.UUID
	restaurantID kernel.UUID
	customerID   kernel.UUID
	courierID    *kernel.UUID
	location     kernel.Location
	amount       int64

	status         Status
	createdAt      time.Time
	updatedAt      time.Time
	offerExpiresAt *time.Time
	offerAttempts  int
	version        int

	persistedVersion int
	domainEvents     []DomainEvent

	isConstructed bool
}

// NewOrder creates an order in Pending and records OrderPlaced.
//
// Example:
//
//	loc, _ := kernel.NewLocation(52.52, 13.405)
//	o, err := order.NewOrder(kernel.NewUUID(), restaurantID, customerID, loc, 2350, time.Now())
//	if err != nil {
//	    return err
//	}
//	o.Status() // order.Pending
func NewOrder(
	id, restaurantID, customerID kernel.UUID,
	location kernel.Location,
	amount int64,
	at time.Time,
) (*Order, error) {
	o := &Order{
		status:        Pending,
		createdAt:     at,
		updatedAt:     at,
		version:       1,
		isConstructed: true,
	}

	if err := errors.Join(
		o.setID(id),
		o.setRestaurantID(restaurantID),
		o.setCustomerID(customerID),
		o.setLocation(location),
		o.setAmount(amount),
	); err != nil {
		return nil, err
	}

	o.raise(OrderPlaced{Order: o.Summary(), At: at})
	return o, nil
}

// Snapshot is the persisted form of an order.
type Snapshot struct {
	ID             kernel.UUID
	RestaurantID   kernel.UUID
	CustomerID     kernel.UUID
	CourierID      *kernel.UUID
	Location       kernel.Location
	Amount         int64
	Status         Status
	CreatedAt      time.Time
	UpdatedAt      time.Time
	OfferExpiresAt *time.Time
	OfferAttempts  int
	Version        int
}

// RestoreOrder rebuilds an aggregate from storage and re-checks its invariants.
// No events are recorded.
func RestoreOrder(s Snapshot) (*Order, error) {
	o := &Order{
		createdAt:        s.CreatedAt,
		updatedAt:        s.UpdatedAt,
		offerAttempts:    s.OfferAttempts,
		version:          s.Version,
		persistedVersion: s.Version,
		isConstructed:    true,
	}

	if err := errors.Join(
		o.setID(s.ID),
		o.setRestaurantID(s.RestaurantID),
		o.setCustomerID(s.CustomerID),
		o.setLocation(s.Location),
		o.setAmount(s.Amount),
		s.Status.Validate(),
	); err != nil {
		return nil, err
	}
	o.status = s.Status

	if s.CourierID != nil {
		courierID := *s.CourierID
		o.courierID = &courierID
	}
	if s.OfferExpiresAt != nil {
		expiresAt := *s.OfferExpiresAt
		o.offerExpiresAt = &expiresAt
	}

	if err := o.checkInvariants(); err != nil {
		return nil, err
	}
	return o, nil
}

func (o *Order) Validate() error {
	if o == nil || !o.isConstructed {
		return ErrOrderIsNotConstructed
	}
	return nil
}

func (o *Order) IsEqual(other *Order) bool {
	return other != nil && o.id.IsEqual(other.id)
}

func (o *Order) ID() kernel.UUID              { return o.id }
func (o *Order) RestaurantID() kernel.UUID    { return o.restaurantID }
func (o *Order) CustomerID() kernel.UUID      { return o.customerID }
func (o *Order) Location() kernel.Location    { return o.location }
func (o *Order) Amount() int64                { return o.amount }
func (o *Order) Status() Status               { return o.status }
func (o *Order) CreatedAt() time.Time         { return o.createdAt }
func (o *Order) UpdatedAt() time.Time         { return o.updatedAt }
func (o *Order) OfferAttempts() int           { return o.offerAttempts }
func (o *Order) Version() int                 { return o.version }
func (o *Order) DomainEvents() []DomainEvent  { return append([]DomainEvent(nil), o.domainEvents...) }
func (o *Order) ClearDomainEvents()           { o.domainEvents = nil }

// PersistedVersion is the version the ledger holds for this aggregate; zero for
// an order that has never been stored. Ledgers use it for optimistic checks.
func (o *Order) PersistedVersion() int {
	return o.persistedVersion
}

// MarkPersisted is called by a ledger after a successful write.
func (o *Order) MarkPersisted() {
	o.persistedVersion = o.version
}

// Courier returns the assigned courier, or nil before acceptance.
func (o *Order) Courier() *kernel.UUID {
	if o.courierID == nil {
		return nil
	}
	id := *o.courierID
	return &id
}

// OfferExpiresAt is set only while the order is Available.
func (o *Order) OfferExpiresAt() *time.Time {
	if o.offerExpiresAt == nil {
		return nil
	}
	at := *o.offerExpiresAt
	return &at
}

// OfferRemaining is the time left in the current offer window, zero when
// the window has closed or the order is not on offer.
func (o *Order) OfferRemaining(now time.Time) time.Duration {
	if o.offerExpiresAt == nil {
		return 0
	}
	if left := o.offerExpiresAt.Sub(now); left > 0 {
		return left
	}
	return 0
}

// IsParty reports whether the actor may follow this order's live updates.
func (o *Order) IsParty(a Actor) bool {
	return o.Summary().IsParty(a)
}

func (o *Order) Summary() Summary {
	return Summary{
		ID:             o.id,
		RestaurantID:   o.restaurantID,
		CustomerID:     o.customerID,
		CourierID:      o.Courier(),
		Status:         o.status,
		Location:       o.location,
		Amount:         o.amount,
		OfferExpiresAt: o.OfferExpiresAt(),
		Version:        o.version,
	}
}

func (o *Order) Snapshot() Snapshot {
	return Snapshot{
		ID:             o.id,
		RestaurantID:   o.restaurantID,
		CustomerID:     o.customerID,
		CourierID:      o.Courier(),
		Location:       o.location,
		Amount:         o.amount,
		Status:         o.status,
		CreatedAt:      o.createdAt,
		UpdatedAt:      o.updatedAt,
		OfferExpiresAt: o.OfferExpiresAt(),
		OfferAttempts:  o.offerAttempts,
		Version:        o.version,
	}
}

func (o *Order) raise(e DomainEvent) {
	o.domainEvents = append(o.domainEvents, e)
}

func (o *Order) checkInvariants() error {
	hasCourier := o.courierID != nil
	if hasCourier != o.status.HasCourier() {
		return errs.NewValueIsInvalidErrorWithCause(
			"courierID",
			fmt.Errorf("status %s with courier assigned = %t", o.status, hasCourier),
		)
	}
	if o.offerExpiresAt != nil && o.status != Available {
		return errs.NewValueIsInvalidErrorWithCause(
			"offerExpiresAt",
			fmt.Errorf("offer deadline set while %s", o.status),
		)
	}
	return nil
}

func (o *Order) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause("id", err)
	}
	o.id = id
	return nil
}

func (o *Order) setRestaurantID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause("restaurantID", err)
	}
	o.restaurantID = id
	return nil
}

func (o *Order) setCustomerID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause("customerID", err)
	}
	o.customerID = id
	return nil
}

func (o *Order) setLocation(location kernel.Location) error {
	if err := location.Validate(); err != nil {
		return err
	}
	o.location = location
	return nil
}

func (o *Order) setAmount(amount int64) error {
	if amount < 0 {
		return errs.NewValueIsInvalidErrorWithCause("amount", fmt.Errorf("%d is negative", amount))
	}
	o.amount = amount
	return nil
}
