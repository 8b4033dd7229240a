package order

import (
	"time"

	"orderflow/internal/core/domain/model/kernel"
)

// DomainEvent is something that happened to one order. Events are recorded on the
// aggregate in the order they happen and handed to the dispatcher after commit.
type DomainEvent interface {
	AggregateID() kernel.UUID
	EventName() string
	OccurredAt() time.Time
}

const (
	EventOrderPlaced    = "order.placed"
	EventStatusChanged  = "order.status_changed"
	EventOrderAvailable = "order.available"
	EventOrderClaimed   = "order.claimed"
	EventOrderExpired   = "order.expired"
)

// Summary is the order view carried by events: enough for a rider feed entry or
// an admin dashboard row without a ledger round-trip.
type Summary struct {
	ID             kernel.UUID
	RestaurantID   kernel.UUID
	CustomerID     kernel.UUID
	CourierID      *kernel.UUID
	Status         Status
	Location       kernel.Location
	Amount         int64
	OfferExpiresAt *time.Time
	Version        int
}

// IsParty reports whether the actor is involved in the order: its customer,
// restaurant, assigned rider, or an admin.
func (s Summary) IsParty(a Actor) bool {
	switch a.Role {
	case RoleAdmin, RoleSystem:
		return true
	case RoleCustomer:
		return a.is(RoleCustomer, s.CustomerID)
	case RoleRestaurant:
		return a.is(RoleRestaurant, s.RestaurantID)
	case RoleRider:
		return s.CourierID != nil && a.is(RoleRider, *s.CourierID)
	default:
		return false
	}
}

type OrderPlaced struct {
	Order Summary
	At    time.Time
}

func (e OrderPlaced) AggregateID() kernel.UUID { return e.Order.ID }
func (e OrderPlaced) EventName() string         { return EventOrderPlaced }
func (e OrderPlaced) OccurredAt() time.Time     { return e.At }

// StatusChanged is recorded for every successful transition.
type StatusChanged struct {
	Order Summary
	From  Status
	To    Status
	Actor Actor
	At    time.Time
}

func (e StatusChanged) AggregateID() kernel.UUID { return e.Order.ID }
func (e StatusChanged) EventName() string         { return EventStatusChanged }
func (e StatusChanged) OccurredAt() time.Time     { return e.At }

// OrderAvailable is recorded when an order is (re-)offered to riders.
type OrderAvailable struct {
	Order     Summary
	ExpiresAt time.Time
	Attempt   int
	At        time.Time
}

func (e OrderAvailable) AggregateID() kernel.UUID { return e.Order.ID }
func (e OrderAvailable) EventName() string         { return EventOrderAvailable }
func (e OrderAvailable) OccurredAt() time.Time     { return e.At }

// OrderClaimed is recorded when a courier wins the claim.
type OrderClaimed struct {
	Order     Summary
	CourierID kernel.UUID
	At        time.Time
}

func (e OrderClaimed) AggregateID() kernel.UUID { return e.Order.ID }
func (e OrderClaimed) EventName() string         { return EventOrderClaimed }
func (e OrderClaimed) OccurredAt() time.Time     { return e.At }

// OrderExpired is recorded when an offer window closes without a winner.
type OrderExpired struct {
	Order   Summary
	Attempt int
	At      time.Time
}

func (e OrderExpired) AggregateID() kernel.UUID { return e.Order.ID }
func (e OrderExpired) EventName() string         { return EventOrderExpired }
func (e OrderExpired) OccurredAt() time.Time     { return e.At }
