// Package wire defines the JSON frames sent to live connections and to the
// event sinks.
package wire

import (
	"time"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"

	"github.com/google/uuid"
)

// Outbound event types.
const (
	TypeOrderAvailable     = "order_available"
	TypeOrderTaken         = "order_taken"
	TypeOrderStatusChanged = "order_status_changed"
	TypeAdminOrderUpdate   = "admin_order_update"
	TypeOrderOfferExpired  = "order_offer_expired"

	// Control frames answer client requests on the same connection.
	TypeSubscribed   = "subscribed"
	TypeUnsubscribed = "unsubscribed"
	TypeError        = "error"
)

// Client actions.
const (
	ActionSubscribe   = "subscribe"
	ActionUnsubscribe = "unsubscribe"
)

// ClientFrame is a request sent by a live client.
type ClientFrame struct {
	Action string `json:"action"`
	Topic  string `json:"topic"`
}

// Envelope is one frame. EventID is shared by every copy of the same event so
// clients can drop duplicates.
type Envelope struct {
	EventID    string    `json:"event_id"`
	Type       string    `json:"type"`
	Topic      string    `json:"topic,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
	Payload    any       `json:"payload"`
}

func NewEventID() string {
	return uuid.NewString()
}

// OrderView is the order summary used in feeds and resync responses.
type OrderView struct {
	OrderID        kernel.UUID  `json:"order_id"`
	RestaurantID   kernel.UUID  `json:"restaurant_id"`
	CustomerID     kernel.UUID  `json:"customer_id"`
	CourierID      *kernel.UUID `json:"courier_id,omitempty"`
	Status         order.Status `json:"status"`
	Lat            float64      `json:"lat"`
	Lng            float64      `json:"lng"`
	Amount         int64        `json:"amount"`
	OfferExpiresAt *time.Time   `json:"offer_expires_at,omitempty"`
	Version        int          `json:"version"`
}

func NewOrderView(s order.Summary) OrderView {
	return OrderView{
		OrderID:        s.ID,
		RestaurantID:   s.RestaurantID,
		CustomerID:     s.CustomerID,
		CourierID:      s.CourierID,
		Status:         s.Status,
		Lat:            s.Location.Lat(),
		Lng:            s.Location.Lng(),
		Amount:         s.Amount,
		OfferExpiresAt: s.OfferExpiresAt,
		Version:        s.Version,
	}
}

type OrderAvailablePayload struct {
	Order     OrderView `json:"order"`
	ExpiresAt time.Time `json:"expires_at"`
}

// OrderTakenPayload tells riders to retract an offer. Reason is "claimed" or "expired".
type OrderTakenPayload struct {
	OrderID kernel.UUID `json:"order_id"`
	Reason  string      `json:"reason"`
}

type StatusChangedPayload struct {
	OrderID   kernel.UUID  `json:"order_id"`
	OldStatus order.Status `json:"old_status"`
	NewStatus order.Status `json:"new_status"`
	CourierID *kernel.UUID `json:"courier_id,omitempty"`
	Version   int          `json:"version"`
}

type AdminOrderUpdatePayload struct {
	Order     OrderView    `json:"order"`
	OldStatus order.Status `json:"old_status,omitempty"`
	ActorRole order.Role   `json:"actor_role,omitempty"`
}

type OfferExpiredPayload struct {
	OrderID kernel.UUID `json:"order_id"`
	Attempt int         `json:"attempt"`
}

type ControlPayload struct {
	Topic   string `json:"topic,omitempty"`
	Message string `json:"message,omitempty"`
}

// Control builds a control frame for one connection.
func Control(frameType, topic, message string, at time.Time) Envelope {
	return Envelope{
		EventID:    NewEventID(),
		Type:       frameType,
		Topic:      topic,
		OccurredAt: at,
		Payload:    ControlPayload{Topic: topic, Message: message},
	}
}

// Record is the journal form of a domain event: one per event, keyed by order.
type Record struct {
	EventID    string    `json:"event_id"`
	EventType  string    `json:"event_type"`
	OccurredAt time.Time `json:"occurred_at"`
	Producer   string    `json:"producer"`
	OrderID    string    `json:"order_id"`
	FromStatus string    `json:"from_status,omitempty"`
	ToStatus   string    `json:"to_status,omitempty"`
	ActorRole  string    `json:"actor_role,omitempty"`
	Order      OrderView `json:"order"`
}

// Producer is stamped on journal records.
const Producer = "orderflow"

// NewRecord converts a domain event to its journal record.
func NewRecord(e order.DomainEvent) Record {
	r := Record{
		EventID:    NewEventID(),
		EventType:  e.EventName(),
		OccurredAt: e.OccurredAt(),
		Producer:   Producer,
		OrderID:    e.AggregateID().String(),
	}
	switch ev := e.(type) {
	case order.OrderPlaced:
		r.Order = NewOrderView(ev.Order)
		r.ToStatus = ev.Order.Status.String()
	case order.StatusChanged:
		r.Order = NewOrderView(ev.Order)
		r.FromStatus = ev.From.String()
		r.ToStatus = ev.To.String()
		r.ActorRole = ev.Actor.Role.String()
	case order.OrderAvailable:
		r.Order = NewOrderView(ev.Order)
	case order.OrderClaimed:
		r.Order = NewOrderView(ev.Order)
	case order.OrderExpired:
		r.Order = NewOrderView(ev.Order)
	}
	return r
}
