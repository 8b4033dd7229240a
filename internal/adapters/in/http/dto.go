package http

import (
	"time"

	"orderflow/internal/core/application/usecases/commands"
	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/realtime/presence"
	"orderflow/internal/realtime/wire"
)

type Location struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type NewOrder struct {
	OrderID      *kernel.UUID `json:"order_id,omitempty"`
	RestaurantID kernel.UUID  `json:"restaurant_id"`
	CustomerID   kernel.UUID  `json:"customer_id"`
	Amount       int64        `json:"amount"`
	Location     Location     `json:"location"`
}

type StatusChange struct {
	Status order.Status `json:"status"`
}

type Availability struct {
	Available *bool `json:"available"`
}

type ClaimResult struct {
	Outcome     commands.ClaimOutcome `json:"outcome"`
	OrderID     kernel.UUID           `json:"order_id"`
	CourierID   kernel.UUID           `json:"courier_id"`
	AttemptedAt time.Time             `json:"attempted_at"`
	Order       *wire.OrderView       `json:"order,omitempty"`
}

func newClaimResult(r commands.ClaimResult) ClaimResult {
	out := ClaimResult{
		Outcome:     r.Outcome,
		OrderID:     r.OrderID,
		CourierID:   r.CourierID,
		AttemptedAt: r.AttemptedAt,
	}
	if r.Outcome == commands.ClaimWon {
		view := wire.NewOrderView(r.Order)
		out.Order = &view
	}
	return out
}

type Rider struct {
	CourierID   kernel.UUID `json:"courier_id"`
	Connections int         `json:"connections"`
	Available   bool        `json:"available"`
	OnlineSince time.Time   `json:"online_since"`
}

func newRiders(riders []presence.Rider) []Rider {
	out := make([]Rider, len(riders))
	for i, r := range riders {
		out[i] = Rider{
			CourierID:   r.CourierID,
			Connections: r.Connections,
			Available:   r.Available,
			OnlineSince: r.OnlineSince,
		}
	}
	return out
}

func newOrderViews(summaries []order.Summary) []wire.OrderView {
	out := make([]wire.OrderView, len(summaries))
	for i, s := range summaries {
		out[i] = wire.NewOrderView(s)
	}
	return out
}
