package dispatcher

import (
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/realtime"
	"orderflow/internal/realtime/wire"
)

type delivery struct {
	topic            realtime.Topic
	frameType        string
	payload          any
	onlineRidersOnly bool
}

const (
	reasonClaimed = "claimed"
	reasonExpired = "expired"
)

// route lists the topics an event goes to. The order topic comes first so a
// party following both the order and a role topic gets the order-level frame.
func route(e order.DomainEvent) []delivery {
	orderTopic := realtime.OrderTopic(e.AggregateID())

	switch ev := e.(type) {
	case order.OrderPlaced:
		return []delivery{{
			topic:     realtime.TopicAdminAll,
			frameType: wire.TypeAdminOrderUpdate,
			payload:   wire.AdminOrderUpdatePayload{Order: wire.NewOrderView(ev.Order)},
		}}
	case order.StatusChanged:
		return []delivery{
			{
				topic:     orderTopic,
				frameType: wire.TypeOrderStatusChanged,
				payload: wire.StatusChangedPayload{
					OrderID:   ev.Order.ID,
					OldStatus: ev.From,
					NewStatus: ev.To,
					CourierID: ev.Order.CourierID,
					Version:   ev.Order.Version,
				},
			},
			{
				topic:     realtime.TopicAdminAll,
				frameType: wire.TypeAdminOrderUpdate,
				payload: wire.AdminOrderUpdatePayload{
					Order:     wire.NewOrderView(ev.Order),
					OldStatus: ev.From,
					ActorRole: ev.Actor.Role,
				},
			},
		}
	case order.OrderAvailable:
		return []delivery{{
			topic:            realtime.TopicRidersAvailable,
			frameType:        wire.TypeOrderAvailable,
			payload:          wire.OrderAvailablePayload{Order: wire.NewOrderView(ev.Order), ExpiresAt: ev.ExpiresAt},
			onlineRidersOnly: true,
		}}
	case order.OrderClaimed:
		taken := wire.OrderTakenPayload{OrderID: ev.Order.ID, Reason: reasonClaimed}
		return []delivery{
			{topic: orderTopic, frameType: wire.TypeOrderTaken, payload: taken},
			{topic: realtime.TopicRidersAvailable, frameType: wire.TypeOrderTaken, payload: taken},
		}
	case order.OrderExpired:
		return []delivery{
			{
				topic:     orderTopic,
				frameType: wire.TypeOrderOfferExpired,
				payload:   wire.OfferExpiredPayload{OrderID: ev.Order.ID, Attempt: ev.Attempt},
			},
			{
				topic:     realtime.TopicRidersAvailable,
				frameType: wire.TypeOrderTaken,
				payload:   wire.OrderTakenPayload{OrderID: ev.Order.ID, Reason: reasonExpired},
			},
		}
	default:
		return nil
	}
}
