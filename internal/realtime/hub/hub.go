// Package hub is the entry point for live connections. Transports report
// opened and closed connections and forward client frames; the hub keeps
// presence, subscriptions and the dispatcher's outboxes consistent.
package hub

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/core/ports"
	"orderflow/internal/pkg/errs"
	"orderflow/internal/realtime"
	"orderflow/internal/realtime/dispatcher"
	"orderflow/internal/realtime/presence"
	"orderflow/internal/realtime/subscription"
	"orderflow/internal/realtime/wire"
)

var (
	ErrForbiddenTopic    = errors.New("topic not permitted")
	ErrUnknownConnection = errors.New("unknown connection")
	ErrUnknownAction     = errors.New("unknown action")
)

type Hub struct {
	dispatcher *dispatcher.Dispatcher
	registry   *subscription.Registry
	presence   *presence.Tracker
	orders     ports.UnitOfWorkFactory
	clock      ports.Clock
	logger     *slog.Logger
}

func New(
	d *dispatcher.Dispatcher,
	registry *subscription.Registry,
	tracker *presence.Tracker,
	orders ports.UnitOfWorkFactory,
	clock ports.Clock,
	logger *slog.Logger,
) *Hub {
	return &Hub{
		dispatcher: d,
		registry:   registry,
		presence:   tracker,
		orders:     orders,
		clock:      clock,
		logger:     logger.With("component", "hub"),
	}
}

// ConnectionOpened registers an authenticated connection. Riders go online
// and follow the offer feed, admins follow the admin feed.
func (h *Hub) ConnectionOpened(ctx context.Context, conn realtime.Connection, sender dispatcher.Sender) error {
	if conn.ID == "" {
		return fmt.Errorf("%w: empty connection id", ErrUnknownConnection)
	}
	if _, err := order.NewActor(conn.Role, conn.UserID); err != nil {
		return err
	}

	h.dispatcher.Attach(ctx, conn, sender)
	switch conn.Role {
	case order.RoleRider:
		h.presence.MarkOnline(conn.UserID, conn.ID)
		h.registry.Subscribe(realtime.TopicRidersAvailable, conn.ID)
	case order.RoleAdmin:
		h.registry.Subscribe(realtime.TopicAdminAll, conn.ID)
	}

	h.logger.InfoContext(ctx, "connection opened", "connection_id", conn.ID, "role", conn.Role, "user_id", conn.UserID)
	return nil
}

// ConnectionClosed drops every trace of the connection. It is safe to call
// more than once.
func (h *Hub) ConnectionClosed(ctx context.Context, id realtime.ConnectionID) {
	detached := h.dispatcher.Detach(id)
	h.presence.MarkOffline(id)
	if detached {
		h.logger.InfoContext(ctx, "connection closed", "connection_id", id)
	}
}

// Subscribe adds the connection to a topic after checking that its actor may follow it.
func (h *Hub) Subscribe(ctx context.Context, id realtime.ConnectionID, rawTopic string) (realtime.Topic, error) {
	conn, ok := h.dispatcher.Connection(id)
	if !ok {
		return "", ErrUnknownConnection
	}
	topic, orderID, err := realtime.ParseTopic(rawTopic)
	if err != nil {
		return "", err
	}
	if err = h.authorize(ctx, conn, topic, orderID); err != nil {
		return "", err
	}

	h.registry.Subscribe(topic, id)
	return topic, nil
}

func (h *Hub) Unsubscribe(_ context.Context, id realtime.ConnectionID, rawTopic string) (realtime.Topic, error) {
	if _, ok := h.dispatcher.Connection(id); !ok {
		return "", ErrUnknownConnection
	}
	topic, _, err := realtime.ParseTopic(rawTopic)
	if err != nil {
		return "", err
	}
	h.registry.Unsubscribe(topic, id)
	return topic, nil
}

// HandleFrame executes a client request and queues the reply on the same connection.
func (h *Hub) HandleFrame(ctx context.Context, id realtime.ConnectionID, frame wire.ClientFrame) {
	var (
		topic realtime.Topic
		err   error
		reply string
	)
	switch frame.Action {
	case wire.ActionSubscribe:
		topic, err = h.Subscribe(ctx, id, frame.Topic)
		reply = wire.TypeSubscribed
	case wire.ActionUnsubscribe:
		topic, err = h.Unsubscribe(ctx, id, frame.Topic)
		reply = wire.TypeUnsubscribed
	default:
		err = fmt.Errorf("%w: %q", ErrUnknownAction, frame.Action)
	}

	now := h.clock.Now()
	if err != nil {
		h.logger.DebugContext(ctx, "client frame rejected", "connection_id", id, "action", frame.Action, "error", err)
		h.dispatcher.Send(ctx, id, wire.Control(wire.TypeError, frame.Topic, clientMessage(err), now))
		return
	}
	h.dispatcher.Send(ctx, id, wire.Control(reply, topic.String(), "", now))
}

func (h *Hub) authorize(ctx context.Context, conn realtime.Connection, topic realtime.Topic, orderID kernel.UUID) error {
	switch topic {
	case realtime.TopicRidersAvailable:
		if conn.Role != order.RoleRider {
			return ErrForbiddenTopic
		}
		return nil
	case realtime.TopicAdminAll:
		if conn.Role != order.RoleAdmin {
			return ErrForbiddenTopic
		}
		return nil
	}

	o, err := h.orders.Create().OrderRepository().Get(ctx, orderID)
	if err != nil {
		return err
	}
	if !o.IsParty(conn.Actor()) {
		return ErrForbiddenTopic
	}
	return nil
}

// clientMessage hides whether an order exists from actors that may not follow it.
func clientMessage(err error) string {
	switch {
	case errors.Is(err, ErrForbiddenTopic), errors.Is(err, errs.ErrObjectNotFound):
		return "forbidden"
	case errors.Is(err, ErrUnknownAction):
		return "unknown action"
	case errors.Is(err, errs.ErrValueIsInvalid):
		return "invalid topic"
	case errors.Is(err, ErrUnknownConnection):
		return "unknown connection"
	default:
		return "internal error"
	}
}
