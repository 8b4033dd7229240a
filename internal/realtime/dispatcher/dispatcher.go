// Package dispatcher fans committed domain events out to live connections.
//
// Each attached connection owns a bounded outbox drained by its own goroutine,
// so Publish only enqueues and never waits on a transport. A connection whose
// outbox is full is evicted; its client resynchronizes through the read path.
package dispatcher

import (
	"context"
	"log/slog"
	"sync"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/pkg/pump"
	"orderflow/internal/realtime"
	"orderflow/internal/realtime/wire"
)

// DefaultOutboxSize is the per-connection queue length when none is configured.
const DefaultOutboxSize = 256

// Sender writes frames to one transport connection.
type Sender interface {
	Send(ctx context.Context, env wire.Envelope) error
	Close() error
}

// Sink receives every published domain event. Publish must not block.
type Sink interface {
	Name() string
	Publish(ctx context.Context, e order.DomainEvent)
}

// Resolver answers which connections follow a topic.
type Resolver interface {
	Resolve(topic realtime.Topic) []realtime.ConnectionID
}

// Presence answers whether a rider should receive new offers.
type Presence interface {
	IsOnline(courierID kernel.UUID) bool
}

type Option func(*Dispatcher)

func WithOutboxSize(n int) Option {
	return func(d *Dispatcher) {
		if n > 0 {
			d.outboxSize = n
		}
	}
}

func WithSinks(sinks ...Sink) Option {
	return func(d *Dispatcher) {
		d.sinks = append(d.sinks, sinks...)
	}
}

type outbox struct {
	conn   realtime.Connection
	sender Sender
	pump   *pump.Pump[wire.Envelope]
}

type Dispatcher struct {
	resolver   Resolver
	presence   Presence
	sinks      []Sink
	outboxSize int
	logger     *slog.Logger

	mu       sync.RWMutex
	outboxes map[realtime.ConnectionID]*outbox
}

func New(resolver Resolver, presence Presence, logger *slog.Logger, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		resolver:   resolver,
		presence:   presence,
		outboxSize: DefaultOutboxSize,
		logger:     logger.With("component", "dispatcher"),
		outboxes:   make(map[realtime.ConnectionID]*outbox),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Attach starts the outbox for conn. Frames are written by sender on a dedicated
// goroutine until Detach or until ctx is done. Re-attaching an id replaces the old outbox.
func (d *Dispatcher) Attach(ctx context.Context, conn realtime.Connection, sender Sender) {
	logger := d.logger.With("connection_id", conn.ID, "role", conn.Role)
	ob := &outbox{
		conn:   conn,
		sender: sender,
		pump: pump.New(d.outboxSize, func(ctx context.Context, env wire.Envelope) {
			if err := sender.Send(ctx, env); err != nil {
				logger.WarnContext(ctx, "send failed, frame dropped", "type", env.Type, "event_id", env.EventID, "error", err)
			}
		}),
	}
	ob.pump.Start(ctx)

	d.mu.Lock()
	prev := d.outboxes[conn.ID]
	d.outboxes[conn.ID] = ob
	d.mu.Unlock()

	if prev != nil {
		prev.pump.Close()
	}
}

// Detach stops accepting frames for the connection. Already queued frames are still written.
func (d *Dispatcher) Detach(id realtime.ConnectionID) bool {
	d.mu.Lock()
	ob, ok := d.outboxes[id]
	delete(d.outboxes, id)
	d.mu.Unlock()

	if ok {
		ob.pump.Close()
	}
	return ok
}

// Connection returns the attached connection with this id.
func (d *Dispatcher) Connection(id realtime.ConnectionID) (realtime.Connection, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	ob, ok := d.outboxes[id]
	if !ok {
		return realtime.Connection{}, false
	}
	return ob.conn, true
}

// Len is the number of attached connections.
func (d *Dispatcher) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.outboxes)
}

// Send queues a frame for a single connection (control replies).
func (d *Dispatcher) Send(ctx context.Context, id realtime.ConnectionID, env wire.Envelope) bool {
	ob := d.lookup(id)
	if ob == nil {
		return false
	}
	if !ob.pump.Offer(env) {
		d.evict(ctx, id, ob)
		return false
	}
	return true
}

// Publish routes each event to its topics and queues one frame per matching
// connection. A connection reached through several topics gets the event once.
func (d *Dispatcher) Publish(ctx context.Context, events ...order.DomainEvent) {
	for _, e := range events {
		d.publish(ctx, e)
		for _, sink := range d.sinks {
			sink.Publish(ctx, e)
		}
	}
}

func (d *Dispatcher) publish(ctx context.Context, e order.DomainEvent) {
	eventID := wire.NewEventID()
	seen := make(map[realtime.ConnectionID]struct{})
	queued := 0

	for _, r := range route(e) {
		for _, id := range d.resolver.Resolve(r.topic) {
			if _, dup := seen[id]; dup {
				continue
			}
			ob := d.lookup(id)
			if ob == nil {
				continue
			}
			if r.onlineRidersOnly && !d.reachableRider(ob.conn) {
				continue
			}
			seen[id] = struct{}{}

			env := wire.Envelope{
				EventID:    eventID,
				Type:       r.frameType,
				Topic:      r.topic.String(),
				OccurredAt: e.OccurredAt(),
				Payload:    r.payload,
			}
			if !ob.pump.Offer(env) {
				d.evict(ctx, id, ob)
				continue
			}
			queued++
		}
	}

	d.logger.DebugContext(ctx, "event dispatched",
		"event", e.EventName(), "order_id", e.AggregateID(), "event_id", eventID, "connections", queued)
}

func (d *Dispatcher) reachableRider(conn realtime.Connection) bool {
	return conn.Role == order.RoleRider && d.presence.IsOnline(conn.UserID)
}

func (d *Dispatcher) lookup(id realtime.ConnectionID) *outbox {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.outboxes[id]
}

func (d *Dispatcher) evict(ctx context.Context, id realtime.ConnectionID, ob *outbox) {
	d.mu.Lock()
	current, ok := d.outboxes[id]
	if ok && current == ob {
		delete(d.outboxes, id)
	}
	d.mu.Unlock()
	if !ok || current != ob {
		return
	}

	ob.pump.Close()
	d.logger.WarnContext(ctx, "outbox full, connection evicted", "connection_id", id, "role", ob.conn.Role)
	go func() {
		if err := ob.sender.Close(); err != nil {
			d.logger.DebugContext(ctx, "close evicted connection", "connection_id", id, "error", err)
		}
	}()
}
