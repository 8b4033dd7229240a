// Package presence tracks which riders currently have a live connection and
// are accepting offers. It only decides who receives new offers; it never
// gates a claim.
package presence

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/realtime"
)

// SubscriptionRemover drops all subscriptions of a connection.
type SubscriptionRemover interface {
	RemoveConnection(conn realtime.ConnectionID) int
}

// Rider is a point-in-time view of one online rider.
type Rider struct {
	CourierID   kernel.UUID
	Connections int
	Available   bool
	OnlineSince time.Time
}

type rider struct {
	conns       map[realtime.ConnectionID]struct{}
	paused      bool
	onlineSince time.Time
}

// Tracker is safe for concurrent use and never takes order locks.
type Tracker struct {
	mu     sync.RWMutex
	riders map[kernel.UUID]*rider
	owner  map[realtime.ConnectionID]kernel.UUID

	subscriptions SubscriptionRemover
	now           func() time.Time
	logger        *slog.Logger
}

func NewTracker(subscriptions SubscriptionRemover, logger *slog.Logger) *Tracker {
	return &Tracker{
		riders:        make(map[kernel.UUID]*rider),
		owner:         make(map[realtime.ConnectionID]kernel.UUID),
		subscriptions: subscriptions,
		now:           time.Now,
		logger:        logger.With("component", "presence"),
	}
}

// MarkOnline binds a connection to a courier. A courier may hold several connections.
func (t *Tracker) MarkOnline(courierID kernel.UUID, conn realtime.ConnectionID) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if prev, ok := t.owner[conn]; ok && !prev.IsEqual(courierID) {
		t.unbind(prev, conn)
	}

	r, ok := t.riders[courierID]
	if !ok {
		r = &rider{conns: make(map[realtime.ConnectionID]struct{}), onlineSince: t.now()}
		t.riders[courierID] = r
	}
	r.conns[conn] = struct{}{}
	t.owner[conn] = courierID
}

// MarkOffline forgets the connection and removes every subscription it held,
// whether or not it belonged to a rider.
func (t *Tracker) MarkOffline(conn realtime.ConnectionID) {
	t.mu.Lock()
	if courierID, ok := t.owner[conn]; ok {
		t.unbind(courierID, conn)
	}
	t.mu.Unlock()

	if n := t.subscriptions.RemoveConnection(conn); n > 0 {
		t.logger.DebugContext(context.Background(), "subscriptions removed", "connection_id", conn, "count", n)
	}
}

// IsOnline is true when the courier has a live connection and has not paused offers.
func (t *Tracker) IsOnline(courierID kernel.UUID) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()

	r, ok := t.riders[courierID]
	return ok && len(r.conns) > 0 && !r.paused
}

// SetAvailable lets a connected rider pause or resume offers without disconnecting.
// It reports false when the courier has no live connection.
func (t *Tracker) SetAvailable(courierID kernel.UUID, available bool) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	r, ok := t.riders[courierID]
	if !ok {
		return false
	}
	r.paused = !available
	return true
}

// OnlineRiders lists connected riders, longest online first.
func (t *Tracker) OnlineRiders() []Rider {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]Rider, 0, len(t.riders))
	for id, r := range t.riders {
		out = append(out, Rider{
			CourierID:   id,
			Connections: len(r.conns),
			Available:   !r.paused,
			OnlineSince: r.onlineSince,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].OnlineSince.Equal(out[j].OnlineSince) {
			return out[i].CourierID.String() < out[j].CourierID.String()
		}
		return out[i].OnlineSince.Before(out[j].OnlineSince)
	})
	return out
}

func (t *Tracker) unbind(courierID kernel.UUID, conn realtime.ConnectionID) {
	delete(t.owner, conn)
	r, ok := t.riders[courierID]
	if !ok {
		return
	}
	delete(r.conns, conn)
	if len(r.conns) == 0 {
		delete(t.riders, courierID)
	}
}
