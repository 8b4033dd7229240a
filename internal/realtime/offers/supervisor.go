// Package offers owns the claim-window timers of orders on offer.
//
// Timers only signal; the bound ExpiryFunc re-reads the order inside its
// exclusive section and decides whether the window really closed.
package offers

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"orderflow/internal/core/domain/model/kernel"
)

// ExpiryFunc runs when an offer window elapses.
type ExpiryFunc func(ctx context.Context, orderID kernel.UUID)

type timer struct {
	t   *time.Timer
	gen uint64
}

// Supervisor keeps at most one live timer per order.
type Supervisor struct {
	ctx    context.Context
	logger *slog.Logger

	mu      sync.Mutex
	timers  map[kernel.UUID]timer
	gen     uint64
	expire  ExpiryFunc
	stopped bool
}

// NewSupervisor creates a supervisor. ctx is handed to expiry callbacks.
func NewSupervisor(ctx context.Context, logger *slog.Logger) *Supervisor {
	return &Supervisor{
		ctx:    ctx,
		logger: logger.With("component", "offers"),
		timers: make(map[kernel.UUID]timer),
	}
}

// Bind sets the callback invoked on expiry. Timers firing before Bind are dropped.
func (s *Supervisor) Bind(fn ExpiryFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.expire = fn
}

// StartOffer arms the window for orderID, replacing any running timer.
func (s *Supervisor) StartOffer(orderID kernel.UUID, d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return
	}
	if prev, ok := s.timers[orderID]; ok {
		prev.t.Stop()
	}
	if d < 0 {
		d = 0
	}

	s.gen++
	gen := s.gen
	s.timers[orderID] = timer{
		t:   time.AfterFunc(d, func() { s.fire(orderID, gen) }),
		gen: gen,
	}
	s.logger.Debug("offer armed", "order_id", orderID, "window", d)
}

// CancelOffer stops the timer for orderID, if any.
func (s *Supervisor) CancelOffer(orderID kernel.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t, ok := s.timers[orderID]; ok {
		t.t.Stop()
		delete(s.timers, orderID)
	}
}

// Active reports whether a timer is running for orderID.
func (s *Supervisor) Active(orderID kernel.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.timers[orderID]
	return ok
}

func (s *Supervisor) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

// Stop cancels every timer. Later StartOffer calls are ignored.
func (s *Supervisor) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopped = true
	for id, t := range s.timers {
		t.t.Stop()
		delete(s.timers, id)
	}
}

func (s *Supervisor) fire(orderID kernel.UUID, gen uint64) {
	s.mu.Lock()
	t, ok := s.timers[orderID]
	if !ok || t.gen != gen {
		// replaced or cancelled after the timer had already fired
		s.mu.Unlock()
		return
	}
	delete(s.timers, orderID)
	fn := s.expire
	s.mu.Unlock()

	if fn == nil {
		s.logger.Warn("offer expired with no handler bound", "order_id", orderID)
		return
	}
	fn(s.ctx, orderID)
}
