package commands_test

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"orderflow/internal/adapters/out/memory"
	"orderflow/internal/core/application/usecases/commands"
	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/pkg/keylock"

	"github.com/stretchr/testify/require"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type fakeScheduler struct {
	mu    sync.Mutex
	armed map[kernel.UUID]time.Duration
}

func newFakeScheduler() *fakeScheduler {
	return &fakeScheduler{armed: make(map[kernel.UUID]time.Duration)}
}

func (s *fakeScheduler) StartOffer(id kernel.UUID, d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.armed[id] = d
}

func (s *fakeScheduler) CancelOffer(id kernel.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.armed, id)
}

func (s *fakeScheduler) Active(id kernel.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.armed[id]
	return ok
}

func (s *fakeScheduler) Window(id kernel.UUID) (time.Duration, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.armed[id]
	return d, ok
}

func (s *fakeScheduler) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.armed = make(map[kernel.UUID]time.Duration)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []order.DomainEvent
}

func (p *recordingPublisher) Publish(_ context.Context, events ...order.DomainEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, events...)
}

func (p *recordingPublisher) Names() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	names := make([]string, 0, len(p.events))
	for _, e := range p.events {
		names = append(names, e.EventName())
	}
	return names
}

func (p *recordingPublisher) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = nil
}

type harness struct {
	uows      *memory.UnitOfWorkFactory
	clock     *fakeClock
	scheduler *fakeScheduler
	publisher *recordingPublisher
	policy    commands.OfferPolicy

	place     commands.PlaceOrderCommandHandler
	advance   commands.AdvanceStatusCommandHandler
	claim     commands.ClaimOrderCommandHandler
	expire    commands.ExpireOfferCommandHandler
	reconcile commands.ReconcileOffersCommandHandler
}

func newHarness(policy commands.OfferPolicy) *harness {
	h := &harness{
		uows:      memory.NewUnitOfWorkFactory(memory.NewStore()),
		clock:     newFakeClock(),
		scheduler: newFakeScheduler(),
		publisher: &recordingPublisher{},
		policy:    policy,
	}
	section := commands.NewOrderSection(h.uows, keylock.New[kernel.UUID](), h.scheduler, h.publisher, h.clock, discard)
	h.place = commands.NewPlaceOrderCommandHandler(section)
	h.advance = commands.NewAdvanceStatusCommandHandler(section, policy)
	h.claim = commands.NewClaimOrderCommandHandler(section, discard)
	h.expire = commands.NewExpireOfferCommandHandler(section, h.scheduler, policy, discard)
	h.reconcile = commands.NewReconcileOffersCommandHandler(h.uows, h.scheduler, h.clock, h.expire)
	return h
}

type placed struct {
	id         kernel.UUID
	restaurant order.Actor
	customer   order.Actor
}

func (h *harness) placeOrder(t *testing.T) placed {
	t.Helper()
	p := placed{
		id:         kernel.NewUUID(),
		restaurant: order.Actor{Role: order.RoleRestaurant, ID: kernel.NewUUID()},
		customer:   order.Actor{Role: order.RoleCustomer, ID: kernel.NewUUID()},
	}
	location, err := kernel.NewLocation(52.52, 13.405)
	require.NoError(t, err)

	cmd, err := commands.NewPlaceOrderCommand(p.id, p.restaurant.ID, p.customer.ID, location, 1850)
	require.NoError(t, err)
	_, err = h.place.Handle(t.Context(), cmd)
	require.NoError(t, err)
	return p
}

func (h *harness) step(t *testing.T, id kernel.UUID, to order.Status, actor order.Actor) order.Summary {
	t.Helper()
	cmd, err := commands.NewAdvanceStatusCommand(id, to, actor)
	require.NoError(t, err)
	summary, err := h.advance.Handle(t.Context(), cmd)
	require.NoError(t, err)
	return summary
}

// offered places an order and walks it to available.
func (h *harness) offered(t *testing.T) placed {
	t.Helper()
	p := h.placeOrder(t)
	for _, to := range []order.Status{order.Confirmed, order.Preparing, order.Available} {
		h.step(t, p.id, to, p.restaurant)
	}
	return p
}

func (h *harness) load(t *testing.T, id kernel.UUID) *order.Order {
	t.Helper()
	o, err := h.uows.Create().OrderRepository().Get(t.Context(), id)
	require.NoError(t, err)
	return o
}
