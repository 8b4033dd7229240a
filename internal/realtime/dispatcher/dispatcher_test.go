package dispatcher_test

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/realtime"
	"orderflow/internal/realtime/dispatcher"
	"orderflow/internal/realtime/presence"
	"orderflow/internal/realtime/subscription"
	"orderflow/internal/realtime/wire"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSender struct {
	mu     sync.Mutex
	frames []wire.Envelope
	closed bool
	block  chan struct{}
	busy   chan struct{}
}

func newSender() *recordingSender {
	return &recordingSender{}
}

func newBlockingSender() *recordingSender {
	return &recordingSender{block: make(chan struct{}), busy: make(chan struct{}, 1)}
}

func (s *recordingSender) Send(_ context.Context, env wire.Envelope) error {
	if s.block != nil {
		select {
		case s.busy <- struct{}{}:
		default:
		}
		<-s.block
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.frames = append(s.frames, env)
	return nil
}

func (s *recordingSender) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *recordingSender) Frames() []wire.Envelope {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]wire.Envelope(nil), s.frames...)
}

func (s *recordingSender) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

type recordingSink struct {
	mu     sync.Mutex
	events []order.DomainEvent
}

func (s *recordingSink) Name() string { return "recording" }

func (s *recordingSink) Publish(_ context.Context, e order.DomainEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, e)
}

type fixture struct {
	ctx        context.Context
	registry   *subscription.Registry
	tracker    *presence.Tracker
	dispatcher *dispatcher.Dispatcher
	sink       *recordingSink
}

func newFixture(t *testing.T, opts ...dispatcher.Option) *fixture {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	registry := subscription.NewRegistry()
	tracker := presence.NewTracker(registry, logger)
	sink := &recordingSink{}
	opts = append(opts, dispatcher.WithSinks(sink))

	return &fixture{
		ctx:        ctx,
		registry:   registry,
		tracker:    tracker,
		dispatcher: dispatcher.New(registry, tracker, logger, opts...),
		sink:       sink,
	}
}

func (f *fixture) attach(role order.Role, user kernel.UUID, sender dispatcher.Sender) realtime.Connection {
	conn := realtime.Connection{ID: realtime.NewConnectionID(), UserID: user, Role: role}
	f.dispatcher.Attach(f.ctx, conn, sender)
	return conn
}

func summary(id kernel.UUID, status order.Status) order.Summary {
	return order.Summary{
		ID:           id,
		RestaurantID: kernel.NewUUID(),
		CustomerID:   kernel.NewUUID(),
		Status:       status,
		Version:      3,
	}
}

func waitFrames(t *testing.T, s *recordingSender, n int) []wire.Envelope {
	t.Helper()
	require.Eventually(t, func() bool { return len(s.Frames()) >= n }, time.Second, 5*time.Millisecond)
	return s.Frames()
}

func TestDispatcher_StatusChangedReachesPartiesAndAdmins(t *testing.T) {
	f := newFixture(t)
	orderID := kernel.NewUUID()
	now := time.Now().UTC()

	customer, admin, stranger := newSender(), newSender(), newSender()
	customerConn := f.attach(order.RoleCustomer, kernel.NewUUID(), customer)
	adminConn := f.attach(order.RoleAdmin, kernel.NewUUID(), admin)
	f.attach(order.RoleCustomer, kernel.NewUUID(), stranger)

	f.registry.Subscribe(realtime.OrderTopic(orderID), customerConn.ID)
	f.registry.Subscribe(realtime.TopicAdminAll, adminConn.ID)
	f.registry.Subscribe(realtime.OrderTopic(orderID), adminConn.ID)

	f.dispatcher.Publish(f.ctx, order.StatusChanged{
		Order: summary(orderID, order.Confirmed),
		From:  order.Pending,
		To:    order.Confirmed,
		Actor: order.Actor{Role: order.RoleRestaurant, ID: kernel.NewUUID()},
		At:    now,
	})

	got := waitFrames(t, customer, 1)
	require.Len(t, got, 1)
	assert.Equal(t, wire.TypeOrderStatusChanged, got[0].Type)
	payload, ok := got[0].Payload.(wire.StatusChangedPayload)
	require.True(t, ok)
	assert.Equal(t, order.Pending, payload.OldStatus)
	assert.Equal(t, order.Confirmed, payload.NewStatus)

	adminFrames := waitFrames(t, admin, 1)
	time.Sleep(20 * time.Millisecond)
	adminFrames = admin.Frames()
	require.Len(t, adminFrames, 1, "a connection on several matching topics receives the event once")
	assert.Equal(t, wire.TypeOrderStatusChanged, adminFrames[0].Type)
	assert.Equal(t, got[0].EventID, adminFrames[0].EventID)

	assert.Empty(t, stranger.Frames())
}

func TestDispatcher_AvailableOnlyToOnlineRiders(t *testing.T) {
	f := newFixture(t)
	orderID := kernel.NewUUID()

	active, paused, offline := newSender(), newSender(), newSender()
	activeRider, pausedRider, offlineRider := kernel.NewUUID(), kernel.NewUUID(), kernel.NewUUID()

	activeConn := f.attach(order.RoleRider, activeRider, active)
	pausedConn := f.attach(order.RoleRider, pausedRider, paused)
	offlineConn := f.attach(order.RoleRider, offlineRider, offline)

	f.tracker.MarkOnline(activeRider, activeConn.ID)
	f.tracker.MarkOnline(pausedRider, pausedConn.ID)
	f.tracker.SetAvailable(pausedRider, false)
	for _, id := range []realtime.ConnectionID{activeConn.ID, pausedConn.ID, offlineConn.ID} {
		f.registry.Subscribe(realtime.TopicRidersAvailable, id)
	}

	expires := time.Now().Add(time.Minute)
	f.dispatcher.Publish(f.ctx, order.OrderAvailable{
		Order:     summary(orderID, order.Available),
		ExpiresAt: expires,
		Attempt:   1,
		At:        time.Now(),
	})

	got := waitFrames(t, active, 1)
	assert.Equal(t, wire.TypeOrderAvailable, got[0].Type)
	assert.Equal(t, realtime.TopicRidersAvailable.String(), got[0].Topic)

	time.Sleep(20 * time.Millisecond)
	assert.Empty(t, paused.Frames())
	assert.Empty(t, offline.Frames())
}

func TestDispatcher_ClaimRetractsOfferAndNotifiesParties(t *testing.T) {
	f := newFixture(t)
	orderID := kernel.NewUUID()
	winner := kernel.NewUUID()

	rider, customer := newSender(), newSender()
	riderConn := f.attach(order.RoleRider, kernel.NewUUID(), rider)
	customerConn := f.attach(order.RoleCustomer, kernel.NewUUID(), customer)
	f.registry.Subscribe(realtime.TopicRidersAvailable, riderConn.ID)
	f.registry.Subscribe(realtime.OrderTopic(orderID), customerConn.ID)

	s := summary(orderID, order.Accepted)
	s.CourierID = &winner
	f.dispatcher.Publish(f.ctx, order.OrderClaimed{Order: s, CourierID: winner, At: time.Now()})

	for _, sender := range []*recordingSender{rider, customer} {
		got := waitFrames(t, sender, 1)
		assert.Equal(t, wire.TypeOrderTaken, got[0].Type)
		payload, ok := got[0].Payload.(wire.OrderTakenPayload)
		require.True(t, ok)
		assert.Equal(t, "claimed", payload.Reason)
		assert.True(t, payload.OrderID.IsEqual(orderID))
	}
}

func TestDispatcher_PreservesCommitOrderPerConnection(t *testing.T) {
	f := newFixture(t)
	orderID := kernel.NewUUID()

	customer := newSender()
	conn := f.attach(order.RoleCustomer, kernel.NewUUID(), customer)
	f.registry.Subscribe(realtime.OrderTopic(orderID), conn.ID)

	path := []order.Status{
		order.Pending, order.Confirmed, order.Preparing, order.Available,
		order.Accepted, order.PickedUp, order.InTransit, order.Delivered,
	}
	for i := 1; i < len(path); i++ {
		s := summary(orderID, path[i])
		s.Version = i + 1
		f.dispatcher.Publish(f.ctx, order.StatusChanged{Order: s, From: path[i-1], To: path[i], At: time.Now()})
	}

	got := waitFrames(t, customer, len(path)-1)
	for i, env := range got {
		payload, ok := env.Payload.(wire.StatusChangedPayload)
		require.True(t, ok)
		assert.Equal(t, path[i+1], payload.NewStatus)
		assert.Equal(t, i+2, payload.Version)
	}
}

func TestDispatcher_EvictsSlowConsumer(t *testing.T) {
	f := newFixture(t, dispatcher.WithOutboxSize(1))
	orderID := kernel.NewUUID()

	slow, fast := newBlockingSender(), newSender()
	slowConn := f.attach(order.RoleAdmin, kernel.NewUUID(), slow)
	fastConn := f.attach(order.RoleAdmin, kernel.NewUUID(), fast)
	f.registry.Subscribe(realtime.TopicAdminAll, slowConn.ID)
	f.registry.Subscribe(realtime.TopicAdminAll, fastConn.ID)

	placed := func() order.DomainEvent {
		return order.OrderPlaced{Order: summary(orderID, order.Pending), At: time.Now()}
	}

	f.dispatcher.Publish(f.ctx, placed())
	<-slow.busy
	waitFrames(t, fast, 1)

	f.dispatcher.Publish(f.ctx, placed())
	waitFrames(t, fast, 2)
	f.dispatcher.Publish(f.ctx, placed())
	waitFrames(t, fast, 3)

	_, attached := f.dispatcher.Connection(slowConn.ID)
	assert.False(t, attached)
	require.Eventually(t, slow.Closed, time.Second, 5*time.Millisecond)

	_, attached = f.dispatcher.Connection(fastConn.ID)
	assert.True(t, attached)
	close(slow.block)
}

func TestDispatcher_NoReplayForLateSubscribers(t *testing.T) {
	f := newFixture(t)
	orderID := kernel.NewUUID()

	f.dispatcher.Publish(f.ctx, order.OrderPlaced{Order: summary(orderID, order.Pending), At: time.Now()})

	late := newSender()
	conn := f.attach(order.RoleAdmin, kernel.NewUUID(), late)
	f.registry.Subscribe(realtime.TopicAdminAll, conn.ID)

	time.Sleep(20 * time.Millisecond)
	assert.Empty(t, late.Frames())

	f.dispatcher.Publish(f.ctx, order.OrderPlaced{Order: summary(orderID, order.Pending), At: time.Now()})
	waitFrames(t, late, 1)
}

func TestDispatcher_DetachAndSinks(t *testing.T) {
	f := newFixture(t)
	orderID := kernel.NewUUID()

	sender := newSender()
	conn := f.attach(order.RoleAdmin, kernel.NewUUID(), sender)
	f.registry.Subscribe(realtime.TopicAdminAll, conn.ID)
	assert.Equal(t, 1, f.dispatcher.Len())

	assert.True(t, f.dispatcher.Detach(conn.ID))
	assert.False(t, f.dispatcher.Detach(conn.ID))
	assert.Zero(t, f.dispatcher.Len())
	assert.False(t, f.dispatcher.Send(f.ctx, conn.ID, wire.Control(wire.TypeError, "", "x", time.Now())))

	f.dispatcher.Publish(f.ctx,
		order.OrderPlaced{Order: summary(orderID, order.Pending), At: time.Now()},
		order.OrderExpired{Order: summary(orderID, order.Expired), Attempt: 1, At: time.Now()},
	)

	time.Sleep(20 * time.Millisecond)
	assert.Empty(t, sender.Frames())

	f.sink.mu.Lock()
	defer f.sink.mu.Unlock()
	require.Len(t, f.sink.events, 2)
	assert.Equal(t, order.EventOrderPlaced, f.sink.events[0].EventName())
	assert.Equal(t, order.EventOrderExpired, f.sink.events[1].EventName())
}
