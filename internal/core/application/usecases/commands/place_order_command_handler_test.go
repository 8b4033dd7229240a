package commands_test

import (
	"context"
	"errors"
	"testing"

	"orderflow/internal/core/application/usecases/commands"
	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/core/ports"
	"orderflow/internal/pkg/keylock"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockOrderRepository struct{ mock.Mock }

func (m *MockOrderRepository) Add(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}
func (m *MockOrderRepository) Update(_ context.Context, _ *order.Order) error { return nil }
func (m *MockOrderRepository) Get(_ context.Context, _ kernel.UUID) (*order.Order, error) {
	return nil, errors.New("not implemented in mock")
}
func (m *MockOrderRepository) ListByStatus(_ context.Context, _ order.Status) ([]*order.Order, error) {
	return nil, errors.New("not implemented in mock")
}
func (m *MockOrderRepository) ListActive(_ context.Context, _ ports.ActiveOrderFilter) ([]*order.Order, error) {
	return nil, errors.New("not implemented in mock")
}

type MockOrderUoW struct{ mock.Mock }

func (m *MockOrderUoW) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
func (m *MockOrderUoW) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
func (m *MockOrderUoW) Rollback(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockOrderUoW) OrderRepository() ports.OrderRepository {
	args := m.Called()
	return args.Get(0).(ports.OrderRepository)
}

type MockOrderUoWFactory struct{ mock.Mock }

func (m *MockOrderUoWFactory) Create() commands.OrderUoW {
	args := m.Called()
	return args.Get(0).(commands.OrderUoW)
}

func newPlaceHandler(factory commands.OrderUoWFactory, publisher *recordingPublisher) commands.PlaceOrderCommandHandler {
	section := commands.NewOrderSection(
		factory, keylock.New[kernel.UUID](), newFakeScheduler(), publisher, newFakeClock(), discard,
	)
	return commands.NewPlaceOrderCommandHandler(section)
}

func newPlaceCommand(t *testing.T) commands.PlaceOrderCommand {
	t.Helper()
	location, err := kernel.NewLocation(40.4168, -3.7038)
	require.NoError(t, err)
	cmd, err := commands.NewPlaceOrderCommand(kernel.NewUUID(), kernel.NewUUID(), kernel.NewUUID(), location, 1200)
	require.NoError(t, err)
	return cmd
}

func TestPlaceOrderCommandHandler_Handle_Success(t *testing.T) {
	ctx := t.Context()
	cmd := newPlaceCommand(t)

	repo := new(MockOrderRepository)
	uow := new(MockOrderUoW)
	mock.InOrder(
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.On("OrderRepository").Return(repo).Once(),
		repo.On("Add", mock.Anything, mock.AnythingOfType("*order.Order")).Return(nil).Once(),
		uow.On("Commit", ctx).Return(nil).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	factory := new(MockOrderUoWFactory)
	factory.On("Create").Return(uow).Once()

	publisher := &recordingPublisher{}
	h := newPlaceHandler(factory, publisher)
	summary, err := h.Handle(ctx, cmd)
	require.NoError(t, err)

	assert.True(t, summary.ID.IsEqual(cmd.OrderID()))
	assert.Equal(t, order.Pending, summary.Status)
	assert.Equal(t, []string{order.EventOrderPlaced}, publisher.Names())
	repo.AssertExpectations(t)
	uow.AssertExpectations(t)
	factory.AssertExpectations(t)
}

func TestPlaceOrderCommandHandler_Handle_ValidationError(t *testing.T) {
	ctx := t.Context()
	cmd := commands.PlaceOrderCommand{} // not constructed properly
	factory := new(MockOrderUoWFactory)
	h := newPlaceHandler(factory, &recordingPublisher{})

	_, err := h.Handle(ctx, cmd)
	require.ErrorIs(t, err, commands.ErrPlaceOrderCommandIsNotConstructed)
	factory.AssertNotCalled(t, "Create")
}

func TestPlaceOrderCommandHandler_Handle_BeginError(t *testing.T) {
	ctx := t.Context()
	cmd := newPlaceCommand(t)

	uow := new(MockOrderUoW)
	factory := new(MockOrderUoWFactory)
	mock.InOrder(
		factory.On("Create").Return(uow).Once(),
		uow.On("Begin", ctx).Return(errors.New("begin error")).Once(),
	)

	publisher := &recordingPublisher{}
	h := newPlaceHandler(factory, publisher)
	_, err := h.Handle(ctx, cmd)
	require.Error(t, err)
	assert.Empty(t, publisher.Names())
}

func TestPlaceOrderCommandHandler_Handle_AddError(t *testing.T) {
	ctx := t.Context()
	cmd := newPlaceCommand(t)

	repo := new(MockOrderRepository)
	uow := new(MockOrderUoW)
	mock.InOrder(
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.On("OrderRepository").Return(repo).Once(),
		repo.On("Add", mock.Anything, mock.AnythingOfType("*order.Order")).Return(ports.ErrOrderAlreadyExists).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	factory := new(MockOrderUoWFactory)
	factory.On("Create").Return(uow).Once()

	publisher := &recordingPublisher{}
	h := newPlaceHandler(factory, publisher)
	_, err := h.Handle(ctx, cmd)
	require.ErrorIs(t, err, ports.ErrOrderAlreadyExists)
	assert.Empty(t, publisher.Names())
	repo.AssertExpectations(t)
	uow.AssertExpectations(t)
}

func TestPlaceOrderCommandHandler_Handle_CommitError(t *testing.T) {
	ctx := t.Context()
	cmd := newPlaceCommand(t)

	repo := new(MockOrderRepository)
	uow := new(MockOrderUoW)
	mock.InOrder(
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.On("OrderRepository").Return(repo).Once(),
		repo.On("Add", mock.Anything, mock.AnythingOfType("*order.Order")).Return(nil).Once(),
		uow.On("Commit", ctx).Return(errors.New("commit error")).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	factory := new(MockOrderUoWFactory)
	factory.On("Create").Return(uow).Once()

	publisher := &recordingPublisher{}
	h := newPlaceHandler(factory, publisher)
	_, err := h.Handle(ctx, cmd)
	require.Error(t, err)
	assert.Empty(t, publisher.Names(), "nothing is published for an uncommitted order")
	uow.AssertExpectations(t)
}

func TestPlaceOrderCommandHandler_DuplicateID(t *testing.T) {
	h := newHarness(commands.DefaultOfferPolicy())
	p := h.placeOrder(t)

	location, err := kernel.NewLocation(1, 1)
	require.NoError(t, err)
	cmd, err := commands.NewPlaceOrderCommand(p.id, kernel.NewUUID(), kernel.NewUUID(), location, 10)
	require.NoError(t, err)

	_, err = h.place.Handle(t.Context(), cmd)
	require.ErrorIs(t, err, ports.ErrOrderAlreadyExists)
	assert.Equal(t, p.customer.ID, h.load(t, p.id).CustomerID(), "the original order is untouched")
}
