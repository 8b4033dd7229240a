package commands_test

import (
	"testing"
	"time"

	"orderflow/internal/core/application/usecases/commands"
	"orderflow/internal/core/domain/model/order"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReconcileOffersCommandHandler_Handle(t *testing.T) {
	h := newHarness(commands.OfferPolicy{Window: time.Minute})

	overdue := h.offered(t)
	h.clock.Advance(45 * time.Second)
	fresh := h.offered(t)
	kitchen := h.placeOrder(t)

	// timers are lost, as after a restart
	h.scheduler.Reset()
	h.clock.Advance(30 * time.Second)

	result, err := h.reconcile.Handle(t.Context(), commands.NewReconcileOffersCommand())
	require.NoError(t, err)
	assert.Equal(t, commands.ReconcileResult{Expired: 1, Rearmed: 1}, result)

	assert.Equal(t, order.Cancelled, h.load(t, overdue.id).Status())
	window, armed := h.scheduler.Window(fresh.id)
	require.True(t, armed)
	assert.Equal(t, 30*time.Second, window)
	assert.False(t, h.scheduler.Active(kitchen.id))

	result, err = h.reconcile.Handle(t.Context(), commands.NewReconcileOffersCommand())
	require.NoError(t, err)
	assert.Equal(t, commands.ReconcileResult{}, result, "a second sweep finds nothing to do")
}

func TestReconcileOffersCommandHandler_RequiresConstructor(t *testing.T) {
	h := newHarness(commands.DefaultOfferPolicy())
	_, err := h.reconcile.Handle(t.Context(), commands.ReconcileOffersCommand{})
	require.ErrorIs(t, err, commands.ErrReconcileOffersCommandIsNotConstructed)
}
