package pump_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"orderflow/internal/pkg/pump"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPump_PreservesOrder(t *testing.T) {
	var mu sync.Mutex
	var got []int

	p := pump.New(100, func(_ context.Context, v int) {
		mu.Lock()
		got = append(got, v)
		mu.Unlock()
	})
	p.Start(t.Context())

	for i := range 100 {
		require.True(t, p.Offer(i))
	}
	p.Close()
	p.Wait()

	want := make([]int, 100)
	for i := range want {
		want[i] = i
	}
	assert.Equal(t, want, got)
}

func TestPump_OfferNeverBlocksWhenFull(t *testing.T) {
	release := make(chan struct{})
	p := pump.New(2, func(_ context.Context, _ int) {
		<-release
	})
	p.Start(t.Context())

	require.True(t, p.Offer(1))
	require.Eventually(t, func() bool { return p.Len() == 0 }, time.Second, time.Millisecond)

	require.True(t, p.Offer(2))
	require.True(t, p.Offer(3))
	assert.False(t, p.Offer(4))

	close(release)
	p.Close()
	p.Wait()
}

func TestPump_OfferAfterCloseIsRejected(t *testing.T) {
	p := pump.New(1, func(_ context.Context, _ string) {})
	p.Start(t.Context())
	p.Close()
	p.Close()

	assert.False(t, p.Offer("late"))
	p.Wait()
}

func TestPump_ContextCancelDrainsQueue(t *testing.T) {
	ctx, cancel := context.WithCancel(t.Context())
	gate := make(chan struct{})

	var mu sync.Mutex
	handled := 0
	p := pump.New(10, func(_ context.Context, _ int) {
		<-gate
		mu.Lock()
		handled++
		mu.Unlock()
	})
	p.Start(ctx)

	for i := range 5 {
		require.True(t, p.Offer(i))
	}
	cancel()
	close(gate)
	p.Wait()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 5, handled)
}
