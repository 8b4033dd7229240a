package keylock_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"orderflow/internal/pkg/keylock"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocker_SerializesSameKey(t *testing.T) {
	locks := keylock.New[string]()

	var inside, maxInside atomic.Int32
	var wg sync.WaitGroup
	for range 64 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock, err := locks.Lock(t.Context(), "order-1")
			if !assert.NoError(t, err) {
				return
			}
			defer unlock()

			n := inside.Add(1)
			for {
				m := maxInside.Load()
				if n <= m || maxInside.CompareAndSwap(m, n) {
					break
				}
			}
			time.Sleep(100 * time.Microsecond)
			inside.Add(-1)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), maxInside.Load())
	assert.Equal(t, 0, locks.Len())
}

func TestLocker_DifferentKeysDoNotBlock(t *testing.T) {
	locks := keylock.New[int]()

	unlockA, err := locks.Lock(t.Context(), 1)
	require.NoError(t, err)
	defer unlockA()

	ctx, cancel := context.WithTimeout(t.Context(), time.Second)
	defer cancel()

	unlockB, err := locks.Lock(ctx, 2)
	require.NoError(t, err)
	unlockB()
}

func TestLocker_ContextCancelWhileWaiting(t *testing.T) {
	locks := keylock.New[string]()

	unlock, err := locks.Lock(t.Context(), "k")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(t.Context(), 20*time.Millisecond)
	defer cancel()

	_, err = locks.Lock(ctx, "k")
	require.ErrorIs(t, err, context.DeadlineExceeded)

	unlock()
	assert.Equal(t, 0, locks.Len())
}

func TestLocker_UnlockIsIdempotent(t *testing.T) {
	locks := keylock.New[string]()

	unlock, err := locks.Lock(t.Context(), "k")
	require.NoError(t, err)
	unlock()
	unlock()

	unlock2, err := locks.Lock(t.Context(), "k")
	require.NoError(t, err)
	unlock2()
	assert.Equal(t, 0, locks.Len())
}
