// Package keylock provides mutual exclusion scoped to a key. Holders of
// different keys never block each other; holders of the same key are serialized.
package keylock

import (
	"context"
	"sync"
)

// Locker hands out exclusive sections per key. Slots are created on first use
// and released once nobody holds or waits for them, so the map stays bounded
// by the number of keys currently in contention.
type Locker[K comparable] struct {
	mu    sync.Mutex
	slots map[K]*slot
}

type slot struct {
	sem  chan struct{}
	refs int
}

// New creates an empty Locker.
func New[K comparable]() *Locker[K] {
	return &Locker[K]{slots: make(map[K]*slot)}
}

// Lock blocks until the section for key is free or ctx is done.
// The returned unlock func is idempotent.
//
// Example:
//
//	unlock, err := locks.Lock(ctx, orderID)
//	if err != nil {
//	    return err
//	}
//	defer unlock()
func (l *Locker[K]) Lock(ctx context.Context, key K) (func(), error) {
	s := l.retain(key)

	select {
	case s.sem <- struct{}{}:
	case <-ctx.Done():
		l.release(key, s)
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-s.sem
			l.release(key, s)
		})
	}, nil
}

// Len reports how many keys currently have a holder or waiter.
func (l *Locker[K]) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.slots)
}

func (l *Locker[K]) retain(key K) *slot {
	l.mu.Lock()
	defer l.mu.Unlock()

	s, ok := l.slots[key]
	if !ok {
		s = &slot{sem: make(chan struct{}, 1)}
		l.slots[key] = s
	}
	s.refs++
	return s
}

func (l *Locker[K]) release(key K, s *slot) {
	l.mu.Lock()
	defer l.mu.Unlock()

	s.refs--
	if s.refs == 0 {
		delete(l.slots, key)
	}
}
