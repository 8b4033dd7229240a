// Package pump runs a single consumer goroutine over a bounded inbox.
// Producers never block: Offer reports false when the inbox is full or closed.
package pump

import (
	"context"
	"sync"
)

// Handler consumes one item. It runs on the pump goroutine only, so items
// are handled strictly in the order they were accepted.
type Handler[T any] func(ctx context.Context, item T)

// Pump is a bounded FIFO with one consumer.
type Pump[T any] struct {
	inbox  chan T
	handle Handler[T]

	mu     sync.RWMutex
	closed bool

	startOnce sync.Once
	done      chan struct{}
}

// New creates a pump with room for size pending items (at least 1).
func New[T any](size int, handle Handler[T]) *Pump[T] {
	if size <= 0 {
		size = 1
	}
	return &Pump[T]{
		inbox:  make(chan T, size),
		handle: handle,
		done:   make(chan struct{}),
	}
}

// Start launches the consumer. When ctx is cancelled the pump stops accepting
// items, drains what is already queued and exits.
func (p *Pump[T]) Start(ctx context.Context) {
	p.startOnce.Do(func() {
		go p.run(ctx)
	})
}

func (p *Pump[T]) run(ctx context.Context) {
	defer close(p.done)
	for {
		select {
		case <-ctx.Done():
			p.Close()
			drainCtx := context.WithoutCancel(ctx)
			for item := range p.inbox {
				p.handle(drainCtx, item)
			}
			return
		case item, ok := <-p.inbox:
			if !ok {
				return
			}
			p.handle(ctx, item)
		}
	}
}

// Offer enqueues item without blocking.
func (p *Pump[T]) Offer(item T) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return false
	}
	select {
	case p.inbox <- item:
		return true
	default:
		return false
	}
}

// Close stops accepting items. Queued items are still handled.
func (p *Pump[T]) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return
	}
	p.closed = true
	close(p.inbox)
}

// Done is closed once the consumer goroutine has exited.
func (p *Pump[T]) Done() <-chan struct{} {
	return p.done
}

// Wait blocks until the consumer has exited.
func (p *Pump[T]) Wait() {
	<-p.done
}

// Len is the number of queued, not yet handled items.
func (p *Pump[T]) Len() int {
	return len(p.inbox)
}
