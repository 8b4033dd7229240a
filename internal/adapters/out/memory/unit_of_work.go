// Package memory is the in-process Order Ledger. It keeps snapshots in a map and
// stages writes per unit of work, so a failed transition never leaks partial state.
//
// Usage mirrors the SQL ledger:
//
//	store := memory.NewStore()
//	factory := memory.NewUnitOfWorkFactory(store)
//
//	uow := factory.Create()
//	if err := uow.Begin(ctx); err != nil {
//	    return err
//	}
//	defer func() { _ = uow.Rollback(ctx) }()
//
//	if err := uow.OrderRepository().Update(ctx, o); err != nil {
//	    return err
//	}
//	return uow.Commit(ctx)
package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/core/ports"
	"orderflow/internal/pkg/errs"
)

var ErrNoActiveTransaction = errors.New("no active transaction")

// Store holds committed order snapshots.
type Store struct {
	mu     sync.RWMutex
	orders map[kernel.UUID]order.Snapshot
}

func NewStore() *Store {
	return &Store{orders: make(map[kernel.UUID]order.Snapshot)}
}

// Len is the number of stored orders.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.orders)
}

func (s *Store) get(id kernel.UUID) (order.Snapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap, ok := s.orders[id]
	return snap, ok
}

func (s *Store) all() []order.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]order.Snapshot, 0, len(s.orders))
	for _, snap := range s.orders {
		out = append(out, snap)
	}
	return out
}

// apply checks every staged write against the committed versions and then
// installs all of them, or none.
func (s *Store) apply(writes []stagedWrite) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, w := range writes {
		current, exists := s.orders[w.snapshot.ID]
		switch {
		case w.isNew && exists:
			return fmt.Errorf("%w: %s", ports.ErrOrderAlreadyExists, w.snapshot.ID)
		case !w.isNew && !exists:
			return errs.NewObjectNotFoundError("order", w.snapshot.ID.String())
		case !w.isNew && current.Version != w.expectedVersion:
			return errs.NewVersionIsInvalidErrorWithCause("order",
				fmt.Errorf("stored version is %d, expected %d", current.Version, w.expectedVersion))
		}
	}
	for _, w := range writes {
		s.orders[w.snapshot.ID] = w.snapshot
	}
	return nil
}

type stagedWrite struct {
	snapshot        order.Snapshot
	expectedVersion int
	isNew           bool
}

// UnitOfWorkFactory creates units of work over one Store.
type UnitOfWorkFactory struct {
	store *Store
}

func NewUnitOfWorkFactory(store *Store) *UnitOfWorkFactory {
	return &UnitOfWorkFactory{store: store}
}

func (f *UnitOfWorkFactory) Create() ports.UnitOfWork {
	return &UnitOfWork{store: f.store}
}

// UnitOfWork stages writes until Commit. Outside a transaction writes are
// applied immediately. Not safe for concurrent use.
type UnitOfWork struct {
	store  *Store
	active bool
	staged []stagedWrite
	index  map[kernel.UUID]int
}

func (uow *UnitOfWork) Begin(_ context.Context) error {
	if uow.active {
		return nil
	}
	uow.active = true
	uow.staged = nil
	uow.index = make(map[kernel.UUID]int)
	return nil
}

func (uow *UnitOfWork) Commit(_ context.Context) error {
	if !uow.active {
		return ErrNoActiveTransaction
	}
	writes := uow.staged
	uow.reset()
	return uow.store.apply(writes)
}

func (uow *UnitOfWork) Rollback(_ context.Context) error {
	if !uow.active {
		return ErrNoActiveTransaction
	}
	uow.reset()
	return nil
}

func (uow *UnitOfWork) OrderRepository() ports.OrderRepository {
	return &orderRepository{uow: uow}
}

func (uow *UnitOfWork) reset() {
	uow.active = false
	uow.staged = nil
	uow.index = nil
}

func (uow *UnitOfWork) stage(w stagedWrite) error {
	if !uow.active {
		return uow.store.apply([]stagedWrite{w})
	}
	if i, ok := uow.index[w.snapshot.ID]; ok {
		prev := uow.staged[i]
		w.isNew = prev.isNew
		w.expectedVersion = prev.expectedVersion
		uow.staged[i] = w
		return nil
	}
	uow.index[w.snapshot.ID] = len(uow.staged)
	uow.staged = append(uow.staged, w)
	return nil
}

func (uow *UnitOfWork) lookup(id kernel.UUID) (order.Snapshot, bool) {
	if i, ok := uow.index[id]; ok {
		return uow.staged[i].snapshot, true
	}
	return uow.store.get(id)
}

// view merges committed snapshots with this unit's staged writes.
func (uow *UnitOfWork) view() []order.Snapshot {
	committed := uow.store.all()
	if len(uow.staged) == 0 {
		return committed
	}
	out := make([]order.Snapshot, 0, len(committed)+len(uow.staged))
	for _, snap := range committed {
		if _, staged := uow.index[snap.ID]; !staged {
			out = append(out, snap)
		}
	}
	for _, w := range uow.staged {
		out = append(out, w.snapshot)
	}
	return out
}
