package ports

import (
	"context"
	"errors"
)

// ErrOrderAlreadyExists is returned by OrderRepository.Add for a duplicate id.
var ErrOrderAlreadyExists = errors.New("order already exists")

type UnitOfWorkFactory interface {
	Create() UnitOfWork
}

type UnitOfWork interface {
	// Begin starts a transaction.
	Begin(ctx context.Context) error

	// Commit makes staged changes visible.
	// Returns error if no active transaction or commit fails.
	Commit(ctx context.Context) error

	// Rollback discards staged changes. Rolling back after Commit is a no-op.
	Rollback(ctx context.Context) error

	// OrderRepository returns a repository bound to the current transaction.
	OrderRepository() OrderRepository
}
