package queries

import (
	"errors"

	"orderflow/internal/pkg/guard"
)

var ErrListAvailableOrdersQueryIsNotConstructed = errors.New(
	"ListAvailableOrdersQuery must be created via NewListAvailableOrdersQuery constructor",
)

// ListAvailableOrdersQuery is the polling fallback of the rider feed.
type ListAvailableOrdersQuery struct {
	guard guard.ConstructorGuard
}

func NewListAvailableOrdersQuery() ListAvailableOrdersQuery {
	return ListAvailableOrdersQuery{guard: guard.NewConstructorGuard()}
}

func (q ListAvailableOrdersQuery) Validate() error {
	return q.guard.Validate(ErrListAvailableOrdersQueryIsNotConstructed)
}
