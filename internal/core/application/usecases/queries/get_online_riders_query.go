package queries

import (
	"errors"

	"orderflow/internal/pkg/guard"
)

var ErrGetOnlineRidersQueryIsNotConstructed = errors.New(
	"GetOnlineRidersQuery must be created via NewGetOnlineRidersQuery constructor",
)

// GetOnlineRidersQuery lists riders with a live connection for the admin view.
type GetOnlineRidersQuery struct {
	guard guard.ConstructorGuard
}

func NewGetOnlineRidersQuery() GetOnlineRidersQuery {
	return GetOnlineRidersQuery{guard: guard.NewConstructorGuard()}
}

func (q GetOnlineRidersQuery) Validate() error {
	return q.guard.Validate(ErrGetOnlineRidersQueryIsNotConstructed)
}
