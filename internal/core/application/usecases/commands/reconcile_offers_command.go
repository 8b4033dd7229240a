package commands

import (
	"errors"

	"orderflow/internal/pkg/guard"
)

var ErrReconcileOffersCommandIsNotConstructed = errors.New(
	"ReconcileOffersCommand must be created via NewReconcileOffersCommand constructor",
)

// ReconcileOffersCommand asks for a sweep of every available order in the ledger.
type ReconcileOffersCommand struct {
	guard guard.ConstructorGuard
}

func NewReconcileOffersCommand() ReconcileOffersCommand {
	return ReconcileOffersCommand{guard: guard.NewConstructorGuard()}
}

func (c ReconcileOffersCommand) Validate() error {
	return c.guard.Validate(ErrReconcileOffersCommandIsNotConstructed)
}
