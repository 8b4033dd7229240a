// Package commands contains the operations that change order state.
// Every command follows the same pattern: constructor validation, the order's
// exclusive section, a unit of work, then side effects after commit.
package commands

import (
	"orderflow/internal/core/ports"
)

type (
	// OrderUoW scopes ledger access to one transaction.
	OrderUoW = ports.UnitOfWork

	// OrderUoWFactory creates new order unit of work instances.
	OrderUoWFactory = ports.UnitOfWorkFactory
)
