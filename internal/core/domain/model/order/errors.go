package order

import (
	"errors"
	"fmt"

	"orderflow/internal/core/domain/model/kernel"
)

var (
	ErrOrderIsNotConstructed = errors.New("Order must be created via NewOrder or RestoreOrder")
	ErrIllegalTransition     = errors.New("illegal transition")
	ErrUnauthorized          = errors.New("actor is not allowed to perform this transition")
)

// TransitionError describes a rejected change. It unwraps to ErrIllegalTransition
// or ErrUnauthorized; the order is left untouched in both cases.
type TransitionError struct {
	OrderID kernel.UUID
	From    Status
	To      Status
	Actor   Actor
	Err     error
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("order %s: %s -> %s by %s: %s", e.OrderID, e.From, e.To, e.Actor, e.Err)
}

func (e *TransitionError) Unwrap() error {
	return e.Err
}
