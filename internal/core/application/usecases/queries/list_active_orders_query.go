package queries

import (
	"errors"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/core/ports"
	"orderflow/internal/pkg/errs"
	"orderflow/internal/pkg/guard"
)

var ErrListActiveOrdersQueryIsNotConstructed = errors.New(
	"ListActiveOrdersQuery must be created via NewListActiveOrdersQuery constructor",
)

// ListActiveOrdersQuery lists the non-terminal orders an actor is involved in.
// Customers, riders and restaurants always see only their own orders; admins
// may narrow the list by customer or courier.
type ListActiveOrdersQuery struct {
	actor  order.Actor
	filter ports.ActiveOrderFilter

	guard guard.ConstructorGuard
}

func NewListActiveOrdersQuery(actor order.Actor, customerID, courierID kernel.UUID) (ListActiveOrdersQuery, error) {
	q := ListActiveOrdersQuery{actor: actor, guard: guard.NewConstructorGuard()}

	switch actor.Role {
	case order.RoleCustomer:
		q.filter.CustomerID = actor.ID
	case order.RoleRider:
		q.filter.CourierID = actor.ID
	case order.RoleRestaurant:
		q.filter.RestaurantID = actor.ID
	case order.RoleAdmin:
		q.filter = ports.ActiveOrderFilter{CustomerID: customerID, CourierID: courierID}
	default:
		return ListActiveOrdersQuery{}, errs.NewValueIsInvalidError("actor")
	}
	if actor.Role != order.RoleAdmin && actor.ID.IsZero() {
		return ListActiveOrdersQuery{}, errs.NewValueIsRequiredError("actorID")
	}

	return q, nil
}

func (q ListActiveOrdersQuery) Validate() error {
	return q.guard.Validate(ErrListActiveOrdersQueryIsNotConstructed)
}

func (q ListActiveOrdersQuery) Filter() ports.ActiveOrderFilter {
	return q.filter
}
