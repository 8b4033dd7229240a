package http

import (
	"fmt"
	"net/http"

	"orderflow/internal/core/application/usecases/commands"
	"orderflow/internal/core/application/usecases/queries"
	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/pkg/errs"
	"orderflow/internal/realtime/wire"

	"github.com/labstack/echo/v4"
)

// PlaceOrder handles POST /api/v1/orders. Customers place their own orders; admins
// may place for anyone. A caller-supplied order_id makes the request idempotent
// in the sense that a repeat is rejected with 409.
func (s *Server) PlaceOrder(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return s.fail(c, err)
	}

	var body NewOrder
	if err = c.Bind(&body); err != nil {
		return s.fail(c, errs.NewValueIsInvalidErrorWithCause("body", err))
	}

	switch {
	case actor.Role == order.RoleAdmin:
	case actor.Role == order.RoleCustomer && actor.ID.IsEqual(body.CustomerID):
	default:
		return s.fail(c, fmt.Errorf("%w: %s may not place orders for customer %s", errForbidden, actor, body.CustomerID))
	}

	orderID := kernel.NewUUID()
	if body.OrderID != nil {
		orderID = *body.OrderID
	}
	location, err := kernel.NewLocation(body.Location.Lat, body.Location.Lng)
	if err != nil {
		return s.fail(c, err)
	}

	cmd, err := commands.NewPlaceOrderCommand(orderID, body.RestaurantID, body.CustomerID, location, body.Amount)
	if err != nil {
		return s.fail(c, err)
	}
	summary, err := s.handlers.PlaceOrder.Handle(c.Request().Context(), cmd)
	if err != nil {
		return s.fail(c, err)
	}

	return c.JSON(http.StatusCreated, wire.NewOrderView(summary))
}

// GetOrder handles GET /api/v1/orders/{id}, the resync read path.
func (s *Server) GetOrder(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return s.fail(c, err)
	}
	id, err := pathUUID(c, "id")
	if err != nil {
		return s.fail(c, err)
	}

	query, err := queries.NewGetOrderQuery(id, actor)
	if err != nil {
		return s.fail(c, err)
	}
	summary, err := s.handlers.GetOrder.Handle(c.Request().Context(), query)
	if err != nil {
		return s.fail(c, err)
	}

	return c.JSON(http.StatusOK, wire.NewOrderView(summary))
}

// ListActiveOrders handles GET /api/v1/orders.
func (s *Server) ListActiveOrders(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return s.fail(c, err)
	}
	customerID, err := queryUUID(c, "customer_id")
	if err != nil {
		return s.fail(c, err)
	}
	courierID, err := queryUUID(c, "courier_id")
	if err != nil {
		return s.fail(c, err)
	}

	query, err := queries.NewListActiveOrdersQuery(actor, customerID, courierID)
	if err != nil {
		return s.fail(c, err)
	}
	summaries, err := s.handlers.ListActiveOrders.Handle(c.Request().Context(), query)
	if err != nil {
		return s.fail(c, err)
	}

	return c.JSON(http.StatusOK, newOrderViews(summaries))
}

// ListAvailableOrders handles GET /api/v1/orders/available, the rider polling fallback.
func (s *Server) ListAvailableOrders(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return s.fail(c, err)
	}
	if actor.Role != order.RoleRider && actor.Role != order.RoleAdmin {
		return s.fail(c, fmt.Errorf("%w: only riders see the offer feed", errForbidden))
	}

	summaries, err := s.handlers.ListAvailableOrders.Handle(c.Request().Context(), queries.NewListAvailableOrdersQuery())
	if err != nil {
		return s.fail(c, err)
	}

	return c.JSON(http.StatusOK, newOrderViews(summaries))
}

// AdvanceStatus handles POST /api/v1/orders/{id}/status.
func (s *Server) AdvanceStatus(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return s.fail(c, err)
	}
	id, err := pathUUID(c, "id")
	if err != nil {
		return s.fail(c, err)
	}

	var body StatusChange
	if err = c.Bind(&body); err != nil {
		return s.fail(c, errs.NewValueIsInvalidErrorWithCause("status", err))
	}

	cmd, err := commands.NewAdvanceStatusCommand(id, body.Status, actor)
	if err != nil {
		return s.fail(c, err)
	}
	summary, err := s.handlers.AdvanceStatus.Handle(c.Request().Context(), cmd)
	if err != nil {
		return s.fail(c, err)
	}

	return c.JSON(http.StatusOK, wire.NewOrderView(summary))
}

// ClaimOrder handles POST /api/v1/orders/{id}/claim. The claiming courier is the
// calling rider. A lost race is a normal 200 answer.
func (s *Server) ClaimOrder(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return s.fail(c, err)
	}
	if actor.Role != order.RoleRider {
		return s.fail(c, fmt.Errorf("%w: only riders claim orders", errForbidden))
	}
	id, err := pathUUID(c, "id")
	if err != nil {
		return s.fail(c, err)
	}

	cmd, err := commands.NewClaimOrderCommand(id, actor.ID)
	if err != nil {
		return s.fail(c, err)
	}
	result, err := s.handlers.ClaimOrder.Handle(c.Request().Context(), cmd)
	if err != nil {
		return s.fail(c, err)
	}

	return c.JSON(http.StatusOK, newClaimResult(result))
}
