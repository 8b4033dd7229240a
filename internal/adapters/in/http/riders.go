package http

import (
	"fmt"
	"net/http"

	"orderflow/internal/core/application/usecases/commands"
	"orderflow/internal/core/application/usecases/queries"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/pkg/errs"

	"github.com/labstack/echo/v4"
)

// GetOnlineRiders handles GET /api/v1/riders/online (admins only).
func (s *Server) GetOnlineRiders(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return s.fail(c, err)
	}
	if actor.Role != order.RoleAdmin {
		return s.fail(c, fmt.Errorf("%w: admins only", errForbidden))
	}

	riders, err := s.handlers.GetOnlineRiders.Handle(c.Request().Context(), queries.NewGetOnlineRidersQuery())
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, newRiders(riders))
}

// SetRiderAvailability handles PUT /api/v1/riders/{id}/availability.
func (s *Server) SetRiderAvailability(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return s.fail(c, err)
	}
	courierID, err := pathUUID(c, "id")
	if err != nil {
		return s.fail(c, err)
	}

	var body Availability
	if err = c.Bind(&body); err != nil {
		return s.fail(c, errs.NewValueIsInvalidErrorWithCause("body", err))
	}
	if body.Available == nil {
		return s.fail(c, errs.NewValueIsRequiredError("available"))
	}

	cmd, err := commands.NewSetRiderAvailabilityCommand(courierID, *body.Available, actor)
	if err != nil {
		return s.fail(c, err)
	}
	if err = s.handlers.SetRiderAvailability.Handle(c.Request().Context(), cmd); err != nil {
		return s.fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
