package http

import (
	"errors"
	"net/http"

	"orderflow/internal/core/application/usecases/commands"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/core/ports"
	"orderflow/internal/pkg/errs"

	"github.com/labstack/echo/v4"
)

var errForbidden = errors.New("forbidden")

// Error is the body of every non-2xx response.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, commands.ErrOrderNotClaimable):
		return http.StatusConflict
	case errors.Is(err, order.ErrUnauthorized), errors.Is(err, errForbidden):
		return http.StatusForbidden
	case errors.Is(err, order.ErrIllegalTransition),
		errors.Is(err, errs.ErrVersionIsInvalid),
		errors.Is(err, ports.ErrOrderAlreadyExists),
		errors.Is(err, commands.ErrRiderOffline):
		return http.StatusConflict
	case errors.Is(err, errs.ErrObjectNotFound):
		return http.StatusNotFound
	case errors.Is(err, errs.ErrValueIsInvalid),
		errors.Is(err, errs.ErrValueIsRequired),
		errors.Is(err, errs.ErrValueIsOutOfRange):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// fail writes err as a JSON Error. Server faults are logged and their detail hidden.
func (s *Server) fail(c echo.Context, err error) error {
	code := statusOf(err)
	message := err.Error()
	switch {
	case code == http.StatusInternalServerError:
		s.logger.ErrorContext(c.Request().Context(), "request failed",
			"method", c.Request().Method, "path", c.Path(), "error", err)
		message = "internal error"
	case errors.Is(err, commands.ErrOrderNotClaimable):
		message = "gone"
	}
	return c.JSON(code, Error{Code: code, Message: message})
}
