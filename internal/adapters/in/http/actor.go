package http

import (
	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/pkg/errs"

	"github.com/labstack/echo/v4"
	"github.com/oapi-codegen/runtime"
	openapi_types "github.com/oapi-codegen/runtime/types"
)

const (
	HeaderActorRole = "X-Actor-Role"
	HeaderActorID   = "X-Actor-Id"
)

// actorFrom reads the gateway-supplied identity. The system role cannot be claimed.
func actorFrom(c echo.Context) (order.Actor, error) {
	role, err := order.ParseRole(c.Request().Header.Get(HeaderActorRole))
	if err != nil {
		return order.Actor{}, err
	}

	var raw openapi_types.UUID
	if err = runtime.BindStyledParameterWithOptions("simple", HeaderActorID,
		c.Request().Header.Get(HeaderActorID), &raw, runtime.BindStyledParameterOptions{
			ParamLocation: runtime.ParamLocationHeader,
			Required:      true,
		}); err != nil {
		return order.Actor{}, errs.NewValueIsInvalidErrorWithCause("actorID", err)
	}
	id, err := kernel.UUIDFromBytes(raw[:])
	if err != nil {
		return order.Actor{}, err
	}

	return order.NewActor(role, id)
}

func pathUUID(c echo.Context, name string) (kernel.UUID, error) {
	var raw openapi_types.UUID
	if err := runtime.BindStyledParameterWithOptions("simple", name, c.Param(name), &raw,
		runtime.BindStyledParameterOptions{
			ParamLocation: runtime.ParamLocationPath,
			Required:      true,
		}); err != nil {
		return kernel.UUID{}, errs.NewValueIsInvalidErrorWithCause(name, err)
	}
	return kernel.UUIDFromBytes(raw[:])
}

// queryUUID returns the zero UUID when the parameter is absent.
func queryUUID(c echo.Context, name string) (kernel.UUID, error) {
	var raw *openapi_types.UUID
	if err := runtime.BindQueryParameter("form", true, false, name, c.QueryParams(), &raw); err != nil {
		return kernel.UUID{}, errs.NewValueIsInvalidErrorWithCause(name, err)
	}
	if raw == nil {
		return kernel.UUID{}, nil
	}
	return kernel.UUIDFromBytes(raw[:])
}
