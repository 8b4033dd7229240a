package http

import (
	"encoding/json"
	"net/http"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/labstack/echo/v4"
	echoSwagger "github.com/swaggo/echo-swagger"
	"github.com/swaggo/swag"
)

// Docs serves the OpenAPI document as JSON and through the swagger UI.
type Docs struct {
	json []byte
}

func NewDocs(doc *openapi3.T) (*Docs, error) {
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}
	d := &Docs{json: raw}
	// swag panics on a second registration under the same name.
	if swag.GetSwagger(swag.Name) == nil {
		swag.Register(swag.Name, d)
	}
	return d, nil
}

// ReadDoc implements swag.Swagger.
func (d *Docs) ReadDoc() string {
	return string(d.json)
}

func (d *Docs) Register(e *echo.Echo) {
	e.GET("/openapi.json", func(c echo.Context) error {
		return c.JSONBlob(http.StatusOK, d.json)
	})
	e.GET("/swagger/*", echoSwagger.WrapHandler)
}
