package http

import (
	_ "embed"
	"net/http"

	"github.com/ghodss/yaml"
	"github.com/labstack/echo/v4"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/humayunejaz/travel-planning-app/internal/util"
)

//go:embed swagger.yaml
var swaggerYAML []byte

// RegisterSwagger serves the API description as JSON and the Swagger UI
// under /swagger.
func RegisterSwagger(e *echo.Echo) {
	e.GET("/swagger/doc.json", func(c echo.Context) error {
		jsonSpec, err := yaml.YAMLToJSON(swaggerYAML)
		if err != nil {
			c.Logger().Errorf("convert swagger spec: %v", err)
			return c.JSON(http.StatusInternalServerError, util.Error("unable to parse swagger spec"))
		}
		return c.Blob(http.StatusOK, echo.MIMEApplicationJSONCharsetUTF8, jsonSpec)
	})
	e.GET("/swagger/*", echoSwagger.WrapHandler)
}
