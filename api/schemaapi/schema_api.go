package schemaapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"wms.GO/api"
	"wms.GO/service/schema"
)

func init() {
	api.RegisterModule(RegisterSchemaRoutes)
}

func RegisterSchemaRoutes(apiGroup *echo.Group, db *gorm.DB) {
	// GET /api/schema – table layout for report tooling
	apiGroup.GET("/schema", func(c echo.Context) error {
		tables, err := schema.Describe()
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
		}
		if c.QueryParam("format") == "text" {
			text, err := schema.DescribeText()
			if err != nil {
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
			}
			return c.String(http.StatusOK, text)
		}
		return c.JSON(http.StatusOK, echo.Map{"tables": tables})
	})

	// GET /api/schema/templates – canned report queries
	apiGroup.GET("/schema/templates", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{"templates": schema.Templates()})
	})
}
