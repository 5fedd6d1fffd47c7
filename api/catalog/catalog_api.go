package catalog

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"wms.GO/api"
	"wms.GO/core/errs"
	catalogEntity "wms.GO/model/entity/catalog"
	catalogRepo "wms.GO/model/repository/catalog"
)

func init() {
	api.RegisterModule(RegisterCatalogRoutes)
}

func RegisterCatalogRoutes(apiGroup *echo.Group, db *gorm.DB) {
	repo := catalogRepo.NewCatalogRepository(db)
	g := apiGroup.Group("/products")

	// GET /api/products?q=term
	g.GET("", func(c echo.Context) error {
		if q := c.QueryParam("q"); q != "" {
			limit, _ := strconv.Atoi(c.QueryParam("limit"))
			products, err := repo.Search(q, limit)
			if err != nil {
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
			}
			return c.JSON(http.StatusOK, echo.Map{"products": products})
		}
		products, err := repo.All()
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
		}
		return c.JSON(http.StatusOK, echo.Map{"products": products})
	})

	// GET /api/products/:msku
	g.GET("/:msku", func(c echo.Context) error {
		p, err := repo.FindByMSKU(c.Param("msku"))
		if err != nil {
			return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
		}
		return c.JSON(http.StatusOK, p)
	})

	// POST /api/products – register a warehouse product
	g.POST("", func(c echo.Context) error {
		var p catalogEntity.Product
		if err := c.Bind(&p); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		if p.MSKU == "" {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "msku is required"})
		}
		if err := repo.Register(&p); err != nil {
			return c.JSON(errs.HTTPStatus(err), echo.Map{"error": err.Error()})
		}
		return c.JSON(http.StatusCreated, p)
	})

	// DELETE /api/products/:msku – soft delete, mappings keep history
	g.DELETE("/:msku", func(c echo.Context) error {
		if err := repo.Deactivate(c.Param("msku")); err != nil {
			return c.JSON(errs.HTTPStatus(err), echo.Map{"error": err.Error()})
		}
		return c.NoContent(http.StatusNoContent)
	})
}
