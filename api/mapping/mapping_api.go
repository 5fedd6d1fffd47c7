package mapping

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"wms.GO/api"
	"wms.GO/core/errs"
	mappingEntity "wms.GO/model/entity/mapping"
	mappingRepo "wms.GO/model/repository/mapping"
)

func init() {
	api.RegisterModule(RegisterMappingRoutes)
}

type upsertRequest struct {
	MarketplaceID uint   `json:"marketplace_id"`
	SKU           string `json:"sku"`
	MSKU          string `json:"msku"`
	UnitsPerSKU   int    `json:"units_per_sku"`
}

type comboComponentRequest struct {
	MSKU     string `json:"msku"`
	Quantity int    `json:"quantity"`
}

type comboRequest struct {
	MarketplaceID uint                    `json:"marketplace_id"`
	SKU           string                  `json:"sku"`
	Components    []comboComponentRequest `json:"components"`
}

func RegisterMappingRoutes(apiGroup *echo.Group, db *gorm.DB) {
	repo := mappingRepo.NewMappingRepository(db)
	g := apiGroup.Group("/mappings")

	// POST /api/mappings – create or remap a single sku mapping
	g.POST("", func(c echo.Context) error {
		var body upsertRequest
		if err := c.Bind(&body); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		if body.UnitsPerSKU == 0 {
			body.UnitsPerSKU = 1
		}
		if err := repo.Upsert(body.MarketplaceID, body.SKU, body.MSKU, body.UnitsPerSKU); err != nil {
			return c.JSON(errs.HTTPStatus(err), echo.Map{"error": err.Error()})
		}
		return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
	})

	// POST /api/mappings/import – bulk upsert; each row succeeds or fails
	// on its own, failures are reported back per row
	g.POST("/import", func(c echo.Context) error {
		var body struct {
			Mappings []upsertRequest `json:"mappings"`
		}
		if err := c.Bind(&body); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		if len(body.Mappings) == 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "mappings array is required and must not be empty"})
		}
		type rowError struct {
			Row   int    `json:"row"`
			SKU   string `json:"sku"`
			Error string `json:"error"`
		}
		var failures []rowError
		imported := 0
		for i, m := range body.Mappings {
			if m.UnitsPerSKU == 0 {
				m.UnitsPerSKU = 1
			}
			if err := repo.Upsert(m.MarketplaceID, m.SKU, m.MSKU, m.UnitsPerSKU); err != nil {
				failures = append(failures, rowError{Row: i + 1, SKU: m.SKU, Error: err.Error()})
				continue
			}
			imported++
		}
		return c.JSON(http.StatusOK, echo.Map{
			"imported": imported,
			"failed":   len(failures),
			"failures": failures,
		})
	})

	// GET /api/mappings/lookup?marketplace_id=1&sku=ABC
	g.GET("/lookup", func(c echo.Context) error {
		marketplaceID, err := strconv.ParseUint(c.QueryParam("marketplace_id"), 10, 32)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "marketplace_id must be an integer"})
		}
		sku := c.QueryParam("sku")
		msku, units, ok, err := repo.Lookup(uint(marketplaceID), sku)
		if err != nil {
			return c.JSON(errs.HTTPStatus(err), echo.Map{"error": err.Error()})
		}
		if !ok {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "no mapping for sku " + sku})
		}
		return c.JSON(http.StatusOK, echo.Map{
			"msku":          msku,
			"units_per_sku": units,
		})
	})

	// GET /api/mappings/reverse/:msku – every marketplace sku selling this product
	g.GET("/reverse/:msku", func(c echo.Context) error {
		rows, err := repo.SKUsForMSKU(c.Param("msku"))
		if err != nil {
			return c.JSON(errs.HTTPStatus(err), echo.Map{"error": err.Error()})
		}
		return c.JSON(http.StatusOK, echo.Map{"msku": c.Param("msku"), "skus": rows})
	})

	// GET /api/mappings/audit?marketplace_id=1&sku=ABC – remap history
	g.GET("/audit", func(c echo.Context) error {
		marketplaceID, err := strconv.ParseUint(c.QueryParam("marketplace_id"), 10, 32)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "marketplace_id must be an integer"})
		}
		rows, err := repo.AuditTrail(uint(marketplaceID), c.QueryParam("sku"))
		if err != nil {
			return c.JSON(errs.HTTPStatus(err), echo.Map{"error": err.Error()})
		}
		return c.JSON(http.StatusOK, echo.Map{"audit": rows})
	})

	// POST /api/mappings/combos – define or replace a combo listing
	g.POST("/combos", func(c echo.Context) error {
		var body comboRequest
		if err := c.Bind(&body); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		components := make([]mappingEntity.ComboComponent, 0, len(body.Components))
		for _, comp := range body.Components {
			components = append(components, mappingEntity.ComboComponent{MSKU: comp.MSKU, Quantity: comp.Quantity})
		}
		if err := repo.DefineCombo(body.MarketplaceID, body.SKU, components); err != nil {
			return c.JSON(errs.HTTPStatus(err), echo.Map{"error": err.Error()})
		}
		return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
	})

	// GET /api/mappings/combos?marketplace_id=1&sku=COMBO-1
	g.GET("/combos", func(c echo.Context) error {
		marketplaceID, err := strconv.ParseUint(c.QueryParam("marketplace_id"), 10, 32)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "marketplace_id must be an integer"})
		}
		sku := c.QueryParam("sku")
		components, err := repo.Components(uint(marketplaceID), sku)
		if err != nil {
			return c.JSON(errs.HTTPStatus(err), echo.Map{"error": err.Error()})
		}
		if components == nil {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "no combo for sku " + sku})
		}
		return c.JSON(http.StatusOK, echo.Map{"sku": sku, "components": components})
	})
}
