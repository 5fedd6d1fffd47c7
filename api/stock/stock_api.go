package stock

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"wms.GO/api"
	"wms.GO/config"
	"wms.GO/core/errs"
	"wms.GO/model"
	inventoryRepo "wms.GO/model/repository/inventory"
	"wms.GO/service/harmonize"
	"wms.GO/service/ledger"
	"wms.GO/service/stockcache"
)

func init() {
	api.RegisterModule(RegisterStockRoutes)
}

type adjustRequest struct {
	MSKU        string `json:"msku"`
	Quantity    int    `json:"quantity"`
	Location    string `json:"location"`
	ReferenceID string `json:"reference_id"`
	// transfer or adjustment; defaults to adjustment
	Type string `json:"type"`
}

func RegisterStockRoutes(apiGroup *echo.Group, db *gorm.DB) {
	repo, err := inventoryRepo.NewInventoryRepository(db)
	if err != nil {
		log.Fatal().Err(err).Msg("stock api: inventory repository")
	}
	config.LoadAppConfig()
	led := ledger.NewLedger(db, repo, ledger.Options{
		AllowNegative: config.AppConfig.AllowNegativeStock,
		Invalidate:    stockcache.Invalidate,
	}, log.Logger)

	g := apiGroup.Group("/stock")

	// GET /api/stock – full cached inventory snapshot
	g.GET("", func(c echo.Context) error {
		records, err := repo.AllRecords()
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
		}
		return c.JSON(http.StatusOK, echo.Map{"inventory": records})
	})

	// GET /api/stock/:msku?location=OWN1 – single cached quantity
	g.GET("/:msku", func(c echo.Context) error {
		msku := c.Param("msku")
		locationCode := c.QueryParam("location")
		if locationCode == "" {
			locationCode = config.AppConfig.DefaultLocation
		}
		locationID, err := model.LocationIDByCode(db, locationCode)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}

		if qty, ok := stockcache.Get(msku, locationID); ok {
			c.Response().Header().Set("X-Cache", "HIT")
			return c.JSON(http.StatusOK, echo.Map{"msku": msku, "location": locationCode, "quantity": qty})
		}
		qty := led.CurrentQuantity(msku, locationID)
		stockcache.Set(msku, locationID, qty)
		c.Response().Header().Set("X-Cache", "MISS")
		return c.JSON(http.StatusOK, echo.Map{"msku": msku, "location": locationCode, "quantity": qty})
	})

	// POST /api/stock/adjust – manual correction through the ledger
	g.POST("/adjust", func(c echo.Context) error {
		var body adjustRequest
		if err := c.Bind(&body); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		txnType := body.Type
		if txnType == "" {
			txnType = "adjustment"
		}
		locationCode := body.Location
		if locationCode == "" {
			locationCode = config.AppConfig.DefaultLocation
		}
		locationID, err := model.LocationIDByCode(db, locationCode)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		lines := []harmonize.ResolvedLine{{
			MSKU:          body.MSKU,
			QuantityDelta: body.Quantity,
			SourceOrderID: body.ReferenceID,
		}}
		result, err := led.Apply(c.Request().Context(), lines, txnType, locationID)
		if err != nil {
			return c.JSON(errs.HTTPStatus(err), echo.Map{"error": err.Error()})
		}
		return c.JSON(http.StatusOK, echo.Map{
			"batch_id": result.BatchID,
			"quantity": led.CurrentQuantity(body.MSKU, locationID),
		})
	})

	// GET /api/stock/ledger/replay?from=2026-01-01T00:00:00Z
	g.GET("/ledger/replay", func(c echo.Context) error {
		var from time.Time
		if raw := c.QueryParam("from"); raw != "" {
			parsed, err := time.Parse(time.RFC3339, raw)
			if err != nil {
				return c.JSON(http.StatusBadRequest, echo.Map{"error": "from must be RFC3339"})
			}
			from = parsed
		}
		replayed, err := led.Replay(from)
		if err != nil {
			return c.JSON(errs.HTTPStatus(err), echo.Map{"error": err.Error()})
		}
		type entry struct {
			MSKU       string `json:"msku"`
			LocationID uint   `json:"location_id"`
			Quantity   int    `json:"quantity"`
		}
		out := make([]entry, 0, len(replayed))
		for k, v := range replayed {
			out = append(out, entry{MSKU: k.MSKU, LocationID: k.LocationID, Quantity: v})
		}
		return c.JSON(http.StatusOK, echo.Map{"replay": out})
	})

	// GET /api/stock/ledger/audit – cache vs log divergence report
	g.GET("/ledger/audit", func(c echo.Context) error {
		divergences, err := led.Audit()
		if err != nil {
			return c.JSON(errs.HTTPStatus(err), echo.Map{"error": err.Error()})
		}
		return c.JSON(http.StatusOK, echo.Map{
			"consistent":  len(divergences) == 0,
			"divergences": divergences,
		})
	})

	// POST /api/stock/ledger/repair – rebuild cache from the log
	g.POST("/ledger/repair", func(c echo.Context) error {
		fixed, err := led.Repair(c.Request().Context())
		if err != nil {
			return c.JSON(errs.HTTPStatus(err), echo.Map{"error": err.Error()})
		}
		stockcache.Flush()
		return c.JSON(http.StatusOK, echo.Map{"fixed": fixed})
	})

	// GET /api/stock/ledger/batch/:id – transactions in one apply batch
	g.GET("/ledger/batch/:id", func(c echo.Context) error {
		rows, err := repo.TransactionsByBatch(c.Param("id"))
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
		}
		return c.JSON(http.StatusOK, echo.Map{"transactions": rows})
	})
}
