package sales

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"wms.GO/api"
	"wms.GO/config"
	"wms.GO/core/errs"
	"wms.GO/model"
	salesEntity "wms.GO/model/entity/sales"
	catalogRepo "wms.GO/model/repository/catalog"
	inventoryRepo "wms.GO/model/repository/inventory"
	mappingRepo "wms.GO/model/repository/mapping"
	"wms.GO/service/harmonize"
	"wms.GO/service/ingest"
	"wms.GO/service/ledger"
	"wms.GO/service/stockcache"
)

func init() {
	api.RegisterModule(RegisterSalesRoutes)
}

type importRequest struct {
	// Marketplace overrides header fingerprint detection when set.
	Marketplace string                   `json:"marketplace"`
	Location    string                   `json:"location"`
	Rows        []map[string]interface{} `json:"rows"`
}

func RegisterSalesRoutes(apiGroup *echo.Group, db *gorm.DB) {
	mappings := mappingRepo.NewMappingRepository(db)
	catalog := catalogRepo.NewCatalogRepository(db)
	resolver := harmonize.NewComboResolver(mappings, catalog)
	engine := harmonize.NewEngine(mappings, resolver, log.Logger)

	invRepo, err := inventoryRepo.NewInventoryRepository(db)
	if err != nil {
		log.Fatal().Err(err).Msg("sales api: inventory repository")
	}
	config.LoadAppConfig()
	led := ledger.NewLedger(db, invRepo, ledger.Options{
		AllowNegative: config.AppConfig.AllowNegativeStock,
		Invalidate:    stockcache.Invalidate,
	}, log.Logger)

	g := apiGroup.Group("/sales")

	// POST /api/sales/import – harmonize raw order rows, post stock
	// deductions to the ledger and persist the order lines
	g.POST("/import", func(c echo.Context) error {
		start := time.Now()

		var body importRequest
		if err := c.Bind(&body); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		if len(body.Rows) == 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "rows array is required and must not be empty"})
		}

		marketplace := body.Marketplace
		if marketplace == "" {
			headers := make([]string, 0, len(body.Rows[0]))
			for k := range body.Rows[0] {
				headers = append(headers, k)
			}
			marketplace = ingest.DetectMarketplace(headers)
		}
		marketplaceID, err := model.MarketplaceID(db, marketplace)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
		}

		locationCode := body.Location
		if locationCode == "" {
			locationCode = config.AppConfig.DefaultLocation
		}
		locationID, err := model.LocationIDByCode(db, locationCode)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}

		lines, err := ingest.Normalize(body.Rows, marketplace, marketplaceID)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}

		resolved, unmapped, err := engine.Process(lines)
		if err != nil {
			return c.JSON(errs.HTTPStatus(err), echo.Map{"error": err.Error()})
		}

		var batchID string
		if len(resolved) > 0 {
			result, err := led.Apply(c.Request().Context(), resolved, "order", locationID)
			if err != nil {
				return c.JSON(errs.HTTPStatus(err), echo.Map{"error": err.Error()})
			}
			batchID = result.BatchID
		}
		if err := persistOrders(db, marketplaceID, lines, resolved, unmapped); err != nil {
			// The ledger batch is committed; order rows are
			// presentation data and reported as a warning.
			log.Error().Err(err).Msg("sales import: persist orders")
		}

		duration := time.Since(start).Milliseconds()
		c.Response().Header().Set("X-Request-Duration-ms", strconv.FormatInt(duration, 10))
		return c.JSON(http.StatusOK, echo.Map{
			"marketplace":         marketplace,
			"batch_id":            batchID,
			"resolved_lines":      len(resolved),
			"unmapped_lines":      len(unmapped),
			"unmapped":            harmonize.Report(unmapped),
			"request_duration_ms": duration,
		})
	})

	// GET /api/sales/unmapped?marketplace_id=1 – skus seen in imports
	// with no mapping yet, for the mapping backlog
	g.GET("/unmapped", func(c echo.Context) error {
		marketplaceID, err := strconv.ParseUint(c.QueryParam("marketplace_id"), 10, 32)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "marketplace_id must be an integer"})
		}
		var skus []string
		err = db.Model(&salesEntity.OrderItem{}).
			Distinct("order_items.sku").
			Joins("JOIN orders ON orders.order_id = order_items.order_id").
			Where("orders.marketplace_id = ?", marketplaceID).
			Pluck("order_items.sku", &skus).Error
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
		}
		candidates, err := mappings.UnmappedCandidates(uint(marketplaceID), skus)
		if err != nil {
			return c.JSON(errs.HTTPStatus(err), echo.Map{"error": err.Error()})
		}
		return c.JSON(http.StatusOK, echo.Map{"unmapped": candidates})
	})
}

// persistOrders writes order and order item rows for an import. Resolved
// lines become regular items; unmapped lines are staged as items with an
// empty msku so the backlog survives the import request. Order headers are
// created on first sight of an order id.
func persistOrders(db *gorm.DB, marketplaceID uint, lines []harmonize.OrderLineItem, resolved []harmonize.ResolvedLine, unmapped []harmonize.UnmappedLine) error {
	now := time.Now()
	return db.Transaction(func(tx *gorm.DB) error {
		seen := map[string]bool{}
		for _, l := range lines {
			if l.OrderID == "" || seen[l.OrderID] {
				continue
			}
			seen[l.OrderID] = true
			var existing salesEntity.Order
			err := tx.Where("order_id = ?", l.OrderID).First(&existing).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				order := salesEntity.Order{
					OrderID:       l.OrderID,
					MarketplaceID: marketplaceID,
					OrderDate:     &now,
				}
				if err := tx.Create(&order).Error; err != nil {
					return err
				}
				continue
			}
			if err != nil {
				return err
			}
		}
		for _, r := range resolved {
			item := salesEntity.OrderItem{
				OrderID:  r.SourceOrderID,
				MSKU:     r.MSKU,
				SKU:      r.SourceSKU,
				Quantity: r.QuantityDelta,
				Price:    r.Price,
			}
			if err := tx.Create(&item).Error; err != nil {
				return err
			}
		}
		for _, u := range unmapped {
			// Keep staging idempotent: an all-unmapped file can be
			// re-uploaded without tripping the ledger duplicate guard.
			var count int64
			if err := tx.Model(&salesEntity.OrderItem{}).
				Where("order_id = ? AND sku = ? AND msku = ''", u.OrderID, u.RawSKU).
				Count(&count).Error; err != nil {
				return err
			}
			if count > 0 {
				continue
			}
			item := salesEntity.OrderItem{
				OrderID:  u.OrderID,
				SKU:      u.RawSKU,
				Quantity: u.QuantitySold,
				Price:    u.Price,
			}
			if err := tx.Create(&item).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
