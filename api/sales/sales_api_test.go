package sales

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"wms.GO/config"
	"wms.GO/model"
	catalogEntity "wms.GO/model/entity/catalog"
	inventoryEntity "wms.GO/model/entity/inventory"
	salesEntity "wms.GO/model/entity/sales"
	mappingRepo "wms.GO/model/repository/mapping"
)

func setup(t *testing.T) (*echo.Echo, *gorm.DB) {
	t.Helper()
	config.LoadAppConfig()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := model.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if err := model.Seed(db); err != nil {
		t.Fatalf("seed: %v", err)
	}
	e := echo.New()
	RegisterSalesRoutes(e.Group("/api"), db)
	return e, db
}

func doJSON(e *echo.Echo, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func registerMapping(t *testing.T, db *gorm.DB, marketplace, sku, msku string, units int) {
	t.Helper()
	if err := db.Where("msku = ?", msku).FirstOrCreate(&catalogEntity.Product{MSKU: msku, Name: msku, IsActive: true}).Error; err != nil {
		t.Fatalf("product: %v", err)
	}
	id, err := model.MarketplaceID(db, marketplace)
	if err != nil {
		t.Fatalf("marketplace: %v", err)
	}
	if err := mappingRepo.NewMappingRepository(db).Upsert(id, sku, msku, units); err != nil {
		t.Fatalf("mapping: %v", err)
	}
}

func TestSalesImportEndToEnd(t *testing.T) {
	e, db := setup(t)
	registerMapping(t, db, "flipkart", "FK-1", "WIDGET-A", 1)

	body := `{
		"marketplace": "flipkart",
		"location": "OWN1",
		"rows": [
			{"sku":"FK-1","quantity":"2","order id":"OD100","price":"199.00"},
			{"sku":"NEW-SKU","quantity":"1","order id":"OD101","price":"50.00"}
		]
	}`
	rec := doJSON(e, http.MethodPost, "/api/sales/import", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("import status = %d, body %s", rec.Code, rec.Body.String())
	}
	var got struct {
		BatchID       string `json:"batch_id"`
		ResolvedLines int    `json:"resolved_lines"`
		UnmappedLines int    `json:"unmapped_lines"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.ResolvedLines != 1 || got.UnmappedLines != 1 || got.BatchID == "" {
		t.Errorf("result = %+v", got)
	}

	// The ledger took the deduction.
	var txn inventoryEntity.Transaction
	if err := db.Where("reference_id = ?", "OD100").First(&txn).Error; err != nil {
		t.Fatalf("transaction row: %v", err)
	}
	if txn.MSKU != "WIDGET-A" || txn.QuantityChange != -2 {
		t.Errorf("transaction = %+v", txn)
	}

	// Orders and order items were persisted.
	var order salesEntity.Order
	if err := db.Where("order_id = ?", "OD100").First(&order).Error; err != nil {
		t.Fatalf("order row: %v", err)
	}
	var items []salesEntity.OrderItem
	if err := db.Where("order_id = ?", "OD100").Find(&items).Error; err != nil || len(items) != 1 {
		t.Fatalf("order items = %+v (%v)", items, err)
	}
	if items[0].MSKU != "WIDGET-A" || items[0].Quantity != 2 {
		t.Errorf("item = %+v", items[0])
	}
}

func TestSalesImportDuplicateFileRejected(t *testing.T) {
	e, db := setup(t)
	registerMapping(t, db, "flipkart", "FK-1", "WIDGET-A", 1)

	body := `{"marketplace":"flipkart","location":"OWN1","rows":[{"sku":"FK-1","quantity":"1","order id":"OD200"}]}`
	rec := doJSON(e, http.MethodPost, "/api/sales/import", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("first import status = %d", rec.Code)
	}
	rec = doJSON(e, http.MethodPost, "/api/sales/import", body)
	if rec.Code != http.StatusConflict {
		t.Errorf("re-upload status = %d, want 409; body %s", rec.Code, rec.Body.String())
	}
}

func TestSalesImportDetectsMarketplace(t *testing.T) {
	e, db := setup(t)
	registerMapping(t, db, "meesho", "MS-1", "WIDGET-A", 1)

	// No marketplace in the body: the meesho fingerprint columns decide.
	body := `{"location":"OWN1","rows":[{"sku":"MS-1","quantity":"1","sub order no":"SO300","reason for credit entry":""}]}`
	rec := doJSON(e, http.MethodPost, "/api/sales/import", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("import status = %d, body %s", rec.Code, rec.Body.String())
	}
	var got struct {
		Marketplace string `json:"marketplace"`
	}
	_ = json.Unmarshal(rec.Body.Bytes(), &got)
	if got.Marketplace != "meesho" {
		t.Errorf("marketplace = %q, want meesho", got.Marketplace)
	}
}

func TestUnmappedBacklogSurvivesImport(t *testing.T) {
	e, db := setup(t)
	registerMapping(t, db, "flipkart", "FK-1", "WIDGET-A", 1)

	marketplaceID, err := model.MarketplaceID(db, "flipkart")
	if err != nil {
		t.Fatalf("marketplace: %v", err)
	}

	body := `{
		"marketplace": "flipkart",
		"location": "OWN1",
		"rows": [
			{"sku":"FK-1","quantity":"2","order id":"OD400","price":"199.00"},
			{"sku":"MYSTERY-1","quantity":"1","order id":"OD401","price":"50.00"}
		]
	}`
	rec := doJSON(e, http.MethodPost, "/api/sales/import", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("import status = %d, body %s", rec.Code, rec.Body.String())
	}

	// The unmapped line is staged and shows in the backlog after the
	// import request is gone.
	rec = doJSON(e, http.MethodGet, "/api/sales/unmapped?marketplace_id="+strconv.Itoa(int(marketplaceID)), "")
	if rec.Code != http.StatusOK {
		t.Fatalf("unmapped status = %d", rec.Code)
	}
	var got struct {
		Unmapped []string `json:"unmapped"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got.Unmapped) != 1 || got.Unmapped[0] != "MYSTERY-1" {
		t.Fatalf("unmapped = %v, want [MYSTERY-1]", got.Unmapped)
	}

	// Mapping the SKU clears it from the backlog.
	registerMapping(t, db, "flipkart", "MYSTERY-1", "WIDGET-B", 1)
	rec = doJSON(e, http.MethodGet, "/api/sales/unmapped?marketplace_id="+strconv.Itoa(int(marketplaceID)), "")
	got.Unmapped = nil
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got.Unmapped) != 0 {
		t.Errorf("unmapped after mapping = %v, want empty", got.Unmapped)
	}
}

func TestUnmappedStagingIdempotent(t *testing.T) {
	e, db := setup(t)

	// All-unmapped file: no ledger batch, so a re-upload is not caught by
	// the duplicate guard and must not duplicate staged rows.
	body := `{"marketplace":"flipkart","location":"OWN1","rows":[{"sku":"MYSTERY-2","quantity":"1","order id":"OD500"}]}`
	for i := 0; i < 2; i++ {
		rec := doJSON(e, http.MethodPost, "/api/sales/import", body)
		if rec.Code != http.StatusOK {
			t.Fatalf("import %d status = %d, body %s", i, rec.Code, rec.Body.String())
		}
	}
	var count int64
	if err := db.Model(&salesEntity.OrderItem{}).
		Where("order_id = ? AND sku = ?", "OD500", "MYSTERY-2").
		Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Errorf("staged rows = %d, want 1", count)
	}
}

func TestSalesImportEmptyRows(t *testing.T) {
	e, _ := setup(t)
	rec := doJSON(e, http.MethodPost, "/api/sales/import", `{"rows":[]}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}
