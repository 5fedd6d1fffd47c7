package inventory

import (
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	inventoryEntity "wms.GO/model/entity/inventory"
)

func testRepo(t *testing.T) (*InventoryRepository, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&inventoryEntity.Record{}, &inventoryEntity.Transaction{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	repo, err := NewInventoryRepository(db)
	if err != nil {
		t.Fatalf("NewInventoryRepository: %v", err)
	}
	return repo, db
}

func seedTxn(t *testing.T, db *gorm.DB, msku string, loc uint, qty int, txnType, ref string) {
	t.Helper()
	err := db.Create(&inventoryEntity.Transaction{
		MSKU:            msku,
		LocationID:      loc,
		QuantityChange:  qty,
		TransactionType: txnType,
		ReferenceID:     ref,
		BatchID:         "batch-test",
	}).Error
	if err != nil {
		t.Fatalf("seed txn: %v", err)
	}
}

func TestCurrentQuantity(t *testing.T) {
	repo, db := testRepo(t)

	if qty, ok := repo.CurrentQuantity("WIDGET-A", 1); ok || qty != 0 {
		t.Errorf("missing record = (%d, %v), want (0, false)", qty, ok)
	}

	if err := db.Create(&inventoryEntity.Record{MSKU: "WIDGET-A", LocationID: 1, Quantity: 7}).Error; err != nil {
		t.Fatalf("create record: %v", err)
	}
	qty, ok := repo.CurrentQuantity("WIDGET-A", 1)
	if !ok || qty != 7 {
		t.Errorf("CurrentQuantity = (%d, %v), want (7, true)", qty, ok)
	}
}

func TestSumFromLog(t *testing.T) {
	repo, db := testRepo(t)

	seedTxn(t, db, "WIDGET-A", 1, 10, "adjustment", "adj-1")
	seedTxn(t, db, "WIDGET-A", 1, -3, "order", "ord-1")
	seedTxn(t, db, "WIDGET-A", 2, 5, "adjustment", "adj-2")

	sum, err := repo.SumFromLog("WIDGET-A", 1)
	if err != nil {
		t.Fatalf("SumFromLog: %v", err)
	}
	if sum != 7 {
		t.Errorf("sum = %d, want 7", sum)
	}

	// Empty log sums to zero, not an error.
	sum, err = repo.SumFromLog("WIDGET-Z", 1)
	if err != nil || sum != 0 {
		t.Errorf("empty sum = (%d, %v), want (0, nil)", sum, err)
	}
}

func TestSumAllFromLog(t *testing.T) {
	repo, db := testRepo(t)

	seedTxn(t, db, "WIDGET-A", 1, 10, "adjustment", "adj-1")
	seedTxn(t, db, "WIDGET-A", 1, -4, "order", "ord-1")
	seedTxn(t, db, "WIDGET-B", 2, 3, "return", "ret-1")

	all, err := repo.SumAllFromLog(time.Time{})
	if err != nil {
		t.Fatalf("SumAllFromLog: %v", err)
	}
	if got := all[Key{MSKU: "WIDGET-A", LocationID: 1}]; got != 6 {
		t.Errorf("WIDGET-A@1 = %d, want 6", got)
	}
	if got := all[Key{MSKU: "WIDGET-B", LocationID: 2}]; got != 3 {
		t.Errorf("WIDGET-B@2 = %d, want 3", got)
	}
}

func TestReferenceExists(t *testing.T) {
	repo, db := testRepo(t)

	seedTxn(t, db, "WIDGET-A", 1, -1, "order", "ord-9")

	ok, err := repo.ReferenceExists("ord-9", "order")
	if err != nil || !ok {
		t.Errorf("ReferenceExists(order) = (%v, %v), want (true, nil)", ok, err)
	}
	// Same reference under another type is allowed (order then return).
	ok, err = repo.ReferenceExists("ord-9", "return")
	if err != nil || ok {
		t.Errorf("ReferenceExists(return) = (%v, %v), want (false, nil)", ok, err)
	}
}

func TestBatchGetQuantities(t *testing.T) {
	repo, db := testRepo(t)

	_ = db.Create(&inventoryEntity.Record{MSKU: "WIDGET-A", LocationID: 1, Quantity: 4}).Error
	_ = db.Create(&inventoryEntity.Record{MSKU: "WIDGET-B", LocationID: 1, Quantity: 9}).Error

	got, err := repo.BatchGetQuantities([]string{"WIDGET-A", "WIDGET-B", "WIDGET-C"}, 1)
	if err != nil {
		t.Fatalf("BatchGetQuantities: %v", err)
	}
	if got["WIDGET-A"] != 4 || got["WIDGET-B"] != 9 {
		t.Errorf("quantities = %v", got)
	}
	if _, present := got["WIDGET-C"]; present {
		t.Error("absent msku should not be in result")
	}
}

func TestTransactionsByBatch(t *testing.T) {
	repo, db := testRepo(t)

	seedTxn(t, db, "WIDGET-A", 1, -1, "order", "ord-1")
	seedTxn(t, db, "WIDGET-B", 1, -2, "order", "ord-1")

	rows, err := repo.TransactionsByBatch("batch-test")
	if err != nil {
		t.Fatalf("TransactionsByBatch: %v", err)
	}
	if len(rows) != 2 {
		t.Errorf("rows = %d, want 2", len(rows))
	}
}
