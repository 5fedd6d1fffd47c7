package catalog

import (
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	catalogEntity "wms.GO/model/entity/catalog"
)

func testRepo(t *testing.T) *CatalogRepository {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&catalogEntity.Product{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return NewCatalogRepository(db)
}

func TestRegisterAndFind(t *testing.T) {
	repo := testRepo(t)

	if err := repo.Register(&catalogEntity.Product{MSKU: "WIDGET-A", Name: "Widget A", IsActive: true}); err != nil {
		t.Fatalf("Register: %v", err)
	}
	p, err := repo.FindByMSKU("WIDGET-A")
	if err != nil {
		t.Fatalf("FindByMSKU: %v", err)
	}
	if p.Name != "Widget A" || !p.IsActive {
		t.Errorf("product = %+v", p)
	}

	ok, err := repo.Exists("WIDGET-A")
	if err != nil || !ok {
		t.Errorf("Exists = (%v, %v)", ok, err)
	}
	ok, _ = repo.Exists("NOPE")
	if ok {
		t.Error("NOPE should not exist")
	}
}

func TestExistsAll(t *testing.T) {
	repo := testRepo(t)
	_ = repo.Register(&catalogEntity.Product{MSKU: "A", Name: "A", IsActive: true})
	_ = repo.Register(&catalogEntity.Product{MSKU: "B", Name: "B", IsActive: true})

	got, err := repo.ExistsAll([]string{"A", "B", "C"})
	if err != nil {
		t.Fatalf("ExistsAll: %v", err)
	}
	if !got["A"] || !got["B"] || got["C"] {
		t.Errorf("ExistsAll = %v", got)
	}
}

func TestEnsurePlaceholder(t *testing.T) {
	repo := testRepo(t)

	if err := repo.EnsurePlaceholder("GHOST-1"); err != nil {
		t.Fatalf("EnsurePlaceholder: %v", err)
	}
	p, err := repo.FindByMSKU("GHOST-1")
	if err != nil {
		t.Fatalf("FindByMSKU: %v", err)
	}
	if !p.Placeholder {
		t.Error("product should be flagged as placeholder")
	}

	// Idempotent and never downgrades a real product.
	_ = repo.Register(&catalogEntity.Product{MSKU: "REAL-1", Name: "Real", IsActive: true})
	if err := repo.EnsurePlaceholder("REAL-1"); err != nil {
		t.Fatalf("EnsurePlaceholder existing: %v", err)
	}
	p, _ = repo.FindByMSKU("REAL-1")
	if p.Placeholder {
		t.Error("existing product must not become a placeholder")
	}
}

func TestSearch(t *testing.T) {
	repo := testRepo(t)
	_ = repo.Register(&catalogEntity.Product{MSKU: "WIDGET-BLUE", Name: "Blue Widget", IsActive: true})
	_ = repo.Register(&catalogEntity.Product{MSKU: "GADGET-1", Name: "Gadget", IsActive: true})

	found, err := repo.Search("widget", 0)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(found) != 1 || found[0].MSKU != "WIDGET-BLUE" {
		t.Errorf("found = %+v", found)
	}
}

func TestDeactivate(t *testing.T) {
	repo := testRepo(t)
	_ = repo.Register(&catalogEntity.Product{MSKU: "WIDGET-A", Name: "A", IsActive: true})

	if err := repo.Deactivate("WIDGET-A"); err != nil {
		t.Fatalf("Deactivate: %v", err)
	}
	p, err := repo.FindByMSKU("WIDGET-A")
	if err != nil {
		t.Fatalf("row should survive deactivation: %v", err)
	}
	if p.IsActive {
		t.Error("product should be inactive")
	}
}
