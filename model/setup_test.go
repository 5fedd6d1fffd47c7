package model

import (
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"wms.GO/model/entity"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func TestSeedIsIdempotent(t *testing.T) {
	db := testDB(t)
	if err := Seed(db); err != nil {
		t.Fatalf("Seed: %v", err)
	}
	if err := Seed(db); err != nil {
		t.Fatalf("second Seed: %v", err)
	}

	var marketplaces int64
	db.Model(&entity.Marketplace{}).Count(&marketplaces)
	if marketplaces != 4 {
		t.Errorf("marketplaces = %d, want 4", marketplaces)
	}
	var locations int64
	db.Model(&entity.Location{}).Count(&locations)
	if locations != 3 {
		t.Errorf("locations = %d, want 3", locations)
	}
}

func TestMarketplaceIDFallsBackToUnknown(t *testing.T) {
	db := testDB(t)
	if err := Seed(db); err != nil {
		t.Fatalf("Seed: %v", err)
	}

	amazonID, err := MarketplaceID(db, "amazon")
	if err != nil {
		t.Fatalf("MarketplaceID(amazon): %v", err)
	}
	unknownID, err := MarketplaceID(db, "unknown")
	if err != nil {
		t.Fatalf("MarketplaceID(unknown): %v", err)
	}
	got, err := MarketplaceID(db, "ebay")
	if err != nil {
		t.Fatalf("MarketplaceID(ebay): %v", err)
	}
	if got != unknownID || got == amazonID {
		t.Errorf("ebay resolved to %d, want unknown (%d)", got, unknownID)
	}
}

func TestLocationIDByCode(t *testing.T) {
	db := testDB(t)
	if err := Seed(db); err != nil {
		t.Fatalf("Seed: %v", err)
	}

	id, err := LocationIDByCode(db, "BOM7")
	if err != nil || id == 0 {
		t.Errorf("BOM7 = (%d, %v)", id, err)
	}
	if _, err := LocationIDByCode(db, "XXX"); err == nil {
		t.Error("unknown code should fail")
	}
}
