package model

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"wms.GO/model/entity"
	"wms.GO/model/entity/catalog"
	"wms.GO/model/entity/inventory"
	"wms.GO/model/entity/mapping"
	"wms.GO/model/entity/sales"
)

// Migrate creates or updates all warehouse tables.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&entity.Marketplace{},
		&entity.Location{},
		&catalog.Product{},
		&mapping.SkuMapping{},
		&mapping.ComboDefinition{},
		&mapping.ComboComponent{},
		&mapping.MappingAudit{},
		&inventory.Record{},
		&inventory.Transaction{},
		&sales.Order{},
		&sales.OrderItem{},
	)
}

// Seed inserts the baseline marketplaces and locations. Existing rows are
// left alone, so it is safe to run at every startup.
func Seed(db *gorm.DB) error {
	marketplaces := []string{"amazon", "flipkart", "meesho", "unknown"}
	for _, name := range marketplaces {
		var m entity.Marketplace
		err := db.Where("name = ?", name).First(&m).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			if err := db.Create(&entity.Marketplace{Name: name}).Error; err != nil {
				return fmt.Errorf("seed marketplace %s: %w", name, err)
			}
			continue
		}
		if err != nil {
			return err
		}
	}

	locations := []entity.Location{
		{Code: "BOM7", Name: "Bombay fulfilment center"},
		{Code: "DEL1", Name: "Delhi fulfilment center"},
		{Code: "OWN1", Name: "Own warehouse"},
	}
	for _, l := range locations {
		var existing entity.Location
		err := db.Where("code = ?", l.Code).First(&existing).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			if err := db.Create(&l).Error; err != nil {
				return fmt.Errorf("seed location %s: %w", l.Code, err)
			}
			continue
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// MarketplaceID resolves a marketplace name to its id. Unknown names fall
// back to the "unknown" marketplace.
func MarketplaceID(db *gorm.DB, name string) (uint, error) {
	var m entity.Marketplace
	err := db.Where("name = ?", name).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		if name == "unknown" {
			return 0, fmt.Errorf("marketplaces not seeded")
		}
		return MarketplaceID(db, "unknown")
	}
	if err != nil {
		return 0, err
	}
	return m.ID, nil
}

// LocationIDByCode resolves a location code to its id.
func LocationIDByCode(db *gorm.DB, code string) (uint, error) {
	var l entity.Location
	if err := db.Where("code = ?", code).First(&l).Error; err != nil {
		return 0, fmt.Errorf("location %q: %w", code, err)
	}
	return l.ID, nil
}
