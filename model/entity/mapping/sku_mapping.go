package mapping

import (
	"time"

	"gorm.io/datatypes"
)

// SkuMapping represents the sku_mappings table: a marketplace SKU resolved
// to exactly one master SKU with a units-per-SKU multiplier (multi-packs).
type SkuMapping struct {
	ID            uint      `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	MarketplaceID uint      `gorm:"column:marketplace_id;not null;uniqueIndex:uniq_marketplace_sku" json:"marketplace_id"`
	SKU           string    `gorm:"column:sku;type:varchar(128);not null;uniqueIndex:uniq_marketplace_sku" json:"sku"`
	MSKU          string    `gorm:"column:msku;type:varchar(64);not null;index" json:"msku"`
	UnitsPerSKU   int       `gorm:"column:units_per_sku;not null;default:1" json:"units_per_sku"`
	CreatedAt     time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (SkuMapping) TableName() string {
	return "sku_mappings"
}

// MappingAudit represents the mapping_audit table. One append-only row per
// upsert/remap, holding the prior value (if any) as JSON.
type MappingAudit struct {
	ID            uint           `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	MarketplaceID uint           `gorm:"column:marketplace_id;not null;index:idx_audit_sku" json:"marketplace_id"`
	SKU           string         `gorm:"column:sku;type:varchar(128);not null;index:idx_audit_sku" json:"sku"`
	Action        string         `gorm:"column:action;type:varchar(16);not null" json:"action"` // create|remap
	PriorValue    datatypes.JSON `gorm:"column:prior_value" json:"prior_value,omitempty"`
	NewMSKU       string         `gorm:"column:new_msku;type:varchar(64);not null" json:"new_msku"`
	NewUnits      int            `gorm:"column:new_units;not null;default:1" json:"new_units"`
	CreatedAt     time.Time      `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (MappingAudit) TableName() string {
	return "mapping_audit"
}
