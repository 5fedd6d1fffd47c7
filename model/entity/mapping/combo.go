package mapping

import "time"

// ComboDefinition represents the combos table: a marketplace SKU that sells
// a bundle of catalog items. Mutually exclusive with a direct SkuMapping for
// the same (marketplace_id, sku).
type ComboDefinition struct {
	ID            uint             `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	MarketplaceID uint             `gorm:"column:marketplace_id;not null;uniqueIndex:uniq_combo_sku" json:"marketplace_id"`
	SKU           string           `gorm:"column:sku;type:varchar(128);not null;uniqueIndex:uniq_combo_sku" json:"sku"`
	Components    []ComboComponent `gorm:"foreignKey:ComboID" json:"components"`
	CreatedAt     time.Time        `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time        `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (ComboDefinition) TableName() string {
	return "combos"
}

// ComboComponent is one (msku, quantity) line of a combo. Position preserves
// the operator-defined order; expansion returns components in this order.
type ComboComponent struct {
	ID       uint   `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	ComboID  uint   `gorm:"column:combo_id;not null;index" json:"combo_id"`
	Position int    `gorm:"column:position;not null" json:"position"`
	MSKU     string `gorm:"column:msku;type:varchar(64);not null" json:"msku"`
	Quantity int    `gorm:"column:quantity;not null;default:1" json:"quantity"`
}

func (ComboComponent) TableName() string {
	return "combo_components"
}
