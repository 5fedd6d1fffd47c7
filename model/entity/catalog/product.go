package catalog

import "time"

// Product represents the products table, keyed by the master SKU. Products
// are never deleted; deactivation is a soft flag.
type Product struct {
	MSKU        string    `gorm:"column:msku;type:varchar(64);primaryKey" json:"msku"`
	Name        string    `gorm:"column:name;type:varchar(255)" json:"name"`
	Category    *string   `gorm:"column:category;type:varchar(128)" json:"category,omitempty"`
	TaxCode     *string   `gorm:"column:tax_code;type:varchar(32)" json:"tax_code,omitempty"`
	IsActive    bool      `gorm:"column:is_active;not null;default:true" json:"is_active"`
	Placeholder bool      `gorm:"column:placeholder;not null;default:false" json:"placeholder"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Product) TableName() string {
	return "products"
}
