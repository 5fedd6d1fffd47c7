package inventory

import "time"

// Record represents the inventory table: the cached stock level per
// (msku, location). The transaction log is the source of truth; this row is
// a derived value and always recomputable from it.
type Record struct {
	ID         uint      `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	MSKU       string    `gorm:"column:msku;type:varchar(64);not null;uniqueIndex:uniq_msku_location" json:"msku"`
	LocationID uint      `gorm:"column:location_id;not null;uniqueIndex:uniq_msku_location" json:"location_id"`
	Quantity   int       `gorm:"column:quantity;not null;default:0" json:"quantity"`
	Clamped    bool      `gorm:"column:clamped;not null;default:false" json:"clamped"`
	UpdatedAt  time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Record) TableName() string {
	return "inventory"
}
