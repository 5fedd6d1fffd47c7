package entity

import "time"

// Location represents the locations table (warehouses/fulfillment centers).
type Location struct {
	ID        uint      `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Name      string    `gorm:"column:name;type:varchar(128);not null" json:"name"`
	Code      string    `gorm:"column:code;type:varchar(16);not null;uniqueIndex" json:"code"`
	Address   *string   `gorm:"column:address;type:varchar(255)" json:"address,omitempty"`
	City      *string   `gorm:"column:city;type:varchar(64)" json:"city,omitempty"`
	State     *string   `gorm:"column:state;type:varchar(64)" json:"state,omitempty"`
	Country   *string   `gorm:"column:country;type:varchar(2)" json:"country,omitempty"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (Location) TableName() string {
	return "locations"
}
