package entity

import "time"

// Marketplace represents the marketplaces table. Seeded on migrate with the
// channels the normalizers understand plus a catch-all "unknown".
type Marketplace struct {
	ID          uint      `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Name        string    `gorm:"column:name;type:varchar(64);not null;uniqueIndex" json:"name"`
	Description *string   `gorm:"column:description;type:varchar(255)" json:"description,omitempty"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (Marketplace) TableName() string {
	return "marketplaces"
}
