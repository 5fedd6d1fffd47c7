package sales

import "time"

// Order represents the orders table: one row per marketplace order seen in
// an ingested sales export. Written after a successful ledger apply.
type Order struct {
	OrderID       string     `gorm:"column:order_id;type:varchar(64);primaryKey" json:"order_id"`
	MarketplaceID uint       `gorm:"column:marketplace_id;not null;index" json:"marketplace_id"`
	OrderDate     *time.Time `gorm:"column:order_date" json:"order_date,omitempty"`
	CustomerState *string    `gorm:"column:customer_state;type:varchar(64)" json:"customer_state,omitempty"`
	Status        string     `gorm:"column:status;type:varchar(32);not null;default:completed" json:"status"`
	CreatedAt     time.Time  `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (Order) TableName() string {
	return "orders"
}

// OrderItem represents the order_items table: resolved line items, one per
// expanded (msku, quantity) line, keeping the source marketplace SKU.
// Unmapped lines are staged here too, with an empty msku, so the mapping
// backlog persists across imports until the operator maps the SKU.
type OrderItem struct {
	ID        uint      `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	OrderID   string    `gorm:"column:order_id;type:varchar(64);not null;index" json:"order_id"`
	MSKU      string    `gorm:"column:msku;type:varchar(64);not null;index" json:"msku"`
	SKU       string    `gorm:"column:sku;type:varchar(128);not null" json:"sku"`
	Quantity  int       `gorm:"column:quantity;not null" json:"quantity"`
	Price     float64   `gorm:"column:price;type:decimal(12,2);not null;default:0" json:"price"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (OrderItem) TableName() string {
	return "order_items"
}
