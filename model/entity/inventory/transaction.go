package inventory

import "time"

// Transaction types. Orders decrement stock, returns increment it,
// adjustments and transfers carry a caller-specified sign.
const (
	TxnOrder      = "order"
	TxnReturn     = "return"
	TxnAdjustment = "adjustment"
	TxnTransfer   = "transfer"
)

// Transaction represents the inventory_transactions table. Append-only:
// rows are never updated or deleted; corrections are new offsetting rows.
// Duplicate posting is guarded at batch level on (reference_id,
// transaction_type); a batch may legitimately hold several rows for the
// same msku (e.g. a combo listing a component twice), so there is no
// row-level unique constraint.
type Transaction struct {
	ID              uint      `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	MSKU            string    `gorm:"column:msku;type:varchar(64);not null;index" json:"msku"`
	LocationID      uint      `gorm:"column:location_id;not null;index" json:"location_id"`
	QuantityChange  int       `gorm:"column:quantity_change;not null" json:"quantity_change"`
	TransactionType string    `gorm:"column:transaction_type;type:varchar(16);not null;index:idx_txn_ref" json:"transaction_type"`
	ReferenceID     string    `gorm:"column:reference_id;type:varchar(64);not null;index:idx_txn_ref" json:"reference_id"`
	BatchID         string    `gorm:"column:batch_id;type:varchar(36);not null;index" json:"batch_id"`
	SourceSKU       string    `gorm:"column:source_sku;type:varchar(128)" json:"source_sku,omitempty"`
	Notes           *string   `gorm:"column:notes;type:varchar(255)" json:"notes,omitempty"`
	TransactionDate time.Time `gorm:"column:transaction_date;autoCreateTime" json:"transaction_date"`
}

func (Transaction) TableName() string {
	return "inventory_transactions"
}
