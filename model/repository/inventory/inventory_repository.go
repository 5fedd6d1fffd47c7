package inventory

import (
	"database/sql"
	"time"

	"gorm.io/gorm"

	inventoryEntity "wms.GO/model/entity/inventory"
)

// Key identifies one stock bucket.
type Key struct {
	MSKU       string
	LocationID uint
}

type InventoryRepository struct {
	db    *gorm.DB
	sqlDB *sql.DB
}

func NewInventoryRepository(db *gorm.DB) (*InventoryRepository, error) {
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	return &InventoryRepository{db: db, sqlDB: sqlDB}, nil
}

// CurrentQuantity returns the cached stock level for (msku, location).
// Uses raw SQL for minimal overhead.
func (r *InventoryRepository) CurrentQuantity(msku string, locationID uint) (int, bool) {
	const query = `SELECT quantity FROM inventory WHERE msku = ? AND location_id = ? LIMIT 1`
	var qty sql.NullInt64
	if err := r.sqlDB.QueryRow(query, msku, locationID).Scan(&qty); err != nil || !qty.Valid {
		return 0, false
	}
	return int(qty.Int64), true
}

// Record returns the full cached row using GORM.
func (r *InventoryRepository) Record(msku string, locationID uint) (*inventoryEntity.Record, error) {
	var rec inventoryEntity.Record
	err := r.db.Where("msku = ? AND location_id = ?", msku, locationID).First(&rec).Error
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// AllRecords returns every cached stock row.
func (r *InventoryRepository) AllRecords() ([]inventoryEntity.Record, error) {
	var recs []inventoryEntity.Record
	err := r.db.Order("msku, location_id").Find(&recs).Error
	return recs, err
}

// BatchGetQuantities fetches cached quantities for multiple mskus at one
// location in a single query.
func (r *InventoryRepository) BatchGetQuantities(mskus []string, locationID uint) (map[string]int, error) {
	if len(mskus) == 0 {
		return nil, nil
	}
	result := make(map[string]int, len(mskus))
	rows, err := r.db.Table("inventory").
		Select("msku, quantity").
		Where("location_id = ? AND msku IN ?", locationID, mskus).
		Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var msku string
		var qty int
		if err := rows.Scan(&msku, &qty); err != nil {
			continue
		}
		result[msku] = qty
	}
	return result, nil
}

// SumFromLog sums quantity_change over the transaction log for one key.
// The standing invariant is that this equals the cached quantity.
func (r *InventoryRepository) SumFromLog(msku string, locationID uint) (int, error) {
	const query = `SELECT COALESCE(SUM(quantity_change), 0) FROM inventory_transactions WHERE msku = ? AND location_id = ?`
	var total int
	err := r.sqlDB.QueryRow(query, msku, locationID).Scan(&total)
	return total, err
}

// SumAllFromLog recomputes quantities for every key strictly from the log,
// ignoring the cache. A zero from-time means the full log.
func (r *InventoryRepository) SumAllFromLog(from time.Time) (map[Key]int, error) {
	q := r.db.Table("inventory_transactions").
		Select("msku, location_id, COALESCE(SUM(quantity_change), 0) AS total")
	if !from.IsZero() {
		q = q.Where("transaction_date >= ?", from)
	}
	rows, err := q.Group("msku, location_id").Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[Key]int)
	for rows.Next() {
		var msku string
		var locationID uint
		var total int
		if err := rows.Scan(&msku, &locationID, &total); err != nil {
			return nil, err
		}
		out[Key{MSKU: msku, LocationID: locationID}] = total
	}
	return out, rows.Err()
}

// ReferenceExists reports whether any transaction row is already posted for
// (reference_id, transaction_type). Backs the duplicate-application guard.
func (r *InventoryRepository) ReferenceExists(referenceID, transactionType string) (bool, error) {
	var count int64
	err := r.db.Model(&inventoryEntity.Transaction{}).
		Where("reference_id = ? AND transaction_type = ?", referenceID, transactionType).
		Count(&count).Error
	return count > 0, err
}

// TransactionsByBatch returns all rows written by one apply batch.
func (r *InventoryRepository) TransactionsByBatch(batchID string) ([]inventoryEntity.Transaction, error) {
	var txns []inventoryEntity.Transaction
	err := r.db.Where("batch_id = ?", batchID).Order("id").Find(&txns).Error
	return txns, err
}
