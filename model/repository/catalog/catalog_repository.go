package catalog

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	catalogEntity "wms.GO/model/entity/catalog"
)

type CatalogRepository struct {
	db *gorm.DB
}

func NewCatalogRepository(db *gorm.DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

// FindByMSKU returns the product or gorm.ErrRecordNotFound.
func (r *CatalogRepository) FindByMSKU(msku string) (*catalogEntity.Product, error) {
	var p catalogEntity.Product
	if err := r.db.Where("msku = ?", msku).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// Exists reports whether an msku is registered in the catalog.
func (r *CatalogRepository) Exists(msku string) (bool, error) {
	var count int64
	err := r.db.Model(&catalogEntity.Product{}).Where("msku = ?", msku).Count(&count).Error
	return count > 0, err
}

// ExistsAll batch-checks a set of mskus and returns the present subset.
func (r *CatalogRepository) ExistsAll(mskus []string) (map[string]bool, error) {
	out := make(map[string]bool, len(mskus))
	if len(mskus) == 0 {
		return out, nil
	}
	var found []string
	err := r.db.Model(&catalogEntity.Product{}).Where("msku IN ?", mskus).Pluck("msku", &found).Error
	if err != nil {
		return nil, err
	}
	for _, m := range found {
		out[m] = true
	}
	return out, nil
}

// Register creates a product. First mapping to an unknown msku goes through
// here; explicit registration overwrites placeholder status.
func (r *CatalogRepository) Register(p *catalogEntity.Product) error {
	if p.MSKU == "" {
		return fmt.Errorf("msku is required")
	}
	return r.db.Create(p).Error
}

// EnsurePlaceholder creates a placeholder product for msku if the catalog
// does not know it yet. Used when an operator maps a SKU to a not-yet
// registered master SKU.
func (r *CatalogRepository) EnsurePlaceholder(msku string) error {
	var existing catalogEntity.Product
	err := r.db.Where("msku = ?", msku).First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	return r.db.Create(&catalogEntity.Product{MSKU: msku, Name: msku, Placeholder: true}).Error
}

// Deactivate soft-disables a product. Products are never deleted.
func (r *CatalogRepository) Deactivate(msku string) error {
	return r.db.Model(&catalogEntity.Product{}).Where("msku = ?", msku).Update("is_active", false).Error
}

// All returns the full catalog ordered by msku.
func (r *CatalogRepository) All() ([]catalogEntity.Product, error) {
	var products []catalogEntity.Product
	err := r.db.Order("msku").Find(&products).Error
	return products, err
}

// Search filters products by a name/msku substring (triage helper; the
// Elasticsearch resolver covers the richer case).
func (r *CatalogRepository) Search(term string, limit int) ([]catalogEntity.Product, error) {
	if limit <= 0 {
		limit = 20
	}
	var products []catalogEntity.Product
	like := "%" + term + "%"
	err := r.db.Where("msku LIKE ? OR name LIKE ?", like, like).Order("msku").Limit(limit).Find(&products).Error
	return products, err
}
