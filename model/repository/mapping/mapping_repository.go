package mapping

import (
	"encoding/json"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"wms.GO/core/errs"
	mappingEntity "wms.GO/model/entity/mapping"
)

type MappingRepository struct {
	db *gorm.DB
}

func NewMappingRepository(db *gorm.DB) *MappingRepository {
	return &MappingRepository{db: db}
}

// Lookup resolves (marketplace, sku) to (msku, units_per_sku). No side
// effects. ok is false when no direct mapping exists.
func (r *MappingRepository) Lookup(marketplaceID uint, sku string) (msku string, unitsPerSKU int, ok bool, err error) {
	var m mappingEntity.SkuMapping
	e := r.db.Where("marketplace_id = ? AND sku = ?", marketplaceID, sku).First(&m).Error
	if e != nil {
		if errors.Is(e, gorm.ErrRecordNotFound) {
			return "", 0, false, nil
		}
		return "", 0, false, &errs.BackendUnavailableError{Op: "mapping lookup", Err: e}
	}
	return m.MSKU, m.UnitsPerSKU, true, nil
}

// Upsert creates or replaces a direct mapping. Fails with ConflictError if
// the sku is defined as a combo for that marketplace. The prior value (if
// any) is recorded in mapping_audit; remaps are never silent.
func (r *MappingRepository) Upsert(marketplaceID uint, sku, msku string, unitsPerSKU int) error {
	if sku == "" {
		return &errs.ValidationError{Field: "sku", Reason: "must not be empty"}
	}
	if msku == "" {
		return &errs.ValidationError{Field: "msku", Reason: "must not be empty"}
	}
	if unitsPerSKU < 1 {
		return &errs.ValidationError{Field: "units_per_sku", Reason: fmt.Sprintf("must be a positive integer, got %d", unitsPerSKU)}
	}

	return r.db.Transaction(func(tx *gorm.DB) error {
		var comboCount int64
		if err := tx.Model(&mappingEntity.ComboDefinition{}).
			Where("marketplace_id = ? AND sku = ?", marketplaceID, sku).
			Count(&comboCount).Error; err != nil {
			return &errs.BackendUnavailableError{Op: "combo check", Err: err}
		}
		if comboCount > 0 {
			return &errs.ConflictError{MarketplaceID: marketplaceID, SKU: sku, Reason: "already defined as a combo SKU"}
		}

		audit := mappingEntity.MappingAudit{
			MarketplaceID: marketplaceID,
			SKU:           sku,
			Action:        "create",
			NewMSKU:       msku,
			NewUnits:      unitsPerSKU,
		}

		var existing mappingEntity.SkuMapping
		err := tx.Where("marketplace_id = ? AND sku = ?", marketplaceID, sku).First(&existing).Error
		switch {
		case err == nil:
			prior, _ := json.Marshal(map[string]interface{}{
				"msku":          existing.MSKU,
				"units_per_sku": existing.UnitsPerSKU,
			})
			audit.Action = "remap"
			audit.PriorValue = prior
			existing.MSKU = msku
			existing.UnitsPerSKU = unitsPerSKU
			if err := tx.Save(&existing).Error; err != nil {
				return &errs.BackendUnavailableError{Op: "mapping update", Err: err}
			}
		case errors.Is(err, gorm.ErrRecordNotFound):
			m := mappingEntity.SkuMapping{
				MarketplaceID: marketplaceID,
				SKU:           sku,
				MSKU:          msku,
				UnitsPerSKU:   unitsPerSKU,
			}
			if err := tx.Create(&m).Error; err != nil {
				return &errs.BackendUnavailableError{Op: "mapping insert", Err: err}
			}
		default:
			return &errs.BackendUnavailableError{Op: "mapping lookup", Err: err}
		}

		if err := tx.Create(&audit).Error; err != nil {
			return &errs.BackendUnavailableError{Op: "mapping audit", Err: err}
		}
		return nil
	})
}

// UnmappedCandidates returns the subset of skus with neither a direct
// mapping nor a combo definition for the marketplace. Pure query.
func (r *MappingRepository) UnmappedCandidates(marketplaceID uint, skus []string) ([]string, error) {
	if len(skus) == 0 {
		return nil, nil
	}
	var mapped []string
	if err := r.db.Model(&mappingEntity.SkuMapping{}).
		Where("marketplace_id = ? AND sku IN ?", marketplaceID, skus).
		Pluck("sku", &mapped).Error; err != nil {
		return nil, &errs.BackendUnavailableError{Op: "mapped query", Err: err}
	}
	var combos []string
	if err := r.db.Model(&mappingEntity.ComboDefinition{}).
		Where("marketplace_id = ? AND sku IN ?", marketplaceID, skus).
		Pluck("sku", &combos).Error; err != nil {
		return nil, &errs.BackendUnavailableError{Op: "combo query", Err: err}
	}

	known := make(map[string]bool, len(mapped)+len(combos))
	for _, s := range mapped {
		known[s] = true
	}
	for _, s := range combos {
		known[s] = true
	}

	var out []string
	seen := make(map[string]bool, len(skus))
	for _, s := range skus {
		if !known[s] && !seen[s] {
			out = append(out, s)
			seen[s] = true
		}
	}
	return out, nil
}

// IsCombo reports whether (marketplace, sku) is registered as a combo SKU.
func (r *MappingRepository) IsCombo(marketplaceID uint, sku string) (bool, error) {
	var count int64
	err := r.db.Model(&mappingEntity.ComboDefinition{}).
		Where("marketplace_id = ? AND sku = ?", marketplaceID, sku).
		Count(&count).Error
	if err != nil {
		return false, &errs.BackendUnavailableError{Op: "combo check", Err: err}
	}
	return count > 0, nil
}

// Components returns the combo's components in defined (position) order.
func (r *MappingRepository) Components(marketplaceID uint, sku string) ([]mappingEntity.ComboComponent, error) {
	var combo mappingEntity.ComboDefinition
	err := r.db.Where("marketplace_id = ? AND sku = ?", marketplaceID, sku).First(&combo).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, &errs.BackendUnavailableError{Op: "combo lookup", Err: err}
	}
	var components []mappingEntity.ComboComponent
	err = r.db.Where("combo_id = ?", combo.ID).Order("position").Find(&components).Error
	if err != nil {
		return nil, &errs.BackendUnavailableError{Op: "components lookup", Err: err}
	}
	return components, nil
}

// DefineCombo creates or replaces a combo definition. Fails with
// ConflictError if a direct mapping already claims the sku. Component edits
// apply prospectively only: ledger transactions carry copies of expanded
// quantities, so replacing components never rewrites posted history.
func (r *MappingRepository) DefineCombo(marketplaceID uint, sku string, components []mappingEntity.ComboComponent) error {
	if sku == "" {
		return &errs.ValidationError{Field: "sku", Reason: "must not be empty"}
	}
	if len(components) == 0 {
		return &errs.ValidationError{Field: "components", Reason: "combo needs at least one component"}
	}
	for _, c := range components {
		if c.MSKU == "" {
			return &errs.ValidationError{Field: "components", Reason: "component msku must not be empty"}
		}
		if c.Quantity < 1 {
			return &errs.ValidationError{Field: "components", Reason: fmt.Sprintf("component %s quantity must be >= 1, got %d", c.MSKU, c.Quantity)}
		}
	}

	return r.db.Transaction(func(tx *gorm.DB) error {
		var mappedCount int64
		if err := tx.Model(&mappingEntity.SkuMapping{}).
			Where("marketplace_id = ? AND sku = ?", marketplaceID, sku).
			Count(&mappedCount).Error; err != nil {
			return &errs.BackendUnavailableError{Op: "mapping check", Err: err}
		}
		if mappedCount > 0 {
			return &errs.ConflictError{MarketplaceID: marketplaceID, SKU: sku, Reason: "already defined as a direct mapping"}
		}

		var combo mappingEntity.ComboDefinition
		err := tx.Where("marketplace_id = ? AND sku = ?", marketplaceID, sku).First(&combo).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			combo = mappingEntity.ComboDefinition{MarketplaceID: marketplaceID, SKU: sku}
			if err := tx.Create(&combo).Error; err != nil {
				return &errs.BackendUnavailableError{Op: "combo insert", Err: err}
			}
		case err != nil:
			return &errs.BackendUnavailableError{Op: "combo lookup", Err: err}
		default:
			// Replace components; posted transactions are unaffected.
			if err := tx.Where("combo_id = ?", combo.ID).Delete(&mappingEntity.ComboComponent{}).Error; err != nil {
				return &errs.BackendUnavailableError{Op: "components purge", Err: err}
			}
		}

		for i := range components {
			components[i].ID = 0
			components[i].ComboID = combo.ID
			components[i].Position = i
		}
		if err := tx.Create(&components).Error; err != nil {
			return &errs.BackendUnavailableError{Op: "components insert", Err: err}
		}
		return nil
	})
}

// SKUsForMSKU is the reverse lookup: every marketplace SKU mapped to msku.
func (r *MappingRepository) SKUsForMSKU(msku string) ([]mappingEntity.SkuMapping, error) {
	var out []mappingEntity.SkuMapping
	err := r.db.Where("msku = ?", msku).Order("marketplace_id, sku").Find(&out).Error
	if err != nil {
		return nil, &errs.BackendUnavailableError{Op: "reverse lookup", Err: err}
	}
	return out, nil
}

// AuditTrail returns the audit rows for (marketplace, sku), oldest first.
func (r *MappingRepository) AuditTrail(marketplaceID uint, sku string) ([]mappingEntity.MappingAudit, error) {
	var out []mappingEntity.MappingAudit
	err := r.db.Where("marketplace_id = ? AND sku = ?", marketplaceID, sku).Order("id").Find(&out).Error
	return out, err
}
