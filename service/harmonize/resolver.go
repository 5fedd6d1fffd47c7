package harmonize

import (
	"wms.GO/core/errs"
	catalogRepo "wms.GO/model/repository/catalog"
	mappingRepo "wms.GO/model/repository/mapping"
)

// Expanded is one (msku, quantity) line produced by combo expansion.
type Expanded struct {
	MSKU     string
	Quantity int
}

// ComboResolver expands a combo SKU into its catalog components. It holds
// no policy: whether a missing component leads to a placeholder or to a
// deferred line is the engine's call.
type ComboResolver struct {
	mappings *mappingRepo.MappingRepository
	catalog  *catalogRepo.CatalogRepository
}

func NewComboResolver(mappings *mappingRepo.MappingRepository, catalog *catalogRepo.CatalogRepository) *ComboResolver {
	return &ComboResolver{mappings: mappings, catalog: catalog}
}

// IsCombo reports whether (marketplace, sku) is a registered combo SKU.
// A single-component combo is still a combo: classification is sticky and
// exclusive with direct mapping.
func (r *ComboResolver) IsCombo(marketplaceID uint, sku string) (bool, error) {
	return r.mappings.IsCombo(marketplaceID, sku)
}

// Expand multiplies each component's per-combo quantity by quantitySold.
// Components come back in the combo's defined order (stable, not sorted,
// preserving operator intent). Fails with UnresolvedComponentError if any
// component msku is missing from the catalog.
func (r *ComboResolver) Expand(marketplaceID uint, sku string, quantitySold int) ([]Expanded, error) {
	if quantitySold < 1 {
		return nil, &errs.ValidationError{Field: "quantity_sold", Reason: "must be a positive integer"}
	}

	components, err := r.mappings.Components(marketplaceID, sku)
	if err != nil {
		return nil, err
	}
	if len(components) == 0 {
		return nil, &errs.ValidationError{Field: "sku", Reason: "not a combo SKU"}
	}

	mskus := make([]string, 0, len(components))
	for _, c := range components {
		mskus = append(mskus, c.MSKU)
	}
	present, err := r.catalog.ExistsAll(mskus)
	if err != nil {
		return nil, &errs.BackendUnavailableError{Op: "catalog check", Err: err}
	}

	out := make([]Expanded, 0, len(components))
	for _, c := range components {
		if !present[c.MSKU] {
			return nil, &errs.UnresolvedComponentError{ComboSKU: sku, MSKU: c.MSKU}
		}
		out = append(out, Expanded{MSKU: c.MSKU, Quantity: c.Quantity * quantitySold})
	}
	return out, nil
}
