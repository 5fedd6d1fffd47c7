package harmonize

import (
	"errors"
	"testing"

	"wms.GO/core/errs"
	mappingEntity "wms.GO/model/entity/mapping"
	catalogRepo "wms.GO/model/repository/catalog"
	mappingRepo "wms.GO/model/repository/mapping"
)

func TestExpandScalesComponents(t *testing.T) {
	_, db := testEngine(t)
	registerProduct(t, db, "WIDGET-A")
	registerProduct(t, db, "WIDGET-B")
	mappings := mappingRepo.NewMappingRepository(db)
	err := mappings.DefineCombo(1, "COMBO-1", []mappingEntity.ComboComponent{
		{MSKU: "WIDGET-A", Quantity: 2},
		{MSKU: "WIDGET-B", Quantity: 1},
	})
	if err != nil {
		t.Fatalf("DefineCombo: %v", err)
	}

	resolver := NewComboResolver(mappings, catalogRepo.NewCatalogRepository(db))
	expanded, err := resolver.Expand(1, "COMBO-1", 4)
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	want := []Expanded{{MSKU: "WIDGET-A", Quantity: 8}, {MSKU: "WIDGET-B", Quantity: 4}}
	if len(expanded) != len(want) {
		t.Fatalf("expanded = %+v", expanded)
	}
	for i := range want {
		if expanded[i] != want[i] {
			t.Errorf("expanded[%d] = %+v, want %+v", i, expanded[i], want[i])
		}
	}
}

func TestExpandUnresolvedComponent(t *testing.T) {
	_, db := testEngine(t)
	registerProduct(t, db, "WIDGET-A")
	mappings := mappingRepo.NewMappingRepository(db)
	err := mappings.DefineCombo(1, "COMBO-BAD", []mappingEntity.ComboComponent{
		{MSKU: "WIDGET-A", Quantity: 1},
		{MSKU: "MISSING", Quantity: 2},
	})
	if err != nil {
		t.Fatalf("DefineCombo: %v", err)
	}

	resolver := NewComboResolver(mappings, catalogRepo.NewCatalogRepository(db))
	_, err = resolver.Expand(1, "COMBO-BAD", 1)
	var uerr *errs.UnresolvedComponentError
	if !errors.As(err, &uerr) {
		t.Fatalf("got %v, want UnresolvedComponentError", err)
	}
	if uerr.ComboSKU != "COMBO-BAD" || uerr.MSKU != "MISSING" {
		t.Errorf("error detail = %+v", uerr)
	}
}

func TestExpandRejectsBadQuantity(t *testing.T) {
	_, db := testEngine(t)
	mappings := mappingRepo.NewMappingRepository(db)
	resolver := NewComboResolver(mappings, catalogRepo.NewCatalogRepository(db))

	var verr *errs.ValidationError
	if _, err := resolver.Expand(1, "COMBO-1", 0); !errors.As(err, &verr) {
		t.Errorf("got %v, want ValidationError", err)
	}
}
