package mapping

import (
	"errors"
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"wms.GO/core/errs"
	mappingEntity "wms.GO/model/entity/mapping"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(
		&mappingEntity.SkuMapping{},
		&mappingEntity.ComboDefinition{},
		&mappingEntity.ComboComponent{},
		&mappingEntity.MappingAudit{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func TestUpsertAndLookup(t *testing.T) {
	repo := NewMappingRepository(testDB(t))

	if err := repo.Upsert(1, "AMZ-001", "WIDGET-A", 1); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	msku, units, ok, err := repo.Lookup(1, "AMZ-001")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if !ok || msku != "WIDGET-A" || units != 1 {
		t.Errorf("Lookup = (%q, %d, %v)", msku, units, ok)
	}

	// Same sku on another marketplace is a distinct mapping.
	if _, _, ok, _ := repo.Lookup(2, "AMZ-001"); ok {
		t.Error("marketplace 2 should have no mapping")
	}
}

func TestUpsertRemapWritesAudit(t *testing.T) {
	repo := NewMappingRepository(testDB(t))

	if err := repo.Upsert(1, "AMZ-001", "WIDGET-A", 1); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if err := repo.Upsert(1, "AMZ-001", "WIDGET-B", 3); err != nil {
		t.Fatalf("remap: %v", err)
	}

	msku, units, ok, _ := repo.Lookup(1, "AMZ-001")
	if !ok || msku != "WIDGET-B" || units != 3 {
		t.Errorf("after remap Lookup = (%q, %d, %v)", msku, units, ok)
	}

	trail, err := repo.AuditTrail(1, "AMZ-001")
	if err != nil {
		t.Fatalf("AuditTrail: %v", err)
	}
	if len(trail) != 2 {
		t.Fatalf("audit rows = %d, want 2", len(trail))
	}
	var actions []string
	for _, a := range trail {
		actions = append(actions, a.Action)
	}
	foundRemap := false
	for _, a := range actions {
		if a == "remap" {
			foundRemap = true
		}
	}
	if !foundRemap {
		t.Errorf("audit actions = %v, want a remap entry", actions)
	}
}

func TestUpsertValidation(t *testing.T) {
	repo := NewMappingRepository(testDB(t))

	var verr *errs.ValidationError
	if err := repo.Upsert(1, "", "WIDGET-A", 1); !errors.As(err, &verr) {
		t.Errorf("empty sku: got %v, want ValidationError", err)
	}
	if err := repo.Upsert(1, "AMZ-001", "", 1); !errors.As(err, &verr) {
		t.Errorf("empty msku: got %v, want ValidationError", err)
	}
	if err := repo.Upsert(1, "AMZ-001", "WIDGET-A", 0); !errors.As(err, &verr) {
		t.Errorf("zero units: got %v, want ValidationError", err)
	}
	if err := repo.Upsert(1, "AMZ-001", "WIDGET-A", -2); !errors.As(err, &verr) {
		t.Errorf("negative units: got %v, want ValidationError", err)
	}
}

func TestComboDefineAndComponents(t *testing.T) {
	repo := NewMappingRepository(testDB(t))

	components := []mappingEntity.ComboComponent{
		{MSKU: "WIDGET-A", Quantity: 2},
		{MSKU: "WIDGET-B", Quantity: 1},
	}
	if err := repo.DefineCombo(1, "COMBO-1", components); err != nil {
		t.Fatalf("DefineCombo: %v", err)
	}

	isCombo, err := repo.IsCombo(1, "COMBO-1")
	if err != nil || !isCombo {
		t.Fatalf("IsCombo = (%v, %v)", isCombo, err)
	}

	got, err := repo.Components(1, "COMBO-1")
	if err != nil {
		t.Fatalf("Components: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("components = %d, want 2", len(got))
	}
	// Order of definition is preserved.
	if got[0].MSKU != "WIDGET-A" || got[0].Quantity != 2 {
		t.Errorf("component 0 = %+v", got[0])
	}
	if got[1].MSKU != "WIDGET-B" || got[1].Quantity != 1 {
		t.Errorf("component 1 = %+v", got[1])
	}

	// Redefinition replaces the component list.
	if err := repo.DefineCombo(1, "COMBO-1", []mappingEntity.ComboComponent{{MSKU: "WIDGET-C", Quantity: 5}}); err != nil {
		t.Fatalf("redefine: %v", err)
	}
	got, _ = repo.Components(1, "COMBO-1")
	if len(got) != 1 || got[0].MSKU != "WIDGET-C" {
		t.Errorf("after redefine components = %+v", got)
	}
}

func TestComponentsNilWhenNotCombo(t *testing.T) {
	repo := NewMappingRepository(testDB(t))
	got, err := repo.Components(1, "PLAIN-SKU")
	if err != nil {
		t.Fatalf("Components: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil for non-combo, got %+v", got)
	}
}

func TestMappingAndComboAreMutuallyExclusive(t *testing.T) {
	repo := NewMappingRepository(testDB(t))

	if err := repo.Upsert(1, "SKU-X", "WIDGET-A", 1); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	var cerr *errs.ConflictError
	err := repo.DefineCombo(1, "SKU-X", []mappingEntity.ComboComponent{{MSKU: "WIDGET-B", Quantity: 1}})
	if !errors.As(err, &cerr) {
		t.Errorf("combo over mapping: got %v, want ConflictError", err)
	}

	if err := repo.DefineCombo(1, "SKU-Y", []mappingEntity.ComboComponent{{MSKU: "WIDGET-B", Quantity: 1}}); err != nil {
		t.Fatalf("DefineCombo: %v", err)
	}
	err = repo.Upsert(1, "SKU-Y", "WIDGET-A", 1)
	if !errors.As(err, &cerr) {
		t.Errorf("mapping over combo: got %v, want ConflictError", err)
	}

	// The conflict is scoped to one marketplace.
	if err := repo.Upsert(2, "SKU-Y", "WIDGET-A", 1); err != nil {
		t.Errorf("other marketplace should not conflict: %v", err)
	}
}

func TestDefineComboValidation(t *testing.T) {
	repo := NewMappingRepository(testDB(t))

	var verr *errs.ValidationError
	if err := repo.DefineCombo(1, "COMBO-E", nil); !errors.As(err, &verr) {
		t.Errorf("empty components: got %v, want ValidationError", err)
	}
	err := repo.DefineCombo(1, "COMBO-E", []mappingEntity.ComboComponent{{MSKU: "A", Quantity: 0}})
	if !errors.As(err, &verr) {
		t.Errorf("zero quantity component: got %v, want ValidationError", err)
	}
}

func TestUnmappedCandidates(t *testing.T) {
	repo := NewMappingRepository(testDB(t))

	if err := repo.Upsert(1, "KNOWN", "WIDGET-A", 1); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if err := repo.DefineCombo(1, "COMBO-1", []mappingEntity.ComboComponent{{MSKU: "WIDGET-A", Quantity: 1}}); err != nil {
		t.Fatalf("DefineCombo: %v", err)
	}

	got, err := repo.UnmappedCandidates(1, []string{"NEW-1", "KNOWN", "COMBO-1", "NEW-2", "NEW-1"})
	if err != nil {
		t.Fatalf("UnmappedCandidates: %v", err)
	}
	if len(got) != 2 || got[0] != "NEW-1" || got[1] != "NEW-2" {
		t.Errorf("candidates = %v, want [NEW-1 NEW-2]", got)
	}
}

func TestSKUsForMSKU(t *testing.T) {
	repo := NewMappingRepository(testDB(t))

	_ = repo.Upsert(1, "AMZ-1", "WIDGET-A", 1)
	_ = repo.Upsert(2, "FK-1", "WIDGET-A", 2)
	_ = repo.Upsert(1, "AMZ-2", "WIDGET-B", 1)

	rows, err := repo.SKUsForMSKU("WIDGET-A")
	if err != nil {
		t.Fatalf("SKUsForMSKU: %v", err)
	}
	if len(rows) != 2 {
		t.Errorf("rows = %d, want 2", len(rows))
	}
}
