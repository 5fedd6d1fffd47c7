package schema

import (
	"strings"
	"testing"
)

func TestDescribeListsAllTables(t *testing.T) {
	tables, err := Describe()
	if err != nil {
		t.Fatalf("Describe: %v", err)
	}
	want := []string{
		"marketplaces", "locations", "products", "sku_mappings",
		"combos", "combo_components", "mapping_audit",
		"inventory", "inventory_transactions", "orders", "order_items",
	}
	if len(tables) != len(want) {
		t.Fatalf("got %d tables, want %d", len(tables), len(want))
	}
	for i, name := range want {
		if tables[i].Name != name {
			t.Errorf("table %d = %q, want %q", i, tables[i].Name, name)
		}
		if len(tables[i].Columns) == 0 {
			t.Errorf("table %q has no columns", name)
		}
	}
}

func TestDescribeTextContainsColumns(t *testing.T) {
	text, err := DescribeText()
	if err != nil {
		t.Fatalf("DescribeText: %v", err)
	}
	for _, needle := range []string{"table sku_mappings:", "units_per_sku", "quantity_change"} {
		if !strings.Contains(text, needle) {
			t.Errorf("schema text missing %q", needle)
		}
	}
}

func TestTemplatesAreWellFormed(t *testing.T) {
	seen := map[string]bool{}
	for _, tpl := range Templates() {
		if tpl.Name == "" || tpl.SQL == "" || tpl.Description == "" {
			t.Errorf("incomplete template: %+v", tpl)
		}
		if seen[tpl.Name] {
			t.Errorf("duplicate template name %q", tpl.Name)
		}
		seen[tpl.Name] = true
		if !strings.HasPrefix(tpl.SQL, "SELECT") {
			t.Errorf("template %q is not a SELECT", tpl.Name)
		}
	}
	if !seen["inventory_levels"] || !seen["low_stock_items"] {
		t.Error("expected canned inventory templates")
	}
}
