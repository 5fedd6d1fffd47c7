package schema

import (
	"fmt"
	"strings"
	"sync"

	gormschema "gorm.io/gorm/schema"

	"wms.GO/model/entity"
	"wms.GO/model/entity/catalog"
	"wms.GO/model/entity/inventory"
	"wms.GO/model/entity/mapping"
	"wms.GO/model/entity/sales"
)

// Column is one column of a described table.
type Column struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// Table is one table of the warehouse schema, in declaration order.
type Table struct {
	Name    string   `json:"name"`
	Columns []Column `json:"columns"`
}

var (
	describeOnce sync.Once
	described    []Table
	describeErr  error
)

// models in the order the schema should be presented.
var models = []interface{}{
	&entity.Marketplace{},
	&entity.Location{},
	&catalog.Product{},
	&mapping.SkuMapping{},
	&mapping.ComboDefinition{},
	&mapping.ComboComponent{},
	&mapping.MappingAudit{},
	&inventory.Record{},
	&inventory.Transaction{},
	&sales.Order{},
	&sales.OrderItem{},
}

// Describe returns the table layout derived from the gorm models. The
// result is computed once and cached.
func Describe() ([]Table, error) {
	describeOnce.Do(func() {
		cache := &sync.Map{}
		namer := gormschema.NamingStrategy{}
		for _, m := range models {
			s, err := gormschema.Parse(m, cache, namer)
			if err != nil {
				describeErr = fmt.Errorf("parse model %T: %w", m, err)
				return
			}
			table := Table{Name: s.Table}
			for _, f := range s.Fields {
				if f.DBName == "" {
					continue
				}
				table.Columns = append(table.Columns, Column{
					Name: f.DBName,
					Type: string(f.DataType),
				})
			}
			described = append(described, table)
		}
	})
	return described, describeErr
}

// DescribeText renders the schema as a compact text block, one table per
// paragraph. Used by the schema endpoint and the CLI.
func DescribeText() (string, error) {
	tables, err := Describe()
	if err != nil {
		return "", err
	}
	var b strings.Builder
	for _, t := range tables {
		fmt.Fprintf(&b, "table %s:\n", t.Name)
		for _, c := range t.Columns {
			fmt.Fprintf(&b, "  %s %s\n", c.Name, c.Type)
		}
		b.WriteString("\n")
	}
	return b.String(), nil
}

// Template is a canned, parameterless report query.
type Template struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	SQL         string `json:"sql"`
}

// Templates returns the canned report queries in a stable order.
func Templates() []Template {
	return []Template{
		{
			Name:        "inventory_levels",
			Description: "Current stock per product and location",
			SQL: "SELECT i.msku, l.code AS location, i.quantity " +
				"FROM inventory i JOIN locations l ON l.id = i.location_id " +
				"ORDER BY i.msku, l.code",
		},
		{
			Name:        "top_products",
			Description: "Best selling products by units sold",
			SQL: "SELECT oi.msku, SUM(oi.quantity) AS units_sold " +
				"FROM order_items oi GROUP BY oi.msku " +
				"ORDER BY units_sold DESC LIMIT 10",
		},
		{
			Name:        "sales_by_marketplace",
			Description: "Order counts and revenue per marketplace",
			SQL: "SELECT m.name, COUNT(DISTINCT o.order_id) AS orders, " +
				"SUM(oi.quantity * oi.price) AS revenue " +
				"FROM orders o JOIN marketplaces m ON m.id = o.marketplace_id " +
				"JOIN order_items oi ON oi.order_id = o.order_id " +
				"GROUP BY m.name ORDER BY revenue DESC",
		},
		{
			Name:        "low_stock_items",
			Description: "Products with fewer than 10 units on hand",
			SQL: "SELECT i.msku, l.code AS location, i.quantity " +
				"FROM inventory i JOIN locations l ON l.id = i.location_id " +
				"WHERE i.quantity < 10 ORDER BY i.quantity ASC",
		},
		{
			Name:        "recent_transactions",
			Description: "Latest inventory movements",
			SQL: "SELECT t.transaction_date, t.msku, t.quantity_change, " +
				"t.transaction_type, t.reference_id " +
				"FROM inventory_transactions t " +
				"ORDER BY t.transaction_date DESC LIMIT 50",
		},
		{
			Name:        "unmapped_rate",
			Description: "Share of order lines whose sku fell back to a placeholder product",
			SQL: "SELECT m.name, COUNT(*) AS lines " +
				"FROM order_items oi " +
				"JOIN orders o ON o.order_id = oi.order_id " +
				"JOIN marketplaces m ON m.id = o.marketplace_id " +
				"JOIN products p ON p.msku = oi.msku " +
				"WHERE p.placeholder = true GROUP BY m.name",
		},
	}
}
