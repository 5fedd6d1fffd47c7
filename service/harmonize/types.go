package harmonize

// OrderLineItem is one raw row from an ingested marketplace file, already
// normalized to this shape by the ingestion layer. Transient: consumed by
// Process and either converted into ResolvedLines or parked as unmapped.
type OrderLineItem struct {
	MarketplaceID uint    `json:"marketplace_id" mapstructure:"marketplace_id"`
	RawSKU        string  `json:"raw_sku" mapstructure:"raw_sku"`
	QuantitySold  int     `json:"quantity_sold" mapstructure:"quantity_sold"`
	Price         float64 `json:"price" mapstructure:"price"`
	OrderID       string  `json:"order_id" mapstructure:"order_id"`
}

// ResolvedLine is the harmonized output: one canonical catalog line. A raw
// line expands into one ResolvedLine (direct/multiplier mapping) or several
// (combo).
type ResolvedLine struct {
	MSKU          string  `json:"msku"`
	QuantityDelta int     `json:"quantity_delta"`
	SourceOrderID string  `json:"source_order_id"`
	SourceSKU     string  `json:"source_sku"`
	Price         float64 `json:"price"`
}

// UnmappedLine is a raw line that could not be fully resolved, with the
// reason it was deferred. The line is atomic: it is never partially applied.
type UnmappedLine struct {
	OrderLineItem
	Reason string `json:"reason"`
}

// ReportEntry aggregates unmapped lines per (marketplace, sku) for the
// operator triage surface.
type ReportEntry struct {
	MarketplaceID  uint     `json:"marketplace_id"`
	SKU            string   `json:"sku"`
	Occurrences    int      `json:"occurrences"`
	TotalQuantity  int      `json:"total_quantity"`
	SampleOrderIDs []string `json:"sample_order_ids"`
}
