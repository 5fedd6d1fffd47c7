package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"reflect"
	"strconv"
	"strings"

	"github.com/mitchellh/mapstructure"

	"wms.GO/service/harmonize"
)

// Marketplace names understood by the normalizers. These match the seeded
// marketplaces table.
const (
	MarketplaceAmazon   = "amazon"
	MarketplaceFlipkart = "flipkart"
	MarketplaceMeesho   = "meesho"
	MarketplaceUnknown  = "unknown"
)

// Column fingerprints per marketplace export format. Checked in
// detectionOrder so a header set matching several fingerprints always
// resolves the same way.
var fingerprints = map[string][]string{
	MarketplaceAmazon:   {"fnsku", "asin", "msku"},
	MarketplaceFlipkart: {"fsn", "shipment id", "order id"},
	MarketplaceMeesho:   {"sub order no", "reason for credit entry"},
}

var detectionOrder = []string{MarketplaceAmazon, MarketplaceFlipkart, MarketplaceMeesho}

// Column aliases → canonical OrderLineItem fields, per marketplace.
var columnAliases = map[string]map[string]string{
	MarketplaceAmazon: {
		"sku":          "raw_sku",
		"msku":         "raw_sku",
		"quantity":     "quantity_sold",
		"reference id": "order_id",
		"amount":       "price",
	},
	MarketplaceFlipkart: {
		"sku":      "raw_sku",
		"quantity": "quantity_sold",
		"order id": "order_id",
		"price":    "price",
	},
	MarketplaceMeesho: {
		"sku":            "raw_sku",
		"quantity":       "quantity_sold",
		"sub order no":   "order_id",
		"supplier price": "price",
	},
}

// DetectMarketplace identifies the export's marketplace from its header
// row. Returns "unknown" when no fingerprint matches.
func DetectMarketplace(headers []string) string {
	have := make(map[string]bool, len(headers))
	for _, h := range headers {
		have[strings.ToLower(strings.TrimSpace(h))] = true
	}
	for _, marketplace := range detectionOrder {
		all := true
		for _, c := range fingerprints[marketplace] {
			if !have[c] {
				all = false
				break
			}
		}
		if all {
			return marketplace
		}
	}
	return MarketplaceUnknown
}

// ReadCSV reads a delimited export into row maps keyed by lowercased,
// trimmed header names.
func ReadCSV(r io.Reader) (headers []string, rows []map[string]interface{}, err error) {
	reader := csv.NewReader(r)
	headers, err = reader.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("read CSV header: %w", err)
	}
	for i := range headers {
		headers[i] = strings.ToLower(strings.TrimSpace(headers[i]))
	}

	raw, err := reader.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("read CSV rows: %w", err)
	}
	rows = make([]map[string]interface{}, 0, len(raw))
	for _, record := range raw {
		row := make(map[string]interface{}, len(headers))
		for i, h := range headers {
			if i < len(record) {
				row[h] = strings.TrimSpace(record[i])
			}
		}
		rows = append(rows, row)
	}
	return headers, rows, nil
}

// stringToNumberHook coerces numeric strings ("3", "3.0", "") coming out of
// delimited exports into the int/float fields of OrderLineItem.
func stringToNumberHook() mapstructure.DecodeHookFunc {
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if from.Kind() != reflect.String {
			return data, nil
		}
		s := strings.TrimSpace(data.(string))
		switch to.Kind() {
		case reflect.Int:
			if s == "" {
				return 0, nil
			}
			if n, err := strconv.Atoi(s); err == nil {
				return n, nil
			}
			// Some exports render integral quantities as "3.0".
			if f, err := strconv.ParseFloat(s, 64); err == nil && f == float64(int(f)) {
				return int(f), nil
			}
			return 0, nil
		case reflect.Float64:
			if s == "" {
				return 0.0, nil
			}
			if f, err := strconv.ParseFloat(s, 64); err == nil {
				return f, nil
			}
			return 0.0, nil
		}
		return data, nil
	}
}

// Normalize converts raw export rows into OrderLineItems for the given
// marketplace, remapping marketplace-specific column names onto the
// canonical shape. Rows that lack a sku entirely still come through (with
// an empty RawSKU) so the harmonization engine can report them.
func Normalize(rows []map[string]interface{}, marketplace string, marketplaceID uint) ([]harmonize.OrderLineItem, error) {
	aliases, ok := columnAliases[marketplace]
	if !ok {
		return nil, fmt.Errorf("no normalizer for marketplace %q", marketplace)
	}

	out := make([]harmonize.OrderLineItem, 0, len(rows))
	for i, row := range rows {
		canonical := map[string]interface{}{"marketplace_id": marketplaceID}
		for col, val := range row {
			if field, mapped := aliases[strings.ToLower(col)]; mapped {
				// First alias wins; e.g. amazon rows carry both msku and
				// sku and msku is preferred only when sku is absent.
				if _, exists := canonical[field]; exists && field == "raw_sku" && strings.ToLower(col) != "sku" {
					continue
				}
				canonical[field] = val
			}
		}

		var line harmonize.OrderLineItem
		cfg := &mapstructure.DecoderConfig{
			DecodeHook:       stringToNumberHook(),
			Result:           &line,
			WeaklyTypedInput: true,
			TagName:          "mapstructure",
		}
		dec, err := mapstructure.NewDecoder(cfg)
		if err != nil {
			return nil, fmt.Errorf("build decoder: %w", err)
		}
		if err := dec.Decode(canonical); err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		out = append(out, line)
	}
	return out, nil
}
