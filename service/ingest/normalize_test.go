package ingest

import (
	"strings"
	"testing"
)

func TestDetectMarketplace(t *testing.T) {
	cases := []struct {
		headers []string
		want    string
	}{
		{[]string{"FNSKU", "ASIN", "MSKU", "Quantity"}, MarketplaceAmazon},
		{[]string{"FSN", "Shipment ID", "Order ID", "SKU"}, MarketplaceFlipkart},
		{[]string{"Sub Order No", "Reason for Credit Entry", "SKU"}, MarketplaceMeesho},
		{[]string{"sku", "qty"}, MarketplaceUnknown},
		{nil, MarketplaceUnknown},
	}
	for _, c := range cases {
		if got := DetectMarketplace(c.headers); got != c.want {
			t.Errorf("DetectMarketplace(%v) = %q, want %q", c.headers, got, c.want)
		}
	}
}

func TestDetectMarketplaceTieBreaksInOrder(t *testing.T) {
	// Headers satisfying every fingerprint: amazon wins, then flipkart,
	// then meesho.
	all := []string{
		"fnsku", "asin", "msku",
		"fsn", "shipment id", "order id",
		"sub order no", "reason for credit entry",
	}
	for i := 0; i < 20; i++ {
		if got := DetectMarketplace(all); got != MarketplaceAmazon {
			t.Fatalf("DetectMarketplace(all fingerprints) = %q, want %q", got, MarketplaceAmazon)
		}
	}
	flipkartAndMeesho := []string{
		"fsn", "shipment id", "order id",
		"sub order no", "reason for credit entry",
	}
	for i := 0; i < 20; i++ {
		if got := DetectMarketplace(flipkartAndMeesho); got != MarketplaceFlipkart {
			t.Fatalf("DetectMarketplace(flipkart+meesho) = %q, want %q", got, MarketplaceFlipkart)
		}
	}
}

func TestReadCSVNormalizesHeaders(t *testing.T) {
	in := "SKU, Quantity ,Order ID\nABC-1,3,ORD-100\n"
	headers, rows, err := ReadCSV(strings.NewReader(in))
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	if headers[0] != "sku" || headers[1] != "quantity" || headers[2] != "order id" {
		t.Fatalf("headers not normalized: %v", headers)
	}
	if len(rows) != 1 {
		t.Fatalf("want 1 row, got %d", len(rows))
	}
	if rows[0]["quantity"] != "3" {
		t.Errorf("quantity = %v", rows[0]["quantity"])
	}
}

func TestNormalizeFlipkartRows(t *testing.T) {
	rows := []map[string]interface{}{
		{"sku": "FK-SKU-1", "quantity": "2", "order id": "OD123", "price": "199.50"},
		{"sku": "", "quantity": "bad", "order id": "OD124", "price": ""},
	}
	lines, err := Normalize(rows, MarketplaceFlipkart, 2)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if len(lines) != 2 {
		t.Fatalf("want 2 lines, got %d", len(lines))
	}
	if lines[0].RawSKU != "FK-SKU-1" || lines[0].QuantitySold != 2 || lines[0].OrderID != "OD123" {
		t.Errorf("line 0 = %+v", lines[0])
	}
	if lines[0].Price != 199.50 {
		t.Errorf("price = %v", lines[0].Price)
	}
	if lines[0].MarketplaceID != 2 {
		t.Errorf("marketplace id = %d", lines[0].MarketplaceID)
	}
	// Unparsable quantity decodes to zero so the harmonization engine can
	// route the line to the unmapped report rather than dropping it.
	if lines[1].QuantitySold != 0 {
		t.Errorf("bad quantity decoded to %d", lines[1].QuantitySold)
	}
}

func TestNormalizeAmazonPrefersSKUOverMSKU(t *testing.T) {
	rows := []map[string]interface{}{
		{"msku": "MSKU-1", "sku": "AMZ-1", "quantity": "1", "reference id": "R1"},
	}
	lines, err := Normalize(rows, MarketplaceAmazon, 1)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if lines[0].RawSKU != "AMZ-1" {
		t.Errorf("raw sku = %q, want AMZ-1", lines[0].RawSKU)
	}
}

func TestNormalizeUnknownMarketplace(t *testing.T) {
	if _, err := Normalize(nil, "ebay", 9); err == nil {
		t.Fatal("expected error for unknown marketplace")
	}
}

func TestNormalizeFractionalQuantity(t *testing.T) {
	rows := []map[string]interface{}{
		{"sku": "FK-2", "quantity": "3.0", "order id": "OD1", "price": "10"},
	}
	lines, err := Normalize(rows, MarketplaceFlipkart, 2)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if lines[0].QuantitySold != 3 {
		t.Errorf("quantity = %d, want 3", lines[0].QuantitySold)
	}
}
