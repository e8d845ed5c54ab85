package types

import (
	"encoding/json"
	"testing"
	"time"
)

func TestHasPrice(t *testing.T) {
	tests := []struct {
		price string
		want  bool
	}{
		{"1,299.00", true},
		{"9", true},
		{"", false},
		{"   ", false},
		{"...", false},
		{",.,", false},
		{"Call for price", false},
	}
	for _, tt := range tests {
		r := PriceRecord{Price: tt.price}
		if got := r.HasPrice(); got != tt.want {
			t.Errorf("HasPrice(%q) = %v, want %v", tt.price, got, tt.want)
		}
	}
}

func TestMerge(t *testing.T) {
	base := PriceRecord{
		PriceID:     "p-1",
		SourceURL:   "https://shop.example/item",
		Price:       "99.99",
		Explanation: "summary selector",
		Extra:       map[string]any{"currency": "USD", "seen": 1},
	}

	base.Merge(PriceRecord{
		Price:    "89.99",
		ShopName: "example",
		Extra:    map[string]any{"currency": "EUR"},
	})

	if base.Price != "89.99" {
		t.Errorf("non-empty incoming field must win, got price %q", base.Price)
	}
	if base.ShopName != "example" {
		t.Errorf("new field must be adopted, got shop %q", base.ShopName)
	}
	if base.SourceURL != "https://shop.example/item" {
		t.Errorf("omitted field must survive, got url %q", base.SourceURL)
	}
	if base.Explanation != "summary selector" {
		t.Errorf("omitted explanation must survive, got %q", base.Explanation)
	}
	if base.Extra["currency"] != "EUR" {
		t.Errorf("incoming extra must win, got %v", base.Extra["currency"])
	}
	if base.Extra["seen"] != 1 {
		t.Errorf("untouched extra key must survive, got %v", base.Extra["seen"])
	}
}

func TestMergeIntoEmptyExtra(t *testing.T) {
	var base PriceRecord
	base.Merge(PriceRecord{Extra: map[string]any{"note": "x"}})
	if base.Extra["note"] != "x" {
		t.Errorf("merge must allocate Extra when needed, got %v", base.Extra)
	}
}

func TestJSONRoundTrip(t *testing.T) {
	captured := time.Date(2026, 8, 29, 12, 30, 0, 0, time.UTC)
	rec := PriceRecord{
		PriceID:    "abc-123",
		ProductID:  "42",
		ShopName:   "example",
		SourceURL:  "https://shop.example/item",
		Price:      "1,299.00",
		CapturedAt: captured,
		Extra:      map[string]any{"currency": "USD"},
	}

	data, err := json.Marshal(rec)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	// Wire keys must match what the storefront always wrote.
	var wire map[string]any
	if err := json.Unmarshal(data, &wire); err != nil {
		t.Fatalf("unmarshal to map: %v", err)
	}
	if wire["priceId"] != "abc-123" {
		t.Errorf("expected priceId key, got %v", wire)
	}
	if wire["url"] != "https://shop.example/item" {
		t.Errorf("expected url key, got %v", wire)
	}
	if wire["timestamp"] != "2026-08-29T12:30:00Z" {
		t.Errorf("expected RFC 3339 timestamp, got %v", wire["timestamp"])
	}

	var back PriceRecord
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back.PriceID != rec.PriceID || back.Price != rec.Price || back.SourceURL != rec.SourceURL {
		t.Errorf("round trip mismatch: %+v", back)
	}
	if !back.CapturedAt.Equal(captured) {
		t.Errorf("timestamp round trip mismatch: %v", back.CapturedAt)
	}
	if back.Extra["currency"] != "USD" {
		t.Errorf("extension field lost: %v", back.Extra)
	}
}

func TestUnmarshalUnknownKeys(t *testing.T) {
	data := []byte(`{
		"priceId": "p-1",
		"url": "https://shop.example/item",
		"price": "10.00",
		"scrapedBy": "legacy-bot",
		"attempt": 3
	}`)

	var rec PriceRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if rec.PriceID != "p-1" || rec.Price != "10.00" {
		t.Errorf("fixed fields mismatch: %+v", rec)
	}
	if rec.Extra["scrapedBy"] != "legacy-bot" {
		t.Errorf("unknown string key must land in Extra, got %v", rec.Extra)
	}
	if rec.Extra["attempt"] != float64(3) {
		t.Errorf("unknown numeric key must land in Extra, got %v", rec.Extra["attempt"])
	}
}

func TestMarshalOmitsEmptyFields(t *testing.T) {
	data, err := json.Marshal(PriceRecord{Price: "5.00"})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var wire map[string]any
	if err := json.Unmarshal(data, &wire); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(wire) != 1 {
		t.Errorf("empty fields must stay off the wire, got %v", wire)
	}
}
