package types

import (
	"encoding/json"
	"strings"
	"time"
	"unicode"
)

// PriceRecord is a single scraped price: the page it came from, the
// normalized price text, and when it was captured. PriceID correlates the
// record with a catalog product once one is assigned; until then it is just
// the store key. Fields the fixed schema does not know about survive in
// Extra so records written by older clients round-trip unchanged.
type PriceRecord struct {
	PriceID     string
	ProductID   string
	ShopName    string
	SourceURL   string
	Price       string
	Explanation string
	CapturedAt  time.Time

	// Extra holds open-ended fields outside the fixed schema.
	Extra map[string]any
}

// Wire keys. The file format predates this implementation, so the names
// stay as the storefront wrote them.
const (
	keyPriceID     = "priceId"
	keyProductID   = "productId"
	keyShopName    = "shopName"
	keySourceURL   = "url"
	keyPrice       = "price"
	keyExplanation = "explanation"
	keyCapturedAt  = "timestamp"
)

// HasPrice reports whether the record carries a usable price: non-empty
// and containing at least one digit. Whitespace-only or digit-free price
// text is never stored.
func (r *PriceRecord) HasPrice() bool {
	if strings.TrimSpace(r.Price) == "" {
		return false
	}
	return strings.ContainsFunc(r.Price, unicode.IsDigit)
}

// Merge overlays other onto r: non-empty fields of other win, Extra maps
// are merged with other taking precedence. CapturedAt is left to the store,
// which stamps a fresh time on every upsert.
func (r *PriceRecord) Merge(other PriceRecord) {
	if other.PriceID != "" {
		r.PriceID = other.PriceID
	}
	if other.ProductID != "" {
		r.ProductID = other.ProductID
	}
	if other.ShopName != "" {
		r.ShopName = other.ShopName
	}
	if other.SourceURL != "" {
		r.SourceURL = other.SourceURL
	}
	if other.Price != "" {
		r.Price = other.Price
	}
	if other.Explanation != "" {
		r.Explanation = other.Explanation
	}
	for k, v := range other.Extra {
		if r.Extra == nil {
			r.Extra = make(map[string]any)
		}
		r.Extra[k] = v
	}
}

// ToMap flattens the record into a single map, fixed fields first, then
// extension fields. Used for both JSON serialization and document storage.
func (r PriceRecord) ToMap() map[string]any {
	m := make(map[string]any, len(r.Extra)+7)
	for k, v := range r.Extra {
		m[k] = v
	}
	if r.PriceID != "" {
		m[keyPriceID] = r.PriceID
	}
	if r.ProductID != "" {
		m[keyProductID] = r.ProductID
	}
	if r.ShopName != "" {
		m[keyShopName] = r.ShopName
	}
	if r.SourceURL != "" {
		m[keySourceURL] = r.SourceURL
	}
	if r.Price != "" {
		m[keyPrice] = r.Price
	}
	if r.Explanation != "" {
		m[keyExplanation] = r.Explanation
	}
	if !r.CapturedAt.IsZero() {
		m[keyCapturedAt] = r.CapturedAt.UTC().Format(time.RFC3339)
	}
	return m
}

// FromMap rebuilds a record from a flat map, routing unknown keys into
// Extra. Timestamps are accepted as RFC 3339 strings or time.Time values.
func FromMap(m map[string]any) PriceRecord {
	var r PriceRecord
	for k, v := range m {
		switch k {
		case keyPriceID:
			r.PriceID = asString(v)
		case keyProductID:
			r.ProductID = asString(v)
		case keyShopName:
			r.ShopName = asString(v)
		case keySourceURL:
			r.SourceURL = asString(v)
		case keyPrice:
			r.Price = asString(v)
		case keyExplanation:
			r.Explanation = asString(v)
		case keyCapturedAt:
			switch t := v.(type) {
			case time.Time:
				r.CapturedAt = t
			case string:
				if parsed, err := time.Parse(time.RFC3339, t); err == nil {
					r.CapturedAt = parsed
				}
			}
		default:
			if r.Extra == nil {
				r.Extra = make(map[string]any)
			}
			r.Extra[k] = v
		}
	}
	return r
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

func (r PriceRecord) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.ToMap())
}

func (r *PriceRecord) UnmarshalJSON(data []byte) error {
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	*r = FromMap(m)
	return nil
}
