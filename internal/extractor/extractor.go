// Package extractor locates a price inside a parsed product page.
//
// Price markup varies wildly across shops, so extraction walks a fixed,
// ordered list of selector candidates: site-specific, well-structured
// selectors first, generic "current price" classes last. The first
// candidate whose text normalizes to something price-looking wins; later
// candidates are never consulted. A generic selector must not shadow a
// specific one, or shipping costs and struck-through old prices start
// leaking into results.
package extractor

import (
	"log/slog"
	"strings"

	"github.com/shopfront/pricegrab/internal/config"
	"github.com/shopfront/pricegrab/internal/parser"
	"github.com/shopfront/pricegrab/internal/types"
)

// Candidate is a single selector heuristic. Type is "css" (default) or
// "xpath". Attribute, when set on a CSS candidate, reads an attribute value
// instead of text content.
type Candidate struct {
	Selector  string
	Type      string
	Attribute string
}

// DefaultCandidates returns the built-in candidate list, most specific
// first. Only the first element matching a candidate (in document order)
// is ever considered.
func DefaultCandidates() []Candidate {
	return []Candidate{
		{Selector: "div.summary span.price"},
		{Selector: ".product-price"},
		{Selector: "#priceblock_ourprice"},
		{Selector: ".entry-summary .price .woocommerce-Price-amount"},
		{Selector: "#product-price"},
		{Selector: `[data-price-type="finalPrice"]`},
		{Selector: `[data-testid="price-final"]`},
		{Selector: ".price-current"},
	}
}

// FromConfig converts configured candidates, falling back to the built-in
// list when none are configured.
func FromConfig(cfgs []config.CandidateConfig) []Candidate {
	if len(cfgs) == 0 {
		return DefaultCandidates()
	}
	candidates := make([]Candidate, len(cfgs))
	for i, c := range cfgs {
		candidates[i] = Candidate{Selector: c.Selector, Type: c.Type, Attribute: c.Attribute}
	}
	return candidates
}

// Extractor applies an ordered candidate list against parsed documents.
type Extractor struct {
	candidates []Candidate
	logger     *slog.Logger
}

// New creates an extractor over the given candidates.
func New(candidates []Candidate, logger *slog.Logger) *Extractor {
	return &Extractor{
		candidates: candidates,
		logger:     logger.With("component", "extractor"),
	}
}

// Extract returns the first price found in the document, normalized to
// digits, '.' and ','. types.ErrPriceNotFound when no candidate matches.
func (e *Extractor) Extract(doc *parser.Document) (string, error) {
	for _, c := range e.candidates {
		raw, err := e.lookup(doc, c)
		if err != nil {
			e.logger.Warn("candidate skipped", "selector", c.Selector, "error", err)
			continue
		}
		if raw == "" {
			continue
		}
		// Normalized text without a digit (bare separators, dashes) is not
		// a price; the candidate falls through like any other non-match.
		if price := Normalize(raw); containsDigit(price) {
			e.logger.Debug("price matched", "selector", c.Selector, "raw", raw, "price", price)
			return price, nil
		}
	}
	return "", types.ErrPriceNotFound
}

func (e *Extractor) lookup(doc *parser.Document, c Candidate) (string, error) {
	switch c.Type {
	case "", "css":
		if c.Attribute != "" {
			return doc.FirstAttr(c.Selector, c.Attribute), nil
		}
		return doc.FirstText(c.Selector), nil
	case "xpath":
		return doc.FirstXPathText(c.Selector)
	default:
		return doc.FirstText(c.Selector), nil
	}
}

// Normalize strips everything that is not a digit, '.' or ',' while
// preserving the relative order of what remains. Separator ambiguity
// (1.299,00 vs 1,299.00) is deliberately kept: the value is stored as the
// source formatted it.
func containsDigit(s string) bool {
	for _, r := range s {
		if r >= '0' && r <= '9' {
			return true
		}
	}
	return false
}

func Normalize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == '.' || r == ',' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
