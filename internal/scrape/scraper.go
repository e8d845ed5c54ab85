// Package scrape runs the price-extraction pipeline: fetch a product page,
// parse it, locate a price, persist the record. Each run is independent;
// the only shared state is the price store, whose writers serialize.
package scrape

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/shopfront/pricegrab/internal/extractor"
	"github.com/shopfront/pricegrab/internal/fetcher"
	"github.com/shopfront/pricegrab/internal/parser"
	"github.com/shopfront/pricegrab/internal/storage"
	"github.com/shopfront/pricegrab/internal/types"
)

// Scraper wires the pipeline stages together.
type Scraper struct {
	fetcher   fetcher.Fetcher
	extractor *extractor.Extractor
	prices    storage.PriceStore
	logger    *slog.Logger
}

// New creates a scraper.
func New(f fetcher.Fetcher, e *extractor.Extractor, prices storage.PriceStore, logger *slog.Logger) *Scraper {
	return &Scraper{
		fetcher:   f,
		extractor: e,
		prices:    prices,
		logger:    logger.With("component", "scraper"),
	}
}

// ScrapePrice runs the full pipeline for one URL and returns the persisted
// record. Stage failures come back as their typed errors (FetchError,
// ParseError, types.ErrPriceNotFound, StoreError); mapping them to HTTP
// responses is the caller's job. A store failure after a successful
// extraction fails the whole run; the price is not returned.
func (s *Scraper) ScrapePrice(ctx context.Context, url string) (types.PriceRecord, error) {
	body, err := s.fetcher.Fetch(ctx, url)
	if err != nil {
		return types.PriceRecord{}, err
	}

	doc, err := parser.Parse(body)
	if err != nil {
		return types.PriceRecord{}, &types.ParseError{URL: url, Err: err}
	}

	price, err := s.extractor.Extract(doc)
	if err != nil {
		return types.PriceRecord{}, err
	}

	rec, err := s.prices.Upsert(ctx, types.PriceRecord{SourceURL: url, Price: price})
	if err != nil {
		return types.PriceRecord{}, err
	}

	s.logger.Info("price scraped", "url", url, "price", rec.Price, "price_id", rec.PriceID)
	return rec, nil
}

// RefreshResult is the outcome of re-scraping one stored record.
type RefreshResult struct {
	PriceID string `json:"priceId"`
	URL     string `json:"url"`
	Price   string `json:"price,omitempty"`
	Error   string `json:"error,omitempty"`
}

// RefreshAll re-runs the pipeline for every stored record that has a
// source URL, at most concurrency pages in flight at once. Individual
// failures are reported per record, never aborting the rest.
func (s *Scraper) RefreshAll(ctx context.Context, concurrency int) ([]RefreshResult, error) {
	records, err := s.prices.ReadAll(ctx)
	if err != nil {
		return nil, err
	}

	var targets []types.PriceRecord
	for _, rec := range records {
		if rec.SourceURL != "" {
			targets = append(targets, rec)
		}
	}

	results := make([]RefreshResult, len(targets))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i, rec := range targets {
		i, rec := i, rec
		g.Go(func() error {
			results[i] = s.refreshOne(ctx, rec)
			return nil
		})
	}
	_ = g.Wait()

	s.logger.Info("refresh complete", "records", len(targets))
	return results, nil
}

func (s *Scraper) refreshOne(ctx context.Context, rec types.PriceRecord) RefreshResult {
	result := RefreshResult{PriceID: rec.PriceID, URL: rec.SourceURL}

	body, err := s.fetcher.Fetch(ctx, rec.SourceURL)
	if err != nil {
		result.Error = err.Error()
		return result
	}
	doc, err := parser.Parse(body)
	if err != nil {
		result.Error = err.Error()
		return result
	}
	price, err := s.extractor.Extract(doc)
	if err != nil {
		result.Error = err.Error()
		return result
	}

	saved, err := s.prices.Upsert(ctx, types.PriceRecord{PriceID: rec.PriceID, SourceURL: rec.SourceURL, Price: price})
	if err != nil {
		result.Error = err.Error()
		return result
	}

	result.Price = saved.Price
	return result
}
