// Package storage persists price records, catalog products, and user
// accounts. The default backend is JSON files on disk, read and written
// whole (read-modify-write with an atomic replace); MongoDB is available
// as an alternative backend via configuration.
package storage

import (
	"context"
	"log/slog"
	"path/filepath"

	"github.com/shopfront/pricegrab/internal/config"
	"github.com/shopfront/pricegrab/internal/types"
)

// PriceStore is the durable log of scraped prices.
type PriceStore interface {
	// ReadAll returns every stored record. A backing medium with no data
	// yet is an empty result, not an error.
	ReadAll(ctx context.Context) ([]types.PriceRecord, error)

	// Get returns the record with the given priceId.
	Get(ctx context.Context, priceID string) (types.PriceRecord, error)

	// Upsert appends the record, or merges it into the existing record
	// sharing its priceId. A record without a priceId is always appended
	// and assigned one. CapturedAt is stamped fresh either way.
	Upsert(ctx context.Context, rec types.PriceRecord) (types.PriceRecord, error)

	// Delete removes the record with the given priceId.
	Delete(ctx context.Context, priceID string) error
}

// ProductStore is the catalog.
type ProductStore interface {
	All(ctx context.Context) ([]types.Product, error)
	Get(ctx context.Context, id int64) (types.Product, error)
	Create(ctx context.Context, p types.Product) (types.Product, error)
	Update(ctx context.Context, p types.Product) (types.Product, error)
	Delete(ctx context.Context, id int64) error

	// IncrementViews bumps the view counter and returns the new count.
	IncrementViews(ctx context.Context, id int64) (int, error)

	// Search matches query against product names and descriptions,
	// case-insensitively, returning at most limit products.
	Search(ctx context.Context, query string, limit int) ([]types.Product, error)
}

// UserStore holds storefront accounts.
type UserStore interface {
	Get(ctx context.Context, username string) (types.User, error)
	Create(ctx context.Context, u types.User) error
}

// Stores bundles the three stores of one backend.
type Stores struct {
	Prices   PriceStore
	Products ProductStore
	Users    UserStore

	closeFn func() error
}

// Close releases backend resources.
func (s *Stores) Close() error {
	if s.closeFn == nil {
		return nil
	}
	return s.closeFn()
}

// New creates the stores for the configured backend.
func New(cfg *config.StorageConfig, logger *slog.Logger) (*Stores, error) {
	switch cfg.Backend {
	case "mongo":
		m, err := NewMongo(cfg.Mongo.URI, cfg.Mongo.Database, logger)
		if err != nil {
			return nil, err
		}
		return &Stores{
			Prices:   m.Prices(),
			Products: m.Products(),
			Users:    m.Users(),
			closeFn:  m.Close,
		}, nil
	default:
		return &Stores{
			Prices:   NewFilePriceStore(filepath.Join(cfg.DataDir, "price.json"), logger),
			Products: NewFileProductStore(filepath.Join(cfg.DataDir, "products.json"), logger),
			Users:    NewFileUserStore(filepath.Join(cfg.DataDir, "users.json"), logger),
		}, nil
	}
}
