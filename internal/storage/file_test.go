package storage

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopfront/pricegrab/internal/types"
)

var testLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

func newTestPriceStore(t *testing.T) *FilePriceStore {
	t.Helper()
	return NewFilePriceStore(filepath.Join(t.TempDir(), "price.json"), testLogger)
}

func TestPriceStoreEmptyFile(t *testing.T) {
	s := newTestPriceStore(t)

	records, err := s.ReadAll(context.Background())
	if err != nil {
		t.Fatalf("read all: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("expected no records from a missing file, got %d", len(records))
	}
}

func TestPriceStoreUpsertAssignsID(t *testing.T) {
	s := newTestPriceStore(t)

	saved, err := s.Upsert(context.Background(), types.PriceRecord{
		SourceURL: "https://shop.example/item",
		Price:     "1,299.00",
	})
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if saved.PriceID == "" {
		t.Error("upsert must assign a priceId to a new record")
	}
	if saved.CapturedAt.IsZero() {
		t.Error("upsert must stamp CapturedAt")
	}

	got, err := s.Get(context.Background(), saved.PriceID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Price != "1,299.00" || got.SourceURL != "https://shop.example/item" {
		t.Errorf("round trip mismatch: %+v", got)
	}
}

func TestPriceStoreUpsertMergesByID(t *testing.T) {
	s := newTestPriceStore(t)
	ctx := context.Background()

	first, err := s.Upsert(ctx, types.PriceRecord{
		SourceURL:   "https://shop.example/item",
		Price:       "99.99",
		Explanation: "initial capture",
	})
	if err != nil {
		t.Fatalf("first upsert: %v", err)
	}

	second, err := s.Upsert(ctx, types.PriceRecord{
		PriceID: first.PriceID,
		Price:   "89.99",
	})
	if err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	if second.Price != "89.99" {
		t.Errorf("expected updated price, got %q", second.Price)
	}
	if second.SourceURL != first.SourceURL {
		t.Errorf("merge must keep fields the update omits, lost url: %+v", second)
	}
	if second.Explanation != "initial capture" {
		t.Errorf("merge must keep explanation, got %q", second.Explanation)
	}
	if second.CapturedAt.Before(first.CapturedAt) {
		t.Errorf("merge must stamp a fresh CapturedAt: first=%v second=%v", first.CapturedAt, second.CapturedAt)
	}

	all, err := s.ReadAll(ctx)
	if err != nil {
		t.Fatalf("read all: %v", err)
	}
	if len(all) != 1 {
		t.Errorf("upsert by id must not append a duplicate, got %d records", len(all))
	}
}

func TestPriceStoreRejectsDigitFreePrice(t *testing.T) {
	s := newTestPriceStore(t)

	_, err := s.Upsert(context.Background(), types.PriceRecord{
		SourceURL: "https://shop.example/item",
		Price:     "...",
	})
	if !errors.Is(err, types.ErrInvalidPrice) {
		t.Fatalf("expected ErrInvalidPrice, got %v", err)
	}
}

func TestPriceStoreExtraFieldsSurvive(t *testing.T) {
	s := newTestPriceStore(t)
	ctx := context.Background()

	saved, err := s.Upsert(ctx, types.PriceRecord{
		SourceURL: "https://shop.example/item",
		Price:     "49.00",
		Extra:     map[string]any{"currency": "EUR", "confidence": "high"},
	})
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}

	got, err := s.Get(ctx, saved.PriceID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Extra["currency"] != "EUR" || got.Extra["confidence"] != "high" {
		t.Errorf("extension fields must round trip through the file, got %v", got.Extra)
	}
}

func TestPriceStoreDelete(t *testing.T) {
	s := newTestPriceStore(t)
	ctx := context.Background()

	saved, err := s.Upsert(ctx, types.PriceRecord{SourceURL: "https://shop.example/a", Price: "10.00"})
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}

	if err := s.Delete(ctx, saved.PriceID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := s.Get(ctx, saved.PriceID); !errors.Is(err, types.ErrRecordNotFound) {
		t.Errorf("expected ErrRecordNotFound after delete, got %v", err)
	}
	if err := s.Delete(ctx, saved.PriceID); !errors.Is(err, types.ErrRecordNotFound) {
		t.Errorf("expected ErrRecordNotFound on second delete, got %v", err)
	}
}

func TestPriceStoreConcurrentUpserts(t *testing.T) {
	s := newTestPriceStore(t)
	ctx := context.Background()

	const n = 20
	done := make(chan error, n)
	for i := 0; i < n; i++ {
		go func(i int) {
			_, err := s.Upsert(ctx, types.PriceRecord{
				SourceURL: "https://shop.example/item",
				Price:     "1.00",
			})
			done <- err
		}(i)
	}
	for i := 0; i < n; i++ {
		if err := <-done; err != nil {
			t.Fatalf("concurrent upsert: %v", err)
		}
	}

	all, err := s.ReadAll(ctx)
	if err != nil {
		t.Fatalf("read all: %v", err)
	}
	if len(all) != n {
		t.Errorf("expected %d records, got %d (lost update)", n, len(all))
	}
}

func newTestProductStore(t *testing.T) *FileProductStore {
	t.Helper()
	return NewFileProductStore(filepath.Join(t.TempDir(), "products.json"), testLogger)
}

func TestProductStoreCRUD(t *testing.T) {
	s := newTestProductStore(t)
	ctx := context.Background()

	created, err := s.Create(ctx, types.Product{
		Name:     "Gaming Laptop",
		Price:    1299.00,
		Image:    "/images/laptop.jpg",
		Category: "laptops",
		Stock:    5,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID != 1 {
		t.Errorf("expected first product id 1, got %d", created.ID)
	}

	second, err := s.Create(ctx, types.Product{
		Name:     "Phone",
		Price:    699.00,
		Image:    "/images/phone.jpg",
		Category: "phones",
	})
	if err != nil {
		t.Fatalf("create second: %v", err)
	}
	if second.ID != 2 {
		t.Errorf("expected second product id 2, got %d", second.ID)
	}

	created.Price = 1199.00
	updated, err := s.Update(ctx, created)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Price != 1199.00 {
		t.Errorf("update did not apply: %+v", updated)
	}

	if err := s.Delete(ctx, second.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := s.Get(ctx, second.ID); !errors.Is(err, types.ErrProductNotFound) {
		t.Errorf("expected ErrProductNotFound after delete, got %v", err)
	}

	all, err := s.All(ctx)
	if err != nil {
		t.Fatalf("all: %v", err)
	}
	if len(all) != 1 || all[0].ID != created.ID {
		t.Errorf("unexpected catalog state: %+v", all)
	}
}

func TestProductStoreUpdatePreservesViews(t *testing.T) {
	s := newTestProductStore(t)
	ctx := context.Background()

	created, err := s.Create(ctx, types.Product{Name: "Monitor", Price: 249, Image: "/m.jpg", Category: "displays"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	for i := 0; i < 3; i++ {
		if _, err := s.IncrementViews(ctx, created.ID); err != nil {
			t.Fatalf("increment views: %v", err)
		}
	}

	created.Price = 199
	created.Views = 0
	updated, err := s.Update(ctx, created)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Views != 3 {
		t.Errorf("update must not reset the view counter, got %d", updated.Views)
	}
}

func TestProductStoreIncrementViews(t *testing.T) {
	s := newTestProductStore(t)
	ctx := context.Background()

	created, err := s.Create(ctx, types.Product{Name: "Desk", Price: 300, Image: "/d.jpg", Category: "furniture"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	views, err := s.IncrementViews(ctx, created.ID)
	if err != nil {
		t.Fatalf("increment views: %v", err)
	}
	if views != 1 {
		t.Errorf("expected 1 view, got %d", views)
	}

	if _, err := s.IncrementViews(ctx, 9999); !errors.Is(err, types.ErrProductNotFound) {
		t.Errorf("expected ErrProductNotFound for unknown id, got %v", err)
	}
}

func TestProductStoreSearch(t *testing.T) {
	s := newTestProductStore(t)
	ctx := context.Background()

	seed := []types.Product{
		{Name: "Gaming Laptop", Price: 1299, Image: "/a.jpg", Category: "laptops", Description: "RTX graphics"},
		{Name: "Office Laptop", Price: 799, Image: "/b.jpg", Category: "laptops"},
		{Name: "Phone", Price: 699, Image: "/c.jpg", Category: "phones", Description: "great for gaming"},
	}
	for _, p := range seed {
		if _, err := s.Create(ctx, p); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	results, err := s.Search(ctx, "GAMING", 50)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 matches on name and description, got %d", len(results))
	}

	limited, err := s.Search(ctx, "laptop", 1)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(limited) != 1 {
		t.Errorf("expected limit to cap results at 1, got %d", len(limited))
	}

	none, err := s.Search(ctx, "typewriter", 50)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(none) != 0 {
		t.Errorf("expected no matches, got %d", len(none))
	}
}

func TestUserStore(t *testing.T) {
	s := NewFileUserStore(filepath.Join(t.TempDir(), "users.json"), testLogger)
	ctx := context.Background()

	u := types.User{Username: "alice", PasswordHash: "$2a$10$hash"}
	if err := s.Create(ctx, u); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := s.Create(ctx, u); !errors.Is(err, types.ErrUserExists) {
		t.Errorf("expected ErrUserExists on duplicate, got %v", err)
	}

	got, err := s.Get(ctx, "alice")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.PasswordHash != u.PasswordHash {
		t.Errorf("stored hash mismatch: %q", got.PasswordHash)
	}

	if _, err := s.Get(ctx, "bob"); !errors.Is(err, types.ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound, got %v", err)
	}
}
