package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/shopfront/pricegrab/internal/types"
)

// readJSONFile loads a JSON array from disk. A missing or empty file is an
// empty collection.
func readJSONFile[T any](path string) ([]T, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}
	var out []T
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return out, nil
}

// writeJSONFile replaces the whole collection on disk. The write goes to a
// temp file first and is renamed into place so readers never observe a
// half-written file.
func writeJSONFile[T any](path string, items []T) error {
	if items == nil {
		items = []T{}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}

func fileErr(err error) error {
	return &types.StoreError{Backend: "file", Err: err}
}

// --- Price store ---

// FilePriceStore keeps price records as a JSON array in a single file.
// The mutex serializes the read-modify-write cycle so concurrent upserts
// cannot drop each other's appends.
type FilePriceStore struct {
	path   string
	mu     sync.Mutex
	logger *slog.Logger
}

// NewFilePriceStore creates a file-backed price store.
func NewFilePriceStore(path string, logger *slog.Logger) *FilePriceStore {
	return &FilePriceStore{
		path:   path,
		logger: logger.With("component", "file_price_store"),
	}
}

func (s *FilePriceStore) ReadAll(_ context.Context) ([]types.PriceRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	records, err := readJSONFile[types.PriceRecord](s.path)
	if err != nil {
		return nil, fileErr(err)
	}
	return records, nil
}

func (s *FilePriceStore) Get(_ context.Context, priceID string) (types.PriceRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	records, err := readJSONFile[types.PriceRecord](s.path)
	if err != nil {
		return types.PriceRecord{}, fileErr(err)
	}
	for _, rec := range records {
		if rec.PriceID == priceID {
			return rec, nil
		}
	}
	return types.PriceRecord{}, types.ErrRecordNotFound
}

func (s *FilePriceStore) Upsert(_ context.Context, rec types.PriceRecord) (types.PriceRecord, error) {
	if rec.Price != "" && !rec.HasPrice() {
		return types.PriceRecord{}, types.ErrInvalidPrice
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := readJSONFile[types.PriceRecord](s.path)
	if err != nil {
		return types.PriceRecord{}, fileErr(err)
	}

	saved := upsertInto(&records, rec)

	if err := writeJSONFile(s.path, records); err != nil {
		return types.PriceRecord{}, fileErr(err)
	}

	s.logger.Debug("price record stored", "price_id", saved.PriceID, "url", saved.SourceURL, "total", len(records))
	return saved, nil
}

func (s *FilePriceStore) Delete(_ context.Context, priceID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := readJSONFile[types.PriceRecord](s.path)
	if err != nil {
		return fileErr(err)
	}

	kept := records[:0]
	for _, rec := range records {
		if rec.PriceID != priceID {
			kept = append(kept, rec)
		}
	}
	if len(kept) == len(records) {
		return types.ErrRecordNotFound
	}

	if err := writeJSONFile(s.path, kept); err != nil {
		return fileErr(err)
	}
	return nil
}

// upsertInto merges rec into the collection in place and returns the saved
// record. Records key on priceId; a record without one is appended and
// assigned a fresh id.
func upsertInto(records *[]types.PriceRecord, rec types.PriceRecord) types.PriceRecord {
	now := time.Now().UTC().Truncate(time.Second)
	if rec.PriceID != "" {
		for i := range *records {
			if (*records)[i].PriceID == rec.PriceID {
				merged := (*records)[i]
				merged.Merge(rec)
				merged.CapturedAt = now
				(*records)[i] = merged
				return merged
			}
		}
	} else {
		rec.PriceID = uuid.NewString()
	}
	rec.CapturedAt = now
	*records = append(*records, rec)
	return rec
}

// --- Product store ---

// FileProductStore keeps the catalog as a JSON array in a single file.
type FileProductStore struct {
	path   string
	mu     sync.Mutex
	logger *slog.Logger
}

// NewFileProductStore creates a file-backed product store.
func NewFileProductStore(path string, logger *slog.Logger) *FileProductStore {
	return &FileProductStore{
		path:   path,
		logger: logger.With("component", "file_product_store"),
	}
}

func (s *FileProductStore) All(_ context.Context) ([]types.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	products, err := readJSONFile[types.Product](s.path)
	if err != nil {
		return nil, fileErr(err)
	}
	return products, nil
}

func (s *FileProductStore) Get(_ context.Context, id int64) (types.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	products, err := readJSONFile[types.Product](s.path)
	if err != nil {
		return types.Product{}, fileErr(err)
	}
	for _, p := range products {
		if p.ID == id {
			return p, nil
		}
	}
	return types.Product{}, types.ErrProductNotFound
}

func (s *FileProductStore) Create(_ context.Context, p types.Product) (types.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	products, err := readJSONFile[types.Product](s.path)
	if err != nil {
		return types.Product{}, fileErr(err)
	}

	if p.ID == 0 {
		p.ID = nextProductID(products)
	}
	products = append(products, p)

	if err := writeJSONFile(s.path, products); err != nil {
		return types.Product{}, fileErr(err)
	}
	return p, nil
}

func (s *FileProductStore) Update(_ context.Context, p types.Product) (types.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	products, err := readJSONFile[types.Product](s.path)
	if err != nil {
		return types.Product{}, fileErr(err)
	}

	for i := range products {
		if products[i].ID == p.ID {
			// View counts are server-owned; an update payload never
			// resets them.
			if p.Views == 0 {
				p.Views = products[i].Views
			}
			products[i] = p
			if err := writeJSONFile(s.path, products); err != nil {
				return types.Product{}, fileErr(err)
			}
			return p, nil
		}
	}
	return types.Product{}, types.ErrProductNotFound
}

func (s *FileProductStore) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	products, err := readJSONFile[types.Product](s.path)
	if err != nil {
		return fileErr(err)
	}

	kept := products[:0]
	for _, p := range products {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	if len(kept) == len(products) {
		return types.ErrProductNotFound
	}

	if err := writeJSONFile(s.path, kept); err != nil {
		return fileErr(err)
	}
	return nil
}

func (s *FileProductStore) IncrementViews(_ context.Context, id int64) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	products, err := readJSONFile[types.Product](s.path)
	if err != nil {
		return 0, fileErr(err)
	}

	for i := range products {
		if products[i].ID == id {
			products[i].Views++
			if err := writeJSONFile(s.path, products); err != nil {
				return 0, fileErr(err)
			}
			return products[i].Views, nil
		}
	}
	return 0, types.ErrProductNotFound
}

func (s *FileProductStore) Search(_ context.Context, query string, limit int) ([]types.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	products, err := readJSONFile[types.Product](s.path)
	if err != nil {
		return nil, fileErr(err)
	}

	q := strings.ToLower(query)
	var results []types.Product
	for _, p := range products {
		if strings.Contains(strings.ToLower(p.Name), q) ||
			strings.Contains(strings.ToLower(p.Description), q) {
			results = append(results, p)
			if limit > 0 && len(results) >= limit {
				break
			}
		}
	}
	return results, nil
}

func nextProductID(products []types.Product) int64 {
	var max int64
	for _, p := range products {
		if p.ID > max {
			max = p.ID
		}
	}
	return max + 1
}

// --- User store ---

// FileUserStore keeps accounts as a JSON array in a single file.
type FileUserStore struct {
	path   string
	mu     sync.Mutex
	logger *slog.Logger
}

// NewFileUserStore creates a file-backed user store.
func NewFileUserStore(path string, logger *slog.Logger) *FileUserStore {
	return &FileUserStore{
		path:   path,
		logger: logger.With("component", "file_user_store"),
	}
}

func (s *FileUserStore) Get(_ context.Context, username string) (types.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	users, err := readJSONFile[types.User](s.path)
	if err != nil {
		return types.User{}, fileErr(err)
	}
	for _, u := range users {
		if u.Username == username {
			return u, nil
		}
	}
	return types.User{}, types.ErrUserNotFound
}

func (s *FileUserStore) Create(_ context.Context, u types.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := readJSONFile[types.User](s.path)
	if err != nil {
		return fileErr(err)
	}
	for _, existing := range users {
		if existing.Username == u.Username {
			return types.ErrUserExists
		}
	}
	users = append(users, u)

	if err := writeJSONFile(s.path, users); err != nil {
		return fileErr(err)
	}
	return nil
}
