package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/render"

	"github.com/shopfront/pricegrab/internal/scrape"
	"github.com/shopfront/pricegrab/internal/types"
)

func (s *Server) handleListPrices(w http.ResponseWriter, r *http.Request) {
	records, err := s.stores.Prices.ReadAll(r.Context())
	if err != nil {
		s.logger.Error("list prices failed", "error", err)
		respondError(w, r, http.StatusInternalServerError, "Error reading prices", err)
		return
	}
	if records == nil {
		records = []types.PriceRecord{}
	}
	render.JSON(w, r, records)
}

func (s *Server) handleGetPrice(w http.ResponseWriter, r *http.Request) {
	priceID := chi.URLParam(r, "priceId")

	rec, err := s.stores.Prices.Get(r.Context(), priceID)
	if errors.Is(err, types.ErrRecordNotFound) {
		respondMessage(w, r, http.StatusNotFound, "Price not found")
		return
	}
	if err != nil {
		s.logger.Error("get price failed", "price_id", priceID, "error", err)
		respondError(w, r, http.StatusInternalServerError, "Error reading prices", err)
		return
	}
	render.JSON(w, r, rec)
}

// handleUpsertPrice inserts a new record (assigning a priceId) or merges
// into the record sharing the posted priceId. Used by the admin dashboard
// to attach shop prices to catalog products.
func (s *Server) handleUpsertPrice(w http.ResponseWriter, r *http.Request) {
	var rec types.PriceRecord
	if err := render.DecodeJSON(r.Body, &rec); err != nil {
		respondMessage(w, r, http.StatusBadRequest, "Invalid JSON in request body")
		return
	}

	saved, err := s.stores.Prices.Upsert(r.Context(), rec)
	if errors.Is(err, types.ErrInvalidPrice) {
		respondMessage(w, r, http.StatusBadRequest, "Price must contain at least one digit")
		return
	}
	if err != nil {
		s.logger.Error("upsert price failed", "error", err)
		respondError(w, r, http.StatusInternalServerError, "Failed to update price", err)
		return
	}
	render.JSON(w, r, saved)
}

func (s *Server) handleUpdatePrice(w http.ResponseWriter, r *http.Request) {
	priceID := chi.URLParam(r, "priceId")

	var rec types.PriceRecord
	if err := render.DecodeJSON(r.Body, &rec); err != nil {
		respondMessage(w, r, http.StatusBadRequest, "Invalid JSON in request body")
		return
	}
	rec.PriceID = priceID

	if _, err := s.stores.Prices.Get(r.Context(), priceID); errors.Is(err, types.ErrRecordNotFound) {
		respondMessage(w, r, http.StatusNotFound, "Price not found")
		return
	}

	if _, err := s.stores.Prices.Upsert(r.Context(), rec); err != nil {
		if errors.Is(err, types.ErrInvalidPrice) {
			respondMessage(w, r, http.StatusBadRequest, "Price must contain at least one digit")
			return
		}
		s.logger.Error("update price failed", "price_id", priceID, "error", err)
		respondError(w, r, http.StatusInternalServerError, "Failed to update price", err)
		return
	}
	respondMessage(w, r, http.StatusOK, "Price updated successfully")
}

func (s *Server) handleDeletePrice(w http.ResponseWriter, r *http.Request) {
	priceID := chi.URLParam(r, "priceId")

	err := s.stores.Prices.Delete(r.Context(), priceID)
	if errors.Is(err, types.ErrRecordNotFound) {
		respondMessage(w, r, http.StatusNotFound, "Price not found")
		return
	}
	if err != nil {
		s.logger.Error("delete price failed", "price_id", priceID, "error", err)
		respondError(w, r, http.StatusInternalServerError, "Failed to delete price", err)
		return
	}
	s.logger.Info("price deleted", "price_id", priceID, "user", usernameFromContext(r.Context()))
	respondMessage(w, r, http.StatusOK, "Price deleted successfully")
}

type bulkUpdateResponse struct {
	Message       string              `json:"message"`
	UpdatedPrices []types.PriceRecord `json:"updatedPrices"`
}

// handleBulkUpdatePrices accepts one record or an array of records and
// upserts each in order.
func (s *Server) handleBulkUpdatePrices(w http.ResponseWriter, r *http.Request) {
	var raw json.RawMessage
	if err := render.DecodeJSON(r.Body, &raw); err != nil {
		respondMessage(w, r, http.StatusBadRequest, "Invalid JSON in request body")
		return
	}

	var records []types.PriceRecord
	if err := json.Unmarshal(raw, &records); err != nil {
		var single types.PriceRecord
		if err := json.Unmarshal(raw, &single); err != nil {
			respondMessage(w, r, http.StatusBadRequest, "Invalid JSON in request body")
			return
		}
		records = []types.PriceRecord{single}
	}

	updated := make([]types.PriceRecord, 0, len(records))
	for _, rec := range records {
		saved, err := s.stores.Prices.Upsert(r.Context(), rec)
		if err != nil {
			s.logger.Error("bulk update failed", "price_id", rec.PriceID, "error", err)
			respondError(w, r, http.StatusInternalServerError, "Failed to update prices", err)
			return
		}
		updated = append(updated, saved)
	}

	render.JSON(w, r, bulkUpdateResponse{
		Message:       "Prices updated successfully",
		UpdatedPrices: updated,
	})
}

type refreshResponse struct {
	Message string                 `json:"message"`
	Results []scrape.RefreshResult `json:"results"`
}

// handleRefreshPrices re-scrapes every stored record that has a source
// URL. One slow or broken shop only fails its own entry.
func (s *Server) handleRefreshPrices(w http.ResponseWriter, r *http.Request) {
	results, err := s.scraper.RefreshAll(r.Context(), s.cfg.Extract.RefreshConcurrency)
	if err != nil {
		s.logger.Error("refresh failed", "error", err)
		respondError(w, r, http.StatusInternalServerError, "Error reading prices", err)
		return
	}
	if results == nil {
		results = []scrape.RefreshResult{}
	}
	render.JSON(w, r, refreshResponse{
		Message: "Prices refreshed",
		Results: results,
	})
}
