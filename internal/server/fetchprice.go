package server

import (
	"errors"
	"log/slog"
	"net/http"

	chimw "github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/shopfront/pricegrab/internal/types"
)

type fetchPriceRequest struct {
	URL string `json:"url" validate:"required"`
}

type fetchPriceResponse struct {
	Message string `json:"message"`
	Price   string `json:"price"`
}

// handleFetchPriceHealth is the probe the storefront UI hits before
// enabling the compare-price form.
func (s *Server) handleFetchPriceHealth(w http.ResponseWriter, r *http.Request) {
	respondMessage(w, r, http.StatusOK, "API is working")
}

// handleFetchPrice runs the extraction pipeline for the submitted URL.
// Each stage failure has its own status: absence of a price is a 404 (an
// expected outcome, not a fault), a fetch deadline is a 504 so callers can
// distinguish a slow target from a broken one, and everything else is 500.
func (s *Server) handleFetchPrice(w http.ResponseWriter, r *http.Request) {
	log := s.logger.With(slog.String("request_id", chimw.GetReqID(r.Context())))

	var req fetchPriceRequest

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		respondMessage(w, r, http.StatusBadRequest, "Invalid JSON in request body")
		return
	}

	if err := s.validate.Struct(req); err != nil {
		respondMessage(w, r, http.StatusBadRequest, "URL not provided")
		return
	}

	log.Info("fetching price", slog.String("url", req.URL))

	rec, err := s.scraper.ScrapePrice(r.Context(), req.URL)
	if err != nil {
		s.respondScrapeError(w, r, log, req.URL, err)
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, fetchPriceResponse{
		Message: "Price fetched and saved",
		Price:   rec.Price,
	})
}

func (s *Server) respondScrapeError(w http.ResponseWriter, r *http.Request, log *slog.Logger, url string, err error) {
	var (
		fetchErr *types.FetchError
		parseErr *types.ParseError
		storeErr *types.StoreError
	)

	switch {
	case errors.Is(err, types.ErrTimeout):
		log.Warn("fetch timed out", slog.String("url", url))
		respondError(w, r, http.StatusGatewayTimeout, "Request timed out",
			errors.New("The request took too long to complete"))

	case errors.Is(err, types.ErrEmptyBody):
		log.Warn("empty response", slog.String("url", url))
		respondMessage(w, r, http.StatusInternalServerError, "Empty response from server")

	case errors.Is(err, types.ErrPriceNotFound):
		log.Info("price not found", slog.String("url", url))
		respondMessage(w, r, http.StatusNotFound, "Price not found")

	case errors.As(err, &fetchErr):
		log.Error("fetch failed", slog.String("url", url), slog.String("error", err.Error()))
		respondError(w, r, http.StatusInternalServerError, "Error fetching URL", fetchErr.Err)

	case errors.As(err, &parseErr):
		log.Error("parse failed", slog.String("url", url), slog.String("error", err.Error()))
		respondError(w, r, http.StatusInternalServerError, "Error parsing HTML", parseErr.Err)

	case errors.As(err, &storeErr):
		log.Error("store failed", slog.String("url", url), slog.String("error", err.Error()))
		respondError(w, r, http.StatusInternalServerError, "Error saving price", storeErr.Err)

	default:
		log.Error("scrape failed", slog.String("url", url), slog.String("error", err.Error()))
		respondError(w, r, http.StatusInternalServerError, "An unexpected error occurred", err)
	}
}
