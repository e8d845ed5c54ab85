// Package server is the HTTP boundary: it validates requests, drives the
// scrape pipeline and the stores, and maps stage outcomes to response
// envelopes. No other layer formats a response.
package server

import (
	"context"
	"log/slog"
	"net"
	"net/http"

	"github.com/go-chi/chi"
	chimw "github.com/go-chi/chi/middleware"
	"github.com/go-playground/validator/v10"

	"github.com/shopfront/pricegrab/internal/auth"
	"github.com/shopfront/pricegrab/internal/config"
	"github.com/shopfront/pricegrab/internal/scrape"
	"github.com/shopfront/pricegrab/internal/storage"
)

// Server serves the storefront API.
type Server struct {
	srv      *http.Server
	logger   *slog.Logger
	validate *validator.Validate
	scraper  *scrape.Scraper
	stores   *storage.Stores
	auth     *auth.Manager
	cfg      *config.Config
}

// New creates a server. baseCtx becomes the base context of every request,
// so cancelling it winds down in-flight scrapes during shutdown.
func New(
	baseCtx context.Context,
	cfg *config.Config,
	scraper *scrape.Scraper,
	stores *storage.Stores,
	authMgr *auth.Manager,
	logger *slog.Logger,
) *Server {
	s := &Server{
		logger:   logger.With("component", "server"),
		validate: validator.New(),
		scraper:  scraper,
		stores:   stores,
		auth:     authMgr,
		cfg:      cfg,
	}

	s.srv = &http.Server{
		Addr:    cfg.Server.Address,
		Handler: s.routes(),
		BaseContext: func(_ net.Listener) context.Context {
			return baseCtx
		},
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	return s
}

// Start begins serving. Blocks until the listener closes.
func (s *Server) Start() error {
	s.logger.Info("server starting", "addr", s.srv.Addr)
	return s.srv.ListenAndServe()
}

// Shutdown drains connections.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("server shutting down")
	return s.srv.Shutdown(ctx)
}

// Handler exposes the routed handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.srv.Handler
}

func (s *Server) routes() *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(s.logRequests)
	r.Use(chimw.Recoverer)

	// Price extraction core
	r.Get("/fetch-price", s.handleFetchPriceHealth)
	r.Post("/fetch-price", s.handleFetchPrice)

	// Catalog, public reads
	r.Get("/products", s.handleListProducts)
	r.Get("/products/{id}", s.handleGetProduct)
	r.Get("/products/{id}/view", s.handleProductView)
	r.Get("/search", s.handleSearch)

	// Prices, public reads
	r.Get("/prices", s.handleListPrices)
	r.Get("/prices/{priceId}", s.handleGetPrice)

	// Accounts
	r.Post("/auth/signup", s.handleSignup)
	r.Post("/auth/login", s.handleLogin)
	r.Post("/logout", s.handleLogout)

	// Admin mutations
	r.Group(func(r chi.Router) {
		r.Use(s.requireAuth)

		r.Post("/products", s.handleCreateProduct)
		r.Put("/products", s.handleUpdateProduct)
		r.Delete("/products/{id}", s.handleDeleteProduct)

		r.Post("/prices", s.handleUpsertPrice)
		r.Put("/prices/{priceId}", s.handleUpdatePrice)
		r.Delete("/prices/{priceId}", s.handleDeletePrice)
		r.Post("/update-prices", s.handleBulkUpdatePrices)
		r.Post("/refresh-prices", s.handleRefreshPrices)
	})

	return r
}
