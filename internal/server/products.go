package server

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/render"

	"github.com/shopfront/pricegrab/internal/types"
)

type productResponse struct {
	Message string        `json:"message"`
	Product types.Product `json:"product"`
}

func (s *Server) handleListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := s.stores.Products.All(r.Context())
	if err != nil {
		s.logger.Error("list products failed", "error", err)
		respondError(w, r, http.StatusInternalServerError, "Error reading products", err)
		return
	}
	if products == nil {
		products = []types.Product{}
	}
	render.JSON(w, r, products)
}

func (s *Server) handleGetProduct(w http.ResponseWriter, r *http.Request) {
	id, err := productID(r)
	if err != nil {
		respondMessage(w, r, http.StatusBadRequest, "Invalid product ID")
		return
	}

	product, err := s.stores.Products.Get(r.Context(), id)
	if errors.Is(err, types.ErrProductNotFound) {
		respondMessage(w, r, http.StatusNotFound, "Product not found")
		return
	}
	if err != nil {
		s.logger.Error("get product failed", "id", id, "error", err)
		respondError(w, r, http.StatusInternalServerError, "Error reading products", err)
		return
	}
	render.JSON(w, r, product)
}

func (s *Server) handleCreateProduct(w http.ResponseWriter, r *http.Request) {
	var product types.Product
	if err := render.DecodeJSON(r.Body, &product); err != nil {
		respondMessage(w, r, http.StatusBadRequest, "Invalid JSON in request body")
		return
	}

	if err := s.validate.Struct(product); err != nil {
		respondError(w, r, http.StatusBadRequest, "Invalid product", err)
		return
	}

	created, err := s.stores.Products.Create(r.Context(), product)
	if err != nil {
		s.logger.Error("create product failed", "error", err)
		respondError(w, r, http.StatusInternalServerError, "Error adding product", err)
		return
	}

	s.logger.Info("product added", "id", created.ID, "name", created.Name, "user", usernameFromContext(r.Context()))
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, productResponse{Message: "Product added", Product: created})
}

func (s *Server) handleUpdateProduct(w http.ResponseWriter, r *http.Request) {
	var product types.Product
	if err := render.DecodeJSON(r.Body, &product); err != nil {
		respondMessage(w, r, http.StatusBadRequest, "Invalid JSON in request body")
		return
	}

	if product.ID == 0 {
		respondMessage(w, r, http.StatusBadRequest, "Product ID is required")
		return
	}
	if err := s.validate.Struct(product); err != nil {
		respondError(w, r, http.StatusBadRequest, "Invalid product", err)
		return
	}

	updated, err := s.stores.Products.Update(r.Context(), product)
	if errors.Is(err, types.ErrProductNotFound) {
		respondMessage(w, r, http.StatusNotFound, "Product not found")
		return
	}
	if err != nil {
		s.logger.Error("update product failed", "id", product.ID, "error", err)
		respondError(w, r, http.StatusInternalServerError, "Error updating product", err)
		return
	}

	render.JSON(w, r, productResponse{Message: "Product updated", Product: updated})
}

func (s *Server) handleDeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := productID(r)
	if err != nil {
		respondMessage(w, r, http.StatusBadRequest, "Invalid product ID")
		return
	}

	err = s.stores.Products.Delete(r.Context(), id)
	if errors.Is(err, types.ErrProductNotFound) {
		respondMessage(w, r, http.StatusNotFound, "Product not found")
		return
	}
	if err != nil {
		s.logger.Error("delete product failed", "id", id, "error", err)
		respondError(w, r, http.StatusInternalServerError, "Error deleting product", err)
		return
	}

	s.logger.Info("product deleted", "id", id, "user", usernameFromContext(r.Context()))
	respondMessage(w, r, http.StatusOK, fmt.Sprintf("Product with ID %d deleted", id))
}

// handleProductView bumps the product's view counter. The storefront calls
// this on every product page render.
func (s *Server) handleProductView(w http.ResponseWriter, r *http.Request) {
	id, err := productID(r)
	if err != nil {
		respondMessage(w, r, http.StatusBadRequest, "Invalid product ID")
		return
	}

	views, err := s.stores.Products.IncrementViews(r.Context(), id)
	if errors.Is(err, types.ErrProductNotFound) {
		respondMessage(w, r, http.StatusNotFound, "Product not found")
		return
	}
	if err != nil {
		s.logger.Error("view count failed", "id", id, "error", err)
		respondError(w, r, http.StatusInternalServerError, "Error updating view count", err)
		return
	}

	render.JSON(w, r, map[string]int{"views": views})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		respondMessage(w, r, http.StatusBadRequest, "Search query is required")
		return
	}

	// Capped for the storefront's live search box.
	results, err := s.stores.Products.Search(r.Context(), query, 50)
	if err != nil {
		s.logger.Error("search failed", "query", query, "error", err)
		respondError(w, r, http.StatusInternalServerError, "Internal server error", err)
		return
	}
	if results == nil {
		results = []types.Product{}
	}
	render.JSON(w, r, results)
}

func productID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}
