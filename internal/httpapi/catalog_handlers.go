package httpapi

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/safar/cart-service/internal/store"
	"github.com/shopspring/decimal"
)

const defaultInitialStock = 1

func (a *api) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		respondError(w, http.StatusBadRequest, "name is required")
		return
	}

	category, err := store.CreateCategory(r.Context(), a.db, name)
	if err != nil {
		a.fail(w, r, err)
		return
	}

	respondJSON(w, http.StatusCreated, category)
}

func (a *api) handleListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := store.ListCategories(r.Context(), a.db)
	if err != nil {
		a.fail(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, categories)
}

type createProductRequest struct {
	Name       string          `json:"name"`
	Price      decimal.Decimal `json:"price"`
	CategoryID *int64          `json:"category_id"`
	Stock      *int            `json:"stock"`
}

func (req createProductRequest) validate() string {
	switch {
	case strings.TrimSpace(req.Name) == "":
		return "name is required"
	case !req.Price.IsPositive():
		return "price must be positive"
	case req.Stock != nil && *req.Stock < 0:
		return "stock must not be negative"
	}
	return ""
}

func (a *api) handleCreateProduct(w http.ResponseWriter, r *http.Request) {
	var req createProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if msg := req.validate(); msg != "" {
		respondError(w, http.StatusBadRequest, msg)
		return
	}

	initial := defaultInitialStock
	if req.Stock != nil {
		initial = *req.Stock
	}

	product, err := store.CreateProduct(r.Context(), a.db, store.CreateProductRequest{
		Name:         strings.TrimSpace(req.Name),
		Price:        req.Price.Round(2),
		CategoryID:   req.CategoryID,
		InitialStock: initial,
	})
	if err != nil {
		a.fail(w, r, err)
		return
	}

	respondJSON(w, http.StatusCreated, product)
}

func (a *api) handleListProducts(w http.ResponseWriter, r *http.Request) {
	page, pageSize := pageParams(r)

	result, err := store.ListProducts(r.Context(), a.db, page, pageSize)
	if err != nil {
		a.fail(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

func (a *api) handleGetProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, "Invalid product ID")
		return
	}

	product, err := store.GetProduct(r.Context(), a.db, id)
	if err != nil {
		a.fail(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, product)
}

func (a *api) handleDeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, "Invalid product ID")
		return
	}

	if err := store.DeleteProduct(r.Context(), a.db, id); err != nil {
		a.fail(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
