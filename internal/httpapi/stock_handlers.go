package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/safar/cart-service/internal/store"
)

func (a *api) handleListStock(w http.ResponseWriter, r *http.Request) {
	entries, err := store.ListStock(r.Context(), a.db)
	if err != nil {
		a.fail(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, entries)
}

// handleSetStock overwrites a quantity; the caller must echo the version it
// last read.
func (a *api) handleSetStock(w http.ResponseWriter, r *http.Request) {
	productID, ok := pathID(r, "productID")
	if !ok {
		respondError(w, http.StatusBadRequest, "Invalid product ID")
		return
	}

	var req struct {
		Quantity *int `json:"quantity"`
		Version  *int `json:"version"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Quantity == nil || *req.Quantity < 0 {
		respondError(w, http.StatusBadRequest, "quantity must not be negative")
		return
	}
	if req.Version == nil {
		respondError(w, http.StatusBadRequest, "version is required")
		return
	}

	entry, err := store.SetStockOptimistic(r.Context(), a.db, productID, *req.Quantity, *req.Version)
	if err != nil {
		a.fail(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, entry)
}

func (a *api) handleReleaseStock(w http.ResponseWriter, r *http.Request) {
	productID, ok := pathID(r, "productID")
	if !ok {
		respondError(w, http.StatusBadRequest, "Invalid product ID")
		return
	}

	var req struct {
		Quantity int `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	quantity, err := a.cart.Restock(r.Context(), productID, req.Quantity)
	if err != nil {
		a.fail(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"product_id": productID,
		"quantity":   quantity,
	})
}
