package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/safar/cart-service/internal/models"
	"github.com/safar/cart-service/internal/store"
	"github.com/shopspring/decimal"
)

type createDiscountRequest struct {
	ProductID int64            `json:"product_id"`
	Kind      string           `json:"kind"`
	Flat      *decimal.Decimal `json:"flat"`
	Percent   *decimal.Decimal `json:"percent"`
}

func (a *api) handleCreateDiscount(w http.ResponseWriter, r *http.Request) {
	var req createDiscountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.ProductID <= 0 {
		respondError(w, http.StatusBadRequest, "product_id is required")
		return
	}
	kind, err := models.ParseDiscountKind(req.Kind)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	discount, err := store.CreateDiscount(r.Context(), a.db, store.CreateDiscountRequest{
		ProductID: req.ProductID,
		Kind:      kind,
		Flat:      req.Flat,
		Percent:   req.Percent,
	})
	if err != nil {
		a.fail(w, r, err)
		return
	}

	respondJSON(w, http.StatusCreated, discount)
}

func (a *api) handleListDiscounts(w http.ResponseWriter, r *http.Request) {
	discounts, err := store.ListDiscounts(r.Context(), a.db)
	if err != nil {
		a.fail(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, discounts)
}

func (a *api) handleDeleteDiscount(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, "Invalid discount ID")
		return
	}

	if err := store.DeleteDiscount(r.Context(), a.db, id); err != nil {
		a.fail(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
