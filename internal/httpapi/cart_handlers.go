package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/safar/cart-service/internal/auth"
	"github.com/safar/cart-service/internal/cart"
	"github.com/safar/cart-service/internal/store"
)

type addToCartRequest struct {
	Items []struct {
		Name     string `json:"name"`
		Quantity int    `json:"quantity"`
	} `json:"items"`
}

type addToCartResponse struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Data    []cart.ItemResult `json:"data"`
}

func (a *api) handleAddToCart(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.ActorFromContext(r.Context())

	var req addToCartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	items := make([]cart.Item, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, cart.Item{ProductName: item.Name, Quantity: item.Quantity})
	}

	results, err := a.cart.AddToCart(r.Context(), actor, items)
	if err != nil {
		a.fail(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, addToCartResponse{
		Success: true,
		Message: "Added to cart",
		Data:    results,
	})
}

func (a *api) handleListCart(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.ActorFromContext(r.Context())

	lines, err := a.cart.ListCart(r.Context(), &actor)
	if err != nil {
		a.fail(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, lines)
}

func (a *api) handleListAllCart(w http.ResponseWriter, r *http.Request) {
	cursor := r.URL.Query().Get("cursor")
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit < 1 || limit > 100 {
		limit = 20
	}

	page, err := store.ListCartLinesCursor(r.Context(), a.db, cursor, limit)
	if err != nil {
		a.fail(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, page)
}

func (a *api) handleClearCart(w http.ResponseWriter, r *http.Request) {
	deleted, err := a.cart.ClearCart(r.Context())
	if err != nil {
		a.fail(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Cart data deleted",
		"deleted": deleted,
	})
}
