// Package httpapi exposes the cart and catalog operations over JSON/HTTP.
package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/safar/cart-service/internal/auth"
	"github.com/safar/cart-service/internal/cart"
	"github.com/safar/cart-service/internal/database"
	"github.com/safar/cart-service/internal/store"
	"go.uber.org/zap"
)

type jsonError struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, jsonError{Error: message})
}

// statusFor maps service errors to a status code and the message the
// client is allowed to see.
func statusFor(err error) (int, string) {
	var validation *cart.ValidationError
	switch {
	case errors.As(err, &validation),
		errors.Is(err, store.ErrDiscountValueRequired),
		errors.Is(err, store.ErrDiscountValueMismatch),
		errors.Is(err, store.ErrDiscountOutOfRange),
		errors.Is(err, store.ErrInvalidCursor):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, auth.ErrInvalidToken):
		return http.StatusUnauthorized, "unauthorized"
	case errors.Is(err, auth.ErrForbidden):
		return http.StatusForbidden, "forbidden"
	case errors.Is(err, database.ErrProductNotFound),
		errors.Is(err, database.ErrStockNotFound),
		errors.Is(err, database.ErrCategoryNotFound),
		errors.Is(err, database.ErrDiscountNotFound),
		errors.Is(err, database.ErrActorNotFound):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, database.ErrInsufficientStock),
		errors.Is(err, database.ErrDuplicateProduct),
		errors.Is(err, database.ErrDiscountExists),
		errors.Is(err, database.ErrOptimisticLockFailed):
		return http.StatusConflict, err.Error()
	case errors.Is(err, cart.ErrTimeout):
		return http.StatusGatewayTimeout, err.Error()
	}
	return http.StatusInternalServerError, "internal server error"
}

func (a *api) fail(w http.ResponseWriter, r *http.Request, err error) {
	status, message := statusFor(err)
	if status == http.StatusInternalServerError {
		a.logger.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("request_id", RequestIDFromContext(r.Context())),
			zap.Error(err),
		)
	}
	respondError(w, status, message)
}
