package httpapi

import (
	"context"
	"database/sql"
	"net/http"
	"strconv"
	"time"

	"github.com/safar/cart-service/internal/auth"
	"github.com/safar/cart-service/internal/cart"
	"go.uber.org/zap"
)

// Deps are the collaborators the handlers need. DB backs the catalog and
// stock admin routes; the cart routes go through Cart only.
type Deps struct {
	DB     *sql.DB
	Cart   *cart.Service
	Tokens *auth.Tokens
	Actors ActorLookup
	Logger *zap.Logger
}

type api struct {
	db     *sql.DB
	cart   *cart.Service
	tokens *auth.Tokens
	actors ActorLookup
	logger *zap.Logger
}

func NewRouter(d Deps) http.Handler {
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	a := &api{
		db:     d.DB,
		cart:   d.Cart,
		tokens: d.Tokens,
		actors: d.Actors,
		logger: d.Logger.Named("http"),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", a.handleHealth)

	mux.Handle("POST /cart", a.authenticate(http.HandlerFunc(a.handleAddToCart)))
	mux.Handle("GET /cart", a.authenticate(http.HandlerFunc(a.handleListCart)))
	mux.Handle("GET /cart/all", a.requireAdmin(http.HandlerFunc(a.handleListAllCart)))
	mux.Handle("DELETE /cart", a.requireAdmin(http.HandlerFunc(a.handleClearCart)))

	mux.Handle("POST /categories", a.requireAdmin(http.HandlerFunc(a.handleCreateCategory)))
	mux.Handle("GET /categories", a.authenticate(http.HandlerFunc(a.handleListCategories)))

	mux.Handle("POST /products", a.requireAdmin(http.HandlerFunc(a.handleCreateProduct)))
	mux.Handle("GET /products", a.authenticate(http.HandlerFunc(a.handleListProducts)))
	mux.Handle("GET /products/{id}", a.authenticate(http.HandlerFunc(a.handleGetProduct)))
	mux.Handle("DELETE /products/{id}", a.requireAdmin(http.HandlerFunc(a.handleDeleteProduct)))

	mux.Handle("GET /stock", a.authenticate(http.HandlerFunc(a.handleListStock)))
	mux.Handle("PATCH /stock/{productID}", a.requireAdmin(http.HandlerFunc(a.handleSetStock)))
	mux.Handle("POST /stock/{productID}/release", a.requireAdmin(http.HandlerFunc(a.handleReleaseStock)))

	mux.Handle("POST /discounts", a.requireAdmin(http.HandlerFunc(a.handleCreateDiscount)))
	mux.Handle("GET /discounts", a.authenticate(http.HandlerFunc(a.handleListDiscounts)))
	mux.Handle("DELETE /discounts/{id}", a.requireAdmin(http.HandlerFunc(a.handleDeleteDiscount)))

	return WithRequestID(WithLogging(a.logger, mux))
}

func (a *api) handleHealth(w http.ResponseWriter, r *http.Request) {
	if a.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := a.db.PingContext(ctx); err != nil {
			a.logger.Warn("health check failed", zap.Error(err))
			respondError(w, http.StatusServiceUnavailable, "database unavailable")
			return
		}
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func pathID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func pageParams(r *http.Request) (int, int) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("page_size"))
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return page, pageSize
}
