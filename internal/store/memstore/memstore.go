// Package memstore is an in-memory repository.UnitOfWork. A transaction
// works on a copy of the mutable tables and swaps it in on commit, so a
// failed batch leaves no trace.
package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/safar/cart-service/internal/database"
	"github.com/safar/cart-service/internal/models"
	"github.com/safar/cart-service/internal/pricing"
	"github.com/safar/cart-service/internal/repository"
	"github.com/shopspring/decimal"
)

type cartKey struct {
	role      models.Role
	actorID   int64
	productID int64
}

type state struct {
	stock    map[int64]int
	cart     map[cartKey]models.CartLine
	nextLine int64
}

func (s *state) clone() *state {
	c := &state{
		stock:    make(map[int64]int, len(s.stock)),
		cart:     make(map[cartKey]models.CartLine, len(s.cart)),
		nextLine: s.nextLine,
	}
	for k, v := range s.stock {
		c.stock[k] = v
	}
	for k, v := range s.cart {
		c.cart[k] = v
	}
	return c
}

// Store holds the catalog (products, discounts) and the mutable state
// (stock, cart lines). Transactions are serialized.
type Store struct {
	txMu sync.Mutex

	mu          sync.RWMutex
	products    map[string]models.Product
	nextProduct int64
	discounts   map[int64]models.DiscountAssignment
	cur         *state

	now func() time.Time
}

func New() *Store {
	return &Store{
		products:  make(map[string]models.Product),
		discounts: make(map[int64]models.DiscountAssignment),
		cur:       &state{stock: make(map[int64]int), cart: make(map[cartKey]models.CartLine)},
		now:       time.Now,
	}
}

// AddProduct registers a product and, when stock is non-negative, its
// stock row.
func (s *Store) AddProduct(name string, price decimal.Decimal, stock int) models.Product {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextProduct++
	p := models.Product{ID: s.nextProduct, Name: name, Price: price, CreatedAt: s.now(), UpdatedAt: s.now()}
	s.products[name] = p
	if stock >= 0 {
		s.cur.stock[p.ID] = stock
	}
	return p
}

// SetDiscount assigns a discount. A nil value models an assignment whose
// value record is missing.
func (s *Store) SetDiscount(productID int64, kind models.DiscountKind, value *decimal.Decimal) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d := models.DiscountAssignment{ID: productID, ProductID: productID, Kind: kind}
	if value != nil {
		v := *value
		d.Value.DiscountID = d.ID
		if kind == models.DiscountPercent {
			d.Value.Percent = &v
		} else {
			d.Value.Flat = &v
		}
	}
	s.discounts[productID] = d
}

func (s *Store) StockOf(productID int64) (int, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	q, ok := s.cur.stock[productID]
	return q, ok
}

func (s *Store) RunInTx(ctx context.Context, fn func(ctx context.Context, repos repository.Set) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.RLock()
	work := s.cur.clone()
	s.mu.RUnlock()

	if err := fn(ctx, s.bind(work)); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	s.cur = work
	s.mu.Unlock()
	return nil
}

// Reader reads the committed state.
func (s *Store) Reader() repository.Set {
	return s.bind(nil)
}

func (s *Store) bind(work *state) repository.Set {
	v := &view{s: s, work: work}
	return repository.Set{Products: v, Stock: v, Discounts: v, Cart: v}
}

// view implements every repository over either a transaction's working
// copy or, when work is nil, the committed state.
type view struct {
	s    *Store
	work *state
}

func (v *view) state() (*state, func()) {
	if v.work != nil {
		return v.work, func() {}
	}
	v.s.mu.RLock()
	return v.s.cur, v.s.mu.RUnlock
}

func (v *view) writable() (*state, func()) {
	if v.work != nil {
		return v.work, func() {}
	}
	v.s.mu.Lock()
	return v.s.cur, v.s.mu.Unlock
}

func (v *view) FindByName(ctx context.Context, name string) (*models.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	v.s.mu.RLock()
	defer v.s.mu.RUnlock()

	p, ok := v.s.products[name]
	if !ok {
		return nil, database.ErrProductNotFound
	}
	return &p, nil
}

func (v *view) GetAvailable(ctx context.Context, productID int64) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	st, done := v.state()
	defer done()

	q, ok := st.stock[productID]
	if !ok {
		return 0, database.ErrStockNotFound
	}
	return q, nil
}

func (v *view) Reserve(ctx context.Context, productID int64, quantity int) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	st, done := v.writable()
	defer done()

	q, ok := st.stock[productID]
	if !ok {
		return 0, database.ErrStockNotFound
	}
	if q < quantity {
		return 0, database.ErrInsufficientStock
	}
	st.stock[productID] = q - quantity
	return q - quantity, nil
}

func (v *view) Release(ctx context.Context, productID int64, quantity int) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	st, done := v.writable()
	defer done()

	q, ok := st.stock[productID]
	if !ok {
		return 0, database.ErrStockNotFound
	}
	st.stock[productID] = q + quantity
	return q + quantity, nil
}

func (v *view) FindActiveDiscount(ctx context.Context, productID int64) (pricing.Discount, error) {
	if err := ctx.Err(); err != nil {
		return pricing.Discount{}, err
	}
	v.s.mu.RLock()
	defer v.s.mu.RUnlock()

	d, ok := v.s.discounts[productID]
	if !ok {
		return pricing.NoDiscount(), nil
	}
	value, ok := d.Value.Magnitude()
	if !ok {
		return pricing.NoDiscount(), nil
	}
	return pricing.Discount{Kind: d.Kind, Value: value}, nil
}

func (v *view) Upsert(ctx context.Context, line *models.CartLine) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	st, done := v.writable()
	defer done()

	owner := line.Owner()
	key := cartKey{role: owner.Role, actorID: owner.ID, productID: line.ProductID}
	now := v.s.now()

	if existing, ok := st.cart[key]; ok {
		line.ID = existing.ID
		line.CreatedAt = existing.CreatedAt
	} else {
		st.nextLine++
		line.ID = st.nextLine
		line.CreatedAt = now
	}
	line.UpdatedAt = now
	st.cart[key] = *line
	return nil
}

func (v *view) ListAll(ctx context.Context) ([]models.CartLine, error) {
	return v.list(ctx, func(models.CartLine) bool { return true })
}

func (v *view) ListForActor(ctx context.Context, actor models.Actor) ([]models.CartLine, error) {
	return v.list(ctx, func(l models.CartLine) bool { return l.Owner() == actor })
}

func (v *view) list(ctx context.Context, keep func(models.CartLine) bool) ([]models.CartLine, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	st, done := v.state()
	defer done()

	lines := []models.CartLine{}
	for _, l := range st.cart {
		if keep(l) {
			lines = append(lines, l)
		}
	}
	sort.Slice(lines, func(i, j int) bool { return lines[i].ID < lines[j].ID })
	return lines, nil
}

func (v *view) ClearAll(ctx context.Context) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	st, done := v.writable()
	defer done()

	n := int64(len(st.cart))
	st.cart = make(map[cartKey]models.CartLine)
	return n, nil
}
