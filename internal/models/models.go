package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

func ParseRole(s string) (Role, error) {
	switch Role(strings.ToLower(s)) {
	case RoleUser:
		return RoleUser, nil
	case RoleAdmin:
		return RoleAdmin, nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}

// Actor is the authenticated identity a cart operation runs for.
type Actor struct {
	ID   int64 `json:"id"`
	Role Role  `json:"role"`
}

func (a Actor) IsAdmin() bool { return a.Role == RoleAdmin }

type User struct {
	ID        int64     `json:"id"`
	Role      Role      `json:"role"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Category struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

type Product struct {
	ID         int64           `json:"id"`
	Name       string          `json:"name"`
	Price      decimal.Decimal `json:"price"`
	CategoryID *int64          `json:"category_id,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

type StockEntry struct {
	ProductID int64     `json:"product_id"`
	Quantity  int       `json:"quantity"`
	Version   int       `json:"version"`
	UpdatedAt time.Time `json:"updated_at"`
}

type DiscountKind string

const (
	DiscountNone    DiscountKind = "NO_DISCOUNT"
	DiscountFlat    DiscountKind = "FLAT"
	DiscountPercent DiscountKind = "PERCENT"
)

func ParseDiscountKind(s string) (DiscountKind, error) {
	switch DiscountKind(strings.ToUpper(s)) {
	case DiscountFlat:
		return DiscountFlat, nil
	case DiscountPercent:
		return DiscountPercent, nil
	}
	return "", fmt.Errorf("unknown discount kind %q", s)
}

type DiscountAssignment struct {
	ID        int64         `json:"id"`
	ProductID int64         `json:"product_id"`
	Kind      DiscountKind  `json:"kind"`
	Value     DiscountValue `json:"value"`
	CreatedAt time.Time     `json:"created_at"`
}

// DiscountValue holds exactly one of Flat or Percent.
type DiscountValue struct {
	ID         int64            `json:"id"`
	DiscountID int64            `json:"discount_id"`
	Flat       *decimal.Decimal `json:"flat,omitempty"`
	Percent    *decimal.Decimal `json:"percent,omitempty"`
}

// Magnitude returns whichever field is set.
func (v DiscountValue) Magnitude() (decimal.Decimal, bool) {
	switch {
	case v.Percent != nil:
		return *v.Percent, true
	case v.Flat != nil:
		return *v.Flat, true
	}
	return decimal.Zero, false
}

type CartLine struct {
	ID             int64           `json:"id"`
	UserID         *int64          `json:"user_id,omitempty"`
	AdminID        *int64          `json:"admin_id,omitempty"`
	ProductID      int64           `json:"product_id"`
	ProductName    string          `json:"product_name"`
	UnitPrice      decimal.Decimal `json:"unit_price"`
	Quantity       int             `json:"quantity"`
	DiscountKind   DiscountKind    `json:"discount_kind"`
	DiscountValue  decimal.Decimal `json:"discount_value"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	FinalTotal     decimal.Decimal `json:"final_total"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// SetOwner sets exactly one of UserID or AdminID from the actor.
func (l *CartLine) SetOwner(a Actor) {
	id := a.ID
	if a.IsAdmin() {
		l.AdminID, l.UserID = &id, nil
		return
	}
	l.UserID, l.AdminID = &id, nil
}

// Owner reconstructs the owning actor.
func (l CartLine) Owner() Actor {
	if l.AdminID != nil {
		return Actor{ID: *l.AdminID, Role: RoleAdmin}
	}
	if l.UserID != nil {
		return Actor{ID: *l.UserID, Role: RoleUser}
	}
	return Actor{}
}
