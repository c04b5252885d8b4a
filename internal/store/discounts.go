package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/safar/cart-service/internal/database"
	"github.com/safar/cart-service/internal/models"
	"github.com/safar/cart-service/internal/pricing"
	"github.com/shopspring/decimal"
)

var (
	ErrDiscountValueRequired = errors.New("exactly one of flat or percent is required")
	ErrDiscountValueMismatch = errors.New("discount value does not match discount kind")
	ErrDiscountOutOfRange    = errors.New("discount value out of range")
)

type DiscountRepo struct {
	q Querier
}

func NewDiscountRepo(q Querier) *DiscountRepo {
	return &DiscountRepo{q: q}
}

// FindActiveDiscount resolves the product's assignment and its value
// record. A missing assignment or a missing value record both resolve to
// no discount.
func (r *DiscountRepo) FindActiveDiscount(ctx context.Context, productID int64) (pricing.Discount, error) {
	var (
		kind    models.DiscountKind
		flat    decimal.NullDecimal
		percent decimal.NullDecimal
	)

	err := r.q.QueryRowContext(ctx,
		`SELECT d.kind, v.flat_amount, v.percent
		 FROM discounts d
		 LEFT JOIN discount_values v ON v.discount_id = d.id
		 WHERE d.product_id = $1`,
		productID).Scan(&kind, &flat, &percent)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return pricing.NoDiscount(), nil
		}
		return pricing.Discount{}, fmt.Errorf("find discount for product %d: %w", productID, err)
	}

	switch {
	case percent.Valid:
		return pricing.Discount{Kind: kind, Value: percent.Decimal}, nil
	case flat.Valid:
		return pricing.Discount{Kind: kind, Value: flat.Decimal}, nil
	}

	return pricing.NoDiscount(), nil
}

type CreateDiscountRequest struct {
	ProductID int64
	Kind      models.DiscountKind
	Flat      *decimal.Decimal
	Percent   *decimal.Decimal
}

func (req CreateDiscountRequest) Validate() error {
	if (req.Flat == nil) == (req.Percent == nil) {
		return ErrDiscountValueRequired
	}

	switch req.Kind {
	case models.DiscountFlat:
		if req.Flat == nil {
			return ErrDiscountValueMismatch
		}
		if req.Flat.IsNegative() {
			return ErrDiscountOutOfRange
		}
	case models.DiscountPercent:
		if req.Percent == nil {
			return ErrDiscountValueMismatch
		}
		if req.Percent.IsNegative() || req.Percent.GreaterThan(decimal.NewFromInt(100)) {
			return ErrDiscountOutOfRange
		}
	default:
		return fmt.Errorf("unknown discount kind %q", req.Kind)
	}

	return nil
}

// CreateDiscount assigns a discount and its value record to a product.
func CreateDiscount(ctx context.Context, db *sql.DB, req CreateDiscountRequest) (*models.DiscountAssignment, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	discount := &models.DiscountAssignment{}

	err := database.WithTransaction(ctx, db, database.DefaultTxOptions(), func(tx *sql.Tx) error {
		err := tx.QueryRowContext(ctx,
			`INSERT INTO discounts (product_id, kind, created_at)
			 VALUES ($1, $2, NOW())
			 RETURNING id, product_id, kind, created_at`,
			req.ProductID, req.Kind).Scan(&discount.ID, &discount.ProductID, &discount.Kind, &discount.CreatedAt)
		if err != nil {
			switch {
			case database.IsUniqueViolation(err):
				return database.ErrDiscountExists
			case database.IsForeignKeyViolation(err):
				return database.ErrProductNotFound
			}
			return fmt.Errorf("create discount: %w", err)
		}

		value := &discount.Value
		err = tx.QueryRowContext(ctx,
			`INSERT INTO discount_values (discount_id, flat_amount, percent)
			 VALUES ($1, $2, $3)
			 RETURNING id, discount_id`,
			discount.ID, nullDecimal(req.Flat), nullDecimal(req.Percent)).Scan(&value.ID, &value.DiscountID)
		if err != nil {
			return fmt.Errorf("create discount value: %w", err)
		}
		value.Flat = req.Flat
		value.Percent = req.Percent

		return nil
	})
	if err != nil {
		return nil, err
	}

	return discount, nil
}

func ListDiscounts(ctx context.Context, db Querier) ([]models.DiscountAssignment, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT d.id, d.product_id, d.kind, d.created_at,
		        COALESCE(v.id, 0), v.flat_amount, v.percent
		 FROM discounts d
		 LEFT JOIN discount_values v ON v.discount_id = d.id
		 ORDER BY d.id`)
	if err != nil {
		return nil, fmt.Errorf("list discounts: %w", err)
	}
	defer rows.Close()

	discounts := []models.DiscountAssignment{}
	for rows.Next() {
		var (
			d       models.DiscountAssignment
			flat    decimal.NullDecimal
			percent decimal.NullDecimal
		)
		if err := rows.Scan(&d.ID, &d.ProductID, &d.Kind, &d.CreatedAt, &d.Value.ID, &flat, &percent); err != nil {
			return nil, fmt.Errorf("scan discount: %w", err)
		}
		d.Value.DiscountID = d.ID
		if flat.Valid {
			d.Value.Flat = &flat.Decimal
		}
		if percent.Valid {
			d.Value.Percent = &percent.Decimal
		}
		discounts = append(discounts, d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return discounts, nil
}

func DeleteDiscount(ctx context.Context, db Querier, id int64) error {
	result, err := db.ExecContext(ctx, `DELETE FROM discounts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete discount: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return database.ErrDiscountNotFound
	}

	return nil
}

func nullDecimal(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: *d, Valid: true}
}
