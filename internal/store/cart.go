package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/safar/cart-service/internal/models"
)

const cartLineColumns = `id, user_id, admin_id, product_id, product_name, unit_price, quantity,
	discount_kind, discount_value, discount_amount, subtotal, final_total, created_at, updated_at`

func scanCartLine(row rowScanner, line *models.CartLine) error {
	return row.Scan(
		&line.ID,
		&line.UserID,
		&line.AdminID,
		&line.ProductID,
		&line.ProductName,
		&line.UnitPrice,
		&line.Quantity,
		&line.DiscountKind,
		&line.DiscountValue,
		&line.DiscountAmount,
		&line.Subtotal,
		&line.FinalTotal,
		&line.CreatedAt,
		&line.UpdatedAt,
	)
}

type CartRepo struct {
	q Querier
}

func NewCartRepo(q Querier) *CartRepo {
	return &CartRepo{q: q}
}

// ownerColumn picks the partial unique index the upsert conflicts on.
func ownerColumn(line *models.CartLine) (string, error) {
	switch {
	case line.UserID != nil && line.AdminID == nil:
		return "user_id", nil
	case line.AdminID != nil && line.UserID == nil:
		return "admin_id", nil
	}
	return "", fmt.Errorf("cart line for product %d must have exactly one owner", line.ProductID)
}

func (r *CartRepo) Upsert(ctx context.Context, line *models.CartLine) error {
	owner, err := ownerColumn(line)
	if err != nil {
		return err
	}

	query := fmt.Sprintf(
		`INSERT INTO cart_lines (user_id, admin_id, product_id, product_name, unit_price, quantity,
		     discount_kind, discount_value, discount_amount, subtotal, final_total, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW(), NOW())
		 ON CONFLICT (%[1]s, product_id) WHERE %[1]s IS NOT NULL DO UPDATE
		 SET product_name = EXCLUDED.product_name,
		     unit_price = EXCLUDED.unit_price,
		     quantity = EXCLUDED.quantity,
		     discount_kind = EXCLUDED.discount_kind,
		     discount_value = EXCLUDED.discount_value,
		     discount_amount = EXCLUDED.discount_amount,
		     subtotal = EXCLUDED.subtotal,
		     final_total = EXCLUDED.final_total,
		     updated_at = NOW()
		 RETURNING id, created_at, updated_at`, owner)

	err = r.q.QueryRowContext(ctx, query,
		line.UserID,
		line.AdminID,
		line.ProductID,
		line.ProductName,
		line.UnitPrice,
		line.Quantity,
		line.DiscountKind,
		line.DiscountValue,
		line.DiscountAmount,
		line.Subtotal,
		line.FinalTotal,
	).Scan(&line.ID, &line.CreatedAt, &line.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upsert cart line: %w", err)
	}

	return nil
}

func (r *CartRepo) ListAll(ctx context.Context) ([]models.CartLine, error) {
	return r.list(ctx, `SELECT `+cartLineColumns+` FROM cart_lines ORDER BY id`)
}

func (r *CartRepo) ListForActor(ctx context.Context, actor models.Actor) ([]models.CartLine, error) {
	column := "user_id"
	if actor.IsAdmin() {
		column = "admin_id"
	}
	return r.list(ctx, `SELECT `+cartLineColumns+` FROM cart_lines WHERE `+column+` = $1 ORDER BY id`, actor.ID)
}

func (r *CartRepo) list(ctx context.Context, query string, args ...any) ([]models.CartLine, error) {
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list cart lines: %w", err)
	}
	defer rows.Close()

	lines := []models.CartLine{}
	for rows.Next() {
		var line models.CartLine
		if err := scanCartLine(rows, &line); err != nil {
			return nil, fmt.Errorf("scan cart line: %w", err)
		}
		lines = append(lines, line)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return lines, nil
}

func (r *CartRepo) ClearAll(ctx context.Context) (int64, error) {
	result, err := r.q.ExecContext(ctx, `DELETE FROM cart_lines`)
	if err != nil {
		return 0, fmt.Errorf("clear cart lines: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("get rows affected: %w", err)
	}

	return rowsAffected, nil
}

// ListCartLinesCursor pages through every cart line, newest first.
func ListCartLinesCursor(ctx context.Context, db Querier, cursor string, limit int) (*CursorPage, error) {
	cursorData, err := DecodeCursor(cursor)
	if err != nil {
		return nil, fmt.Errorf("decode cursor: %w", err)
	}

	query := `SELECT ` + strings.TrimSpace(cartLineColumns) + `
		FROM cart_lines
		WHERE (created_at, id) < ($1, $2)
		ORDER BY created_at DESC, id DESC
		LIMIT $3`

	rows, err := db.QueryContext(ctx, query, cursorData.CreatedAt, cursorData.ID, limit+1)
	if err != nil {
		return nil, fmt.Errorf("list cart lines: %w", err)
	}
	defer rows.Close()

	lines := []models.CartLine{}
	for rows.Next() {
		var line models.CartLine
		if err := scanCartLine(rows, &line); err != nil {
			return nil, fmt.Errorf("scan cart line: %w", err)
		}
		lines = append(lines, line)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	hasMore := len(lines) > limit
	if hasMore {
		lines = lines[:limit]
	}

	var nextCursor string
	if hasMore && len(lines) > 0 {
		last := lines[len(lines)-1]
		nextCursor = EncodeCursor(Cursor{
			CreatedAt: last.CreatedAt,
			ID:        last.ID,
		})
	}

	return &CursorPage{
		Items:      lines,
		NextCursor: nextCursor,
		HasMore:    hasMore,
	}, nil
}
