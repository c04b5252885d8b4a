package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/safar/cart-service/internal/database"
	"github.com/safar/cart-service/internal/models"
	"github.com/shopspring/decimal"
)

const productColumns = `id, name, price, category_id, created_at, updated_at`

func scanProduct(row rowScanner, product *models.Product) error {
	return row.Scan(
		&product.ID,
		&product.Name,
		&product.Price,
		&product.CategoryID,
		&product.CreatedAt,
		&product.UpdatedAt,
	)
}

type ProductRepo struct {
	q Querier
}

func NewProductRepo(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

func (r *ProductRepo) FindByName(ctx context.Context, name string) (*models.Product, error) {
	product := &models.Product{}

	err := scanProduct(r.q.QueryRowContext(ctx,
		`SELECT `+productColumns+`
		 FROM products
		 WHERE name = $1`,
		name), product)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, database.ErrProductNotFound
		}
		return nil, fmt.Errorf("find product %q: %w", name, err)
	}

	return product, nil
}

type CreateProductRequest struct {
	Name         string
	Price        decimal.Decimal
	CategoryID   *int64
	InitialStock int
}

// CreateProduct inserts the product and its stock row in one transaction.
func CreateProduct(ctx context.Context, db *sql.DB, req CreateProductRequest) (*models.Product, error) {
	product := &models.Product{}

	err := database.WithTransaction(ctx, db, database.DefaultTxOptions(), func(tx *sql.Tx) error {
		err := scanProduct(tx.QueryRowContext(ctx,
			`INSERT INTO products (name, price, category_id, created_at, updated_at)
			 VALUES ($1, $2, $3, NOW(), NOW())
			 RETURNING `+productColumns,
			req.Name, req.Price, req.CategoryID), product)
		if err != nil {
			switch {
			case database.IsUniqueViolation(err):
				return database.ErrDuplicateProduct
			case database.IsForeignKeyViolation(err):
				return database.ErrCategoryNotFound
			}
			return fmt.Errorf("create product: %w", err)
		}

		_, err = tx.ExecContext(ctx,
			`INSERT INTO stock (product_id, quantity, version, updated_at)
			 VALUES ($1, $2, 1, NOW())`,
			product.ID, req.InitialStock)
		if err != nil {
			return fmt.Errorf("create stock: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return product, nil
}

func GetProduct(ctx context.Context, db Querier, id int64) (*models.Product, error) {
	product := &models.Product{}

	err := scanProduct(db.QueryRowContext(ctx,
		`SELECT `+productColumns+`
		 FROM products
		 WHERE id = $1`,
		id), product)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, database.ErrProductNotFound
		}
		return nil, fmt.Errorf("get product: %w", err)
	}

	return product, nil
}

// DeleteProduct removes the product; stock, discount and cart lines go
// with it through ON DELETE CASCADE.
func DeleteProduct(ctx context.Context, db Querier, id int64) error {
	result, err := db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return database.ErrProductNotFound
	}

	return nil
}

func ListProducts(ctx context.Context, db Querier, page, pageSize int) (*OffsetPage, error) {
	var total int64
	err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM products`).Scan(&total)
	if err != nil {
		return nil, fmt.Errorf("count products: %w", err)
	}

	offset := (page - 1) * pageSize
	rows, err := db.QueryContext(ctx,
		`SELECT `+productColumns+`
		 FROM products
		 ORDER BY created_at DESC, id DESC
		 LIMIT $1 OFFSET $2`,
		pageSize, offset)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	products := []models.Product{}
	for rows.Next() {
		var product models.Product
		if err := scanProduct(rows, &product); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, product)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return NewOffsetPage(products, total, page, pageSize), nil
}
