package store

import (
	"context"
	"fmt"

	"github.com/safar/cart-service/internal/models"
)

func CreateCategory(ctx context.Context, db Querier, name string) (*models.Category, error) {
	category := &models.Category{}

	err := db.QueryRowContext(ctx,
		`INSERT INTO categories (name, created_at)
		 VALUES ($1, NOW())
		 ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		 RETURNING id, name, created_at`,
		name).Scan(&category.ID, &category.Name, &category.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}

	return category, nil
}

func ListCategories(ctx context.Context, db Querier) ([]models.Category, error) {
	rows, err := db.QueryContext(ctx, `SELECT id, name, created_at FROM categories ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	categories := []models.Category{}
	for rows.Next() {
		var category models.Category
		if err := rows.Scan(&category.ID, &category.Name, &category.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, category)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return categories, nil
}
