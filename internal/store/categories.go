package store

import (
	"context"

	"factory_inventory/internal/apperr"
)

// ListCategories returns all categories ordered by name.
func (s *Store) ListCategories(ctx context.Context) ([]Category, error) {
	rows, err := s.pool.Query(ctx, `SELECT id, name FROM categories ORDER BY name`)
	if err != nil {
		return nil, apperr.Persistence("failed to list categories", err)
	}
	defer rows.Close()

	categories := make([]Category, 0)
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, apperr.Persistence("failed to scan category", err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Persistence("failed to read categories", err)
	}

	return categories, nil
}

// CreateCategory inserts a category.
func (s *Store) CreateCategory(ctx context.Context, name string) (Category, error) {
	c := Category{Name: name}
	err := s.pool.QueryRow(ctx,
		`INSERT INTO categories (name) VALUES ($1) RETURNING id`, name).Scan(&c.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return Category{}, apperr.Newf(apperr.KindConflict, "category %q already exists", name)
		}
		return Category{}, apperr.Persistence("failed to create category", err)
	}
	return c, nil
}
