package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"storefront-service/internal/models"
)

// CreateCategory inserts a category with a unique slug derived from its name
func (s *Store) CreateCategory(ctx context.Context, name string) (*models.Category, error) {
	slug, err := s.UniqueSlug(ctx, "categories", name, 0)
	if err != nil {
		return nil, err
	}

	var category models.Category
	err = s.db.GetContext(ctx, &category,
		"INSERT INTO categories (name, slug) VALUES (?, ?) RETURNING id, name, slug, created_at",
		name, slug)
	if err != nil {
		return nil, fmt.Errorf("failed to insert category: %w", err)
	}
	return &category, nil
}

// UpdateCategory renames a category, regenerating its slug while excluding its
// own row from the collision check.
func (s *Store) UpdateCategory(ctx context.Context, id int64, name string) (*models.Category, error) {
	var exists bool
	if err := s.db.GetContext(ctx, &exists,
		"SELECT EXISTS(SELECT 1 FROM categories WHERE id = ?)", id); err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrNotFound
	}

	slug, err := s.UniqueSlug(ctx, "categories", name, id)
	if err != nil {
		return nil, err
	}

	if _, err := s.db.ExecContext(ctx,
		"UPDATE categories SET name = ?, slug = ? WHERE id = ?", name, slug, id); err != nil {
		return nil, fmt.Errorf("failed to update category: %w", err)
	}

	var category models.Category
	if err := s.db.GetContext(ctx, &category,
		"SELECT id, name, slug, created_at FROM categories WHERE id = ?", id); err != nil {
		return nil, err
	}
	return &category, nil
}

// ListCategories retrieves all categories, newest first
func (s *Store) ListCategories(ctx context.Context) ([]models.Category, error) {
	categories := []models.Category{}
	err := s.db.SelectContext(ctx, &categories,
		"SELECT id, name, slug, created_at FROM categories ORDER BY id DESC")
	return categories, err
}

// GetCategoryBySlug retrieves a category by slug
func (s *Store) GetCategoryBySlug(ctx context.Context, slug string) (*models.Category, error) {
	var category models.Category
	err := s.db.GetContext(ctx, &category,
		"SELECT id, name, slug, created_at FROM categories WHERE slug = ?", slug)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &category, nil
}

// GetCategoriesForProduct retrieves a product's categories sorted by name
func (s *Store) GetCategoriesForProduct(ctx context.Context, productID int64) ([]models.Category, error) {
	categories := []models.Category{}
	err := s.db.SelectContext(ctx, &categories, `
		SELECT c.id, c.name, c.slug, c.created_at
		FROM product_categories pc
		JOIN categories c ON c.id = pc.category_id
		WHERE pc.product_id = ?
		ORDER BY c.name ASC`, productID)
	return categories, err
}

// SetProductCategories replaces the full category set of a product in one
// transaction.
func (s *Store) SetProductCategories(ctx context.Context, productID int64, categoryIDs []int64) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM product_categories WHERE product_id = ?", productID); err != nil {
		return fmt.Errorf("failed to clear product categories: %w", err)
	}

	for _, categoryID := range categoryIDs {
		if _, err := tx.ExecContext(ctx,
			"INSERT OR IGNORE INTO product_categories (product_id, category_id) VALUES (?, ?)",
			productID, categoryID); err != nil {
			return fmt.Errorf("failed to link category %d: %w", categoryID, err)
		}
	}

	return tx.Commit()
}
