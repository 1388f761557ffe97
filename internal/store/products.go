package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"storefront-service/internal/models"

	"github.com/jmoiron/sqlx"
)

// sqliteTime is the canonical datetime format written by this store, matching
// what datetime('now') produces so text comparisons stay consistent.
const sqliteTime = "2006-01-02 15:04:05"

// productRow mirrors the products table, with booleans in their 0/1 storage
// encoding. The conversion to models.Product happens only here.
type productRow struct {
	ID          int64     `db:"id"`
	SKU         string    `db:"sku"`
	Name        string    `db:"name"`
	Slug        string    `db:"slug"`
	Description string    `db:"description"`
	PriceCents  int64     `db:"price_cents"`
	InStock     int       `db:"in_stock"`
	Active      int       `db:"active"`
	ImageURL    string    `db:"image_url"`
	PublishedAt time.Time `db:"published_at"`
	CreatedAt   time.Time `db:"created_at"`
}

func (r *productRow) toModel() models.Product {
	return models.Product{
		ID:          r.ID,
		SKU:         r.SKU,
		Name:        r.Name,
		Slug:        r.Slug,
		Description: r.Description,
		PriceCents:  r.PriceCents,
		InStock:     intToBool(r.InStock),
		Active:      intToBool(r.Active),
		ImageURL:    r.ImageURL,
		PublishedAt: r.PublishedAt,
		CreatedAt:   r.CreatedAt,
	}
}

// CreateProductParams holds the inputs for a new product.
type CreateProductParams struct {
	SKU         string
	Name        string
	Description string
	PriceCents  int64
	InStock     bool
	Active      bool
	ImageURL    string
	PublishedAt *time.Time
	CategoryIDs []int64
}

// CreateProduct inserts a product with a slug derived from its name and links
// the given categories. A nil PublishedAt publishes immediately.
func (s *Store) CreateProduct(ctx context.Context, p CreateProductParams) (*models.Product, error) {
	slug, err := s.UniqueSlug(ctx, "products", p.Name, 0)
	if err != nil {
		return nil, err
	}

	var publishedAt interface{}
	if p.PublishedAt != nil {
		publishedAt = p.PublishedAt.UTC().Format(sqliteTime)
	}

	var id int64
	err = s.db.GetContext(ctx, &id, `
		INSERT INTO products (sku, name, slug, description, price_cents, in_stock, active, image_url, published_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, COALESCE(?, datetime('now')))
		RETURNING id`,
		p.SKU, p.Name, slug, p.Description, p.PriceCents,
		boolToInt(p.InStock), boolToInt(p.Active), p.ImageURL, publishedAt)
	if err != nil {
		if isUniqueViolation(err, "products.sku") {
			return nil, ErrSKUExists
		}
		return nil, fmt.Errorf("failed to insert product: %w", err)
	}

	if len(p.CategoryIDs) > 0 {
		if err := s.SetProductCategories(ctx, id, p.CategoryIDs); err != nil {
			return nil, err
		}
	}

	return s.GetProductByID(ctx, id)
}

// GetProductByID retrieves a product by ID with its categories
func (s *Store) GetProductByID(ctx context.Context, id int64) (*models.Product, error) {
	var row productRow
	err := s.db.GetContext(ctx, &row, "SELECT * FROM products WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return s.enrich(ctx, &row)
}

// GetProductBySlug retrieves a published product by slug with its categories
func (s *Store) GetProductBySlug(ctx context.Context, slug string) (*models.Product, error) {
	var row productRow
	err := s.db.GetContext(ctx, &row,
		"SELECT * FROM products WHERE slug = ? AND published_at <= datetime('now')", slug)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return s.enrich(ctx, &row)
}

// GetProductsByIDs retrieves multiple products by IDs in one query. Missing
// ids are simply absent from the result.
func (s *Store) GetProductsByIDs(ctx context.Context, ids []int64) ([]models.Product, error) {
	if len(ids) == 0 {
		return []models.Product{}, nil
	}

	query, args, err := sqlx.In("SELECT * FROM products WHERE id IN (?)", ids)
	if err != nil {
		return nil, err
	}
	query = s.db.Rebind(query)

	var rows []productRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, err
	}

	products := make([]models.Product, len(rows))
	for i := range rows {
		products[i] = rows[i].toModel()
	}
	return products, nil
}

// ProductFilter narrows ListProducts results.
type ProductFilter struct {
	Search       string
	CategorySlug string
	// IncludeUnpublished lifts the published_at gate for admin reads.
	IncludeUnpublished bool
}

// ListProducts returns products matching the filter, newest first, each
// enriched with its categories. Storefront reads only see products whose
// publish timestamp has passed.
func (s *Store) ListProducts(ctx context.Context, filter ProductFilter) ([]models.Product, error) {
	where := []string{"1=1"}
	args := []interface{}{}

	if !filter.IncludeUnpublished {
		where = append(where, "p.published_at <= datetime('now')")
	}
	if filter.Search != "" {
		where = append(where, "p.name LIKE ?")
		args = append(args, "%"+filter.Search+"%")
	}
	if filter.CategorySlug != "" {
		where = append(where, `EXISTS (
			SELECT 1 FROM product_categories pc
			JOIN categories c ON c.id = pc.category_id
			WHERE pc.product_id = p.id AND c.slug = ?)`)
		args = append(args, filter.CategorySlug)
	}

	query := "SELECT p.* FROM products p WHERE " + strings.Join(where, " AND ") + " ORDER BY p.id DESC"

	var rows []productRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, err
	}

	products := make([]models.Product, 0, len(rows))
	for i := range rows {
		p, err := s.enrich(ctx, &rows[i])
		if err != nil {
			return nil, err
		}
		products = append(products, *p)
	}
	return products, nil
}

// RelatedProducts returns published products sharing at least one category
// with productID, newest-published first, capped at limit. When there is no
// category overlap it falls back to the newest other published products.
func (s *Store) RelatedProducts(ctx context.Context, productID int64, limit int) ([]models.Product, error) {
	var rows []productRow
	err := s.db.SelectContext(ctx, &rows, `
		SELECT DISTINCT p.* FROM products p
		JOIN product_categories pc ON pc.product_id = p.id
		WHERE p.id != ?
		  AND p.published_at <= datetime('now')
		  AND pc.category_id IN (SELECT category_id FROM product_categories WHERE product_id = ?)
		ORDER BY p.published_at DESC, p.id DESC
		LIMIT ?`, productID, productID, limit)
	if err != nil {
		return nil, err
	}

	if len(rows) == 0 {
		err = s.db.SelectContext(ctx, &rows, `
			SELECT p.* FROM products p
			WHERE p.id != ? AND p.published_at <= datetime('now')
			ORDER BY p.published_at DESC, p.id DESC
			LIMIT ?`, productID, limit)
		if err != nil {
			return nil, err
		}
	}

	products := make([]models.Product, 0, len(rows))
	for i := range rows {
		p, err := s.enrich(ctx, &rows[i])
		if err != nil {
			return nil, err
		}
		products = append(products, *p)
	}
	return products, nil
}

// UpdateProductParams holds the mutable product fields. Nil pointers leave the
// column untouched.
type UpdateProductParams struct {
	Name        *string
	Description *string
	PriceCents  *int64
	InStock     *bool
	Active      *bool
	ImageURL    *string
	PublishedAt *time.Time
}

// UpdateProduct applies the given changes. A renamed product gets a fresh
// unique slug, excluding its own row from the collision check.
func (s *Store) UpdateProduct(ctx context.Context, id int64, p UpdateProductParams) (*models.Product, error) {
	set := []string{}
	args := []interface{}{}

	if p.Name != nil {
		slug, err := s.UniqueSlug(ctx, "products", *p.Name, id)
		if err != nil {
			return nil, err
		}
		set = append(set, "name = ?", "slug = ?")
		args = append(args, *p.Name, slug)
	}
	if p.Description != nil {
		set = append(set, "description = ?")
		args = append(args, *p.Description)
	}
	if p.PriceCents != nil {
		set = append(set, "price_cents = ?")
		args = append(args, *p.PriceCents)
	}
	if p.InStock != nil {
		set = append(set, "in_stock = ?")
		args = append(args, boolToInt(*p.InStock))
	}
	if p.Active != nil {
		set = append(set, "active = ?")
		args = append(args, boolToInt(*p.Active))
	}
	if p.ImageURL != nil {
		set = append(set, "image_url = ?")
		args = append(args, *p.ImageURL)
	}
	if p.PublishedAt != nil {
		set = append(set, "published_at = ?")
		args = append(args, p.PublishedAt.UTC().Format(sqliteTime))
	}

	if len(set) == 0 {
		return s.GetProductByID(ctx, id)
	}

	args = append(args, id)
	res, err := s.db.ExecContext(ctx,
		"UPDATE products SET "+strings.Join(set, ", ")+" WHERE id = ?", args...)
	if err != nil {
		return nil, fmt.Errorf("failed to update product: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, ErrNotFound
	}

	return s.GetProductByID(ctx, id)
}

// DeleteProduct removes a product; category links cascade.
func (s *Store) DeleteProduct(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM products WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) enrich(ctx context.Context, row *productRow) (*models.Product, error) {
	p := row.toModel()
	categories, err := s.GetCategoriesForProduct(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	p.Categories = categories
	return &p, nil
}
