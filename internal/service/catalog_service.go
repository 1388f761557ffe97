package service

import (
	"context"
	"strings"
	"time"

	"storefront-service/internal/cache"
	"storefront-service/internal/models"
	"storefront-service/internal/store"
	"storefront-service/internal/util"

	"go.uber.org/zap"
)

// CatalogService covers storefront reads and admin catalog mutations.
type CatalogService struct {
	store  *store.Store
	cache  *cache.Client
	logger *zap.Logger
}

// NewCatalogService creates a catalog service. cache may be nil; every cached
// read falls back to the store.
func NewCatalogService(store *store.Store, cache *cache.Client) *CatalogService {
	return &CatalogService{
		store:  store,
		cache:  cache,
		logger: util.GetLogger(),
	}
}

// CreateProductRequest represents an admin product creation
type CreateProductRequest struct {
	SKU         string  `json:"sku" binding:"required"`
	Name        string  `json:"name" binding:"required"`
	Description string  `json:"description"`
	PriceCents  int64   `json:"priceCents" binding:"gte=0"`
	InStock     *bool   `json:"inStock"`
	Active      *bool   `json:"active"`
	ImageURL    string  `json:"imageUrl"`
	PublishedAt string  `json:"publishedAt"`
	CategoryIDs []int64 `json:"categoryIds" binding:"omitempty,dive,gt=0"`
}

// UpdateProductRequest represents an admin product update; nil fields are
// left untouched.
type UpdateProductRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	PriceCents  *int64  `json:"priceCents" binding:"omitempty,gte=0"`
	InStock     *bool   `json:"inStock"`
	Active      *bool   `json:"active"`
	ImageURL    *string `json:"imageUrl"`
	PublishedAt *string `json:"publishedAt"`
	CategoryIDs []int64 `json:"categoryIds" binding:"omitempty,dive,gt=0"`
}

// publishedAtLayouts are accepted datetime formats for admin input, tried in
// order.
var publishedAtLayouts = []string{
	"2006-01-02 15:04:05",
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

func parsePublishedAt(input string) (*time.Time, error) {
	if input == "" {
		return nil, nil
	}
	for _, layout := range publishedAtLayouts {
		if t, err := time.Parse(layout, input); err == nil {
			t = t.UTC()
			return &t, nil
		}
	}
	return nil, ErrInvalidPublishedAt
}

// CreateProduct creates a product with a unique slug. An omitted publishedAt
// publishes immediately; a future one keeps the product off the storefront
// until it passes.
func (cs *CatalogService) CreateProduct(ctx context.Context, req *CreateProductRequest) (*models.Product, error) {
	ctx, span := util.StartSpan(ctx, "CatalogService.CreateProduct")
	defer span.End()

	publishedAt, err := parsePublishedAt(req.PublishedAt)
	if err != nil {
		return nil, err
	}

	params := store.CreateProductParams{
		SKU:         trimmed(req.SKU),
		Name:        trimmed(req.Name),
		Description: trimmed(req.Description),
		PriceCents:  req.PriceCents,
		InStock:     req.InStock == nil || *req.InStock,
		Active:      req.Active == nil || *req.Active,
		ImageURL:    trimmed(req.ImageURL),
		PublishedAt: publishedAt,
		CategoryIDs: req.CategoryIDs,
	}

	product, err := cs.store.CreateProduct(ctx, params)
	if err != nil {
		return nil, err
	}

	util.ProductsCreatedTotal.Inc()
	cs.logger.Info("Product created",
		zap.Int64("product_id", product.ID),
		zap.String("sku", product.SKU),
		zap.String("slug", product.Slug))

	return product, nil
}

// UpdateProduct applies an admin update and drops any stale cache entries.
func (cs *CatalogService) UpdateProduct(ctx context.Context, id int64, req *UpdateProductRequest) (*models.Product, error) {
	ctx, span := util.StartSpan(ctx, "CatalogService.UpdateProduct")
	defer span.End()

	existing, err := cs.store.GetProductByID(ctx, id)
	if err != nil {
		return nil, err
	}

	var publishedAt *time.Time
	if req.PublishedAt != nil {
		publishedAt, err = parsePublishedAt(*req.PublishedAt)
		if err != nil {
			return nil, err
		}
	}

	params := store.UpdateProductParams{
		Description: req.Description,
		PriceCents:  req.PriceCents,
		InStock:     req.InStock,
		Active:      req.Active,
		ImageURL:    req.ImageURL,
		PublishedAt: publishedAt,
	}
	if req.Name != nil {
		name := trimmed(*req.Name)
		params.Name = &name
	}

	product, err := cs.store.UpdateProduct(ctx, id, params)
	if err != nil {
		return nil, err
	}

	if req.CategoryIDs != nil {
		if err := cs.store.SetProductCategories(ctx, id, req.CategoryIDs); err != nil {
			return nil, err
		}
		product, err = cs.store.GetProductByID(ctx, id)
		if err != nil {
			return nil, err
		}
	}

	cs.invalidate(ctx, existing.Slug)
	if product.Slug != existing.Slug {
		cs.invalidate(ctx, product.Slug)
	}

	return product, nil
}

// DeleteProduct removes a product and its category links
func (cs *CatalogService) DeleteProduct(ctx context.Context, id int64) error {
	product, err := cs.store.GetProductByID(ctx, id)
	if err != nil {
		return err
	}

	if err := cs.store.DeleteProduct(ctx, id); err != nil {
		return err
	}

	cs.invalidate(ctx, product.Slug)
	return nil
}

// GetProductByID retrieves a product regardless of publish state (admin read)
func (cs *CatalogService) GetProductByID(ctx context.Context, id int64) (*models.Product, error) {
	return cs.store.GetProductByID(ctx, id)
}

// GetProductBySlug retrieves a published product, trying the cache first and
// falling back to the store on miss or cache error.
func (cs *CatalogService) GetProductBySlug(ctx context.Context, slug string) (*models.Product, error) {
	ctx, span := util.StartSpan(ctx, "CatalogService.GetProductBySlug")
	defer span.End()

	if cs.cache != nil {
		cached, err := cs.cache.GetProduct(ctx, slug)
		if err != nil {
			util.CatalogCacheHits.WithLabelValues("error").Inc()
			cs.logger.Warn("Cache read failed, falling back to store",
				zap.String("slug", slug), zap.Error(err))
		} else if cached != nil {
			util.CatalogCacheHits.WithLabelValues("hit").Inc()
			return cached, nil
		} else {
			util.CatalogCacheHits.WithLabelValues("miss").Inc()
		}
	}

	product, err := cs.store.GetProductBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}

	if cs.cache != nil {
		if err := cs.cache.SetProduct(ctx, product); err != nil {
			cs.logger.Warn("Cache write failed", zap.String("slug", slug), zap.Error(err))
		}
	}

	return product, nil
}

// ListProducts returns catalog listings. Storefront reads only see published
// products; includeUnpublished is the admin override. A category filter must
// name an existing category, so a stale slug is store.ErrNotFound rather than
// an empty list.
func (cs *CatalogService) ListProducts(ctx context.Context, search, categorySlug string, includeUnpublished bool) ([]models.Product, error) {
	ctx, span := util.StartSpan(ctx, "CatalogService.ListProducts")
	defer span.End()

	categorySlug = trimmed(categorySlug)
	if categorySlug != "" {
		if _, err := cs.store.GetCategoryBySlug(ctx, categorySlug); err != nil {
			return nil, err
		}
	}

	return cs.store.ListProducts(ctx, store.ProductFilter{
		Search:             trimmed(search),
		CategorySlug:       categorySlug,
		IncludeUnpublished: includeUnpublished,
	})
}

// RelatedProducts returns up to limit published products related to productID
func (cs *CatalogService) RelatedProducts(ctx context.Context, productID int64, limit int) ([]models.Product, error) {
	return cs.store.RelatedProducts(ctx, productID, limit)
}

// CreateCategory creates a category with a unique slug
func (cs *CatalogService) CreateCategory(ctx context.Context, name string) (*models.Category, error) {
	return cs.store.CreateCategory(ctx, trimmed(name))
}

// UpdateCategory renames a category
func (cs *CatalogService) UpdateCategory(ctx context.Context, id int64, name string) (*models.Category, error) {
	return cs.store.UpdateCategory(ctx, id, trimmed(name))
}

// ListCategories returns all categories
func (cs *CatalogService) ListCategories(ctx context.Context) ([]models.Category, error) {
	return cs.store.ListCategories(ctx)
}

// HomepageSpots returns limit spots, padded with placeholder tiles when the
// table has fewer active rows.
func (cs *CatalogService) HomepageSpots(ctx context.Context, limit int) ([]models.Spot, error) {
	spots, err := cs.store.HomepageSpots(ctx, limit)
	if err != nil {
		return nil, err
	}

	for i := range spots {
		spots[i].ImageURL = util.NormalizeImageURL(spots[i].ImageURL)
	}

	for len(spots) < limit {
		spots = append(spots, models.Spot{
			Title:    "Lorem ipsum dolor",
			ImageURL: util.PlaceholderImage,
		})
	}

	return spots, nil
}

func (cs *CatalogService) invalidate(ctx context.Context, slug string) {
	if cs.cache == nil {
		return
	}
	if err := cs.cache.InvalidateProduct(ctx, slug); err != nil {
		cs.logger.Warn("Cache invalidation failed", zap.String("slug", slug), zap.Error(err))
	}
}

func trimmed(s string) string {
	return strings.TrimSpace(s)
}
