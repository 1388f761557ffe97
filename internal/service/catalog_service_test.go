package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront-service/internal/store"
	"storefront-service/internal/util"
)

func TestParsePublishedAt(t *testing.T) {
	cases := map[string]time.Time{
		"2026-03-01 09:00:00":  time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
		"2026-03-01T09:00:00Z": time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
		"2026-03-01T09:00:00":  time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
		"2026-03-01":           time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
	}
	for input, want := range cases {
		got, err := parsePublishedAt(input)
		require.NoError(t, err, input)
		require.NotNil(t, got, input)
		assert.True(t, got.Equal(want), input)
	}

	got, err := parsePublishedAt("")
	require.NoError(t, err)
	assert.Nil(t, got)

	_, err = parsePublishedAt("next tuesday")
	require.ErrorIs(t, err, ErrInvalidPublishedAt)
}

func TestCreateProductDefaults(t *testing.T) {
	s := newTestStore(t)
	svc := NewCatalogService(s, nil)

	product, err := svc.CreateProduct(context.Background(), &CreateProductRequest{
		SKU:        "  LAM001  ",
		Name:       " Brass Lamp ",
		PriceCents: 19900,
	})
	require.NoError(t, err)

	assert.Equal(t, "LAM001", product.SKU)
	assert.Equal(t, "Brass Lamp", product.Name)
	assert.Equal(t, "brass-lamp", product.Slug)
	assert.True(t, product.InStock)
	assert.True(t, product.Active)
	assert.False(t, product.PublishedAt.IsZero())
}

func TestCreateProductDuplicateSKU(t *testing.T) {
	s := newTestStore(t)
	svc := NewCatalogService(s, nil)
	ctx := context.Background()

	_, err := svc.CreateProduct(ctx, &CreateProductRequest{
		SKU: "LAM001", Name: "Lamp", PriceCents: 19900,
	})
	require.NoError(t, err)

	_, err = svc.CreateProduct(ctx, &CreateProductRequest{
		SKU: "LAM001", Name: "Other Lamp", PriceCents: 9900,
	})
	require.ErrorIs(t, err, store.ErrSKUExists)
}

func TestFuturePublishedProductHiddenFromStorefront(t *testing.T) {
	s := newTestStore(t)
	svc := NewCatalogService(s, nil)
	ctx := context.Background()

	future := time.Now().Add(48 * time.Hour).UTC().Format("2006-01-02 15:04:05")
	product, err := svc.CreateProduct(ctx, &CreateProductRequest{
		SKU: "FUT001", Name: "Upcoming Lamp", PriceCents: 19900, PublishedAt: future,
	})
	require.NoError(t, err)

	// Storefront reads respect the publish gate, the admin read does not.
	_, err = svc.GetProductBySlug(ctx, product.Slug)
	require.ErrorIs(t, err, store.ErrNotFound)

	fromAdmin, err := svc.GetProductByID(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, product.ID, fromAdmin.ID)

	listed, err := svc.ListProducts(ctx, "", "", false)
	require.NoError(t, err)
	assert.Empty(t, listed)

	all, err := svc.ListProducts(ctx, "", "", true)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestListProductsUnknownCategory(t *testing.T) {
	s := newTestStore(t)
	svc := NewCatalogService(s, nil)
	ctx := context.Background()

	lamps, err := svc.CreateCategory(ctx, "Lamps")
	require.NoError(t, err)

	_, err = svc.CreateProduct(ctx, &CreateProductRequest{
		SKU: "LAM001", Name: "Lamp", PriceCents: 19900,
		CategoryIDs: []int64{lamps.ID},
	})
	require.NoError(t, err)

	listed, err := svc.ListProducts(ctx, "", "lamps", false)
	require.NoError(t, err)
	assert.Len(t, listed, 1)

	// A filter naming a nonexistent category is an error, not an empty list.
	_, err = svc.ListProducts(ctx, "", "no-such-category", false)
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestUpdateProductReplacesCategories(t *testing.T) {
	s := newTestStore(t)
	svc := NewCatalogService(s, nil)
	ctx := context.Background()

	lamps, err := svc.CreateCategory(ctx, "Lamps")
	require.NoError(t, err)
	chairs, err := svc.CreateCategory(ctx, "Chairs")
	require.NoError(t, err)

	product, err := svc.CreateProduct(ctx, &CreateProductRequest{
		SKU: "LAM001", Name: "Lamp", PriceCents: 19900,
		CategoryIDs: []int64{lamps.ID},
	})
	require.NoError(t, err)

	updated, err := svc.UpdateProduct(ctx, product.ID, &UpdateProductRequest{
		CategoryIDs: []int64{chairs.ID},
	})
	require.NoError(t, err)

	require.Len(t, updated.Categories, 1)
	assert.Equal(t, "Chairs", updated.Categories[0].Name)
}

func TestHomepageSpotsPadding(t *testing.T) {
	s := newTestStore(t)
	svc := NewCatalogService(s, nil)
	ctx := context.Background()

	require.NoError(t, s.CreateSpot(ctx, "Spring sale", "https://placehold.co/600x400", 1, true))

	spots, err := svc.HomepageSpots(ctx, 3)
	require.NoError(t, err)
	require.Len(t, spots, 3)

	assert.Equal(t, "Spring sale", spots[0].Title)
	assert.Equal(t, "https://placehold.co/600x400/png", spots[0].ImageURL)

	for _, spot := range spots[1:] {
		assert.Equal(t, "Lorem ipsum dolor", spot.Title)
		assert.Equal(t, util.PlaceholderImage, spot.ImageURL)
	}
}
