package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront-service/internal/models"
	"storefront-service/internal/service"
	"storefront-service/internal/store"
)

func newTestServer(t *testing.T) (*gin.Engine, *store.Store) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	s, err := store.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	handler := NewHandler(
		service.NewOrderService(s, nil),
		service.NewCatalogService(s, nil),
		3,
	)

	router := gin.New()
	handler.SetupRoutes(router)
	return router, s
}

func seedProduct(t *testing.T, s *store.Store, sku, name string, priceCents int64, active bool) *models.Product {
	t.Helper()

	product, err := s.CreateProduct(context.Background(), store.CreateProductParams{
		SKU:        sku,
		Name:       name,
		PriceCents: priceCents,
		InStock:    true,
		Active:     active,
	})
	require.NoError(t, err)
	return product
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func orderPayload(items ...map[string]interface{}) map[string]interface{} {
	return map[string]interface{}{
		"customer": map[string]interface{}{
			"firstName": "Anna",
			"lastName":  "Svensson",
			"email":     "anna@example.com",
		},
		"address": map[string]interface{}{
			"street":     "Storgatan 1",
			"postalCode": "11122",
			"city":       "Stockholm",
		},
		"items": items,
	}
}

func TestCreateOrderEndpoint(t *testing.T) {
	router, s := newTestServer(t)

	lamp := seedProduct(t, s, "LAM001", "Lamp", 19900, true)

	w := doJSON(t, router, http.MethodPost, "/api/v1/orders", orderPayload(
		map[string]interface{}{"productId": lamp.ID, "qty": 3},
	))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp service.OrderResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, int64(59700), resp.Order.TotalCents)
	assert.Equal(t, "pending", resp.Order.Status)
	assert.Equal(t, "SEK", resp.Order.Currency)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, int64(19900), resp.Items[0].UnitPriceCents)
}

func TestCreateOrderUnknownProductEndpoint(t *testing.T) {
	router, _ := newTestServer(t)

	w := doJSON(t, router, http.MethodPost, "/api/v1/orders", orderPayload(
		map[string]interface{}{"productId": 9999, "qty": 1},
	))
	require.Equal(t, http.StatusNotFound, w.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Product not found: 9999", resp["error"])
}

func TestCreateOrderInactiveProductEndpoint(t *testing.T) {
	router, s := newTestServer(t)

	retired := seedProduct(t, s, "RET001", "Retired", 19900, false)

	w := doJSON(t, router, http.MethodPost, "/api/v1/orders", orderPayload(
		map[string]interface{}{"productId": retired.ID, "qty": 1},
	))
	require.Equal(t, http.StatusBadRequest, w.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, fmt.Sprintf("Product is inactive: %d", retired.ID), resp["error"])
}

func TestCreateOrderValidationEndpoint(t *testing.T) {
	router, _ := newTestServer(t)

	// Missing email, empty items.
	payload := map[string]interface{}{
		"customer": map[string]interface{}{
			"firstName": "Anna",
			"lastName":  "Svensson",
		},
		"address": map[string]interface{}{
			"street":     "Storgatan 1",
			"postalCode": "11122",
			"city":       "Stockholm",
		},
		"items": []interface{}{},
	}

	w := doJSON(t, router, http.MethodPost, "/api/v1/orders", payload)
	require.Equal(t, http.StatusBadRequest, w.Code)

	var resp struct {
		Error  string `json:"error"`
		Issues []struct {
			Field string `json:"field"`
			Rule  string `json:"rule"`
		} `json:"issues"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Validation failed", resp.Error)
	require.NotEmpty(t, resp.Issues)

	fields := make(map[string]string, len(resp.Issues))
	for _, issue := range resp.Issues {
		fields[issue.Field] = issue.Rule
	}
	assert.Contains(t, fields, "CreateOrderRequest.Customer.Email")
	assert.Contains(t, fields, "CreateOrderRequest.Items")
}

func TestGetOrderEndpoint(t *testing.T) {
	router, s := newTestServer(t)

	lamp := seedProduct(t, s, "LAM001", "Lamp", 19900, true)
	w := doJSON(t, router, http.MethodPost, "/api/v1/orders", orderPayload(
		map[string]interface{}{"productId": lamp.ID, "qty": 1},
	))
	require.Equal(t, http.StatusCreated, w.Code)

	var created service.OrderResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	w = doJSON(t, router, http.MethodGet, fmt.Sprintf("/api/v1/orders/%d", created.Order.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, http.MethodGet, "/api/v1/orders/9999", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, router, http.MethodGet, "/api/v1/orders/abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateProductEndpointDuplicateSKU(t *testing.T) {
	router, _ := newTestServer(t)

	payload := map[string]interface{}{
		"sku":        "LAM001",
		"name":       "Lamp",
		"priceCents": 19900,
	}

	w := doJSON(t, router, http.MethodPost, "/api/v1/products", payload)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	payload["name"] = "Other Lamp"
	w = doJSON(t, router, http.MethodPost, "/api/v1/products", payload)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestProductSlugEndpointPublishGate(t *testing.T) {
	router, _ := newTestServer(t)

	w := doJSON(t, router, http.MethodPost, "/api/v1/products", map[string]interface{}{
		"sku":         "FUT001",
		"name":        "Upcoming Lamp",
		"priceCents":  19900,
		"publishedAt": "2030-01-01 00:00:00",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var product models.Product
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &product))

	w = doJSON(t, router, http.MethodGet, "/api/v1/products/slug/"+product.Slug, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	// Admin read by ID still sees it.
	w = doJSON(t, router, http.MethodGet, fmt.Sprintf("/api/v1/products/%d", product.ID), nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestListProductsEndpointFilters(t *testing.T) {
	router, s := newTestServer(t)

	seedProduct(t, s, "LAM001", "Brass Lamp", 19900, true)
	seedProduct(t, s, "CHA001", "Oak Chair", 89900, true)

	w := doJSON(t, router, http.MethodGet, "/api/v1/products?search=lamp", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var products []models.Product
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &products))
	require.Len(t, products, 1)
	assert.Equal(t, "Brass Lamp", products[0].Name)

	// Products without an image come back with the placeholder.
	assert.Equal(t, "https://placehold.co/600x400/png", products[0].ImageURL)

	w = doJSON(t, router, http.MethodGet, "/api/v1/products?category=no-such-category", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSpotsEndpointPadsToCount(t *testing.T) {
	router, _ := newTestServer(t)

	w := doJSON(t, router, http.MethodGet, "/api/v1/spots", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var spots []models.Spot
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &spots))
	assert.Len(t, spots, 3)
}

func TestCategoryEndpoints(t *testing.T) {
	router, _ := newTestServer(t)

	w := doJSON(t, router, http.MethodPost, "/api/v1/categories", map[string]interface{}{"name": "Lamps"})
	require.Equal(t, http.StatusCreated, w.Code)

	var category models.Category
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &category))
	assert.Equal(t, "lamps", category.Slug)

	w = doJSON(t, router, http.MethodPatch, "/api/v1/categories", map[string]interface{}{
		"id":   category.ID,
		"name": "Lighting",
	})
	require.Equal(t, http.StatusOK, w.Code)

	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &category))
	assert.Equal(t, "lighting", category.Slug)

	w = doJSON(t, router, http.MethodPatch, "/api/v1/categories", map[string]interface{}{
		"id":   int64(9999),
		"name": "Ghost",
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHealthEndpoint(t *testing.T) {
	router, _ := newTestServer(t)

	w := doJSON(t, router, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
