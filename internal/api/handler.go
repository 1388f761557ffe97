package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"storefront-service/internal/service"
	"storefront-service/internal/store"
	"storefront-service/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Handler contains HTTP handlers
type Handler struct {
	orderService *service.OrderService
	catalog      *service.CatalogService
	spotCount    int
}

// NewHandler creates a new HTTP handler
func NewHandler(orderService *service.OrderService, catalog *service.CatalogService, spotCount int) *Handler {
	if spotCount <= 0 {
		spotCount = 3
	}
	return &Handler{
		orderService: orderService,
		catalog:      catalog,
		spotCount:    spotCount,
	}
}

// SetupRoutes sets up HTTP routes
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.Use(gin.Recovery())
	router.Use(prometheusMiddleware())
	router.Use(gin.Logger())

	router.GET("/health", h.healthCheck)
	router.GET("/ready", h.readinessCheck)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	{
		v1.GET("/products", h.listProducts)
		v1.POST("/products", h.createProduct)
		v1.GET("/products/slug/:slug", h.getProductBySlug)
		v1.GET("/products/:id", h.getProduct)
		v1.PATCH("/products/:id", h.updateProduct)
		v1.DELETE("/products/:id", h.deleteProduct)
		v1.GET("/products/:id/related", h.relatedProducts)

		v1.GET("/categories", h.listCategories)
		v1.POST("/categories", h.createCategory)
		v1.PATCH("/categories", h.updateCategory)

		v1.POST("/orders", h.createOrder)
		v1.GET("/orders", h.listOrders)
		v1.GET("/orders/:id", h.getOrder)

		v1.GET("/spots", h.homepageSpots)
	}
}

// healthCheck handles health check requests
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().Unix(),
	})
}

// readinessCheck handles readiness check requests
func (h *Handler) readinessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"time":   time.Now().Unix(),
	})
}

// createOrder handles checkout submissions
func (h *Handler) createOrder(c *gin.Context) {
	var req service.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	resp, err := h.orderService.CreateOrder(c.Request.Context(), &req)
	if err != nil {
		var notFound *service.ProductNotFoundError
		var inactive *service.ProductInactiveError
		var badQty *service.InvalidQuantityError

		switch {
		case errors.As(err, &notFound):
			c.JSON(http.StatusNotFound, gin.H{"error": notFound.Error()})
		case errors.As(err, &inactive):
			c.JSON(http.StatusBadRequest, gin.H{"error": inactive.Error()})
		case errors.As(err, &badQty):
			c.JSON(http.StatusBadRequest, gin.H{"error": badQty.Error()})
		case errors.Is(err, service.ErrEmptyItems):
			c.JSON(http.StatusBadRequest, gin.H{"error": service.ErrEmptyItems.Error()})
		default:
			util.GetLogger().Error("Order creation failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create order"})
		}
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// getOrder handles get order by ID
func (h *Handler) getOrder(c *gin.Context) {
	orderID, ok := pathID(c)
	if !ok {
		return
	}

	resp, err := h.orderService.GetOrder(c.Request.Context(), orderID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load order"})
		return
	}

	c.JSON(http.StatusOK, resp)
}

// listOrders handles the admin order listing
func (h *Handler) listOrders(c *gin.Context) {
	orders, err := h.orderService.ListOrders(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list orders"})
		return
	}
	c.JSON(http.StatusOK, orders)
}

// listProducts handles catalog listings. Storefront calls see only published
// products; all=1 is the admin override.
func (h *Handler) listProducts(c *gin.Context) {
	includeUnpublished := c.Query("all") == "1"

	products, err := h.catalog.ListProducts(
		c.Request.Context(),
		c.Query("search"),
		c.Query("category"),
		includeUnpublished,
	)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Category not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list products"})
		return
	}

	for i := range products {
		products[i].ImageURL = util.NormalizeImageURL(products[i].ImageURL)
	}
	c.JSON(http.StatusOK, products)
}

// createProduct handles admin product creation
func (h *Handler) createProduct(c *gin.Context) {
	var req service.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	product, err := h.catalog.CreateProduct(c.Request.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrSKUExists):
			c.JSON(http.StatusConflict, gin.H{"error": "SKU already exists"})
		case errors.Is(err, service.ErrInvalidPublishedAt):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not create product"})
		}
		return
	}

	product.ImageURL = util.NormalizeImageURL(product.ImageURL)
	c.JSON(http.StatusCreated, product)
}

// getProduct handles admin product reads by ID
func (h *Handler) getProduct(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	product, err := h.catalog.GetProductByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load product"})
		return
	}

	product.ImageURL = util.NormalizeImageURL(product.ImageURL)
	c.JSON(http.StatusOK, product)
}

// getProductBySlug handles storefront product detail reads
func (h *Handler) getProductBySlug(c *gin.Context) {
	product, err := h.catalog.GetProductBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load product"})
		return
	}

	product.ImageURL = util.NormalizeImageURL(product.ImageURL)
	c.JSON(http.StatusOK, product)
}

// updateProduct handles admin product updates
func (h *Handler) updateProduct(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req service.UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	product, err := h.catalog.UpdateProduct(c.Request.Context(), id, &req)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
		case errors.Is(err, service.ErrInvalidPublishedAt):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not update product"})
		}
		return
	}

	product.ImageURL = util.NormalizeImageURL(product.ImageURL)
	c.JSON(http.StatusOK, product)
}

// deleteProduct handles admin product deletion
func (h *Handler) deleteProduct(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.catalog.DeleteProduct(c.Request.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not delete product"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// relatedProducts handles the related-products query for a product page
func (h *Handler) relatedProducts(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	limit := 6
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > 50 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid limit"})
			return
		}
		limit = n
	}

	products, err := h.catalog.RelatedProducts(c.Request.Context(), id, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load related products"})
		return
	}

	for i := range products {
		products[i].ImageURL = util.NormalizeImageURL(products[i].ImageURL)
	}
	c.JSON(http.StatusOK, products)
}

// listCategories handles category listing
func (h *Handler) listCategories(c *gin.Context) {
	categories, err := h.catalog.ListCategories(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list categories"})
		return
	}
	c.JSON(http.StatusOK, categories)
}

type createCategoryRequest struct {
	Name string `json:"name" binding:"required"`
}

// createCategory handles category creation
func (h *Handler) createCategory(c *gin.Context) {
	var req createCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	category, err := h.catalog.CreateCategory(c.Request.Context(), req.Name)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not create category"})
		return
	}

	c.JSON(http.StatusCreated, category)
}

type updateCategoryRequest struct {
	ID   int64  `json:"id" binding:"required,gt=0"`
	Name string `json:"name" binding:"required"`
}

// updateCategory handles category renames
func (h *Handler) updateCategory(c *gin.Context) {
	var req updateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	category, err := h.catalog.UpdateCategory(c.Request.Context(), req.ID, req.Name)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Category not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not update category"})
		return
	}

	c.JSON(http.StatusOK, category)
}

// homepageSpots handles the homepage promo tiles
func (h *Handler) homepageSpots(c *gin.Context) {
	spots, err := h.catalog.HomepageSpots(c.Request.Context(), h.spotCount)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load spots"})
		return
	}
	c.JSON(http.StatusOK, spots)
}

// pathID parses the :id path parameter, responding 400 on anything that is
// not a positive integer.
func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid id"})
		return 0, false
	}
	return id, true
}

// respondValidationError turns request binding failures into field-level
// issues. Nothing has touched storage at this point.
func respondValidationError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		issues := make([]gin.H, 0, len(verrs))
		for _, fe := range verrs {
			issues = append(issues, gin.H{
				"field": fe.Namespace(),
				"rule":  fe.Tag(),
			})
		}
		c.JSON(http.StatusBadRequest, gin.H{
			"error":  "Validation failed",
			"issues": issues,
		})
		return
	}

	c.JSON(http.StatusBadRequest, gin.H{
		"error":   "Invalid request body",
		"details": err.Error(),
	})
}

// prometheusMiddleware collects HTTP metrics
func prometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())

		util.HTTPRequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Observe(duration)

		util.HTTPRequestsTotal.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Inc()
	}
}
