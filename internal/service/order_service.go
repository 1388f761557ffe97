package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"storefront-service/internal/broker"
	"storefront-service/internal/models"
	"storefront-service/internal/store"
	"storefront-service/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// OrderService validates carts against the catalog, computes authoritative
// totals from current prices, and persists orders atomically.
type OrderService struct {
	store  *store.Store
	events *broker.EventPublisher
	logger *zap.Logger
}

// NewOrderService creates a new order service. events may be nil, in which
// case no OrderCreated events are published.
func NewOrderService(store *store.Store, events *broker.EventPublisher) *OrderService {
	return &OrderService{
		store:  store,
		events: events,
		logger: util.GetLogger(),
	}
}

// CreateOrderRequest represents a checkout submission. The protocol carries no
// prices: unit prices are always resolved server-side.
type CreateOrderRequest struct {
	Customer        CustomerRequest    `json:"customer" binding:"required"`
	Address         AddressRequest     `json:"address" binding:"required"`
	NewsletterOptIn bool               `json:"newsletterOptIn"`
	Items           []OrderItemRequest `json:"items" binding:"required,min=1,dive"`
}

// CustomerRequest identifies the customer placing the order
type CustomerRequest struct {
	FirstName string `json:"firstName" binding:"required"`
	LastName  string `json:"lastName" binding:"required"`
	Email     string `json:"email" binding:"required,email"`
}

// AddressRequest is the shipping address captured on the order
type AddressRequest struct {
	Street     string `json:"street" binding:"required"`
	PostalCode string `json:"postalCode" binding:"required"`
	City       string `json:"city" binding:"required"`
	Country    string `json:"country"`
}

// OrderItemRequest represents one cart line
type OrderItemRequest struct {
	ProductID int64 `json:"productId" binding:"required,gt=0"`
	Qty       int   `json:"qty" binding:"required,gt=0"`
}

// OrderResponse is the authoritative order snapshot read back after commit
type OrderResponse struct {
	Order models.Order       `json:"order"`
	Items []models.OrderItem `json:"items"`
}

// CreateOrder validates the cart, resolves current prices in the same batch
// fetch that checks existence and activity, persists order and items in one
// transaction with a customer upsert, and returns the committed snapshot.
func (s *OrderService) CreateOrder(ctx context.Context, req *CreateOrderRequest) (*OrderResponse, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.CreateOrder")
	defer span.End()

	if len(req.Items) == 0 {
		return nil, ErrEmptyItems
	}

	for _, item := range req.Items {
		if item.Qty <= 0 {
			return nil, &InvalidQuantityError{ProductID: item.ProductID}
		}
	}

	products, err := s.resolveProducts(ctx, req.Items)
	if err != nil {
		util.OrdersFailedTotal.WithLabelValues("invalid_items").Inc()
		return nil, err
	}

	// Server-side pricing: line totals come from the fetched rows, never from
	// the client.
	items := make([]store.OrderItemInput, len(req.Items))
	var totalCents int64
	for i, line := range req.Items {
		p := products[line.ProductID]
		lineTotal := p.PriceCents * int64(line.Qty)
		items[i] = store.OrderItemInput{
			ProductID:      p.ID,
			ProductName:    p.Name,
			UnitPriceCents: p.PriceCents,
			Quantity:       line.Qty,
			LineTotalCents: lineTotal,
		}
		totalCents += lineTotal
	}

	country := strings.ToUpper(strings.TrimSpace(req.Address.Country))
	if country == "" {
		country = models.DefaultShippingCountry
	}

	snapshot := store.OrderSnapshot{
		FirstName:       strings.TrimSpace(req.Customer.FirstName),
		LastName:        strings.TrimSpace(req.Customer.LastName),
		Email:           strings.ToLower(strings.TrimSpace(req.Customer.Email)),
		Street:          strings.TrimSpace(req.Address.Street),
		PostalCode:      strings.TrimSpace(req.Address.PostalCode),
		City:            strings.TrimSpace(req.Address.City),
		Country:         country,
		NewsletterOptIn: req.NewsletterOptIn,
		TotalCents:      totalCents,
	}

	orderID, err := s.store.CreateOrderWithItems(ctx, snapshot, items)
	if err != nil {
		util.OrdersFailedTotal.WithLabelValues("db_error").Inc()
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	util.OrdersCreatedTotal.Inc()
	util.OrderValueCents.Observe(float64(totalCents))
	s.logger.Info("Order created",
		zap.Int64("order_id", orderID),
		zap.Int64("total_cents", totalCents),
		zap.Int("items", len(items)))

	resp, err := s.GetOrder(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to read back order %d: %w", orderID, err)
	}

	s.publishOrderCreated(ctx, resp)

	return resp, nil
}

// resolveProducts batch-fetches the distinct products referenced by the cart
// and verifies that every line is purchasable. Activity and price are read in
// the same query, so the price used is the price that was validated.
func (s *OrderService) resolveProducts(ctx context.Context, items []OrderItemRequest) (map[int64]models.Product, error) {
	seen := make(map[int64]bool, len(items))
	ids := make([]int64, 0, len(items))
	for _, item := range items {
		if !seen[item.ProductID] {
			seen[item.ProductID] = true
			ids = append(ids, item.ProductID)
		}
	}

	products, err := s.store.GetProductsByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch products: %w", err)
	}

	productMap := make(map[int64]models.Product, len(products))
	for _, p := range products {
		productMap[p.ID] = p
	}

	for _, item := range items {
		p, ok := productMap[item.ProductID]
		if !ok {
			return nil, &ProductNotFoundError{ProductID: item.ProductID}
		}
		if !p.Active {
			return nil, &ProductInactiveError{ProductID: item.ProductID}
		}
		// in_stock is fetched but deliberately not enforced: out-of-stock
		// products can still be ordered (backorder).
	}

	return productMap, nil
}

func (s *OrderService) publishOrderCreated(ctx context.Context, resp *OrderResponse) {
	if s.events == nil {
		return
	}

	itemData := make([]models.OrderItemData, len(resp.Items))
	for i, item := range resp.Items {
		itemData[i] = models.OrderItemData{
			ProductID:      item.ProductID,
			ProductName:    item.ProductName,
			Quantity:       item.Quantity,
			UnitPriceCents: item.UnitPriceCents,
		}
	}

	event := &models.OrderCreatedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeOrderCreated,
			Timestamp: time.Now(),
		},
		OrderID:         resp.Order.ID,
		CustomerEmail:   resp.Order.CustomerEmail,
		Currency:        resp.Order.Currency,
		TotalCents:      resp.Order.TotalCents,
		NewsletterOptIn: resp.Order.NewsletterOptIn,
		Items:           itemData,
	}

	if err := s.events.PublishOrderCreated(ctx, event); err != nil {
		s.logger.Error("Failed to publish OrderCreated event",
			zap.Int64("order_id", resp.Order.ID),
			zap.Error(err))
	}
}

// GetOrder retrieves an order with its items in insertion order
func (s *OrderService) GetOrder(ctx context.Context, orderID int64) (*OrderResponse, error) {
	order, err := s.store.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	items, err := s.store.GetOrderItemsByOrderID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	return &OrderResponse{Order: *order, Items: items}, nil
}

// ListOrders retrieves all orders, newest first
func (s *OrderService) ListOrders(ctx context.Context) ([]models.Order, error) {
	return s.store.ListOrders(ctx)
}
