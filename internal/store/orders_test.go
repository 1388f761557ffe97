package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront-service/internal/models"
)

func testSnapshot(totalCents int64) OrderSnapshot {
	return OrderSnapshot{
		FirstName:  "Anna",
		LastName:   "Svensson",
		Email:      "anna@example.com",
		Street:     "Storgatan 1",
		PostalCode: "11122",
		City:       "Stockholm",
		Country:    "SE",
		TotalCents: totalCents,
	}
}

func TestCreateOrderWithItems(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	lamp := mustCreateProduct(t, s, CreateProductParams{
		SKU: "LAM001", Name: "Lamp", PriceCents: 19900, InStock: true, Active: true,
	})
	chair := mustCreateProduct(t, s, CreateProductParams{
		SKU: "CHA001", Name: "Chair", PriceCents: 89900, InStock: true, Active: true,
	})

	orderID, err := s.CreateOrderWithItems(ctx, testSnapshot(149600), []OrderItemInput{
		{ProductID: chair.ID, ProductName: "Chair", UnitPriceCents: 89900, Quantity: 1, LineTotalCents: 89900},
		{ProductID: lamp.ID, ProductName: "Lamp", UnitPriceCents: 19900, Quantity: 3, LineTotalCents: 59700},
	})
	require.NoError(t, err)
	require.NotZero(t, orderID)

	order, err := s.GetOrderByID(ctx, orderID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusPending, order.Status)
	assert.Equal(t, models.OrderCurrency, order.Currency)
	assert.Equal(t, int64(149600), order.TotalCents)
	assert.Equal(t, "anna@example.com", order.CustomerEmail)
	require.NotNil(t, order.CustomerID)

	// Items come back in cart order.
	items, err := s.GetOrderItemsByOrderID(ctx, orderID)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, chair.ID, items[0].ProductID)
	assert.Equal(t, lamp.ID, items[1].ProductID)
	assert.Equal(t, int64(59700), items[1].LineTotalCents)
}

func TestCreateOrderRollsBackOnItemFailure(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	lamp := mustCreateProduct(t, s, CreateProductParams{
		SKU: "LAM001", Name: "Lamp", PriceCents: 19900, InStock: true, Active: true,
	})

	// The second item references a nonexistent product, which trips the
	// foreign key constraint mid-transaction.
	_, err := s.CreateOrderWithItems(ctx, testSnapshot(19900), []OrderItemInput{
		{ProductID: lamp.ID, ProductName: "Lamp", UnitPriceCents: 19900, Quantity: 1, LineTotalCents: 19900},
		{ProductID: 9999, ProductName: "Ghost", UnitPriceCents: 100, Quantity: 1, LineTotalCents: 100},
	})
	require.Error(t, err)

	orders, err := s.CountOrders(ctx)
	require.NoError(t, err)
	assert.Zero(t, orders)

	items, err := s.CountOrderItems(ctx)
	require.NoError(t, err)
	assert.Zero(t, items)

	// The customer upsert rolled back with the rest.
	_, err = s.GetCustomerByEmail(ctx, "anna@example.com")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestCreateOrderUpsertsCustomerByEmail(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	lamp := mustCreateProduct(t, s, CreateProductParams{
		SKU: "LAM001", Name: "Lamp", PriceCents: 19900, InStock: true, Active: true,
	})
	items := []OrderItemInput{
		{ProductID: lamp.ID, ProductName: "Lamp", UnitPriceCents: 19900, Quantity: 1, LineTotalCents: 19900},
	}

	firstID, err := s.CreateOrderWithItems(ctx, testSnapshot(19900), items)
	require.NoError(t, err)

	second := testSnapshot(19900)
	second.FirstName = "Anna-Karin"
	secondID, err := s.CreateOrderWithItems(ctx, second, items)
	require.NoError(t, err)

	first, err := s.GetOrderByID(ctx, firstID)
	require.NoError(t, err)
	secondOrder, err := s.GetOrderByID(ctx, secondID)
	require.NoError(t, err)

	require.NotNil(t, first.CustomerID)
	require.NotNil(t, secondOrder.CustomerID)
	assert.Equal(t, *first.CustomerID, *secondOrder.CustomerID)

	// Latest name wins on the customer record.
	customer, err := s.GetCustomerByEmail(ctx, "anna@example.com")
	require.NoError(t, err)
	assert.Equal(t, "Anna-Karin Svensson", customer.Name)
}

func TestListOrdersNewestFirst(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	lamp := mustCreateProduct(t, s, CreateProductParams{
		SKU: "LAM001", Name: "Lamp", PriceCents: 19900, InStock: true, Active: true,
	})
	items := []OrderItemInput{
		{ProductID: lamp.ID, ProductName: "Lamp", UnitPriceCents: 19900, Quantity: 1, LineTotalCents: 19900},
	}

	firstID, err := s.CreateOrderWithItems(ctx, testSnapshot(19900), items)
	require.NoError(t, err)
	secondID, err := s.CreateOrderWithItems(ctx, testSnapshot(19900), items)
	require.NoError(t, err)

	orders, err := s.ListOrders(ctx)
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, secondID, orders[0].ID)
	assert.Equal(t, firstID, orders[1].ID)
}
