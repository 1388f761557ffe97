package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"storefront-service/internal/models"
)

// orderRow mirrors the orders table with the newsletter flag in its 0/1
// storage encoding.
type orderRow struct {
	ID                 int64     `db:"id"`
	CustomerID         *int64    `db:"customer_id"`
	Status             string    `db:"status"`
	Currency           string    `db:"currency"`
	TotalCents         int64     `db:"total_cents"`
	CustomerFirstName  string    `db:"customer_first_name"`
	CustomerLastName   string    `db:"customer_last_name"`
	CustomerEmail      string    `db:"customer_email"`
	ShippingStreet     string    `db:"shipping_street"`
	ShippingPostalCode string    `db:"shipping_postal_code"`
	ShippingCity       string    `db:"shipping_city"`
	ShippingCountry    string    `db:"shipping_country"`
	NewsletterOptIn    int       `db:"newsletter_opt_in"`
	CreatedAt          time.Time `db:"created_at"`
}

func (r *orderRow) toModel() models.Order {
	return models.Order{
		ID:                 r.ID,
		CustomerID:         r.CustomerID,
		Status:             r.Status,
		Currency:           r.Currency,
		TotalCents:         r.TotalCents,
		CustomerFirstName:  r.CustomerFirstName,
		CustomerLastName:   r.CustomerLastName,
		CustomerEmail:      r.CustomerEmail,
		ShippingStreet:     r.ShippingStreet,
		ShippingPostalCode: r.ShippingPostalCode,
		ShippingCity:       r.ShippingCity,
		ShippingCountry:    r.ShippingCountry,
		NewsletterOptIn:    intToBool(r.NewsletterOptIn),
		CreatedAt:          r.CreatedAt,
	}
}

// OrderSnapshot holds the customer and shipping fields captured at checkout.
// Email must already be normalized to lowercase.
type OrderSnapshot struct {
	FirstName       string
	LastName        string
	Email           string
	Street          string
	PostalCode      string
	City            string
	Country         string
	NewsletterOptIn bool
	TotalCents      int64
}

// OrderItemInput is one resolved cart line ready for persistence.
type OrderItemInput struct {
	ProductID      int64
	ProductName    string
	UnitPriceCents int64
	Quantity       int
	LineTotalCents int64
}

// CreateOrderWithItems persists an order as one atomic unit: the customer is
// upserted by email, the order row inserted with status "pending", and the
// item rows inserted in cart order. Any failure rolls everything back so no
// partial order is ever observable.
func (s *Store) CreateOrderWithItems(ctx context.Context, snapshot OrderSnapshot, items []OrderItemInput) (int64, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	customerName := snapshot.FirstName + " " + snapshot.LastName

	var customerID int64
	err = tx.GetContext(ctx, &customerID, `
		INSERT INTO customers (email, name) VALUES (?, ?)
		ON CONFLICT (email) DO UPDATE SET name = excluded.name
		RETURNING id`,
		snapshot.Email, customerName)
	if err != nil {
		return 0, fmt.Errorf("failed to upsert customer: %w", err)
	}

	var orderID int64
	err = tx.GetContext(ctx, &orderID, `
		INSERT INTO orders (
			customer_id, status, currency, total_cents,
			customer_first_name, customer_last_name, customer_email,
			shipping_street, shipping_postal_code, shipping_city, shipping_country,
			newsletter_opt_in
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id`,
		customerID, models.OrderStatusPending, models.OrderCurrency, snapshot.TotalCents,
		snapshot.FirstName, snapshot.LastName, snapshot.Email,
		snapshot.Street, snapshot.PostalCode, snapshot.City, snapshot.Country,
		boolToInt(snapshot.NewsletterOptIn))
	if err != nil {
		return 0, fmt.Errorf("failed to insert order: %w", err)
	}

	for _, item := range items {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO order_items (
				order_id, product_id, product_name, unit_price_cents, quantity, line_total_cents
			)
			VALUES (?, ?, ?, ?, ?, ?)`,
			orderID, item.ProductID, item.ProductName,
			item.UnitPriceCents, item.Quantity, item.LineTotalCents)
		if err != nil {
			return 0, fmt.Errorf("failed to insert order item for product %d: %w", item.ProductID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit order: %w", err)
	}

	return orderID, nil
}

// GetOrderByID retrieves an order by ID
func (s *Store) GetOrderByID(ctx context.Context, id int64) (*models.Order, error) {
	var row orderRow
	err := s.db.GetContext(ctx, &row, "SELECT * FROM orders WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	order := row.toModel()
	return &order, nil
}

// GetOrderItemsByOrderID retrieves all items for an order in insertion order
func (s *Store) GetOrderItemsByOrderID(ctx context.Context, orderID int64) ([]models.OrderItem, error) {
	items := []models.OrderItem{}
	err := s.db.SelectContext(ctx, &items,
		"SELECT * FROM order_items WHERE order_id = ? ORDER BY id ASC", orderID)
	return items, err
}

// ListOrders retrieves all orders, newest first
func (s *Store) ListOrders(ctx context.Context) ([]models.Order, error) {
	var rows []orderRow
	err := s.db.SelectContext(ctx, &rows, "SELECT * FROM orders ORDER BY id DESC")
	if err != nil {
		return nil, err
	}

	orders := make([]models.Order, len(rows))
	for i := range rows {
		orders[i] = rows[i].toModel()
	}
	return orders, nil
}

// GetCustomerByEmail retrieves a customer by normalized email
func (s *Store) GetCustomerByEmail(ctx context.Context, email string) (*models.Customer, error) {
	var customer models.Customer
	err := s.db.GetContext(ctx, &customer, "SELECT * FROM customers WHERE email = ?", email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &customer, nil
}

// CountOrders returns the number of persisted orders
func (s *Store) CountOrders(ctx context.Context) (int, error) {
	var n int
	err := s.db.GetContext(ctx, &n, "SELECT COUNT(*) FROM orders")
	return n, err
}

// CountOrderItems returns the number of persisted order items
func (s *Store) CountOrderItems(ctx context.Context) (int, error) {
	var n int
	err := s.db.GetContext(ctx, &n, "SELECT COUNT(*) FROM order_items")
	return n, err
}
