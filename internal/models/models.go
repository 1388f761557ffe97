package models

import "time"

// Product represents a product in the catalog
type Product struct {
	ID          int64      `db:"id" json:"id"`
	SKU         string     `db:"sku" json:"sku"`
	Name        string     `db:"name" json:"name"`
	Slug        string     `db:"slug" json:"slug"`
	Description string     `db:"description" json:"description"`
	PriceCents  int64      `db:"price_cents" json:"price_cents"`
	InStock     bool       `db:"-" json:"in_stock"`
	Active      bool       `db:"-" json:"active"`
	ImageURL    string     `db:"image_url" json:"image_url"`
	PublishedAt time.Time  `db:"published_at" json:"published_at"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	Categories  []Category `db:"-" json:"categories,omitempty"`
}

// Category represents a product category
type Category struct {
	ID        int64     `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Slug      string    `db:"slug" json:"slug"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Customer represents a customer record, keyed by normalized email
type Customer struct {
	ID        int64     `db:"id" json:"id"`
	Email     string    `db:"email" json:"email"`
	Name      string    `db:"name" json:"name"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Order represents a customer order. Customer and shipping fields are a flat
// snapshot taken at checkout so later customer edits never change the order.
type Order struct {
	ID                 int64     `db:"id" json:"id"`
	CustomerID         *int64    `db:"customer_id" json:"customer_id,omitempty"`
	Status             string    `db:"status" json:"status"`
	Currency           string    `db:"currency" json:"currency"`
	TotalCents         int64     `db:"total_cents" json:"total_cents"`
	CustomerFirstName  string    `db:"customer_first_name" json:"customer_first_name"`
	CustomerLastName   string    `db:"customer_last_name" json:"customer_last_name"`
	CustomerEmail      string    `db:"customer_email" json:"customer_email"`
	ShippingStreet     string    `db:"shipping_street" json:"shipping_street"`
	ShippingPostalCode string    `db:"shipping_postal_code" json:"shipping_postal_code"`
	ShippingCity       string    `db:"shipping_city" json:"shipping_city"`
	ShippingCountry    string    `db:"shipping_country" json:"shipping_country"`
	NewsletterOptIn    bool      `db:"-" json:"newsletter_opt_in"`
	CreatedAt          time.Time `db:"created_at" json:"created_at"`
}

// OrderItem represents one order line with the product name and unit price
// captured at the time of purchase.
type OrderItem struct {
	ID             int64  `db:"id" json:"id"`
	OrderID        int64  `db:"order_id" json:"order_id"`
	ProductID      int64  `db:"product_id" json:"product_id"`
	ProductName    string `db:"product_name" json:"product_name"`
	UnitPriceCents int64  `db:"unit_price_cents" json:"unit_price_cents"`
	Quantity       int    `db:"quantity" json:"quantity"`
	LineTotalCents int64  `db:"line_total_cents" json:"line_total_cents"`
}

// Spot represents a homepage promo tile
type Spot struct {
	ID       *int64 `json:"id"`
	Title    string `json:"title"`
	ImageURL string `json:"image_url"`
}

// Order statuses
const (
	OrderStatusPending = "pending"
)

// OrderCurrency is the fixed currency for all orders
const OrderCurrency = "SEK"

// DefaultShippingCountry is used when the checkout omits a country
const DefaultShippingCountry = "SE"

// ProcessedEvent for consumer idempotency
type ProcessedEvent struct {
	EventID     string    `db:"event_id"`
	EventType   string    `db:"event_type"`
	ProcessedAt time.Time `db:"processed_at"`
}
