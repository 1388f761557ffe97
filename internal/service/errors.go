package service

import (
	"errors"
	"fmt"
)

// Sentinel errors for order validation, checked before any write.
var (
	ErrEmptyItems         = errors.New("items required")
	ErrInvalidPublishedAt = errors.New("invalid publishedAt, use ISO date or 'YYYY-MM-DD HH:MM:SS'")
)

// ProductNotFoundError indicates a cart references a product id that does not
// exist. The whole request fails; no partial order is created.
type ProductNotFoundError struct {
	ProductID int64
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("Product not found: %d", e.ProductID)
}

// ProductInactiveError indicates a cart references a product that exists but
// is not purchasable.
type ProductInactiveError struct {
	ProductID int64
}

func (e *ProductInactiveError) Error() string {
	return fmt.Sprintf("Product is inactive: %d", e.ProductID)
}

// InvalidQuantityError indicates a line item carries a non-positive quantity.
type InvalidQuantityError struct {
	ProductID int64
}

func (e *InvalidQuantityError) Error() string {
	return fmt.Sprintf("quantity must be greater than 0 for product %d", e.ProductID)
}
