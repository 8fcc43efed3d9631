package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrOrderNotFound is returned when an order does not exist
	ErrOrderNotFound = errors.New("order not found")

	// ErrProductNotFound is returned when a requested line item references
	// a product that does not exist
	ErrProductNotFound = errors.New("product not found")

	// ErrForbidden is returned when the requester is neither an admin nor
	// the owner of the order
	ErrForbidden = errors.New("not authorized to access this order")

	// ErrInvalidTransition is returned when an order cannot move to the
	// requested status from its current one
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrInvalidPaymentStatus is returned for payment status values outside
	// pending/paid/failed/refunded
	ErrInvalidPaymentStatus = errors.New("invalid payment status")
)

// InsufficientStockError reports a line item whose requested quantity exceeds
// what the catalog has on hand.
type InsufficientStockError struct {
	ProductID   uint
	ProductName string
	Available   int
	Requested   int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s. Available: %d", e.ProductName, e.Available)
}

// IsInsufficientStock reports whether err is an InsufficientStockError
func IsInsufficientStock(err error) bool {
	var target *InsufficientStockError
	return errors.As(err, &target)
}
