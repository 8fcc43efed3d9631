package domain

import "errors"

// ErrInsufficientStock is returned by conditional stock decrements when the
// requested quantity exceeds what is on hand. The decrement never partially
// applies.
var ErrInsufficientStock = errors.New("insufficient stock")

// ErrNotFound is returned when a product or category does not exist
var ErrNotFound = errors.New("not found")
