package domain

import "errors"

var (
	// ErrGatewayFailure is returned when the payment gateway rejects a
	// session or cannot be reached
	ErrGatewayFailure = errors.New("payment gateway failure")

	// ErrNotInitiable is returned when payment cannot be started for the
	// order, either because it is not a gateway order or it is already paid
	ErrNotInitiable = errors.New("payment cannot be initiated for this order")
)
