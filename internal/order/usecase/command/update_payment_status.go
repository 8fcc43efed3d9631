package command

import (
	"context"
	"fmt"

	"github.com/deshimart/commerce/internal/order/domain"
)

// UpdatePaymentStatusCommand represents the command to set an order's payment
// status manually, for COD collection or refund bookkeeping
type UpdatePaymentStatusCommand struct {
	OrderID       uint
	PaymentStatus string
}

// UpdatePaymentStatusHandler handles manual payment status changes
type UpdatePaymentStatusHandler struct {
	orders domain.OrderRepository
}

// NewUpdatePaymentStatusHandler creates a new update payment status handler
func NewUpdatePaymentStatusHandler(orders domain.OrderRepository) *UpdatePaymentStatusHandler {
	return &UpdatePaymentStatusHandler{orders: orders}
}

// Handle executes the update payment status command
func (h *UpdatePaymentStatusHandler) Handle(ctx context.Context, cmd UpdatePaymentStatusCommand) (*domain.Order, error) {
	if !domain.ValidPaymentStatus(cmd.PaymentStatus) {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidPaymentStatus, cmd.PaymentStatus)
	}

	return h.orders.UpdatePaymentStatus(cmd.OrderID, cmd.PaymentStatus)
}
