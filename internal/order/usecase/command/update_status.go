package command

import (
	"context"
	"fmt"

	"github.com/deshimart/commerce/internal/order/domain"
)

// UpdateStatusCommand represents the command to change an order's fulfillment
// status. Validated enforces the state machine; admins may clear it to force
// an arbitrary correction, which is still recorded in the history log.
type UpdateStatusCommand struct {
	OrderID   uint
	Status    string
	Note      string
	Validated bool
}

// UpdateStatusHandler handles fulfillment status changes
type UpdateStatusHandler struct {
	orders domain.OrderRepository
}

// NewUpdateStatusHandler creates a new update status handler
func NewUpdateStatusHandler(orders domain.OrderRepository) *UpdateStatusHandler {
	return &UpdateStatusHandler{orders: orders}
}

// Handle executes the update status command. Setting the order's current
// status again is a no-op: the order is returned unchanged and no history
// entry is appended.
func (h *UpdateStatusHandler) Handle(ctx context.Context, cmd UpdateStatusCommand) (*domain.Order, error) {
	if !domain.ValidStatus(cmd.Status) {
		return nil, fmt.Errorf("unknown order status: %s", cmd.Status)
	}

	order, err := h.orders.FindByID(cmd.OrderID)
	if err != nil {
		return nil, err
	}

	if order.Status == cmd.Status {
		return order, nil
	}

	if cmd.Validated && !domain.CanTransition(order.Status, cmd.Status) {
		return nil, fmt.Errorf("%w: %s to %s", domain.ErrInvalidTransition, order.Status, cmd.Status)
	}

	note := cmd.Note
	if note == "" {
		note = fmt.Sprintf("Status changed from %s to %s", order.Status, cmd.Status)
	}

	return h.orders.UpdateStatus(order.ID, cmd.Status, note)
}
