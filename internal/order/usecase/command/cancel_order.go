package command

import (
	"context"
	"fmt"

	"github.com/deshimart/commerce/internal/order/domain"
	userdomain "github.com/deshimart/commerce/internal/user/domain"
	"github.com/deshimart/commerce/kafka"
	"github.com/deshimart/commerce/pkg/logger"
)

// CancelOrderCommand represents the command to cancel an order. ActorID and
// ActorRole identify who is asking: customers may only cancel their own
// orders.
type CancelOrderCommand struct {
	OrderID   uint
	ActorID   uint
	ActorRole string
	Reason    string
}

// CancelOrderHandler handles order cancellation
type CancelOrderHandler struct {
	orders    domain.OrderRepository
	publisher OrderEventPublisher
}

// NewCancelOrderHandler creates a new cancel order handler
func NewCancelOrderHandler(orders domain.OrderRepository, publisher OrderEventPublisher) *CancelOrderHandler {
	return &CancelOrderHandler{orders: orders, publisher: publisher}
}

// Handle executes the cancel order command. Cancellation restores the stock
// and sold counts of every line item atomically with the status change.
func (h *CancelOrderHandler) Handle(ctx context.Context, cmd CancelOrderCommand) (*domain.Order, error) {
	order, err := h.orders.FindByID(cmd.OrderID)
	if err != nil {
		return nil, err
	}

	if cmd.ActorRole != userdomain.RoleAdmin && order.CustomerID != cmd.ActorID {
		return nil, domain.ErrForbidden
	}

	if !order.IsCancellable() {
		return nil, fmt.Errorf("%w: cannot cancel a %s order", domain.ErrInvalidTransition, order.Status)
	}

	reason := cmd.Reason
	if reason == "" {
		reason = "Order cancelled"
	}

	if err := h.orders.CancelAndRestore(order, reason); err != nil {
		return nil, err
	}

	h.publishCancelled(ctx, order, reason)

	return order, nil
}

func (h *CancelOrderHandler) publishCancelled(ctx context.Context, order *domain.Order, reason string) {
	if h.publisher == nil {
		return
	}

	event := kafka.OrderCancelledEvent{
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		CustomerID:  order.CustomerID,
		Reason:      reason,
	}

	if err := h.publisher.PublishOrderCancelled(ctx, event); err != nil {
		logger.Warn(ctx).
			Err(err).
			Str("order_number", order.OrderNumber).
			Msg("Failed to publish order cancelled event")
	}
}
