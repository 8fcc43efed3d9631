package query

import (
	"context"

	"github.com/deshimart/commerce/internal/order/domain"
	userdomain "github.com/deshimart/commerce/internal/user/domain"
)

// GetOrderQuery represents the query to fetch a single order. Customers can
// only see their own orders; admins see everything.
type GetOrderQuery struct {
	OrderID   uint
	ActorID   uint
	ActorRole string
}

// GetOrderHandler handles single order queries
type GetOrderHandler struct {
	orders domain.OrderRepository
}

// NewGetOrderHandler creates a new get order handler
func NewGetOrderHandler(orders domain.OrderRepository) *GetOrderHandler {
	return &GetOrderHandler{orders: orders}
}

// Handle executes the get order query
func (h *GetOrderHandler) Handle(ctx context.Context, q GetOrderQuery) (*domain.Order, error) {
	order, err := h.orders.FindByID(q.OrderID)
	if err != nil {
		return nil, err
	}

	if q.ActorRole != userdomain.RoleAdmin && order.CustomerID != q.ActorID {
		return nil, domain.ErrForbidden
	}

	return order, nil
}
