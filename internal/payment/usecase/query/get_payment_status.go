package query

import (
	"context"

	"github.com/deshimart/commerce/internal/order/domain"
	userdomain "github.com/deshimart/commerce/internal/user/domain"
)

// GetPaymentStatusQuery represents the query for an order's payment state
type GetPaymentStatusQuery struct {
	OrderID   uint
	ActorID   uint
	ActorRole string
}

// PaymentStatus is the payment view of an order
type PaymentStatus struct {
	OrderNumber   string  `json:"order_number"`
	PaymentMethod string  `json:"payment_method"`
	PaymentStatus string  `json:"payment_status"`
	TransactionID string  `json:"transaction_id,omitempty"`
	Total         float64 `json:"total"`
}

// GetPaymentStatusHandler handles payment status queries
type GetPaymentStatusHandler struct {
	orders domain.OrderRepository
}

// NewGetPaymentStatusHandler creates a new get payment status handler
func NewGetPaymentStatusHandler(orders domain.OrderRepository) *GetPaymentStatusHandler {
	return &GetPaymentStatusHandler{orders: orders}
}

// Handle executes the get payment status query
func (h *GetPaymentStatusHandler) Handle(ctx context.Context, q GetPaymentStatusQuery) (*PaymentStatus, error) {
	order, err := h.orders.FindByID(q.OrderID)
	if err != nil {
		return nil, err
	}

	if q.ActorRole != userdomain.RoleAdmin && order.CustomerID != q.ActorID {
		return nil, domain.ErrForbidden
	}

	return &PaymentStatus{
		OrderNumber:   order.OrderNumber,
		PaymentMethod: order.PaymentMethod,
		PaymentStatus: order.PaymentStatus,
		TransactionID: order.TransactionID,
		Total:         order.Total,
	}, nil
}
