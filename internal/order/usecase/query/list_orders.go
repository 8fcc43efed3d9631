package query

import (
	"context"

	"github.com/deshimart/commerce/internal/order/domain"
	userdomain "github.com/deshimart/commerce/internal/user/domain"
)

// ListOrdersQuery represents the query to list orders with pagination.
// Customers are scoped to their own orders regardless of the filter.
type ListOrdersQuery struct {
	ActorID   uint
	ActorRole string
	Status    string
	Page      int
	Limit     int
}

// OrderPage is one page of an order listing
type OrderPage struct {
	Orders     []domain.Order `json:"orders"`
	Total      int64          `json:"total"`
	Page       int            `json:"page"`
	TotalPages int            `json:"total_pages"`
}

// ListOrdersHandler handles order listing queries
type ListOrdersHandler struct {
	orders domain.OrderRepository
}

// NewListOrdersHandler creates a new list orders handler
func NewListOrdersHandler(orders domain.OrderRepository) *ListOrdersHandler {
	return &ListOrdersHandler{orders: orders}
}

// Handle executes the list orders query
func (h *ListOrdersHandler) Handle(ctx context.Context, q ListOrdersQuery) (*OrderPage, error) {
	page := q.Page
	if page < 1 {
		page = 1
	}
	limit := q.Limit
	if limit < 1 || limit > 100 {
		limit = 10
	}

	filter := domain.OrderFilter{
		Status: q.Status,
		Limit:  limit,
		Offset: (page - 1) * limit,
	}
	if q.ActorRole != userdomain.RoleAdmin {
		filter.CustomerID = q.ActorID
	}

	orders, total, err := h.orders.FindAll(filter)
	if err != nil {
		return nil, err
	}

	totalPages := int(total) / limit
	if int(total)%limit != 0 {
		totalPages++
	}

	return &OrderPage{
		Orders:     orders,
		Total:      total,
		Page:       page,
		TotalPages: totalPages,
	}, nil
}
