package query

import (
	"fmt"

	"github.com/deshimart/commerce/internal/user/domain"
)

// ListCustomersQuery represents the admin customer listing query
type ListCustomersQuery struct {
	Search string
	Page   int
	Limit  int
}

// ListCustomersResult carries a page of customers plus paging metadata
type ListCustomersResult struct {
	Customers  []domain.User `json:"customers"`
	Total      int64         `json:"total"`
	TotalPages int           `json:"total_pages"`
}

// ListCustomersHandler handles the list customers query
type ListCustomersHandler struct {
	repo domain.UserRepository
}

// NewListCustomersHandler creates a new list customers handler
func NewListCustomersHandler(repo domain.UserRepository) *ListCustomersHandler {
	return &ListCustomersHandler{repo: repo}
}

// Handle executes the list customers query
func (h *ListCustomersHandler) Handle(q ListCustomersQuery) (*ListCustomersResult, error) {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit <= 0 {
		q.Limit = 20
	}

	customers, total, err := h.repo.FindCustomers(domain.CustomerFilter{
		Search: q.Search,
		Limit:  q.Limit,
		Offset: (q.Page - 1) * q.Limit,
	})
	if err != nil {
		return nil, err
	}

	totalPages := int((total + int64(q.Limit) - 1) / int64(q.Limit))

	return &ListCustomersResult{
		Customers:  customers,
		Total:      total,
		TotalPages: totalPages,
	}, nil
}

// GetCustomerHandler loads a single customer with recent order history
type GetCustomerHandler struct {
	repo   domain.UserRepository
	orders domain.OrderSummaryProvider
}

// NewGetCustomerHandler creates a new get customer handler
func NewGetCustomerHandler(repo domain.UserRepository, orders domain.OrderSummaryProvider) *GetCustomerHandler {
	return &GetCustomerHandler{repo: repo, orders: orders}
}

// CustomerDetail is the admin view of a customer
type CustomerDetail struct {
	Customer     *domain.User          `json:"customer"`
	RecentOrders []domain.OrderSummary `json:"recent_orders"`
}

// Handle executes the get customer query
func (h *GetCustomerHandler) Handle(id uint) (*CustomerDetail, error) {
	customer, err := h.repo.FindByID(id)
	if err != nil {
		return nil, fmt.Errorf("customer not found")
	}

	recent, err := h.orders.RecentByCustomer(customer.ID, 10)
	if err != nil {
		return nil, fmt.Errorf("failed to load order history: %w", err)
	}

	return &CustomerDetail{
		Customer:     customer,
		RecentOrders: recent,
	}, nil
}
