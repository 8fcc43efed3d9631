package query

import (
	"github.com/deshimart/commerce/internal/catalog/domain"
)

// ListProductsQuery represents the query to list products
type ListProductsQuery struct {
	Filter domain.ProductFilter
}

// ListProductsResult carries a page of products plus paging metadata
type ListProductsResult struct {
	Products   []domain.Product `json:"products"`
	Total      int64            `json:"total"`
	TotalPages int              `json:"total_pages"`
}

// ListProductsHandler handles the list products query
type ListProductsHandler struct {
	products domain.ProductRepository
}

// NewListProductsHandler creates a new list products handler
func NewListProductsHandler(products domain.ProductRepository) *ListProductsHandler {
	return &ListProductsHandler{products: products}
}

// Handle executes the list products query
func (h *ListProductsHandler) Handle(q ListProductsQuery) (*ListProductsResult, error) {
	if q.Filter.Limit <= 0 {
		q.Filter.Limit = 12
	}
	if q.Filter.Offset < 0 {
		q.Filter.Offset = 0
	}

	products, total, err := h.products.FindAll(q.Filter)
	if err != nil {
		return nil, err
	}

	totalPages := int((total + int64(q.Filter.Limit) - 1) / int64(q.Filter.Limit))

	return &ListProductsResult{
		Products:   products,
		Total:      total,
		TotalPages: totalPages,
	}, nil
}

// NewArrivals returns the most recently added active products
func (h *ListProductsHandler) NewArrivals(limit int) ([]domain.Product, error) {
	if limit <= 0 {
		limit = 8
	}
	products, _, err := h.products.FindAll(domain.ProductFilter{
		ActiveOnly: true,
		Sort:       "-created_at",
		Limit:      limit,
	})
	return products, err
}

// BestSellers returns active products ordered by units sold
func (h *ListProductsHandler) BestSellers(limit int) ([]domain.Product, error) {
	if limit <= 0 {
		limit = 8
	}
	products, _, err := h.products.FindAll(domain.ProductFilter{
		ActiveOnly: true,
		Sort:       "-sold_count",
		Limit:      limit,
	})
	return products, err
}
