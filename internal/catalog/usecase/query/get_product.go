package query

import (
	"fmt"

	"github.com/deshimart/commerce/internal/catalog/domain"
)

// GetProductQuery represents the query to get a product
type GetProductQuery struct {
	ID         uint
	Slug       string
	CountView  bool
}

// GetProductHandler handles the get product query
type GetProductHandler struct {
	products domain.ProductRepository
}

// NewGetProductHandler creates a new get product handler
func NewGetProductHandler(products domain.ProductRepository) *GetProductHandler {
	return &GetProductHandler{products: products}
}

// Handle executes the get product query. A storefront view also bumps the
// product view counter.
func (h *GetProductHandler) Handle(q GetProductQuery) (*domain.Product, error) {
	var (
		product *domain.Product
		err     error
	)
	switch {
	case q.ID != 0:
		product, err = h.products.FindByID(q.ID)
	case q.Slug != "":
		product, err = h.products.FindBySlug(q.Slug)
	default:
		return nil, fmt.Errorf("product id or slug is required")
	}
	if err != nil {
		return nil, err
	}

	if q.CountView {
		if err := h.products.IncrementViewCount(product.ID); err == nil {
			product.ViewCount++
		}
	}

	return product, nil
}
