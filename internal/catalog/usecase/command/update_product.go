package command

import (
	"fmt"

	"github.com/deshimart/commerce/internal/catalog/domain"
)

// UpdateProductCommand represents the command to update a product
type UpdateProductCommand struct {
	ID             uint
	Name           string
	Description    string
	CategoryID     uint
	Price          float64
	ComparePrice   float64
	Stock          int
	SKU            string
	Images         []string
	Variations     []domain.Variation
	Specifications []domain.Specification
	Tags           []string
	IsActive       bool
	IsFeatured     bool
}

// UpdateProductHandler handles product updates
type UpdateProductHandler struct {
	products domain.ProductRepository
}

// NewUpdateProductHandler creates a new update product handler
func NewUpdateProductHandler(products domain.ProductRepository) *UpdateProductHandler {
	return &UpdateProductHandler{products: products}
}

// Handle executes the update product command
func (h *UpdateProductHandler) Handle(cmd UpdateProductCommand) (*domain.Product, error) {
	if cmd.ID == 0 {
		return nil, fmt.Errorf("invalid product id")
	}
	if cmd.Price < 0 {
		return nil, fmt.Errorf("price cannot be negative")
	}
	if cmd.Stock < 0 {
		return nil, fmt.Errorf("stock cannot be negative")
	}

	product, err := h.products.FindByID(cmd.ID)
	if err != nil {
		return nil, fmt.Errorf("product not found")
	}

	product.Name = cmd.Name
	product.Description = cmd.Description
	product.CategoryID = cmd.CategoryID
	product.Price = cmd.Price
	product.ComparePrice = cmd.ComparePrice
	product.Stock = cmd.Stock
	product.SKU = cmd.SKU
	product.Images = cmd.Images
	product.Variations = cmd.Variations
	product.Specifications = cmd.Specifications
	product.Tags = cmd.Tags
	product.IsActive = cmd.IsActive
	product.IsFeatured = cmd.IsFeatured

	if err := h.products.Update(product); err != nil {
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	return product, nil
}
