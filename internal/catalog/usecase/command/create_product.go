package command

import (
	"fmt"

	"github.com/deshimart/commerce/internal/catalog/domain"
)

// CreateProductCommand represents the command to create a product
type CreateProductCommand struct {
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

// CreateProductHandler handles product creation
type CreateProductHandler struct {
	products   domain.ProductRepository
	categories domain.CategoryRepository
}

// NewCreateProductHandler creates a new create product handler
func NewCreateProductHandler(products domain.ProductRepository, categories domain.CategoryRepository) *CreateProductHandler {
	return &CreateProductHandler{products: products, categories: categories}
}

// Handle executes the create product command
func (h *CreateProductHandler) Handle(cmd CreateProductCommand) (*domain.Product, error) {
	if cmd.Name == "" {
		return nil, fmt.Errorf("product name is required")
	}
	if cmd.Price < 0 {
		return nil, fmt.Errorf("price cannot be negative")
	}
	if cmd.Stock < 0 {
		return nil, fmt.Errorf("stock cannot be negative")
	}
	if cmd.CategoryID != 0 {
		if _, err := h.categories.FindByID(cmd.CategoryID); err != nil {
			return nil, fmt.Errorf("category not found")
		}
	}

	product := &domain.Product{
		Name:           cmd.Name,
		Slug:           domain.Slugify(cmd.Name),
		Description:    cmd.Description,
		CategoryID:     cmd.CategoryID,
		Price:          cmd.Price,
		ComparePrice:   cmd.ComparePrice,
		Stock:          cmd.Stock,
		SKU:            cmd.SKU,
		Images:         cmd.Images,
		Variations:     cmd.Variations,
		Specifications: cmd.Specifications,
		Tags:           cmd.Tags,
		IsActive:       cmd.IsActive,
		IsFeatured:     cmd.IsFeatured,
	}

	if err := h.products.Create(product); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	return product, nil
}
