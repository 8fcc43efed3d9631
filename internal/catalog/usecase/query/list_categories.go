package query

import (
	"github.com/deshimart/commerce/internal/catalog/domain"
)

// ListCategoriesHandler handles the list categories query
type ListCategoriesHandler struct {
	categories domain.CategoryRepository
}

// NewListCategoriesHandler creates a new list categories handler
func NewListCategoriesHandler(categories domain.CategoryRepository) *ListCategoriesHandler {
	return &ListCategoriesHandler{categories: categories}
}

// Handle executes the list categories query
func (h *ListCategoriesHandler) Handle(activeOnly bool) ([]domain.Category, error) {
	return h.categories.FindAll(activeOnly)
}
