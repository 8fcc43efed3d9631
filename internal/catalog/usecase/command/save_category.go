package command

import (
	"fmt"

	"github.com/deshimart/commerce/internal/catalog/domain"
)

// SaveCategoryCommand creates a category, or updates it when ID is set
type SaveCategoryCommand struct {
	ID          uint
	Name        string
	Description string
	Image       string
	IsActive    bool
	SortOrder   int
}

// SaveCategoryHandler handles category create and update
type SaveCategoryHandler struct {
	categories domain.CategoryRepository
}

// NewSaveCategoryHandler creates a new save category handler
func NewSaveCategoryHandler(categories domain.CategoryRepository) *SaveCategoryHandler {
	return &SaveCategoryHandler{categories: categories}
}

// Handle executes the save category command
func (h *SaveCategoryHandler) Handle(cmd SaveCategoryCommand) (*domain.Category, error) {
	if cmd.Name == "" {
		return nil, fmt.Errorf("category name is required")
	}

	if cmd.ID == 0 {
		category := &domain.Category{
			Name:        cmd.Name,
			Slug:        domain.Slugify(cmd.Name),
			Description: cmd.Description,
			Image:       cmd.Image,
			IsActive:    cmd.IsActive,
			SortOrder:   cmd.SortOrder,
		}
		if err := h.categories.Create(category); err != nil {
			return nil, fmt.Errorf("failed to create category: %w", err)
		}
		return category, nil
	}

	category, err := h.categories.FindByID(cmd.ID)
	if err != nil {
		return nil, fmt.Errorf("category not found")
	}

	category.Name = cmd.Name
	category.Description = cmd.Description
	category.Image = cmd.Image
	category.IsActive = cmd.IsActive
	category.SortOrder = cmd.SortOrder

	if err := h.categories.Update(category); err != nil {
		return nil, fmt.Errorf("failed to update category: %w", err)
	}

	return category, nil
}

// DeleteCategoryHandler handles category deletion
type DeleteCategoryHandler struct {
	categories domain.CategoryRepository
}

// NewDeleteCategoryHandler creates a new delete category handler
func NewDeleteCategoryHandler(categories domain.CategoryRepository) *DeleteCategoryHandler {
	return &DeleteCategoryHandler{categories: categories}
}

// Handle executes the delete category command
func (h *DeleteCategoryHandler) Handle(id uint) error {
	if id == 0 {
		return fmt.Errorf("invalid category id")
	}
	if _, err := h.categories.FindByID(id); err != nil {
		return fmt.Errorf("category not found")
	}
	if err := h.categories.Delete(id); err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}
	return nil
}
