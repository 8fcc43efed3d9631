package domain

import (
	"time"

	"gorm.io/gorm"
)

// Category groups products for storefront navigation
type Category struct {
	ID          uint           `json:"id" gorm:"primaryKey"`
	Name        string         `json:"name" gorm:"not null"`
	Slug        string         `json:"slug" gorm:"uniqueIndex"`
	Description string         `json:"description"`
	Image       string         `json:"image"`
	IsActive    bool           `json:"is_active"`
	SortOrder   int            `json:"sort_order" gorm:"default:0"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `json:"-" gorm:"index"`
}

// TableName specifies the table name
func (Category) TableName() string {
	return "categories"
}

// CategoryRepository defines the contract for category data access
type CategoryRepository interface {
	Create(category *Category) error
	FindByID(id uint) (*Category, error)
	FindBySlug(slug string) (*Category, error)
	FindAll(activeOnly bool) ([]Category, error)
	Update(category *Category) error
	Delete(id uint) error
}
