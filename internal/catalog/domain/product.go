package domain

import (
	"regexp"
	"strings"
	"time"

	"gorm.io/gorm"
)

// Variation is a product option axis, e.g. Size -> [S, M, L]
type Variation struct {
	Name    string   `json:"name"`
	Options []string `json:"options"`
}

// Specification is a single key/value product attribute
type Specification struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Product represents a catalog product
type Product struct {
	ID            uint            `json:"id" gorm:"primaryKey"`
	Name          string          `json:"name" gorm:"not null"`
	Slug          string          `json:"slug" gorm:"uniqueIndex"`
	Description   string          `json:"description"`
	CategoryID    uint            `json:"category_id" gorm:"index"`
	Category      *Category       `json:"category,omitempty" gorm:"foreignKey:CategoryID"`
	Price         float64         `json:"price" gorm:"not null"`
	ComparePrice  float64         `json:"compare_price"`
	Stock         int             `json:"stock" gorm:"not null;default:0"`
	SKU           string          `json:"sku" gorm:"uniqueIndex"`
	Images        []string        `json:"images" gorm:"serializer:json"`
	Variations    []Variation     `json:"variations" gorm:"serializer:json"`
	Specifications []Specification `json:"specifications" gorm:"serializer:json"`
	Tags          []string        `json:"tags" gorm:"serializer:json"`
	// No column default: gorm skips zero values for defaulted columns on
	// insert, which would silently force IsActive back to true.
	IsActive      bool            `json:"is_active"`
	IsFeatured    bool            `json:"is_featured" gorm:"default:false"`
	SoldCount     int             `json:"sold_count" gorm:"default:0"`
	ViewCount     int             `json:"view_count" gorm:"default:0"`
	RatingAverage float64         `json:"rating_average" gorm:"default:0"`
	RatingCount   int             `json:"rating_count" gorm:"default:0"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
	DeletedAt     gorm.DeletedAt  `json:"-" gorm:"index"`
}

// TableName specifies the table name
func (Product) TableName() string {
	return "products"
}

// IsAvailable checks if the product can be purchased
func (p *Product) IsAvailable() bool {
	return p.Stock > 0 && p.IsActive
}

var slugPattern = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify derives a URL slug from a display name
func Slugify(name string) string {
	slug := slugPattern.ReplaceAllString(strings.ToLower(name), "-")
	return strings.Trim(slug, "-")
}

// ProductFilter narrows a product listing
type ProductFilter struct {
	CategoryID uint
	Search     string
	MinPrice   float64
	MaxPrice   float64
	Featured   bool
	ActiveOnly bool
	Sort       string
	Limit      int
	Offset     int
}

// ProductRepository defines the contract for product data access
type ProductRepository interface {
	Create(product *Product) error
	FindByID(id uint) (*Product, error)
	FindBySlug(slug string) (*Product, error)
	FindAll(filter ProductFilter) ([]Product, int64, error)
	Update(product *Product) error
	Delete(id uint) error
	Count() (int64, error)

	// Stock accounting used by the order lifecycle. DecrementStock is a
	// conditional decrement: it fails without mutating when stock < qty.
	DecrementStock(id uint, qty int) error
	RestoreStock(id uint, qty int) error
	IncrementViewCount(id uint) error
	LowStock(threshold, limit int) ([]Product, error)
}
