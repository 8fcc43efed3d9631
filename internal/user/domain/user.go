package domain

import (
	"time"

	"gorm.io/gorm"
)

// Role types
const (
	RoleCustomer = "customer"
	RoleAdmin    = "admin"
)

// Address is a customer's default shipping address
type Address struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state"`
	ZipCode string `json:"zip_code"`
	Country string `json:"country"`
}

// User represents a customer or back-office admin
type User struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	Name      string         `json:"name" gorm:"not null"`
	Email     string         `json:"email" gorm:"uniqueIndex;not null"`
	Phone     string         `json:"phone"`
	Password  string         `json:"-" gorm:"not null"` // Never expose password in JSON
	Role      string         `json:"role" gorm:"not null;default:'customer'"`
	Address   Address        `json:"address" gorm:"serializer:json"`
	IsActive  bool           `json:"is_active"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

// TableName specifies the table name
func (User) TableName() string {
	return "users"
}

// IsAdmin checks if the user has the admin role
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// CustomerFilter narrows an admin customer listing
type CustomerFilter struct {
	Search string
	Limit  int
	Offset int
}

// UserRepository defines the contract for user data access
type UserRepository interface {
	Create(user *User) error
	FindByID(id uint) (*User, error)
	FindByEmail(email string) (*User, error)
	FindCustomers(filter CustomerFilter) ([]User, int64, error)
	Update(user *User) error
	Count() (int64, error)
	CountCustomersSince(since time.Time) (int64, error)
}

// OrderSummary is the slice of an order shown on a customer profile
type OrderSummary struct {
	ID          uint      `json:"id"`
	OrderNumber string    `json:"order_number"`
	Total       float64   `json:"total"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

// OrderSummaryProvider is implemented by the order store so the customer
// detail view can show recent purchase history without a hard dependency.
type OrderSummaryProvider interface {
	RecentByCustomer(customerID uint, limit int) ([]OrderSummary, error)
}
