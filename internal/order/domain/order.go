package domain

import (
	"time"

	"gorm.io/gorm"
)

// Fulfillment statuses
const (
	StatusPending    = "pending"
	StatusConfirmed  = "confirmed"
	StatusProcessing = "processing"
	StatusShipped    = "shipped"
	StatusDelivered  = "delivered"
	StatusCancelled  = "cancelled"
)

// Payment statuses
const (
	PaymentPending  = "pending"
	PaymentPaid     = "paid"
	PaymentFailed   = "failed"
	PaymentRefunded = "refunded"
)

// Payment methods
const (
	MethodCOD        = "cod"
	MethodSSLCommerz = "sslcommerz"
	MethodBkash      = "bkash"
	MethodNagad      = "nagad"
	MethodRocket     = "rocket"
	MethodCard       = "card"
	MethodBanking    = "banking"
)

// SelectedVariation is one option the customer picked for a line item
type SelectedVariation struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// OrderItem is one product-and-quantity entry within an order. Name and price
// are copied from the catalog at purchase time so historical orders stay
// accurate after catalog changes.
type OrderItem struct {
	ID                 uint                `json:"id" gorm:"primaryKey"`
	OrderID            uint                `json:"-" gorm:"index;not null"`
	ProductID          uint                `json:"product_id" gorm:"not null"`
	Name               string              `json:"name"`
	Price              float64             `json:"price"`
	Quantity           int                 `json:"quantity" gorm:"not null"`
	SelectedVariations []SelectedVariation `json:"selected_variations" gorm:"serializer:json"`
	Subtotal           float64             `json:"subtotal"`
}

// TableName specifies the table name
func (OrderItem) TableName() string {
	return "order_items"
}

// ShippingAddress is the delivery address snapshot captured at checkout
type ShippingAddress struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state"`
	ZipCode string `json:"zip_code"`
	Country string `json:"country"`
}

// StatusHistoryEntry is one append-only entry in an order's status log
type StatusHistoryEntry struct {
	ID        uint      `json:"-" gorm:"primaryKey"`
	OrderID   uint      `json:"-" gorm:"index;not null"`
	Status    string    `json:"status"`
	Note      string    `json:"note"`
	Timestamp time.Time `json:"timestamp"`
}

// TableName specifies the table name
func (StatusHistoryEntry) TableName() string {
	return "order_status_history"
}

// Order represents a customer order. OrderNumber is the human-readable
// identifier used as the payment gateway transaction id; it never changes
// once assigned.
type Order struct {
	ID              uint                 `json:"id" gorm:"primaryKey"`
	OrderNumber     string               `json:"order_number" gorm:"uniqueIndex;not null"`
	CustomerID      uint                 `json:"customer_id" gorm:"index;not null"`
	Items           []OrderItem          `json:"items" gorm:"foreignKey:OrderID"`
	ShippingAddress ShippingAddress      `json:"shipping_address" gorm:"serializer:json"`
	PaymentMethod   string               `json:"payment_method" gorm:"not null"`
	PaymentStatus   string               `json:"payment_status" gorm:"default:'pending'"`
	TransactionID   string               `json:"transaction_id"`
	Subtotal        float64              `json:"subtotal" gorm:"not null"`
	ShippingCost    float64              `json:"shipping_cost" gorm:"default:0"`
	Discount        float64              `json:"discount" gorm:"default:0"`
	Total           float64              `json:"total" gorm:"not null"`
	Status          string               `json:"status" gorm:"default:'pending';index"`
	Notes           string               `json:"notes"`
	AdminNotes      string               `json:"admin_notes"`
	StatusHistory   []StatusHistoryEntry `json:"status_history" gorm:"foreignKey:OrderID"`
	CreatedAt       time.Time            `json:"created_at"`
	UpdatedAt       time.Time            `json:"updated_at"`
	DeletedAt       gorm.DeletedAt       `json:"-" gorm:"index"`
}

// TableName specifies the table name
func (Order) TableName() string {
	return "orders"
}

// IsCancellable reports whether the order may still be cancelled
func (o *Order) IsCancellable() bool {
	return o.Status == StatusPending || o.Status == StatusConfirmed
}

// ValidStatus reports whether s is a known fulfillment status
func ValidStatus(s string) bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

// ValidPaymentStatus reports whether s is a known payment status
func ValidPaymentStatus(s string) bool {
	switch s {
	case PaymentPending, PaymentPaid, PaymentFailed, PaymentRefunded:
		return true
	}
	return false
}

// ValidPaymentMethod reports whether m is a supported payment method
func ValidPaymentMethod(m string) bool {
	switch m {
	case MethodCOD, MethodSSLCommerz, MethodBkash, MethodNagad, MethodRocket, MethodCard, MethodBanking:
		return true
	}
	return false
}

// nextStatuses is the validated fulfillment state machine. Delivered and
// cancelled are terminal. Cancellation itself goes through CancelOrder, which
// enforces its own precondition.
var nextStatuses = map[string][]string{
	StatusPending:    {StatusConfirmed, StatusCancelled},
	StatusConfirmed:  {StatusProcessing, StatusCancelled},
	StatusProcessing: {StatusShipped},
	StatusShipped:    {StatusDelivered},
}

// CanTransition reports whether the validated state machine allows moving
// from one fulfillment status to another.
func CanTransition(from, to string) bool {
	for _, next := range nextStatuses[from] {
		if next == to {
			return true
		}
	}
	return false
}

// OrderCounter backs order-number generation with a monotonic sequence,
// incremented inside the order-placement transaction. A count-of-orders query
// would hand two concurrent checkouts the same number.
type OrderCounter struct {
	ID    uint  `gorm:"primaryKey"`
	Value int64 `gorm:"not null"`
}

// TableName specifies the table name
func (OrderCounter) TableName() string {
	return "order_counters"
}

// OrderFilter narrows an order listing
type OrderFilter struct {
	CustomerID uint // 0 means all customers (admin)
	Status     string
	Sort       string
	Limit      int
	Offset     int
}

// OrderRepository defines the contract for order data access. Create and
// CancelAndRestore are transactional: stock effects and the order mutation
// commit or roll back together.
type OrderRepository interface {
	// Create persists the order and applies every line item's conditional
	// stock decrement in one transaction. It assigns OrderNumber from the
	// order counter. If any decrement cannot be honored the whole creation
	// is rolled back and an *InsufficientStockError is returned.
	Create(order *Order) error
	FindByID(id uint) (*Order, error)
	FindByOrderNumber(orderNumber string) (*Order, error)
	FindAll(filter OrderFilter) ([]Order, int64, error)
	// UpdateStatus overwrites the fulfillment status and appends a history
	// entry in one transaction.
	UpdateStatus(orderID uint, status, note string) (*Order, error)
	UpdatePaymentStatus(orderID uint, paymentStatus string) (*Order, error)
	// CancelAndRestore marks the order cancelled, appends a history entry
	// and restores stock and sold counts for every line item in one
	// transaction. It returns ErrInvalidTransition when the order is no
	// longer pending or confirmed, in which case nothing is restored.
	CancelAndRestore(order *Order, reason string) error
	// MarkPaid records a successful gateway payment by order number and
	// advances the order to confirmed. It is idempotent: redelivered
	// notifications return applied=false and change nothing.
	MarkPaid(orderNumber, transactionID string) (order *Order, applied bool, err error)
	MarkPaymentFailed(orderNumber string) (*Order, error)
	Count() (int64, error)
}
