package kafka

import "time"

// OrderEventItem is one line item carried on an order event
type OrderEventItem struct {
	ProductID uint    `json:"product_id"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
}

// OrderPlacedEvent is published after an order is persisted and stock is
// committed
type OrderPlacedEvent struct {
	EventID       string           `json:"event_id"`
	EventType     string           `json:"event_type"`
	OrderID       uint             `json:"order_id"`
	OrderNumber   string           `json:"order_number"`
	CustomerID    uint             `json:"customer_id"`
	CustomerEmail string           `json:"customer_email"`
	Items         []OrderEventItem `json:"items"`
	Subtotal      float64          `json:"subtotal"`
	ShippingCost  float64          `json:"shipping_cost"`
	Total         float64          `json:"total"`
	PaymentMethod string           `json:"payment_method"`
	Timestamp     time.Time        `json:"timestamp"`
}

// OrderCancelledEvent is published after an order is cancelled and stock is
// restored
type OrderCancelledEvent struct {
	EventID     string    `json:"event_id"`
	EventType   string    `json:"event_type"`
	OrderID     uint      `json:"order_id"`
	OrderNumber string    `json:"order_number"`
	CustomerID  uint      `json:"customer_id"`
	Reason      string    `json:"reason"`
	Timestamp   time.Time `json:"timestamp"`
}

// Event types
const (
	EventTypeOrderPlaced    = "order.placed"
	EventTypeOrderCancelled = "order.cancelled"
)

// Kafka topics
const (
	TopicOrderEvents = "order-events"
)
