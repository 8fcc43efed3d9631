package command

import (
	"context"
	"errors"
	"fmt"

	catalogdomain "github.com/deshimart/commerce/internal/catalog/domain"
	"github.com/deshimart/commerce/internal/order/domain"
	"github.com/deshimart/commerce/kafka"
	"github.com/deshimart/commerce/pkg/logger"
)

// ShippingPolicy decides the shipping cost for an order subtotal. Orders
// above FreeThreshold ship free, everything else pays the flat fee.
type ShippingPolicy struct {
	FreeThreshold float64
	FlatFee       float64
}

// DefaultShippingPolicy mirrors the storefront default: free shipping over
// 1000 BDT, otherwise a flat 60.
func DefaultShippingPolicy() ShippingPolicy {
	return ShippingPolicy{FreeThreshold: 1000, FlatFee: 60}
}

// Cost returns the shipping cost for a subtotal
func (p ShippingPolicy) Cost(subtotal float64) float64 {
	if subtotal > p.FreeThreshold {
		return 0
	}
	return p.FlatFee
}

// OrderEventPublisher publishes order lifecycle events. A nil publisher
// disables eventing; order placement never fails because Kafka is down.
type OrderEventPublisher interface {
	PublishOrderPlaced(ctx context.Context, event kafka.OrderPlacedEvent) error
	PublishOrderCancelled(ctx context.Context, event kafka.OrderCancelledEvent) error
}

// PlaceOrderItem is one requested cart line
type PlaceOrderItem struct {
	ProductID          uint
	Quantity           int
	SelectedVariations []domain.SelectedVariation
}

// PlaceOrderCommand represents the command to place an order from cart
// contents
type PlaceOrderCommand struct {
	CustomerID      uint
	Items           []PlaceOrderItem
	ShippingAddress domain.ShippingAddress
	PaymentMethod   string
	Notes           string
}

// PlaceOrderHandler handles order placement
type PlaceOrderHandler struct {
	orders    domain.OrderRepository
	products  catalogdomain.ProductRepository
	shipping  ShippingPolicy
	publisher OrderEventPublisher
}

// NewPlaceOrderHandler creates a new place order handler
func NewPlaceOrderHandler(
	orders domain.OrderRepository,
	products catalogdomain.ProductRepository,
	shipping ShippingPolicy,
	publisher OrderEventPublisher,
) *PlaceOrderHandler {
	return &PlaceOrderHandler{
		orders:    orders,
		products:  products,
		shipping:  shipping,
		publisher: publisher,
	}
}

// Handle executes the place order command. Prices are captured from the
// catalog into line-item snapshots; the repository then commits the order and
// all conditional stock decrements in one transaction, so a concurrent
// purchase that exhausts stock after the read here still rejects cleanly.
func (h *PlaceOrderHandler) Handle(ctx context.Context, cmd PlaceOrderCommand) (*domain.Order, error) {
	if cmd.CustomerID == 0 {
		return nil, fmt.Errorf("customer is required")
	}
	if len(cmd.Items) == 0 {
		return nil, fmt.Errorf("order must contain at least one item")
	}
	if !domain.ValidPaymentMethod(cmd.PaymentMethod) {
		return nil, fmt.Errorf("unsupported payment method: %s", cmd.PaymentMethod)
	}

	var subtotal float64
	items := make([]domain.OrderItem, 0, len(cmd.Items))

	for _, requested := range cmd.Items {
		if requested.Quantity < 1 {
			return nil, fmt.Errorf("quantity must be at least 1")
		}

		product, err := h.products.FindByID(requested.ProductID)
		if err != nil {
			if errors.Is(err, catalogdomain.ErrNotFound) {
				return nil, fmt.Errorf("%w: product %d", domain.ErrProductNotFound, requested.ProductID)
			}
			return nil, err
		}

		if product.Stock < requested.Quantity {
			return nil, &domain.InsufficientStockError{
				ProductID:   product.ID,
				ProductName: product.Name,
				Available:   product.Stock,
				Requested:   requested.Quantity,
			}
		}

		itemSubtotal := product.Price * float64(requested.Quantity)
		subtotal += itemSubtotal

		items = append(items, domain.OrderItem{
			ProductID:          product.ID,
			Name:               product.Name,
			Price:              product.Price,
			Quantity:           requested.Quantity,
			SelectedVariations: requested.SelectedVariations,
			Subtotal:           itemSubtotal,
		})
	}

	shippingCost := h.shipping.Cost(subtotal)

	order := &domain.Order{
		CustomerID:      cmd.CustomerID,
		Items:           items,
		ShippingAddress: cmd.ShippingAddress,
		PaymentMethod:   cmd.PaymentMethod,
		PaymentStatus:   domain.PaymentPending,
		Subtotal:        subtotal,
		ShippingCost:    shippingCost,
		Total:           subtotal + shippingCost,
		Status:          domain.StatusPending,
		Notes:           cmd.Notes,
	}

	if err := h.orders.Create(order); err != nil {
		return nil, err
	}

	h.publishPlaced(ctx, order)

	return order, nil
}

func (h *PlaceOrderHandler) publishPlaced(ctx context.Context, order *domain.Order) {
	if h.publisher == nil {
		return
	}

	eventItems := make([]kafka.OrderEventItem, 0, len(order.Items))
	for _, item := range order.Items {
		eventItems = append(eventItems, kafka.OrderEventItem{
			ProductID: item.ProductID,
			Name:      item.Name,
			Price:     item.Price,
			Quantity:  item.Quantity,
		})
	}

	event := kafka.OrderPlacedEvent{
		OrderID:       order.ID,
		OrderNumber:   order.OrderNumber,
		CustomerID:    order.CustomerID,
		CustomerEmail: order.ShippingAddress.Email,
		Items:         eventItems,
		Subtotal:      order.Subtotal,
		ShippingCost:  order.ShippingCost,
		Total:         order.Total,
		PaymentMethod: order.PaymentMethod,
	}

	if err := h.publisher.PublishOrderPlaced(ctx, event); err != nil {
		logger.Warn(ctx).
			Err(err).
			Str("order_number", order.OrderNumber).
			Msg("Failed to publish order placed event")
	}
}
