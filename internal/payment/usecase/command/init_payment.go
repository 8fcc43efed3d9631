package command

import (
	"context"
	"fmt"
	"strings"

	"github.com/deshimart/commerce/internal/order/domain"
	"github.com/deshimart/commerce/internal/payment/client"
	paymentdomain "github.com/deshimart/commerce/internal/payment/domain"
	userdomain "github.com/deshimart/commerce/internal/user/domain"
)

// Gateway abstracts the hosted-checkout provider
type Gateway interface {
	InitiateSession(ctx context.Context, req client.SessionRequest) (*client.Session, error)
	ValidateTransaction(ctx context.Context, valID string) (*client.Validation, error)
}

// URLs holds the externally visible addresses callbacks and redirects are
// built from
type URLs struct {
	Frontend string
	Backend  string
}

// InitPaymentCommand represents the command to start a gateway checkout
// session for an order
type InitPaymentCommand struct {
	OrderID   uint
	ActorID   uint
	ActorRole string
}

// InitPaymentResult carries the redirect the storefront should follow
type InitPaymentResult struct {
	GatewayURL  string `json:"gateway_url"`
	SessionKey  string `json:"session_key"`
	OrderNumber string `json:"order_number"`
}

// InitPaymentHandler handles payment initiation
type InitPaymentHandler struct {
	orders  domain.OrderRepository
	gateway Gateway
	urls    URLs
}

// NewInitPaymentHandler creates a new init payment handler
func NewInitPaymentHandler(orders domain.OrderRepository, gateway Gateway, urls URLs) *InitPaymentHandler {
	return &InitPaymentHandler{orders: orders, gateway: gateway, urls: urls}
}

// Handle executes the init payment command. The order number doubles as the
// gateway transaction id so callbacks can find the order again.
func (h *InitPaymentHandler) Handle(ctx context.Context, cmd InitPaymentCommand) (*InitPaymentResult, error) {
	order, err := h.orders.FindByID(cmd.OrderID)
	if err != nil {
		return nil, err
	}

	if cmd.ActorRole != userdomain.RoleAdmin && order.CustomerID != cmd.ActorID {
		return nil, domain.ErrForbidden
	}

	if order.PaymentMethod == domain.MethodCOD {
		return nil, fmt.Errorf("%w: cash on delivery orders are paid at the door", paymentdomain.ErrNotInitiable)
	}
	if order.PaymentStatus == domain.PaymentPaid {
		return nil, fmt.Errorf("%w: order is already paid", paymentdomain.ErrNotInitiable)
	}

	session, err := h.gateway.InitiateSession(ctx, client.SessionRequest{
		TranID:       order.OrderNumber,
		Amount:       order.Total,
		Currency:     "BDT",
		SuccessURL:   h.urls.Backend + "/api/payments/callback/success",
		FailURL:      h.urls.Backend + "/api/payments/callback/fail",
		CancelURL:    h.urls.Backend + "/api/payments/callback/cancel",
		IPNURL:       h.urls.Backend + "/api/payments/callback/ipn",
		CustomerName: order.ShippingAddress.Name,
		CustomerCity: order.ShippingAddress.City,
		Email:        order.ShippingAddress.Email,
		Phone:        order.ShippingAddress.Phone,
		Address:      order.ShippingAddress.Street,
		ProductName:  productSummary(order),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", paymentdomain.ErrGatewayFailure, err)
	}

	return &InitPaymentResult{
		GatewayURL:  session.GatewayURL,
		SessionKey:  session.SessionKey,
		OrderNumber: order.OrderNumber,
	}, nil
}

func productSummary(order *domain.Order) string {
	names := make([]string, 0, len(order.Items))
	for _, item := range order.Items {
		names = append(names, item.Name)
	}
	summary := strings.Join(names, ", ")
	if len(summary) > 100 {
		summary = summary[:100]
	}
	return summary
}
