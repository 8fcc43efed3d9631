package command

import (
	"context"
	"fmt"

	"github.com/deshimart/commerce/internal/order/domain"
	paymentdomain "github.com/deshimart/commerce/internal/payment/domain"
	"github.com/deshimart/commerce/pkg/logger"
)

// DedupStore remembers processed gateway notifications. A nil store disables
// deduplication; the paid transition stays idempotent either way.
type DedupStore interface {
	FirstDelivery(ctx context.Context, key string) (bool, error)
}

// CallbackResult describes what a gateway notification did to the order
type CallbackResult struct {
	Order   *domain.Order
	Applied bool
}

// ProcessCallbackHandler handles the gateway's success, fail, cancel and IPN
// notifications
type ProcessCallbackHandler struct {
	orders  domain.OrderRepository
	gateway Gateway
	dedup   DedupStore
}

// NewProcessCallbackHandler creates a new process callback handler
func NewProcessCallbackHandler(orders domain.OrderRepository, gateway Gateway, dedup DedupStore) *ProcessCallbackHandler {
	return &ProcessCallbackHandler{orders: orders, gateway: gateway, dedup: dedup}
}

// Success records a successful payment for the transaction. The gateway may
// deliver the same notification through both the browser redirect and IPN;
// redeliveries return Applied=false and change nothing.
func (h *ProcessCallbackHandler) Success(ctx context.Context, tranID, valID string) (*CallbackResult, error) {
	if first, err := h.firstDelivery(ctx, tranID, valID); err == nil && !first {
		order, err := h.orders.FindByOrderNumber(tranID)
		if err != nil {
			return nil, err
		}
		return &CallbackResult{Order: order, Applied: false}, nil
	}

	if h.gateway != nil && valID != "" {
		validation, err := h.gateway.ValidateTransaction(ctx, valID)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", paymentdomain.ErrGatewayFailure, err)
		}
		if !validation.Valid() {
			logger.Warn(ctx).
				Str("tran_id", tranID).
				Str("val_id", valID).
				Str("status", validation.Status).
				Msg("Gateway reported transaction as not valid")
			order, markErr := h.orders.MarkPaymentFailed(tranID)
			if markErr != nil {
				return nil, markErr
			}
			return &CallbackResult{Order: order, Applied: true}, nil
		}
	}

	order, applied, err := h.orders.MarkPaid(tranID, valID)
	if err != nil {
		return nil, err
	}

	if applied {
		logger.Info(ctx).
			Str("order_number", tranID).
			Str("transaction_id", valID).
			Msg("Payment confirmed")
	}

	return &CallbackResult{Order: order, Applied: applied}, nil
}

// Fail records a failed payment attempt. Fulfillment status is untouched so
// the customer can retry.
func (h *ProcessCallbackHandler) Fail(ctx context.Context, tranID string) (*CallbackResult, error) {
	order, err := h.orders.MarkPaymentFailed(tranID)
	if err != nil {
		return nil, err
	}

	logger.Info(ctx).Str("order_number", tranID).Msg("Payment failed")
	return &CallbackResult{Order: order, Applied: true}, nil
}

// Cancel records that the customer abandoned the gateway checkout
func (h *ProcessCallbackHandler) Cancel(ctx context.Context, tranID string) (*CallbackResult, error) {
	order, err := h.orders.MarkPaymentFailed(tranID)
	if err != nil {
		return nil, err
	}

	logger.Info(ctx).Str("order_number", tranID).Msg("Payment cancelled by customer")
	return &CallbackResult{Order: order, Applied: true}, nil
}

func (h *ProcessCallbackHandler) firstDelivery(ctx context.Context, tranID, valID string) (bool, error) {
	if h.dedup == nil {
		return true, nil
	}

	first, err := h.dedup.FirstDelivery(ctx, tranID+":"+valID)
	if err != nil {
		// Dedup is an optimization; fall through to the idempotent update
		logger.Warn(ctx).Err(err).Str("tran_id", tranID).Msg("Dedup store unavailable")
		return true, nil
	}
	return first, nil
}
