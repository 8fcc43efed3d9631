package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"

	orderdomain "github.com/deshimart/commerce/internal/order/domain"
	"github.com/deshimart/commerce/internal/payment/domain"
	"github.com/deshimart/commerce/internal/payment/usecase/command"
	"github.com/deshimart/commerce/internal/payment/usecase/query"
	"github.com/deshimart/commerce/pkg/logger"
	"github.com/deshimart/commerce/pkg/middleware"
)

// PaymentHandler handles HTTP requests for gateway payments. The callback
// endpoints are hit by the gateway and the customer's browser, never by the
// front end directly, so they answer with redirects instead of JSON.
type PaymentHandler struct {
	initHandler     *command.InitPaymentHandler
	callbackHandler *command.ProcessCallbackHandler
	statusHandler   *query.GetPaymentStatusHandler
	frontendURL     string

	callbackCounter *prometheus.CounterVec
	requestLatency  *prometheus.HistogramVec
}

// NewPaymentHandler creates a new payment handler
func NewPaymentHandler(
	initHandler *command.InitPaymentHandler,
	callbackHandler *command.ProcessCallbackHandler,
	statusHandler *query.GetPaymentStatusHandler,
	urls command.URLs,
) *PaymentHandler {
	callbackCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payment_callbacks_total",
			Help: "Total number of gateway callbacks by kind and outcome",
		},
		[]string{"kind", "outcome"},
	)

	requestLatency := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "payment_request_duration_seconds",
			Help:    "Duration of payment requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	prometheus.MustRegister(callbackCounter)
	prometheus.MustRegister(requestLatency)

	return &PaymentHandler{
		initHandler:     initHandler,
		callbackHandler: callbackHandler,
		statusHandler:   statusHandler,
		frontendURL:     urls.Frontend,
		callbackCounter: callbackCounter,
		requestLatency:  requestLatency,
	}
}

// Response is the JSON envelope shared by the payment endpoints
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

func (h *PaymentHandler) timed(endpoint string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		h.requestLatency.WithLabelValues(r.Method, endpoint).Observe(time.Since(start).Seconds())
	}
}

func (h *PaymentHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/payments/init/{orderId}", h.timed("/api/payments/init/{orderId}", middleware.Auth(h.InitPayment))).Methods("POST")
	router.HandleFunc("/api/payments/{orderId}", h.timed("/api/payments/{orderId}", middleware.Auth(h.GetPaymentStatus))).Methods("GET")

	// Gateway-facing callbacks, no auth: the gateway cannot carry a bearer
	// token. Success is verified against the validator endpoint instead.
	router.HandleFunc("/api/payments/callback/success", h.timed("/api/payments/callback/success", h.Success)).Methods("POST", "GET")
	router.HandleFunc("/api/payments/callback/fail", h.timed("/api/payments/callback/fail", h.Fail)).Methods("POST", "GET")
	router.HandleFunc("/api/payments/callback/cancel", h.timed("/api/payments/callback/cancel", h.Cancel)).Methods("POST", "GET")
	router.HandleFunc("/api/payments/callback/ipn", h.timed("/api/payments/callback/ipn", h.IPN)).Methods("POST")
}

// InitPayment handles POST /api/payments/init/{orderId}
func (h *PaymentHandler) InitPayment(w http.ResponseWriter, r *http.Request) {
	orderID, err := strconv.ParseUint(mux.Vars(r)["orderId"], 10, 32)
	if err != nil {
		respondJSON(w, http.StatusBadRequest, Response{Success: false, Error: "Invalid order ID"})
		return
	}

	actorID, _ := middleware.UserID(r.Context())
	result, err := h.initHandler.Handle(r.Context(), command.InitPaymentCommand{
		OrderID:   uint(orderID),
		ActorID:   actorID,
		ActorRole: middleware.Role(r.Context()),
	})
	if err != nil {
		switch {
		case errors.Is(err, orderdomain.ErrOrderNotFound):
			respondJSON(w, http.StatusNotFound, Response{Success: false, Error: "Order not found"})
		case errors.Is(err, orderdomain.ErrForbidden):
			respondJSON(w, http.StatusForbidden, Response{Success: false, Error: "You do not have access to this order"})
		case errors.Is(err, domain.ErrNotInitiable):
			respondJSON(w, http.StatusBadRequest, Response{Success: false, Error: err.Error()})
		case errors.Is(err, domain.ErrGatewayFailure):
			logger.Error(r.Context()).Err(err).Msg("Gateway session failed")
			respondJSON(w, http.StatusBadGateway, Response{Success: false, Error: "Payment gateway is unavailable"})
		default:
			logger.Error(r.Context()).Err(err).Msg("Failed to initiate payment")
			respondJSON(w, http.StatusInternalServerError, Response{Success: false, Error: "Failed to initiate payment"})
		}
		return
	}

	respondJSON(w, http.StatusOK, Response{Success: true, Data: result})
}

// GetPaymentStatus handles GET /api/payments/{orderId}
func (h *PaymentHandler) GetPaymentStatus(w http.ResponseWriter, r *http.Request) {
	orderID, err := strconv.ParseUint(mux.Vars(r)["orderId"], 10, 32)
	if err != nil {
		respondJSON(w, http.StatusBadRequest, Response{Success: false, Error: "Invalid order ID"})
		return
	}

	actorID, _ := middleware.UserID(r.Context())
	status, err := h.statusHandler.Handle(r.Context(), query.GetPaymentStatusQuery{
		OrderID:   uint(orderID),
		ActorID:   actorID,
		ActorRole: middleware.Role(r.Context()),
	})
	if err != nil {
		switch {
		case errors.Is(err, orderdomain.ErrOrderNotFound):
			respondJSON(w, http.StatusNotFound, Response{Success: false, Error: "Order not found"})
		case errors.Is(err, orderdomain.ErrForbidden):
			respondJSON(w, http.StatusForbidden, Response{Success: false, Error: "You do not have access to this order"})
		default:
			respondJSON(w, http.StatusInternalServerError, Response{Success: false, Error: "Failed to load payment status"})
		}
		return
	}

	respondJSON(w, http.StatusOK, Response{Success: true, Data: status})
}

// Success handles the gateway success callback and sends the browser to the
// storefront confirmation page
func (h *PaymentHandler) Success(w http.ResponseWriter, r *http.Request) {
	tranID, valID := callbackParams(r)
	if tranID == "" {
		h.callbackCounter.WithLabelValues("success", "bad_request").Inc()
		http.Redirect(w, r, h.frontendURL+"/payment/error", http.StatusSeeOther)
		return
	}

	result, err := h.callbackHandler.Success(r.Context(), tranID, valID)
	if err != nil {
		h.callbackCounter.WithLabelValues("success", "error").Inc()
		logger.Error(r.Context()).Err(err).Str("tran_id", tranID).Msg("Success callback failed")
		http.Redirect(w, r, h.frontendURL+"/payment/error", http.StatusSeeOther)
		return
	}

	if result.Order.PaymentStatus == orderdomain.PaymentPaid {
		h.callbackCounter.WithLabelValues("success", "paid").Inc()
		http.Redirect(w, r, h.frontendURL+"/payment/success?order="+result.Order.OrderNumber, http.StatusSeeOther)
		return
	}

	h.callbackCounter.WithLabelValues("success", "rejected").Inc()
	http.Redirect(w, r, h.frontendURL+"/payment/failed?order="+result.Order.OrderNumber, http.StatusSeeOther)
}

// Fail handles the gateway failure callback
func (h *PaymentHandler) Fail(w http.ResponseWriter, r *http.Request) {
	tranID, _ := callbackParams(r)
	if tranID != "" {
		if _, err := h.callbackHandler.Fail(r.Context(), tranID); err != nil {
			logger.Error(r.Context()).Err(err).Str("tran_id", tranID).Msg("Fail callback failed")
		}
	}
	h.callbackCounter.WithLabelValues("fail", "recorded").Inc()
	http.Redirect(w, r, h.frontendURL+"/payment/failed?order="+tranID, http.StatusSeeOther)
}

// Cancel handles the gateway cancel callback
func (h *PaymentHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	tranID, _ := callbackParams(r)
	if tranID != "" {
		if _, err := h.callbackHandler.Cancel(r.Context(), tranID); err != nil {
			logger.Error(r.Context()).Err(err).Str("tran_id", tranID).Msg("Cancel callback failed")
		}
	}
	h.callbackCounter.WithLabelValues("cancel", "recorded").Inc()
	http.Redirect(w, r, h.frontendURL+"/payment/cancelled?order="+tranID, http.StatusSeeOther)
}

// IPN handles the gateway's server-to-server notification. It answers plain
// text because the gateway only checks the status code.
func (h *PaymentHandler) IPN(w http.ResponseWriter, r *http.Request) {
	tranID, valID := callbackParams(r)
	if tranID == "" {
		h.callbackCounter.WithLabelValues("ipn", "bad_request").Inc()
		http.Error(w, "missing tran_id", http.StatusBadRequest)
		return
	}

	if _, err := h.callbackHandler.Success(r.Context(), tranID, valID); err != nil {
		h.callbackCounter.WithLabelValues("ipn", "error").Inc()
		logger.Error(r.Context()).Err(err).Str("tran_id", tranID).Msg("IPN processing failed")
		http.Error(w, "Error", http.StatusInternalServerError)
		return
	}

	h.callbackCounter.WithLabelValues("ipn", "ok").Inc()
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

// callbackParams extracts tran_id and val_id from either the POST form or the
// query string, whichever the gateway used
func callbackParams(r *http.Request) (tranID, valID string) {
	_ = r.ParseForm()
	return r.Form.Get("tran_id"), r.Form.Get("val_id")
}

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}
