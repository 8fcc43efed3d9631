package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/deshimart/commerce/internal/order/domain"
	"github.com/deshimart/commerce/internal/order/usecase/command"
	"github.com/deshimart/commerce/internal/order/usecase/query"
	"github.com/deshimart/commerce/pkg/logger"
	"github.com/deshimart/commerce/pkg/middleware"
)

// OrderHandler handles HTTP requests for orders
type OrderHandler struct {
	placeHandler         *command.PlaceOrderHandler
	updateStatusHandler  *command.UpdateStatusHandler
	updatePaymentHandler *command.UpdatePaymentStatusHandler
	cancelHandler        *command.CancelOrderHandler

	getHandler  *query.GetOrderHandler
	listHandler *query.ListOrdersHandler

	requestCounter *prometheus.CounterVec
	requestLatency *prometheus.HistogramVec
	ordersPlaced   prometheus.Counter
}

// NewOrderHandler creates a new order handler
func NewOrderHandler(
	placeHandler *command.PlaceOrderHandler,
	updateStatusHandler *command.UpdateStatusHandler,
	updatePaymentHandler *command.UpdatePaymentStatusHandler,
	cancelHandler *command.CancelOrderHandler,
	getHandler *query.GetOrderHandler,
	listHandler *query.ListOrdersHandler,
) *OrderHandler {
	requestCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "order_requests_total",
			Help: "Total number of requests to the order endpoints",
		},
		[]string{"method", "endpoint", "status"},
	)

	requestLatency := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "order_request_duration_seconds",
			Help:    "Duration of order requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	ordersPlaced := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "orders_placed_total",
			Help: "Total number of successfully placed orders",
		},
	)

	prometheus.MustRegister(requestCounter)
	prometheus.MustRegister(requestLatency)
	prometheus.MustRegister(ordersPlaced)

	return &OrderHandler{
		placeHandler:         placeHandler,
		updateStatusHandler:  updateStatusHandler,
		updatePaymentHandler: updatePaymentHandler,
		cancelHandler:        cancelHandler,
		getHandler:           getHandler,
		listHandler:          listHandler,
		requestCounter:       requestCounter,
		requestLatency:       requestLatency,
		ordersPlaced:         ordersPlaced,
	}
}

// Response is the JSON envelope shared by all order endpoints
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (h *OrderHandler) metricsMiddleware(endpoint string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)

		duration := time.Since(start).Seconds()
		h.requestCounter.WithLabelValues(r.Method, endpoint, strconv.Itoa(rw.statusCode)).Inc()
		h.requestLatency.WithLabelValues(r.Method, endpoint).Observe(duration)
	}
}

func (h *OrderHandler) RegisterRoutes(router *mux.Router) {
	// Authenticated customer routes
	router.HandleFunc("/api/orders", h.metricsMiddleware("/api/orders", middleware.Auth(h.PlaceOrder))).Methods("POST")
	router.HandleFunc("/api/orders", h.metricsMiddleware("/api/orders", middleware.Auth(h.ListOrders))).Methods("GET")
	router.HandleFunc("/api/orders/{id}", h.metricsMiddleware("/api/orders/{id}", middleware.Auth(h.GetOrder))).Methods("GET")
	router.HandleFunc("/api/orders/{id}/cancel", h.metricsMiddleware("/api/orders/{id}/cancel", middleware.Auth(h.CancelOrder))).Methods("PUT")

	// Admin back-office routes
	router.HandleFunc("/api/orders/{id}/status", h.metricsMiddleware("/api/orders/{id}/status", middleware.Admin(h.UpdateStatus))).Methods("PUT")
	router.HandleFunc("/api/orders/{id}/payment-status", h.metricsMiddleware("/api/orders/{id}/payment-status", middleware.Admin(h.UpdatePaymentStatus))).Methods("PUT")
}

type placeOrderRequest struct {
	Items []struct {
		ProductID          uint                       `json:"product_id"`
		Quantity           int                        `json:"quantity"`
		SelectedVariations []domain.SelectedVariation `json:"selected_variations"`
	} `json:"items"`
	ShippingAddress domain.ShippingAddress `json:"shipping_address"`
	PaymentMethod   string                 `json:"payment_method"`
	Notes           string                 `json:"notes"`
}

// PlaceOrder handles POST /api/orders
func (h *OrderHandler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	var req placeOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, Response{Success: false, Error: "Invalid request body"})
		return
	}

	items := make([]command.PlaceOrderItem, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, command.PlaceOrderItem{
			ProductID:          item.ProductID,
			Quantity:           item.Quantity,
			SelectedVariations: item.SelectedVariations,
		})
	}

	customerID, _ := middleware.UserID(r.Context())
	order, err := h.placeHandler.Handle(r.Context(), command.PlaceOrderCommand{
		CustomerID:      customerID,
		Items:           items,
		ShippingAddress: req.ShippingAddress,
		PaymentMethod:   req.PaymentMethod,
		Notes:           req.Notes,
	})
	if err != nil {
		if domain.IsInsufficientStock(err) {
			respondJSON(w, http.StatusConflict, Response{Success: false, Error: err.Error()})
			return
		}
		if errors.Is(err, domain.ErrProductNotFound) {
			respondJSON(w, http.StatusNotFound, Response{Success: false, Error: err.Error()})
			return
		}
		logger.Error(r.Context()).Err(err).Msg("Failed to place order")
		respondJSON(w, http.StatusBadRequest, Response{Success: false, Error: err.Error()})
		return
	}

	h.ordersPlaced.Inc()
	logger.Info(r.Context()).
		Str("order_number", order.OrderNumber).
		Uint("customer_id", order.CustomerID).
		Float64("total", order.Total).
		Msg("Order placed")

	respondJSON(w, http.StatusCreated, Response{
		Success: true,
		Message: "Order placed successfully",
		Data:    order,
	})
}

// ListOrders handles GET /api/orders. Customers see their own orders, admins
// see all.
func (h *OrderHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))

	actorID, _ := middleware.UserID(r.Context())
	result, err := h.listHandler.Handle(r.Context(), query.ListOrdersQuery{
		ActorID:   actorID,
		ActorRole: middleware.Role(r.Context()),
		Status:    q.Get("status"),
		Page:      page,
		Limit:     limit,
	})
	if err != nil {
		logger.Error(r.Context()).Err(err).Msg("Failed to list orders")
		respondJSON(w, http.StatusInternalServerError, Response{Success: false, Error: "Failed to list orders"})
		return
	}

	respondJSON(w, http.StatusOK, Response{Success: true, Data: result})
}

// GetOrder handles GET /api/orders/{id}
func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	id, err := orderID(r)
	if err != nil {
		respondJSON(w, http.StatusBadRequest, Response{Success: false, Error: "Invalid order ID"})
		return
	}

	actorID, _ := middleware.UserID(r.Context())
	order, err := h.getHandler.Handle(r.Context(), query.GetOrderQuery{
		OrderID:   id,
		ActorID:   actorID,
		ActorRole: middleware.Role(r.Context()),
	})
	if err != nil {
		respondOrderError(w, r, err, "Failed to load order")
		return
	}

	respondJSON(w, http.StatusOK, Response{Success: true, Data: order})
}

// UpdateStatus handles PUT /api/orders/{id}/status
func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := orderID(r)
	if err != nil {
		respondJSON(w, http.StatusBadRequest, Response{Success: false, Error: "Invalid order ID"})
		return
	}

	var req struct {
		Status   string `json:"status"`
		Note     string `json:"note"`
		Override bool   `json:"override"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, Response{Success: false, Error: "Invalid request body"})
		return
	}

	order, err := h.updateStatusHandler.Handle(r.Context(), command.UpdateStatusCommand{
		OrderID:   id,
		Status:    req.Status,
		Note:      req.Note,
		Validated: !req.Override,
	})
	if err != nil {
		respondOrderError(w, r, err, "Failed to update order status")
		return
	}

	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Message: "Order status updated",
		Data:    order,
	})
}

// UpdatePaymentStatus handles PUT /api/orders/{id}/payment-status
func (h *OrderHandler) UpdatePaymentStatus(w http.ResponseWriter, r *http.Request) {
	id, err := orderID(r)
	if err != nil {
		respondJSON(w, http.StatusBadRequest, Response{Success: false, Error: "Invalid order ID"})
		return
	}

	var req struct {
		PaymentStatus string `json:"payment_status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, Response{Success: false, Error: "Invalid request body"})
		return
	}

	order, err := h.updatePaymentHandler.Handle(r.Context(), command.UpdatePaymentStatusCommand{
		OrderID:       id,
		PaymentStatus: req.PaymentStatus,
	})
	if err != nil {
		respondOrderError(w, r, err, "Failed to update payment status")
		return
	}

	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Message: "Payment status updated",
		Data:    order,
	})
}

// CancelOrder handles PUT /api/orders/{id}/cancel
func (h *OrderHandler) CancelOrder(w http.ResponseWriter, r *http.Request) {
	id, err := orderID(r)
	if err != nil {
		respondJSON(w, http.StatusBadRequest, Response{Success: false, Error: "Invalid order ID"})
		return
	}

	var req struct {
		Reason string `json:"reason"`
	}
	// Body is optional for cancellation
	_ = json.NewDecoder(r.Body).Decode(&req)

	actorID, _ := middleware.UserID(r.Context())
	order, err := h.cancelHandler.Handle(r.Context(), command.CancelOrderCommand{
		OrderID:   id,
		ActorID:   actorID,
		ActorRole: middleware.Role(r.Context()),
		Reason:    req.Reason,
	})
	if err != nil {
		respondOrderError(w, r, err, "Failed to cancel order")
		return
	}

	logger.Info(r.Context()).
		Str("order_number", order.OrderNumber).
		Msg("Order cancelled")

	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Message: "Order cancelled successfully",
		Data:    order,
	})
}

func orderID(r *http.Request) (uint, error) {
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 32)
	return uint(id), err
}

func respondOrderError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	switch {
	case errors.Is(err, domain.ErrOrderNotFound):
		respondJSON(w, http.StatusNotFound, Response{Success: false, Error: "Order not found"})
	case errors.Is(err, domain.ErrForbidden):
		respondJSON(w, http.StatusForbidden, Response{Success: false, Error: "You do not have access to this order"})
	case errors.Is(err, domain.ErrInvalidTransition), errors.Is(err, domain.ErrInvalidPaymentStatus):
		respondJSON(w, http.StatusBadRequest, Response{Success: false, Error: err.Error()})
	default:
		logger.Error(r.Context()).Err(err).Msg(fallback)
		respondJSON(w, http.StatusInternalServerError, Response{Success: false, Error: fallback})
	}
}

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}
