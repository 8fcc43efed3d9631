package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/deshimart/commerce/internal/dashboard/usecase/query"
	"github.com/deshimart/commerce/pkg/logger"
	"github.com/deshimart/commerce/pkg/middleware"
)

// DashboardHandler handles HTTP requests for admin reporting
type DashboardHandler struct {
	statsHandler *query.GetStatsHandler

	requestLatency *prometheus.HistogramVec
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(statsHandler *query.GetStatsHandler) *DashboardHandler {
	requestLatency := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "dashboard_request_duration_seconds",
			Help:    "Duration of dashboard requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	prometheus.MustRegister(requestLatency)

	return &DashboardHandler{
		statsHandler:   statsHandler,
		requestLatency: requestLatency,
	}
}

// Response is the JSON envelope shared by the dashboard endpoints
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

func (h *DashboardHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/dashboard/stats", middleware.Admin(h.GetStats)).Methods("GET")
}

// GetStats handles GET /api/dashboard/stats
func (h *DashboardHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	defer func() {
		h.requestLatency.WithLabelValues(r.Method, "/api/dashboard/stats").Observe(time.Since(start).Seconds())
	}()

	stats, err := h.statsHandler.Handle(r.Context(), query.GetStatsQuery{
		Period: r.URL.Query().Get("period"),
	})
	if err != nil {
		logger.Error(r.Context()).Err(err).Msg("Failed to build dashboard stats")
		respondJSON(w, http.StatusInternalServerError, Response{Success: false, Error: "Failed to load dashboard"})
		return
	}

	respondJSON(w, http.StatusOK, Response{Success: true, Data: stats})
}

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}
