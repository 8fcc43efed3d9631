package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/deshimart/commerce/internal/user/domain"
	"github.com/deshimart/commerce/internal/user/usecase/command"
	"github.com/deshimart/commerce/internal/user/usecase/query"
	"github.com/deshimart/commerce/pkg/logger"
	"github.com/deshimart/commerce/pkg/middleware"
)

// UserHandler handles HTTP requests for accounts and the admin customer list
type UserHandler struct {
	registerHandler *command.RegisterUserHandler
	loginHandler    *command.LoginUserHandler
	updateProfile   *command.UpdateProfileHandler
	toggleActive    *command.ToggleActiveHandler

	listCustomers *query.ListCustomersHandler
	getCustomer   *query.GetCustomerHandler

	repo domain.UserRepository

	loginCounter *prometheus.CounterVec
}

// NewUserHandler creates a new user handler
func NewUserHandler(repo domain.UserRepository, orders domain.OrderSummaryProvider) *UserHandler {
	loginCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "user_login_attempts_total",
			Help: "Total number of login attempts by outcome",
		},
		[]string{"outcome"},
	)
	prometheus.MustRegister(loginCounter)

	return &UserHandler{
		registerHandler: command.NewRegisterUserHandler(repo),
		loginHandler:    command.NewLoginUserHandler(repo),
		updateProfile:   command.NewUpdateProfileHandler(repo),
		toggleActive:    command.NewToggleActiveHandler(repo),
		listCustomers:   query.NewListCustomersHandler(repo),
		getCustomer:     query.NewGetCustomerHandler(repo, orders),
		repo:            repo,
		loginCounter:    loginCounter,
	}
}

// Response is the JSON envelope shared by all account endpoints
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

func (h *UserHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/auth/register", h.Register).Methods("POST")
	router.HandleFunc("/api/auth/login", h.Login).Methods("POST")
	router.HandleFunc("/api/auth/me", middleware.Auth(h.Me)).Methods("GET")
	router.HandleFunc("/api/auth/me", middleware.Auth(h.UpdateProfile)).Methods("PUT")

	router.HandleFunc("/api/customers", middleware.Admin(h.ListCustomers)).Methods("GET")
	router.HandleFunc("/api/customers/{id}", middleware.Admin(h.GetCustomer)).Methods("GET")
	router.HandleFunc("/api/customers/{id}/toggle-active", middleware.Admin(h.ToggleActive)).Methods("PUT")
}

// Register handles POST /api/auth/register
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string         `json:"name"`
		Email    string         `json:"email"`
		Phone    string         `json:"phone"`
		Password string         `json:"password"`
		Address  domain.Address `json:"address"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, Response{Success: false, Error: "Invalid request body"})
		return
	}

	user, err := h.registerHandler.Handle(command.RegisterUserCommand{
		Name:     req.Name,
		Email:    req.Email,
		Phone:    req.Phone,
		Password: req.Password,
		Address:  req.Address,
	})
	if err != nil {
		respondJSON(w, http.StatusBadRequest, Response{Success: false, Error: err.Error()})
		return
	}

	respondJSON(w, http.StatusCreated, Response{
		Success: true,
		Message: "Account created successfully",
		Data:    user,
	})
}

// Login handles POST /api/auth/login
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, Response{Success: false, Error: "Invalid request body"})
		return
	}

	resp, err := h.loginHandler.Handle(command.LoginUserCommand{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		h.loginCounter.WithLabelValues("failure").Inc()
		respondJSON(w, http.StatusUnauthorized, Response{Success: false, Error: err.Error()})
		return
	}

	h.loginCounter.WithLabelValues("success").Inc()
	respondJSON(w, http.StatusOK, Response{Success: true, Data: resp})
}

// Me handles GET /api/auth/me
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserID(r.Context())
	user, err := h.repo.FindByID(userID)
	if err != nil {
		respondJSON(w, http.StatusNotFound, Response{Success: false, Error: "User not found"})
		return
	}
	respondJSON(w, http.StatusOK, Response{Success: true, Data: user})
}

// UpdateProfile handles PUT /api/auth/me
func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserID(r.Context())

	var req struct {
		Name    string         `json:"name"`
		Phone   string         `json:"phone"`
		Address domain.Address `json:"address"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, Response{Success: false, Error: "Invalid request body"})
		return
	}

	user, err := h.updateProfile.Handle(command.UpdateProfileCommand{
		UserID:  userID,
		Name:    req.Name,
		Phone:   req.Phone,
		Address: req.Address,
	})
	if err != nil {
		respondJSON(w, http.StatusBadRequest, Response{Success: false, Error: err.Error()})
		return
	}

	respondJSON(w, http.StatusOK, Response{Success: true, Data: user})
}

// ListCustomers handles GET /api/customers
func (h *UserHandler) ListCustomers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))

	result, err := h.listCustomers.Handle(query.ListCustomersQuery{
		Search: q.Get("search"),
		Page:   page,
		Limit:  limit,
	})
	if err != nil {
		logger.Logger.Error().Err(err).Msg("Failed to list customers")
		respondJSON(w, http.StatusInternalServerError, Response{Success: false, Error: "Failed to list customers"})
		return
	}

	respondJSON(w, http.StatusOK, Response{Success: true, Data: result})
}

// GetCustomer handles GET /api/customers/{id}
func (h *UserHandler) GetCustomer(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 32)
	if err != nil {
		respondJSON(w, http.StatusBadRequest, Response{Success: false, Error: "Invalid customer ID"})
		return
	}

	detail, err := h.getCustomer.Handle(uint(id))
	if err != nil {
		respondJSON(w, http.StatusNotFound, Response{Success: false, Error: err.Error()})
		return
	}

	respondJSON(w, http.StatusOK, Response{Success: true, Data: detail})
}

// ToggleActive handles PUT /api/customers/{id}/toggle-active
func (h *UserHandler) ToggleActive(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 32)
	if err != nil {
		respondJSON(w, http.StatusBadRequest, Response{Success: false, Error: "Invalid customer ID"})
		return
	}

	user, err := h.toggleActive.Handle(uint(id))
	if err != nil {
		respondJSON(w, http.StatusNotFound, Response{Success: false, Error: err.Error()})
		return
	}

	status := "deactivated"
	if user.IsActive {
		status = "activated"
	}
	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Message: "Customer " + status,
		Data:    user,
	})
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}
