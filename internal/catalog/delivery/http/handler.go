package http

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/deshimart/commerce/internal/catalog/domain"
	"github.com/deshimart/commerce/internal/catalog/usecase/command"
	"github.com/deshimart/commerce/internal/catalog/usecase/query"
	"github.com/deshimart/commerce/pkg/logger"
	"github.com/deshimart/commerce/pkg/middleware"
)

// CatalogHandler handles HTTP requests for products and categories
type CatalogHandler struct {
	createHandler       *command.CreateProductHandler
	updateHandler       *command.UpdateProductHandler
	deleteHandler       *command.DeleteProductHandler
	saveCategoryHandler *command.SaveCategoryHandler
	deleteCategory      *command.DeleteCategoryHandler

	getProductHandler *query.GetProductHandler
	listHandler       *query.ListProductsHandler
	listCategories    *query.ListCategoriesHandler

	requestCounter *prometheus.CounterVec
	requestLatency *prometheus.HistogramVec
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(products domain.ProductRepository, categories domain.CategoryRepository) *CatalogHandler {
	return NewCatalogHandlerWithDI(
		command.NewCreateProductHandler(products, categories),
		command.NewUpdateProductHandler(products),
		command.NewDeleteProductHandler(products),
		command.NewSaveCategoryHandler(categories),
		command.NewDeleteCategoryHandler(categories),
		query.NewGetProductHandler(products),
		query.NewListProductsHandler(products),
		query.NewListCategoriesHandler(categories),
	)
}

// NewCatalogHandlerWithDI creates a new catalog handler from injected use cases.
// This is the constructor Wire builds against.
func NewCatalogHandlerWithDI(
	createHandler *command.CreateProductHandler,
	updateHandler *command.UpdateProductHandler,
	deleteHandler *command.DeleteProductHandler,
	saveCategoryHandler *command.SaveCategoryHandler,
	deleteCategory *command.DeleteCategoryHandler,
	getProductHandler *query.GetProductHandler,
	listHandler *query.ListProductsHandler,
	listCategories *query.ListCategoriesHandler,
) *CatalogHandler {
	requestCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_requests_total",
			Help: "Total number of requests to the catalog endpoints",
		},
		[]string{"method", "endpoint", "status"},
	)

	requestLatency := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "catalog_request_duration_seconds",
			Help:    "Duration of catalog requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	prometheus.MustRegister(requestCounter)
	prometheus.MustRegister(requestLatency)

	return &CatalogHandler{
		createHandler:       createHandler,
		updateHandler:       updateHandler,
		deleteHandler:       deleteHandler,
		saveCategoryHandler: saveCategoryHandler,
		deleteCategory:      deleteCategory,
		getProductHandler:   getProductHandler,
		listHandler:         listHandler,
		listCategories:      listCategories,
		requestCounter:      requestCounter,
		requestLatency:      requestLatency,
	}
}

// Response is the JSON envelope shared by all catalog endpoints
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

func (h *CatalogHandler) metricsMiddleware(endpoint string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)

		duration := time.Since(start).Seconds()
		h.requestCounter.WithLabelValues(r.Method, endpoint, strconv.Itoa(rw.statusCode)).Inc()
		h.requestLatency.WithLabelValues(r.Method, endpoint).Observe(duration)
	}
}

func (h *CatalogHandler) RegisterRoutes(router *mux.Router) {
	// Public storefront routes
	router.HandleFunc("/api/products", h.metricsMiddleware("/api/products", h.ListProducts)).Methods("GET")
	router.HandleFunc("/api/products/sections/new-arrivals", h.metricsMiddleware("/api/products/sections/new-arrivals", h.NewArrivals)).Methods("GET")
	router.HandleFunc("/api/products/sections/best-sellers", h.metricsMiddleware("/api/products/sections/best-sellers", h.BestSellers)).Methods("GET")
	router.HandleFunc("/api/products/{id}", h.metricsMiddleware("/api/products/{id}", h.GetProduct)).Methods("GET")
	router.HandleFunc("/api/categories", h.metricsMiddleware("/api/categories", h.ListCategories)).Methods("GET")

	// Admin back-office routes
	router.HandleFunc("/api/products", h.metricsMiddleware("/api/products", middleware.Admin(h.CreateProduct))).Methods("POST")
	router.HandleFunc("/api/products/{id}", h.metricsMiddleware("/api/products/{id}", middleware.Admin(h.UpdateProduct))).Methods("PUT")
	router.HandleFunc("/api/products/{id}", h.metricsMiddleware("/api/products/{id}", middleware.Admin(h.DeleteProduct))).Methods("DELETE")
	router.HandleFunc("/api/categories", h.metricsMiddleware("/api/categories", middleware.Admin(h.SaveCategory))).Methods("POST")
	router.HandleFunc("/api/categories/{id}", h.metricsMiddleware("/api/categories/{id}", middleware.Admin(h.SaveCategory))).Methods("PUT")
	router.HandleFunc("/api/categories/{id}", h.metricsMiddleware("/api/categories/{id}", middleware.Admin(h.DeleteCategory))).Methods("DELETE")
}

type productRequest struct {
	Name           string                 `json:"name"`
	Description    string                 `json:"description"`
	CategoryID     uint                   `json:"category_id"`
	Price          float64                `json:"price"`
	ComparePrice   float64                `json:"compare_price"`
	Stock          int                    `json:"stock"`
	SKU            string                 `json:"sku"`
	Images         []string               `json:"images"`
	Variations     []domain.Variation     `json:"variations"`
	Specifications []domain.Specification `json:"specifications"`
	Tags           []string               `json:"tags"`
	IsActive       bool                   `json:"is_active"`
	IsFeatured     bool                   `json:"is_featured"`
}

// CreateProduct handles POST /api/products
func (h *CatalogHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, Response{Success: false, Error: "Invalid request body"})
		return
	}

	product, err := h.createHandler.Handle(command.CreateProductCommand{
		Name:           req.Name,
		Description:    req.Description,
		CategoryID:     req.CategoryID,
		Price:          req.Price,
		ComparePrice:   req.ComparePrice,
		Stock:          req.Stock,
		SKU:            req.SKU,
		Images:         req.Images,
		Variations:     req.Variations,
		Specifications: req.Specifications,
		Tags:           req.Tags,
		IsActive:       req.IsActive,
		IsFeatured:     req.IsFeatured,
	})
	if err != nil {
		logger.Logger.Error().Err(err).Msg("Failed to create product")
		respondJSON(w, http.StatusBadRequest, Response{Success: false, Error: err.Error()})
		return
	}

	respondJSON(w, http.StatusCreated, Response{
		Success: true,
		Message: "Product created successfully",
		Data:    product,
	})
}

// ListProducts handles GET /api/products
func (h *CatalogHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = 12
	}
	categoryID, _ := strconv.ParseUint(q.Get("category"), 10, 32)
	minPrice, _ := strconv.ParseFloat(q.Get("min_price"), 64)
	maxPrice, _ := strconv.ParseFloat(q.Get("max_price"), 64)

	result, err := h.listHandler.Handle(query.ListProductsQuery{
		Filter: domain.ProductFilter{
			CategoryID: uint(categoryID),
			Search:     q.Get("search"),
			MinPrice:   minPrice,
			MaxPrice:   maxPrice,
			Featured:   q.Get("featured") == "true",
			ActiveOnly: true,
			Sort:       q.Get("sort"),
			Limit:      limit,
			Offset:     (page - 1) * limit,
		},
	})
	if err != nil {
		logger.Logger.Error().Err(err).Msg("Failed to list products")
		respondJSON(w, http.StatusInternalServerError, Response{Success: false, Error: "Failed to list products"})
		return
	}

	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Data: map[string]interface{}{
			"products":     result.Products,
			"total":        result.Total,
			"total_pages":  result.TotalPages,
			"current_page": page,
		},
	})
}

// NewArrivals handles GET /api/products/sections/new-arrivals
func (h *CatalogHandler) NewArrivals(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	products, err := h.listHandler.NewArrivals(limit)
	if err != nil {
		respondJSON(w, http.StatusInternalServerError, Response{Success: false, Error: "Failed to load new arrivals"})
		return
	}
	respondJSON(w, http.StatusOK, Response{Success: true, Data: products})
}

// BestSellers handles GET /api/products/sections/best-sellers
func (h *CatalogHandler) BestSellers(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	products, err := h.listHandler.BestSellers(limit)
	if err != nil {
		respondJSON(w, http.StatusInternalServerError, Response{Success: false, Error: "Failed to load best sellers"})
		return
	}
	respondJSON(w, http.StatusOK, Response{Success: true, Data: products})
}

// GetProduct handles GET /api/products/{id}. The id segment also accepts a
// slug so the storefront can link by either.
func (h *CatalogHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	q := query.GetProductQuery{CountView: true}
	if id, err := strconv.ParseUint(vars["id"], 10, 32); err == nil {
		q.ID = uint(id)
	} else {
		q.Slug = vars["id"]
	}

	product, err := h.getProductHandler.Handle(q)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			respondJSON(w, http.StatusNotFound, Response{Success: false, Error: "Product not found"})
			return
		}
		respondJSON(w, http.StatusInternalServerError, Response{Success: false, Error: "Failed to load product"})
		return
	}

	respondJSON(w, http.StatusOK, Response{Success: true, Data: product})
}

// UpdateProduct handles PUT /api/products/{id}
func (h *CatalogHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id, err := strconv.ParseUint(vars["id"], 10, 32)
	if err != nil {
		respondJSON(w, http.StatusBadRequest, Response{Success: false, Error: "Invalid product ID"})
		return
	}

	var req productRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, Response{Success: false, Error: "Invalid request body"})
		return
	}

	product, err := h.updateHandler.Handle(command.UpdateProductCommand{
		ID:             uint(id),
		Name:           req.Name,
		Description:    req.Description,
		CategoryID:     req.CategoryID,
		Price:          req.Price,
		ComparePrice:   req.ComparePrice,
		Stock:          req.Stock,
		SKU:            req.SKU,
		Images:         req.Images,
		Variations:     req.Variations,
		Specifications: req.Specifications,
		Tags:           req.Tags,
		IsActive:       req.IsActive,
		IsFeatured:     req.IsFeatured,
	})
	if err != nil {
		logger.Logger.Error().Err(err).Msg("Failed to update product")
		respondJSON(w, http.StatusBadRequest, Response{Success: false, Error: err.Error()})
		return
	}

	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Message: "Product updated successfully",
		Data:    product,
	})
}

// DeleteProduct handles DELETE /api/products/{id}
func (h *CatalogHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id, err := strconv.ParseUint(vars["id"], 10, 32)
	if err != nil {
		respondJSON(w, http.StatusBadRequest, Response{Success: false, Error: "Invalid product ID"})
		return
	}

	if err := h.deleteHandler.Handle(command.DeleteProductCommand{ID: uint(id)}); err != nil {
		logger.Logger.Error().Err(err).Msg("Failed to delete product")
		respondJSON(w, http.StatusBadRequest, Response{Success: false, Error: err.Error()})
		return
	}

	respondJSON(w, http.StatusOK, Response{Success: true, Message: "Product deleted successfully"})
}

// ListCategories handles GET /api/categories
func (h *CatalogHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	activeOnly := r.URL.Query().Get("all") != "true"
	categories, err := h.listCategories.Handle(activeOnly)
	if err != nil {
		respondJSON(w, http.StatusInternalServerError, Response{Success: false, Error: "Failed to list categories"})
		return
	}
	respondJSON(w, http.StatusOK, Response{Success: true, Data: categories})
}

// SaveCategory handles POST /api/categories and PUT /api/categories/{id}
func (h *CatalogHandler) SaveCategory(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name        string `json:"name"`
		Description string `json:"description"`
		Image       string `json:"image"`
		IsActive    bool   `json:"is_active"`
		SortOrder   int    `json:"sort_order"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, Response{Success: false, Error: "Invalid request body"})
		return
	}

	cmd := command.SaveCategoryCommand{
		Name:        req.Name,
		Description: req.Description,
		Image:       req.Image,
		IsActive:    req.IsActive,
		SortOrder:   req.SortOrder,
	}
	if idStr, ok := mux.Vars(r)["id"]; ok {
		id, err := strconv.ParseUint(idStr, 10, 32)
		if err != nil {
			respondJSON(w, http.StatusBadRequest, Response{Success: false, Error: "Invalid category ID"})
			return
		}
		cmd.ID = uint(id)
	}

	category, err := h.saveCategoryHandler.Handle(cmd)
	if err != nil {
		logger.Logger.Error().Err(err).Msg("Failed to save category")
		respondJSON(w, http.StatusBadRequest, Response{Success: false, Error: err.Error()})
		return
	}

	status := http.StatusOK
	if cmd.ID == 0 {
		status = http.StatusCreated
	}
	respondJSON(w, status, Response{Success: true, Data: category})
}

// DeleteCategory handles DELETE /api/categories/{id}
func (h *CatalogHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id, err := strconv.ParseUint(vars["id"], 10, 32)
	if err != nil {
		respondJSON(w, http.StatusBadRequest, Response{Success: false, Error: "Invalid category ID"})
		return
	}

	if err := h.deleteCategory.Handle(uint(id)); err != nil {
		respondJSON(w, http.StatusBadRequest, Response{Success: false, Error: err.Error()})
		return
	}

	respondJSON(w, http.StatusOK, Response{Success: true, Message: "Category deleted successfully"})
}

// RegisterHealthCheck exposes a database-backed health endpoint
func (h *CatalogHandler) RegisterHealthCheck(router *mux.Router, db *sql.DB) {
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		if err := db.Ping(); err != nil {
			respondJSON(w, http.StatusServiceUnavailable, Response{Success: false, Error: "Database unavailable"})
			return
		}
		respondJSON(w, http.StatusOK, Response{Success: true, Message: "Service is healthy"})
	}).Methods("GET")
}

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}
