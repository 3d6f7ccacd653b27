package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/marianotorresleyva/storefront/internal/domain"
	"github.com/marianotorresleyva/storefront/internal/repository"
	"github.com/marianotorresleyva/storefront/internal/service"
	"github.com/marianotorresleyva/storefront/pkg/httputil"
	"github.com/marianotorresleyva/storefront/pkg/validator"
)

// ProductHandler handles HTTP requests for catalog endpoints.
type ProductHandler struct {
	service *service.CatalogService
	logger  *slog.Logger
}

// NewProductHandler creates a new product HTTP handler.
func NewProductHandler(svc *service.CatalogService, logger *slog.Logger) *ProductHandler {
	return &ProductHandler{
		service: svc,
		logger:  logger,
	}
}

// --- Request DTOs ---

// CreateProductRequest is the JSON request body for creating a product.
type CreateProductRequest struct {
	Code              string          `json:"code" validate:"required,max=100"`
	Name              string          `json:"name" validate:"required,max=255"`
	Category          string          `json:"category" validate:"max=100"`
	Company           string          `json:"company" validate:"max=100"`
	ShortDescription  string          `json:"short_description"`
	LongDescription   string          `json:"long_description"`
	ImageURL          string          `json:"image_url"`
	Price             decimal.Decimal `json:"price" validate:"required"`
	AvailableQuantity int             `json:"available_quantity" validate:"gte=0"`
	Rating            float64         `json:"rating" validate:"gte=0,lte=5"`
}

// CreateProductBatchRequest is the JSON request body for bulk product creation.
type CreateProductBatchRequest struct {
	Products []CreateProductRequest `json:"products" validate:"required,min=1,dive"`
}

// UpdateProductRequest is the JSON request body for a partial product update.
// Absent fields are left unchanged.
type UpdateProductRequest struct {
	Name              *string          `json:"name" validate:"omitempty,max=255"`
	Category          *string          `json:"category" validate:"omitempty,max=100"`
	Company           *string          `json:"company" validate:"omitempty,max=100"`
	ShortDescription  *string          `json:"short_description"`
	LongDescription   *string          `json:"long_description"`
	ImageURL          *string          `json:"image_url"`
	Price             *decimal.Decimal `json:"price"`
	AvailableQuantity *int             `json:"available_quantity" validate:"omitempty,gte=0"`
	Rating            *float64         `json:"rating" validate:"omitempty,gte=0,lte=5"`
}

func (req *CreateProductRequest) toDomain() domain.Product {
	return domain.Product{
		Code:              req.Code,
		Name:              req.Name,
		Category:          req.Category,
		Company:           req.Company,
		ShortDescription:  req.ShortDescription,
		LongDescription:   req.LongDescription,
		ImageURL:          req.ImageURL,
		Price:             req.Price,
		AvailableQuantity: req.AvailableQuantity,
		Rating:            req.Rating,
	}
}

// --- Handlers ---

// ListProducts handles GET /api/v1/products
func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.service.ListProducts(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: products})
}

// GetProduct handles GET /api/v1/products/{code}
func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	if code == "" {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_PARAMETER", Message: "product code is required"},
		})
		return
	}

	product, err := h.service.GetProduct(r.Context(), code)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: product})
}

// CreateProduct handles POST /api/v1/products
func (h *ProductHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	// Limit request body to 1MB to prevent DoS via large payloads.
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req CreateProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}

	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	product := req.toDomain()
	created, err := h.service.CreateProduct(r.Context(), &product)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: created})
}

// CreateProductBatch handles POST /api/v1/products/batch
func (h *ProductHandler) CreateProductBatch(w http.ResponseWriter, r *http.Request) {
	// Bulk catalog loads can be large; allow up to 5MB.
	r.Body = http.MaxBytesReader(w, r.Body, 5<<20)

	var req CreateProductBatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}

	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	products := make([]domain.Product, len(req.Products))
	for i := range req.Products {
		products[i] = req.Products[i].toDomain()
	}

	if err := h.service.CreateProducts(r.Context(), products); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: map[string]int{
		"created": len(products),
	}})
}

// UpdateProduct handles PATCH /api/v1/products/{code}
func (h *ProductHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	if code == "" {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_PARAMETER", Message: "product code is required"},
		})
		return
	}

	// Limit request body to 1MB to prevent DoS via large payloads.
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req UpdateProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}

	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	update := repository.ProductUpdate{
		Name:              req.Name,
		Category:          req.Category,
		Company:           req.Company,
		ShortDescription:  req.ShortDescription,
		LongDescription:   req.LongDescription,
		ImageURL:          req.ImageURL,
		Price:             req.Price,
		AvailableQuantity: req.AvailableQuantity,
		Rating:            req.Rating,
	}

	if err := h.service.UpdateProduct(r.Context(), code, update); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: map[string]string{
		"code":   code,
		"status": "updated",
	}})
}
