package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/marianotorresleyva/storefront/internal/domain"
	"github.com/marianotorresleyva/storefront/internal/service"
	"github.com/marianotorresleyva/storefront/pkg/httputil"
	"github.com/marianotorresleyva/storefront/pkg/validator"
)

// ClientHandler handles HTTP requests for client endpoints.
type ClientHandler struct {
	service *service.ClientService
	logger  *slog.Logger
}

// NewClientHandler creates a new client HTTP handler.
func NewClientHandler(svc *service.ClientService, logger *slog.Logger) *ClientHandler {
	return &ClientHandler{
		service: svc,
		logger:  logger,
	}
}

// --- Request DTOs ---

// RegisterClientRequest is the JSON request body for registering a client
// together with its first login account.
type RegisterClientRequest struct {
	FirstName string `json:"first_name" validate:"required,max=100"`
	LastName  string `json:"last_name" validate:"required,max=100"`
	Email     string `json:"email" validate:"required,email,max=255"`
	Phone     string `json:"phone" validate:"max=50"`
	Address   string `json:"address" validate:"max=255"`
	Username  string `json:"username" validate:"required,min=3,max=100"`
	Password  string `json:"password" validate:"required,min=8,max=72"`
	RoleID    int64  `json:"role_id" validate:"required,gt=0"`
}

// UpdateClientRequest is the JSON request body for updating a client's
// contact details.
type UpdateClientRequest struct {
	FirstName string `json:"first_name" validate:"required,max=100"`
	LastName  string `json:"last_name" validate:"required,max=100"`
	Email     string `json:"email" validate:"required,email,max=255"`
	Phone     string `json:"phone" validate:"max=50"`
	Address   string `json:"address" validate:"max=255"`
}

// --- Handlers ---

// Register handles POST /api/v1/clients
func (h *ClientHandler) Register(w http.ResponseWriter, r *http.Request) {
	// Limit request body to 1MB to prevent DoS via large payloads.
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req RegisterClientRequest
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

	client, err := h.service.Register(r.Context(), service.RegisterClientInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Phone:     req.Phone,
		Address:   req.Address,
		Username:  req.Username,
		Password:  req.Password,
		RoleID:    req.RoleID,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: client})
}

// ListClients handles GET /api/v1/clients
func (h *ClientHandler) ListClients(w http.ResponseWriter, r *http.Request) {
	clients, err := h.service.ListClients(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: clients})
}

// GetClient handles GET /api/v1/clients/{clientId}
func (h *ClientHandler) GetClient(w http.ResponseWriter, r *http.Request) {
	clientID, ok := httputil.ParseID(w, chi.URLParam(r, "clientId"))
	if !ok {
		return
	}

	client, err := h.service.GetClient(r.Context(), clientID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: client})
}

// UpdateClient handles PUT /api/v1/clients/{clientId}
func (h *ClientHandler) UpdateClient(w http.ResponseWriter, r *http.Request) {
	clientID, ok := httputil.ParseID(w, chi.URLParam(r, "clientId"))
	if !ok {
		return
	}

	// Limit request body to 1MB to prevent DoS via large payloads.
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req UpdateClientRequest
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

	client := &domain.Client{
		ID:        clientID,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Phone:     req.Phone,
		Address:   req.Address,
	}

	if err := h.service.UpdateClient(r.Context(), client); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: client})
}

// DeleteClient handles DELETE /api/v1/clients/{clientId}
func (h *ClientHandler) DeleteClient(w http.ResponseWriter, r *http.Request) {
	clientID, ok := httputil.ParseID(w, chi.URLParam(r, "clientId"))
	if !ok {
		return
	}

	if err := h.service.DeleteClient(r.Context(), clientID); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
