package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/marianotorresleyva/storefront/internal/service"
	"github.com/marianotorresleyva/storefront/pkg/httputil"
	"github.com/marianotorresleyva/storefront/pkg/validator"
)

// RoleHandler handles HTTP requests for role endpoints.
type RoleHandler struct {
	service *service.RoleService
	logger  *slog.Logger
}

// NewRoleHandler creates a new role HTTP handler.
func NewRoleHandler(svc *service.RoleService, logger *slog.Logger) *RoleHandler {
	return &RoleHandler{
		service: svc,
		logger:  logger,
	}
}

// RoleRequest is the JSON request body for creating or updating a role.
type RoleRequest struct {
	Description string `json:"description" validate:"required,min=3,max=100"`
}

// ListRoles handles GET /api/v1/roles
func (h *RoleHandler) ListRoles(w http.ResponseWriter, r *http.Request) {
	roles, err := h.service.ListRoles(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: roles})
}

// GetRole handles GET /api/v1/roles/{roleId}
func (h *RoleHandler) GetRole(w http.ResponseWriter, r *http.Request) {
	roleID, ok := httputil.ParseID(w, chi.URLParam(r, "roleId"))
	if !ok {
		return
	}

	role, err := h.service.GetRole(r.Context(), roleID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: role})
}

// CreateRole handles POST /api/v1/roles
func (h *RoleHandler) CreateRole(w http.ResponseWriter, r *http.Request) {
	// Limit request body to 1MB to prevent DoS via large payloads.
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req RoleRequest
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

	role, err := h.service.CreateRole(r.Context(), req.Description)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: role})
}

// UpdateRole handles PUT /api/v1/roles/{roleId}
func (h *RoleHandler) UpdateRole(w http.ResponseWriter, r *http.Request) {
	roleID, ok := httputil.ParseID(w, chi.URLParam(r, "roleId"))
	if !ok {
		return
	}

	// Limit request body to 1MB to prevent DoS via large payloads.
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req RoleRequest
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

	if err := h.service.UpdateRole(r.Context(), roleID, req.Description); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: map[string]any{
		"id":          roleID,
		"description": req.Description,
	}})
}

// DeleteRole handles DELETE /api/v1/roles/{roleId}
func (h *RoleHandler) DeleteRole(w http.ResponseWriter, r *http.Request) {
	roleID, ok := httputil.ParseID(w, chi.URLParam(r, "roleId"))
	if !ok {
		return
	}

	if err := h.service.DeleteRole(r.Context(), roleID); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
