package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/glhive/hive/internal/api/response"
	"github.com/glhive/hive/internal/identity"
)

// AdminHandler serves the ADMIN-only user directory endpoints.
type AdminHandler struct {
	identityService *identity.Service
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(identityService *identity.Service) *AdminHandler {
	return &AdminHandler{identityService: identityService}
}

// ListUsers handles GET /api/v1/admin/users.
func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.identityService.ListUsers(r.Context())
	if err != nil {
		response.Error(w, err)
		return
	}

	response.JSON(w, http.StatusOK, users)
}

// ListUsersByDepartment handles GET /api/v1/admin/users/department/{department}.
func (h *AdminHandler) ListUsersByDepartment(w http.ResponseWriter, r *http.Request) {
	department := chi.URLParam(r, "department")

	users, err := h.identityService.ListUsersByDepartment(r.Context(), department)
	if err != nil {
		response.Error(w, err)
		return
	}

	response.JSON(w, http.StatusOK, users)
}
