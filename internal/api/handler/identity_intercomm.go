package handler

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/glhive/hive/internal/api/middleware"
	"github.com/glhive/hive/internal/api/response"
	"github.com/glhive/hive/internal/hive"
	"github.com/glhive/hive/internal/identity"
)

// IdentityIntercommHandler serves the identity lookups other services call.
type IdentityIntercommHandler struct {
	identityService *identity.Service
	tokenPrefix     string
}

// NewIdentityIntercommHandler creates a new IdentityIntercommHandler.
func NewIdentityIntercommHandler(identityService *identity.Service, tokenPrefix string) *IdentityIntercommHandler {
	return &IdentityIntercommHandler{identityService: identityService, tokenPrefix: tokenPrefix}
}

// GetUserDTO handles GET /api/v1/intercommunication/user-dto/{userId}.
func (h *IdentityIntercommHandler) GetUserDTO(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(chi.URLParam(r, "userId"))
	if err != nil {
		response.Error(w, hive.InvalidRequest("userId must be a valid UUID"))
		return
	}

	dto, err := h.identityService.UserDTOByID(r.Context(), userID)
	if err != nil {
		response.Error(w, err)
		return
	}

	response.JSON(w, http.StatusOK, dto)
}

// GetCurrentUserDTO handles GET /api/v1/intercommunication/current-user-dto.
// The subject is the bearer of the forwarded token.
func (h *IdentityIntercommHandler) GetCurrentUserDTO(w http.ResponseWriter, r *http.Request) {
	header := middleware.GetBearerHeader(r.Context())
	dto, err := h.identityService.CurrentUser(r.Context(), strings.TrimPrefix(header, h.tokenPrefix))
	if err != nil {
		response.Error(w, err)
		return
	}

	response.JSON(w, http.StatusOK, dto)
}

// GetCurrentUserID handles GET /api/v1/intercommunication/current-user-id.
func (h *IdentityIntercommHandler) GetCurrentUserID(w http.ResponseWriter, r *http.Request) {
	caller := middleware.GetIdentity(r.Context())
	if caller == nil {
		response.Error(w, hive.MissingAuthHeader("Authentication header is missing"))
		return
	}

	response.JSON(w, http.StatusOK, map[string]uuid.UUID{"userId": caller.UserID})
}

// AddProjectLeaderRole handles
// POST /api/v1/intercommunication/add-project-leader-role/{userId}.
func (h *IdentityIntercommHandler) AddProjectLeaderRole(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(chi.URLParam(r, "userId"))
	if err != nil {
		response.Error(w, hive.InvalidRequest("userId must be a valid UUID"))
		return
	}

	if err := h.identityService.AddProjectLeaderRole(r.Context(), userID); err != nil {
		response.Error(w, err)
		return
	}

	response.NoContent(w)
}

// GetProjectLeaderRoleID handles
// GET /api/v1/intercommunication/project-leader-role-id.
func (h *IdentityIntercommHandler) GetProjectLeaderRoleID(w http.ResponseWriter, r *http.Request) {
	roleID, err := h.identityService.ProjectLeaderRoleID(r.Context())
	if err != nil {
		response.Error(w, err)
		return
	}

	response.JSON(w, http.StatusOK, map[string]uuid.UUID{"roleId": roleID})
}
