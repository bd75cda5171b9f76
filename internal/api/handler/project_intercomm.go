package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/glhive/hive/internal/api/middleware"
	"github.com/glhive/hive/internal/api/response"
	"github.com/glhive/hive/internal/hive"
	"github.com/glhive/hive/internal/project"
)

// ProjectIntercommHandler serves the membership and leadership checks other
// services call.
type ProjectIntercommHandler struct {
	projectService *project.Service
}

// NewProjectIntercommHandler creates a new ProjectIntercommHandler.
func NewProjectIntercommHandler(projectService *project.Service) *ProjectIntercommHandler {
	return &ProjectIntercommHandler{projectService: projectService}
}

// IsMemberOfProject handles
// GET /api/v1/project/intercommunication/is-member-of-project?projectId=&userId=.
// The body is a bare JSON boolean.
func (h *ProjectIntercommHandler) IsMemberOfProject(w http.ResponseWriter, r *http.Request) {
	projectID, userID, err := projectAndUserQuery(r)
	if err != nil {
		response.Error(w, err)
		return
	}

	member, err := h.projectService.IsMemberOfProject(r.Context(), projectID, userID)
	if err != nil {
		response.Error(w, err)
		return
	}

	response.JSON(w, http.StatusOK, member)
}

// IsLeaderOfProject handles
// GET /api/v1/project/intercommunication/is-leader-of-project?projectId=&userId=.
func (h *ProjectIntercommHandler) IsLeaderOfProject(w http.ResponseWriter, r *http.Request) {
	bearer := middleware.GetBearerHeader(r.Context())

	projectID, userID, err := projectAndUserQuery(r)
	if err != nil {
		response.Error(w, err)
		return
	}

	leader, err := h.projectService.IsLeaderOrAdminOfProject(r.Context(), bearer, projectID, userID)
	if err != nil {
		response.Error(w, err)
		return
	}

	response.JSON(w, http.StatusOK, leader)
}

// GetProjectDTO handles
// GET /api/v1/project/intercommunication/project-dto/{projectId}.
func (h *ProjectIntercommHandler) GetProjectDTO(w http.ResponseWriter, r *http.Request) {
	projectID, err := uuid.Parse(chi.URLParam(r, "projectId"))
	if err != nil {
		response.Error(w, hive.InvalidRequest("projectId must be a valid UUID"))
		return
	}

	dto, err := h.projectService.ProjectDTOByID(r.Context(), projectID)
	if err != nil {
		response.Error(w, err)
		return
	}

	response.JSON(w, http.StatusOK, dto)
}

func projectAndUserQuery(r *http.Request) (uuid.UUID, uuid.UUID, error) {
	projectID, err := uuid.Parse(r.URL.Query().Get("projectId"))
	if err != nil {
		return uuid.Nil, uuid.Nil, hive.InvalidRequest("projectId must be a valid UUID")
	}
	userID, err := uuid.Parse(r.URL.Query().Get("userId"))
	if err != nil {
		return uuid.Nil, uuid.Nil, hive.InvalidRequest("userId must be a valid UUID")
	}
	return projectID, userID, nil
}
