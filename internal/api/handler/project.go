package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/glhive/hive/internal/api/middleware"
	"github.com/glhive/hive/internal/api/response"
	"github.com/glhive/hive/internal/api/validation"
	"github.com/glhive/hive/internal/hive"
	"github.com/glhive/hive/internal/project"
)

// ProjectHandler handles the project management endpoints.
type ProjectHandler struct {
	projectService *project.Service
}

// NewProjectHandler creates a new ProjectHandler.
func NewProjectHandler(projectService *project.Service) *ProjectHandler {
	return &ProjectHandler{projectService: projectService}
}

// Create handles POST /api/v1/project/create-project.
func (h *ProjectHandler) Create(w http.ResponseWriter, r *http.Request) {
	requester := middleware.GetIdentity(r.Context())
	bearer := middleware.GetBearerHeader(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req project.CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, hive.InvalidRequest("Request body must be valid JSON"))
		return
	}

	fieldErrors := validation.ValidateCreateProjectRequest(validation.CreateProjectRequest{
		ProjectName: req.ProjectName,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
	})
	if len(fieldErrors) > 0 {
		response.Error(w, hive.InvalidRequest("%s", validation.Join(fieldErrors)))
		return
	}

	dto, err := h.projectService.CreateProject(r.Context(), bearer, requester, req)
	if err != nil {
		response.Error(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, dto)
}

// AddMember handles POST /api/v1/project/{projectId}/add-member/{userId}.
func (h *ProjectHandler) AddMember(w http.ResponseWriter, r *http.Request) {
	requester := middleware.GetIdentity(r.Context())
	bearer := middleware.GetBearerHeader(r.Context())

	projectID, userID, err := projectAndUserParams(r)
	if err != nil {
		response.Error(w, err)
		return
	}

	if err := h.projectService.AddMember(r.Context(), bearer, requester, projectID, userID); err != nil {
		response.Error(w, err)
		return
	}

	response.JSON(w, http.StatusOK, map[string]string{"message": "Member added successfully"})
}

// RemoveMember handles DELETE /api/v1/project/{projectId}/remove-member/{userId}.
func (h *ProjectHandler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	requester := middleware.GetIdentity(r.Context())
	bearer := middleware.GetBearerHeader(r.Context())

	projectID, userID, err := projectAndUserParams(r)
	if err != nil {
		response.Error(w, err)
		return
	}

	if err := h.projectService.RemoveMember(r.Context(), bearer, requester, projectID, userID); err != nil {
		response.Error(w, err)
		return
	}

	response.NoContent(w)
}

// ListMembers handles GET /api/v1/project/{projectId}/members.
func (h *ProjectHandler) ListMembers(w http.ResponseWriter, r *http.Request) {
	bearer := middleware.GetBearerHeader(r.Context())

	projectID, err := uuid.Parse(chi.URLParam(r, "projectId"))
	if err != nil {
		response.Error(w, hive.InvalidRequest("projectId must be a valid UUID"))
		return
	}

	members, err := h.projectService.ListMembers(r.Context(), bearer, projectID)
	if err != nil {
		response.Error(w, err)
		return
	}

	response.JSON(w, http.StatusOK, members)
}

// Update handles PUT /api/v1/project/{projectId}.
func (h *ProjectHandler) Update(w http.ResponseWriter, r *http.Request) {
	requester := middleware.GetIdentity(r.Context())

	projectID, err := uuid.Parse(chi.URLParam(r, "projectId"))
	if err != nil {
		response.Error(w, hive.InvalidRequest("projectId must be a valid UUID"))
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req project.CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, hive.InvalidRequest("Request body must be valid JSON"))
		return
	}

	if err := h.projectService.UpdateProject(r.Context(), requester, projectID, req); err != nil {
		response.Error(w, err)
		return
	}

	response.JSON(w, http.StatusOK, map[string]string{"message": "Project updated successfully"})
}

// Get handles GET /api/v1/project/{projectId}.
func (h *ProjectHandler) Get(w http.ResponseWriter, r *http.Request) {
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

// ListAll handles GET /api/v1/search: the projects visible to the
// requester, scoped by their global role.
func (h *ProjectHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	requester := middleware.GetIdentity(r.Context())
	bearer := middleware.GetBearerHeader(r.Context())

	results, err := h.projectService.ListProjects(r.Context(), bearer, requester)
	if err != nil {
		response.Error(w, err)
		return
	}

	response.JSON(w, http.StatusOK, results)
}

// Search handles GET /api/v1/search/{projectName}: projects whose name
// contains the given fragment.
func (h *ProjectHandler) Search(w http.ResponseWriter, r *http.Request) {
	bearer := middleware.GetBearerHeader(r.Context())

	results, err := h.projectService.SearchProjects(r.Context(), bearer, chi.URLParam(r, "projectName"))
	if err != nil {
		response.Error(w, err)
		return
	}

	response.JSON(w, http.StatusOK, results)
}

func projectAndUserParams(r *http.Request) (uuid.UUID, uuid.UUID, error) {
	projectID, err := uuid.Parse(chi.URLParam(r, "projectId"))
	if err != nil {
		return uuid.Nil, uuid.Nil, hive.InvalidRequest("projectId must be a valid UUID")
	}
	userID, err := uuid.Parse(chi.URLParam(r, "userId"))
	if err != nil {
		return uuid.Nil, uuid.Nil, hive.InvalidRequest("userId must be a valid UUID")
	}
	return projectID, userID, nil
}
