package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/glhive/hive/internal/api/middleware"
	"github.com/glhive/hive/internal/api/response"
	"github.com/glhive/hive/internal/hive"
	"github.com/glhive/hive/internal/project"
)

// JoinRequestHandler handles the project join request endpoints.
type JoinRequestHandler struct {
	projectService *project.Service
}

// NewJoinRequestHandler creates a new JoinRequestHandler.
func NewJoinRequestHandler(projectService *project.Service) *JoinRequestHandler {
	return &JoinRequestHandler{projectService: projectService}
}

// Send handles POST /api/v1/join-request/{projectId}.
func (h *JoinRequestHandler) Send(w http.ResponseWriter, r *http.Request) {
	requester := middleware.GetIdentity(r.Context())

	projectID, err := uuid.Parse(chi.URLParam(r, "projectId"))
	if err != nil {
		response.Error(w, hive.InvalidRequest("projectId must be a valid UUID"))
		return
	}

	resp, err := h.projectService.RequestToJoin(r.Context(), requester, projectID)
	if err != nil {
		response.Error(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, resp)
}

// Requests handles GET /api/v1/join-request/requests/{projectId}: the
// project's pending join requests, for its leader to review.
func (h *JoinRequestHandler) Requests(w http.ResponseWriter, r *http.Request) {
	requester := middleware.GetIdentity(r.Context())
	bearer := middleware.GetBearerHeader(r.Context())

	projectID, err := uuid.Parse(chi.URLParam(r, "projectId"))
	if err != nil {
		response.Error(w, hive.InvalidRequest("projectId must be a valid UUID"))
		return
	}

	dtos, err := h.projectService.ListJoinRequests(r.Context(), bearer, requester, projectID)
	if err != nil {
		response.Error(w, err)
		return
	}

	response.JSON(w, http.StatusOK, dtos)
}

// Review handles PUT /api/v1/join-request/update/{joinRequestId}. The body
// carries the decision: {"joinStatus": "APPROVED"} or {"joinStatus": "DENIED"}.
func (h *JoinRequestHandler) Review(w http.ResponseWriter, r *http.Request) {
	requester := middleware.GetIdentity(r.Context())
	bearer := middleware.GetBearerHeader(r.Context())

	joinRequestID, err := uuid.Parse(chi.URLParam(r, "joinRequestId"))
	if err != nil {
		response.Error(w, hive.InvalidRequest("joinRequestId must be a valid UUID"))
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req struct {
		JoinStatus string `json:"joinStatus"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, hive.InvalidRequest("Request body must be valid JSON"))
		return
	}

	resp, err := h.projectService.ReviewJoinRequest(r.Context(), bearer, requester, joinRequestID, req.JoinStatus)
	if err != nil {
		response.Error(w, err)
		return
	}

	response.JSON(w, http.StatusOK, resp)
}
