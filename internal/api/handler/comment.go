package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/glhive/hive/internal/api/middleware"
	"github.com/glhive/hive/internal/api/response"
	"github.com/glhive/hive/internal/comment"
	"github.com/glhive/hive/internal/hive"
)

type newCommentRequest struct {
	Content string `json:"content"`
}

// CommentHandler handles the task comment endpoints.
type CommentHandler struct {
	commentService *comment.Service
}

// NewCommentHandler creates a new CommentHandler.
func NewCommentHandler(commentService *comment.Service) *CommentHandler {
	return &CommentHandler{commentService: commentService}
}

// Create handles POST /api/v1/comment/new-comment/{taskId}.
func (h *CommentHandler) Create(w http.ResponseWriter, r *http.Request) {
	requester := middleware.GetIdentity(r.Context())
	bearer := middleware.GetBearerHeader(r.Context())

	taskID, err := uuid.Parse(chi.URLParam(r, "taskId"))
	if err != nil {
		response.Error(w, hive.InvalidRequest("taskId must be a valid UUID"))
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req newCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, hive.InvalidRequest("Request body must be valid JSON"))
		return
	}

	dto, err := h.commentService.AddComment(r.Context(), bearer, requester, taskID, req.Content)
	if err != nil {
		response.Error(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, dto)
}

// List handles GET /api/v1/comment/list/{taskId}.
func (h *CommentHandler) List(w http.ResponseWriter, r *http.Request) {
	requester := middleware.GetIdentity(r.Context())
	bearer := middleware.GetBearerHeader(r.Context())

	taskID, err := uuid.Parse(chi.URLParam(r, "taskId"))
	if err != nil {
		response.Error(w, hive.InvalidRequest("taskId must be a valid UUID"))
		return
	}

	comments, err := h.commentService.ListComments(r.Context(), bearer, requester, taskID)
	if err != nil {
		response.Error(w, err)
		return
	}

	response.JSON(w, http.StatusOK, comments)
}

// Delete handles DELETE /api/v1/comment/{commentId}.
func (h *CommentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	requester := middleware.GetIdentity(r.Context())

	commentID, err := uuid.Parse(chi.URLParam(r, "commentId"))
	if err != nil {
		response.Error(w, hive.InvalidRequest("commentId must be a valid UUID"))
		return
	}

	if err := h.commentService.DeleteComment(r.Context(), requester, commentID); err != nil {
		response.Error(w, err)
		return
	}

	response.NoContent(w)
}
