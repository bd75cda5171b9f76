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
	"github.com/glhive/hive/internal/task"
)

// TaskHandler handles the task management endpoints.
type TaskHandler struct {
	taskService *task.Service
}

// NewTaskHandler creates a new TaskHandler.
func NewTaskHandler(taskService *task.Service) *TaskHandler {
	return &TaskHandler{taskService: taskService}
}

// Create handles POST /api/v1/task/management/new-task/{projectId}.
func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	requester := middleware.GetIdentity(r.Context())
	bearer := middleware.GetBearerHeader(r.Context())

	projectID, err := uuid.Parse(chi.URLParam(r, "projectId"))
	if err != nil {
		response.Error(w, hive.InvalidRequest("projectId must be a valid UUID"))
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req task.CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, hive.InvalidRequest("Request body must be valid JSON"))
		return
	}

	fieldErrors := validation.ValidateCreateTaskRequest(validation.CreateTaskRequest{
		TaskName: req.TaskName,
		Priority: req.Priority,
	}, task.ValidPriority)
	if len(fieldErrors) > 0 {
		response.Error(w, hive.InvalidRequest("%s", validation.Join(fieldErrors)))
		return
	}

	dto, err := h.taskService.CreateTask(r.Context(), bearer, requester, projectID, req)
	if err != nil {
		response.Error(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, dto)
}

// Update handles PUT /api/v1/task/management/update-task/{taskId}.
func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	requester := middleware.GetIdentity(r.Context())
	bearer := middleware.GetBearerHeader(r.Context())

	taskID, err := uuid.Parse(chi.URLParam(r, "taskId"))
	if err != nil {
		response.Error(w, hive.InvalidRequest("taskId must be a valid UUID"))
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req task.CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, hive.InvalidRequest("Request body must be valid JSON"))
		return
	}

	dto, err := h.taskService.UpdateTask(r.Context(), bearer, requester, taskID, req)
	if err != nil {
		response.Error(w, err)
		return
	}

	response.JSON(w, http.StatusOK, dto)
}

// Delete handles
// DELETE /api/v1/task/management/deleteTask/projectId/{projectId}/taskId/{taskId}.
func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	requester := middleware.GetIdentity(r.Context())
	bearer := middleware.GetBearerHeader(r.Context())

	projectID, err := uuid.Parse(chi.URLParam(r, "projectId"))
	if err != nil {
		response.Error(w, hive.InvalidRequest("projectId must be a valid UUID"))
		return
	}
	taskID, err := uuid.Parse(chi.URLParam(r, "taskId"))
	if err != nil {
		response.Error(w, hive.InvalidRequest("taskId must be a valid UUID"))
		return
	}

	if err := h.taskService.DeleteTask(r.Context(), bearer, requester, projectID, taskID); err != nil {
		response.Error(w, err)
		return
	}

	response.NoContent(w)
}

// Progress handles POST /api/v1/task/progress/{taskId}/{projectId}?taskStatus=.
func (h *TaskHandler) Progress(w http.ResponseWriter, r *http.Request) {
	requester := middleware.GetIdentity(r.Context())
	bearer := middleware.GetBearerHeader(r.Context())

	taskID, err := uuid.Parse(chi.URLParam(r, "taskId"))
	if err != nil {
		response.Error(w, hive.InvalidRequest("taskId must be a valid UUID"))
		return
	}
	projectID, err := uuid.Parse(chi.URLParam(r, "projectId"))
	if err != nil {
		response.Error(w, hive.InvalidRequest("projectId must be a valid UUID"))
		return
	}

	status := r.URL.Query().Get("taskStatus")
	if status == "" {
		response.Error(w, hive.InvalidRequest("taskStatus query parameter is required"))
		return
	}

	dto, err := h.taskService.ProgressTask(r.Context(), bearer, requester, taskID, projectID, status)
	if err != nil {
		response.Error(w, err)
		return
	}

	response.JSON(w, http.StatusOK, dto)
}

// AssignUser handles POST /api/v1/task/management/{taskId}/assign/{userId}.
func (h *TaskHandler) AssignUser(w http.ResponseWriter, r *http.Request) {
	requester := middleware.GetIdentity(r.Context())
	bearer := middleware.GetBearerHeader(r.Context())

	taskID, err := uuid.Parse(chi.URLParam(r, "taskId"))
	if err != nil {
		response.Error(w, hive.InvalidRequest("taskId must be a valid UUID"))
		return
	}
	userID, err := uuid.Parse(chi.URLParam(r, "userId"))
	if err != nil {
		response.Error(w, hive.InvalidRequest("userId must be a valid UUID"))
		return
	}

	if err := h.taskService.AssignUser(r.Context(), bearer, requester, taskID, userID); err != nil {
		response.Error(w, err)
		return
	}

	response.JSON(w, http.StatusOK, map[string]string{"message": "User assigned successfully"})
}

// Search handles GET /api/v1/task/searchTasks.
func (h *TaskHandler) Search(w http.ResponseWriter, r *http.Request) {
	filter := task.SearchFilter{
		Status:   r.URL.Query().Get("taskStatus"),
		Priority: r.URL.Query().Get("taskPriority"),
	}
	if raw := r.URL.Query().Get("projectId"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			response.Error(w, hive.InvalidRequest("projectId must be a valid UUID"))
			return
		}
		filter.ProjectID = id
	}
	if raw := r.URL.Query().Get("assigneeId"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			response.Error(w, hive.InvalidRequest("assigneeId must be a valid UUID"))
			return
		}
		filter.AssigneeID = id
	}

	tasks, err := h.taskService.SearchTasks(r.Context(), filter)
	if err != nil {
		response.Error(w, err)
		return
	}

	response.JSON(w, http.StatusOK, tasks)
}
