package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/glhive/hive/internal/api/response"
	"github.com/glhive/hive/internal/hive"
	"github.com/glhive/hive/internal/task"
)

// TaskIntercommHandler serves the task lookups other services call.
type TaskIntercommHandler struct {
	taskService *task.Service
}

// NewTaskIntercommHandler creates a new TaskIntercommHandler.
func NewTaskIntercommHandler(taskService *task.Service) *TaskIntercommHandler {
	return &TaskIntercommHandler{taskService: taskService}
}

// GetTaskDTO handles GET /api/v1/task/intercommunication/task-dto/{taskId}.
func (h *TaskIntercommHandler) GetTaskDTO(w http.ResponseWriter, r *http.Request) {
	taskID, err := uuid.Parse(chi.URLParam(r, "taskId"))
	if err != nil {
		response.Error(w, hive.InvalidRequest("taskId must be a valid UUID"))
		return
	}

	dto, err := h.taskService.TaskDTOByID(r.Context(), taskID)
	if err != nil {
		response.Error(w, err)
		return
	}

	response.JSON(w, http.StatusOK, dto)
}
