package task

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/glhive/hive/internal/hive"
)

// ProjectClient is the slice of the project service the task service
// depends on.
type ProjectClient interface {
	GetProjectByID(ctx context.Context, bearer string, projectID uuid.UUID) (*hive.ProjectDTO, error)
	IsMemberOfProject(ctx context.Context, bearer string, projectID, userID uuid.UUID) (bool, error)
	IsLeaderOrAdminOfProject(ctx context.Context, bearer string, projectID, userID uuid.UUID) (bool, error)
}

// CreateRequest carries a task creation or update.
type CreateRequest struct {
	TaskName      string      `json:"taskName"`
	Description   string      `json:"taskDescription"`
	DueDate       *time.Time  `json:"dueDate"`
	Priority      string      `json:"taskPriority"`
	AssignedUsers []uuid.UUID `json:"assignedUsers"`
}

// Service implements task management gated by the ordered authorization
// chain: task/project association, then project membership, then project
// leadership. The chain stops at the first failure.
type Service struct {
	tasks    Repository
	projects ProjectClient
}

// NewService creates a task Service.
func NewService(tasks Repository, projects ProjectClient) *Service {
	return &Service{tasks: tasks, projects: projects}
}

// validateTaskAndProject runs the authorization chain for a mutation of the
// given task under the given project, by the given requester.
func (s *Service) validateTaskAndProject(ctx context.Context, bearer string, requester *hive.UserDTO, taskID, projectID uuid.UUID) (*Task, error) {
	t, err := s.getTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeTask(ctx, bearer, requester, t, projectID); err != nil {
		return nil, err
	}
	return t, nil
}

// authorizeTask runs the authorization chain for an already loaded task:
// task/project association, then project membership, then project
// leadership. Order matters and later checks must not run once an earlier
// one fails.
func (s *Service) authorizeTask(ctx context.Context, bearer string, requester *hive.UserDTO, t *Task, projectID uuid.UUID) error {
	if !t.BelongsTo(projectID) {
		return hive.TaskProjectMismatch("Task does not belong to the provided project")
	}

	member, err := s.projects.IsMemberOfProject(ctx, bearer, projectID, requester.UserID)
	if err != nil {
		return err
	}
	if !member {
		return hive.NotMemberOfProject("User is not a member of this project")
	}

	leader, err := s.projects.IsLeaderOrAdminOfProject(ctx, bearer, projectID, requester.UserID)
	if err != nil {
		return err
	}
	if !leader {
		return hive.NotLeaderOfProject("User is not a leader of this project")
	}

	return nil
}

// CreateTask creates a task under the project. The requester must be a
// member and a leader of the project.
func (s *Service) CreateTask(ctx context.Context, bearer string, requester *hive.UserDTO, projectID uuid.UUID, req CreateRequest) (*hive.TaskDTO, error) {
	if req.TaskName == "" {
		return nil, hive.InvalidRequest("taskName is required")
	}
	if req.Priority != "" && !ValidPriority(req.Priority) {
		return nil, hive.InvalidRequest("Unknown task priority: %s", req.Priority)
	}

	if _, err := s.projects.GetProjectByID(ctx, bearer, projectID); err != nil {
		return nil, err
	}

	member, err := s.projects.IsMemberOfProject(ctx, bearer, projectID, requester.UserID)
	if err != nil {
		return nil, err
	}
	if !member {
		return nil, hive.NotMemberOfProject("User is not a member of this project")
	}
	leader, err := s.projects.IsLeaderOrAdminOfProject(ctx, bearer, projectID, requester.UserID)
	if err != nil {
		return nil, err
	}
	if !leader {
		return nil, hive.NotLeaderOfProject("User is not a leader of this project")
	}

	if _, err := s.tasks.GetByProjectAndName(ctx, projectID, req.TaskName); err == nil {
		return nil, hive.AlreadyExists(http.StatusConflict,
			"Task with provided name: {%s} already exists in this project", req.TaskName)
	} else if !errors.Is(err, ErrTaskNotFound) {
		return nil, fmt.Errorf("checking task name: %w", err)
	}

	priority := req.Priority
	if priority == "" {
		priority = PriorityMedium
	}
	t := &Task{
		ProjectID:     projectID,
		Name:          req.TaskName,
		Description:   req.Description,
		DueDate:       req.DueDate,
		Status:        StatusNotStarted,
		Priority:      priority,
		AssignedUsers: req.AssignedUsers,
	}
	if err := s.tasks.Create(ctx, t); err != nil {
		if errors.Is(err, ErrDuplicateTaskName) {
			return nil, hive.AlreadyExists(http.StatusConflict,
				"Task with provided name: {%s} already exists in this project", req.TaskName)
		}
		return nil, fmt.Errorf("creating task: %w", err)
	}

	slog.Info("task created", "taskId", t.ID, "projectId", projectID)
	return toDTO(t), nil
}

// UpdateTask patches the provided fields after the authorization chain
// passes for the task's own project.
func (s *Service) UpdateTask(ctx context.Context, bearer string, requester *hive.UserDTO, taskID uuid.UUID, req CreateRequest) (*hive.TaskDTO, error) {
	t, err := s.getTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeTask(ctx, bearer, requester, t, t.ProjectID); err != nil {
		return nil, err
	}

	if req.TaskName != "" {
		t.Name = req.TaskName
	}
	if req.Description != "" {
		t.Description = req.Description
	}
	if req.DueDate != nil {
		t.DueDate = req.DueDate
	}
	if req.Priority != "" {
		if !ValidPriority(req.Priority) {
			return nil, hive.InvalidRequest("Unknown task priority: %s", req.Priority)
		}
		t.Priority = req.Priority
	}

	if err := s.tasks.Update(ctx, t); err != nil {
		return nil, fmt.Errorf("updating task: %w", err)
	}
	return toDTO(t), nil
}

// DeleteTask removes the task after the authorization chain passes.
func (s *Service) DeleteTask(ctx context.Context, bearer string, requester *hive.UserDTO, projectID, taskID uuid.UUID) error {
	if _, err := s.validateTaskAndProject(ctx, bearer, requester, taskID, projectID); err != nil {
		return err
	}

	if err := s.tasks.Delete(ctx, taskID); err != nil {
		if errors.Is(err, ErrTaskNotFound) {
			return hive.NotFound("Task with the given taskId was not found")
		}
		return fmt.Errorf("deleting task: %w", err)
	}

	slog.Info("task deleted", "taskId", taskID, "projectId", projectID)
	return nil
}

// ProgressTask marks the task completed after the authorization chain
// passes. COMPLETED is the only accepted target status, and a completed
// task stays completed.
func (s *Service) ProgressTask(ctx context.Context, bearer string, requester *hive.UserDTO, taskID, projectID uuid.UUID, status string) (*hive.TaskDTO, error) {
	if !ValidStatus(status) {
		return nil, hive.InvalidRequest("Unknown task status: %s", status)
	}
	if status != StatusCompleted {
		return nil, hive.InvalidRequest("Task status must be %s", StatusCompleted)
	}

	t, err := s.validateTaskAndProject(ctx, bearer, requester, taskID, projectID)
	if err != nil {
		return nil, err
	}

	if t.Completed() {
		return nil, hive.Domain(http.StatusConflict, "Task is already completed")
	}

	t.Status = status
	if err := s.tasks.Update(ctx, t); err != nil {
		return nil, fmt.Errorf("updating task status: %w", err)
	}

	slog.Info("task status changed", "taskId", t.ID, "status", status)
	return toDTO(t), nil
}

// AssignUser adds a user to the task's assignee set after the authorization
// chain passes. The assignee must be a member of the task's project.
func (s *Service) AssignUser(ctx context.Context, bearer string, requester *hive.UserDTO, taskID, userID uuid.UUID) error {
	t, err := s.getTask(ctx, taskID)
	if err != nil {
		return err
	}
	if err := s.authorizeTask(ctx, bearer, requester, t, t.ProjectID); err != nil {
		return err
	}

	member, err := s.projects.IsMemberOfProject(ctx, bearer, t.ProjectID, userID)
	if err != nil {
		return err
	}
	if !member {
		return hive.InvalidRequest("Assignee is not a member of the task's project")
	}

	if err := s.tasks.AssignUser(ctx, taskID, userID); err != nil {
		return fmt.Errorf("assigning user: %w", err)
	}
	return nil
}

// SearchTasks lists tasks matching the filter. Read-only, so no
// authorization chain beyond authentication.
func (s *Service) SearchTasks(ctx context.Context, filter SearchFilter) ([]hive.TaskDTO, error) {
	if filter.Status != "" && !ValidStatus(filter.Status) {
		return nil, hive.InvalidRequest("Unknown task status: %s", filter.Status)
	}
	if filter.Priority != "" && !ValidPriority(filter.Priority) {
		return nil, hive.InvalidRequest("Unknown task priority: %s", filter.Priority)
	}

	tasks, err := s.tasks.Search(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("searching tasks: %w", err)
	}

	dtos := make([]hive.TaskDTO, 0, len(tasks))
	for i := range tasks {
		dtos = append(dtos, *toDTO(&tasks[i]))
	}
	return dtos, nil
}

// TaskDTOByID returns the task snapshot served to other services.
func (s *Service) TaskDTOByID(ctx context.Context, taskID uuid.UUID) (*hive.TaskDTO, error) {
	t, err := s.getTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	return toDTO(t), nil
}

func (s *Service) getTask(ctx context.Context, taskID uuid.UUID) (*Task, error) {
	t, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, ErrTaskNotFound) {
			return nil, hive.NotFound("Task with the given taskId was not found")
		}
		return nil, fmt.Errorf("finding task: %w", err)
	}
	return t, nil
}

func toDTO(t *Task) *hive.TaskDTO {
	return &hive.TaskDTO{
		TaskID:    t.ID,
		ProjectID: t.ProjectID,
		TaskName:  t.Name,
		Status:    t.Status,
	}
}
