package task

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrTaskNotFound is returned when a task record is not found.
var ErrTaskNotFound = errors.New("task not found")

// ErrDuplicateTaskName is returned when a task with the same name already
// exists within the project.
var ErrDuplicateTaskName = errors.New("task name already exists in project")

// SearchFilter narrows a task listing. Zero values mean "any".
type SearchFilter struct {
	ProjectID  uuid.UUID
	AssigneeID uuid.UUID
	Status     string
	Priority   string
}

// Repository provides operations on the tasks table and its assigned-users
// join table.
type Repository interface {
	Create(ctx context.Context, t *Task) error
	GetByID(ctx context.Context, id uuid.UUID) (*Task, error)
	GetByProjectAndName(ctx context.Context, projectID uuid.UUID, name string) (*Task, error)
	Update(ctx context.Context, t *Task) error
	Delete(ctx context.Context, id uuid.UUID) error
	Search(ctx context.Context, filter SearchFilter) ([]Task, error)
	AssignUser(ctx context.Context, taskID, userID uuid.UUID) error
	UnassignUser(ctx context.Context, taskID, userID uuid.UUID) error
}
