package task

import (
	"time"

	"github.com/google/uuid"
)

// Task statuses. COMPLETED is terminal.
const (
	StatusNotStarted = "NOT_STARTED"
	StatusInProgress = "IN_PROGRESS"
	StatusCompleted  = "COMPLETED"
)

// Task priorities.
const (
	PriorityLow    = "LOW"
	PriorityMedium = "MEDIUM"
	PriorityHigh   = "HIGH"
)

// ValidStatus reports whether s is a known task status.
func ValidStatus(s string) bool {
	switch s {
	case StatusNotStarted, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

// ValidPriority reports whether p is a known task priority.
func ValidPriority(p string) bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Task represents a row in the tasks table. project_id references a project
// owned by the project service; only the id is stored here.
type Task struct {
	ID            uuid.UUID
	ProjectID     uuid.UUID
	Name          string
	Description   string
	DueDate       *time.Time
	Status        string
	Priority      string
	AssignedUsers []uuid.UUID
	CreatedAt     time.Time
}

// BelongsTo reports whether the task is associated with the given project.
func (t *Task) BelongsTo(projectID uuid.UUID) bool {
	return t.ProjectID == projectID
}

// Completed reports whether the task has reached its terminal status.
func (t *Task) Completed() bool {
	return t.Status == StatusCompleted
}
