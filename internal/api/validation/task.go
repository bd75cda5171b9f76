package validation

import (
	"strings"
)

// CreateTaskRequest mirrors the fields needed for task validation.
type CreateTaskRequest struct {
	TaskName string
	Priority string
}

// ValidateCreateTaskRequest validates the fields of a create task request.
// Priority membership is checked against the given set so the valid values
// live with the task domain, not here.
func ValidateCreateTaskRequest(req CreateTaskRequest, validPriority func(string) bool) []FieldError {
	var errs []FieldError

	name := strings.TrimSpace(req.TaskName)
	if name == "" {
		errs = append(errs, FieldError{Field: "taskName", Message: "taskName is required"})
	} else if len(name) > 255 {
		errs = append(errs, FieldError{Field: "taskName", Message: "taskName must be at most 255 characters"})
	}

	if req.Priority != "" && !validPriority(req.Priority) {
		errs = append(errs, FieldError{Field: "taskPriority", Message: "taskPriority must be one of LOW, MEDIUM, HIGH"})
	}

	return errs
}
