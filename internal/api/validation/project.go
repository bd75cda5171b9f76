package validation

import (
	"strings"
	"time"
)

// CreateProjectRequest mirrors the fields needed for project validation.
type CreateProjectRequest struct {
	ProjectName string
	StartDate   *time.Time
	EndDate     *time.Time
}

// ValidateCreateProjectRequest validates the fields of a create project
// request.
func ValidateCreateProjectRequest(req CreateProjectRequest) []FieldError {
	var errs []FieldError

	name := strings.TrimSpace(req.ProjectName)
	if name == "" {
		errs = append(errs, FieldError{Field: "projectName", Message: "projectName is required"})
	} else if len(name) > 255 {
		errs = append(errs, FieldError{Field: "projectName", Message: "projectName must be at most 255 characters"})
	}

	if req.StartDate != nil && req.EndDate != nil && req.EndDate.Before(*req.StartDate) {
		errs = append(errs, FieldError{Field: "endDate", Message: "endDate must not be before startDate"})
	}

	return errs
}
