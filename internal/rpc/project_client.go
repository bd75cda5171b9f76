package rpc

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/glhive/hive/internal/hive"
)

// ProjectClient calls the project service's inter-communication endpoints.
type ProjectClient struct {
	*client
}

// NewProjectClient creates a ProjectClient against the given base URL.
func NewProjectClient(baseURL string, timeout time.Duration) *ProjectClient {
	return &ProjectClient{client: newClient("project service", baseURL, timeout)}
}

// IsMemberOfProject reports whether the user holds a membership row in the
// project.
func (c *ProjectClient) IsMemberOfProject(ctx context.Context, bearer string, projectID, userID uuid.UUID) (bool, error) {
	var member bool
	path := fmt.Sprintf("/api/v1/project/intercommunication/is-member-of-project?projectId=%s&userId=%s", projectID, userID)
	if err := c.get(ctx, path, bearer, &member); err != nil {
		return false, err
	}
	return member, nil
}

// IsLeaderOrAdminOfProject reports whether the user holds a leader/admin
// role assignment scoped to the project.
func (c *ProjectClient) IsLeaderOrAdminOfProject(ctx context.Context, bearer string, projectID, userID uuid.UUID) (bool, error) {
	var leader bool
	path := fmt.Sprintf("/api/v1/project/intercommunication/is-leader-of-project?projectId=%s&userId=%s", projectID, userID)
	if err := c.get(ctx, path, bearer, &leader); err != nil {
		return false, err
	}
	return leader, nil
}

// GetProjectByID fetches the project snapshot.
func (c *ProjectClient) GetProjectByID(ctx context.Context, bearer string, projectID uuid.UUID) (*hive.ProjectDTO, error) {
	var dto hive.ProjectDTO
	path := fmt.Sprintf("/api/v1/project/intercommunication/project-dto/%s", projectID)
	if err := c.get(ctx, path, bearer, &dto); err != nil {
		return nil, err
	}
	return &dto, nil
}
