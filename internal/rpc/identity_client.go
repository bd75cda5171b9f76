package rpc

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/glhive/hive/internal/hive"
)

// IdentityClient calls the identity service's inter-communication endpoints.
type IdentityClient struct {
	*client
}

// NewIdentityClient creates an IdentityClient against the given base URL.
func NewIdentityClient(baseURL string, timeout time.Duration) *IdentityClient {
	return &IdentityClient{client: newClient("identity service", baseURL, timeout)}
}

// GetUserByID fetches the identity snapshot of a user.
func (c *IdentityClient) GetUserByID(ctx context.Context, bearer string, userID uuid.UUID) (*hive.UserDTO, error) {
	var dto hive.UserDTO
	path := fmt.Sprintf("/api/v1/intercommunication/user-dto/%s", userID)
	if err := c.get(ctx, path, bearer, &dto); err != nil {
		return nil, err
	}
	return &dto, nil
}

// CurrentUser resolves the forwarded bearer header to its identity snapshot.
func (c *IdentityClient) CurrentUser(ctx context.Context, bearer string) (*hive.UserDTO, error) {
	var dto hive.UserDTO
	if err := c.get(ctx, "/api/v1/intercommunication/current-user-dto", bearer, &dto); err != nil {
		return nil, err
	}
	return &dto, nil
}

// AddProjectLeaderRole grants PROJECT_LEADER to the user. Used by the
// project service when a user creates their first project.
func (c *IdentityClient) AddProjectLeaderRole(ctx context.Context, bearer string, userID uuid.UUID) error {
	path := fmt.Sprintf("/api/v1/intercommunication/add-project-leader-role/%s", userID)
	return c.post(ctx, path, bearer, nil, nil)
}

// ProjectLeaderRoleID returns the id of the PROJECT_LEADER role.
func (c *IdentityClient) ProjectLeaderRoleID(ctx context.Context, bearer string) (uuid.UUID, error) {
	var out struct {
		RoleID uuid.UUID `json:"roleId"`
	}
	if err := c.get(ctx, "/api/v1/intercommunication/project-leader-role-id", bearer, &out); err != nil {
		return uuid.Nil, err
	}
	return out.RoleID, nil
}

// ResolveIdentity satisfies the gateway filter's resolver contract for
// services without local identity tables.
func (c *IdentityClient) ResolveIdentity(ctx context.Context, bearerHeader string, userID uuid.UUID) (*hive.UserDTO, error) {
	return c.GetUserByID(ctx, bearerHeader, userID)
}
