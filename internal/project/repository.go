package project

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrProjectNotFound is returned when a project record is not found.
var ErrProjectNotFound = errors.New("project not found")

// ErrDuplicateProjectName is returned when a project with the same name
// already exists.
var ErrDuplicateProjectName = errors.New("project name already exists")

// ErrMembershipNotFound is returned when a membership record is not found.
var ErrMembershipNotFound = errors.New("membership not found")

// ErrJoinRequestNotFound is returned when a join request record is not found.
var ErrJoinRequestNotFound = errors.New("join request not found")

// Repository provides operations on the projects table.
type Repository interface {
	Create(ctx context.Context, p *Project) error
	GetByID(ctx context.Context, id uuid.UUID) (*Project, error)
	GetByName(ctx context.Context, name string) (*Project, error)
	List(ctx context.Context) ([]Project, error)
	SearchByName(ctx context.Context, fragment string) ([]Project, error)
	Update(ctx context.Context, p *Project) error
}

// MembershipRepository provides operations on the project_members table.
type MembershipRepository interface {
	Create(ctx context.Context, m *Membership) error
	FindActiveByUser(ctx context.Context, userID uuid.UUID) ([]Membership, error)
	ExistsByProjectAndUser(ctx context.Context, projectID, userID uuid.UUID) (bool, error)
	ListByProject(ctx context.Context, projectID uuid.UUID) ([]Membership, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]Membership, error)
	Deactivate(ctx context.Context, id uuid.UUID, completedAt time.Time) error
	Delete(ctx context.Context, projectID, userID uuid.UUID) error
}

// JoinRequestRepository provides operations on the join_requests table.
type JoinRequestRepository interface {
	Create(ctx context.Context, jr *JoinRequest) error
	GetByID(ctx context.Context, id uuid.UUID) (*JoinRequest, error)
	ExistsByProjectAndUser(ctx context.Context, projectID, userID uuid.UUID) (bool, error)
	ListByProjectAndStatus(ctx context.Context, projectID uuid.UUID, status string) ([]JoinRequest, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// UserProjectRoleRepository provides operations on the user_project_roles
// table.
type UserProjectRoleRepository interface {
	Create(ctx context.Context, upr *UserProjectRole) error
	ExistsForProject(ctx context.Context, userID, projectID uuid.UUID) (bool, error)
}
