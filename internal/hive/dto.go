package hive

import (
	"time"

	"github.com/google/uuid"
)

// Role names are a fixed set seeded once at identity-service startup.
const (
	RoleAdmin         = "ADMIN"
	RoleProjectLeader = "PROJECT_LEADER"
	RoleTeamMember    = "TEAM_MEMBER"
)

// Department names seeded alongside the roles.
const (
	DepartmentEngineering = "ENGINEERING"
	DepartmentDesign      = "DESIGN"
	DepartmentMarketing   = "MARKETING"
	DepartmentSales       = "SALES"
	DepartmentFinance     = "FINANCE"
)

// UserDTO is the identity snapshot exchanged between services. The identity
// service is the only writer; everyone else treats it as read-only.
type UserDTO struct {
	UserID      uuid.UUID `json:"userId"`
	Username    string    `json:"username"`
	Email       string    `json:"email"`
	Active      bool      `json:"active"`
	Roles       []string  `json:"roles"`
	Departments []string  `json:"departments"`
}

// HasRole reports whether the snapshot carries the named global role.
func (u *UserDTO) HasRole(name string) bool {
	for _, r := range u.Roles {
		if r == name {
			return true
		}
	}
	return false
}

// TaskDTO is the task snapshot served by the task service's
// inter-communication endpoints.
type TaskDTO struct {
	TaskID    uuid.UUID `json:"taskId"`
	ProjectID uuid.UUID `json:"projectId"`
	TaskName  string    `json:"taskName"`
	Status    string    `json:"taskStatus"`
}

// ProjectDTO is the project snapshot served by the project service's
// inter-communication endpoints.
type ProjectDTO struct {
	ProjectID   uuid.UUID  `json:"projectId"`
	ProjectName string     `json:"projectName"`
	Description string     `json:"description"`
	LeaderID    uuid.UUID  `json:"leaderId"`
	MemberCount int        `json:"memberCount"`
	Progress    int        `json:"progress"`
	StartDate   *time.Time `json:"startDate"`
	EndDate     *time.Time `json:"endDate"`
}
