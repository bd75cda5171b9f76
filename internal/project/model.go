package project

import (
	"time"

	"github.com/google/uuid"
)

// Project represents a row in the projects table. leader_id references an
// identity owned by the identity service; only the id is stored here.
type Project struct {
	ID          uuid.UUID
	Name        string
	Description string
	LeaderID    uuid.UUID
	MemberCount int
	Progress    int
	StartDate   *time.Time
	EndDate     *time.Time
	CreatedAt   time.Time
}

// ActiveOn reports whether the project is running on the given day:
// start <= day <= end. A missing date leaves that bound open.
func (p *Project) ActiveOn(day time.Time) bool {
	if p.StartDate != nil && day.Before(truncateToDay(*p.StartDate)) {
		return false
	}
	return !p.EndedBefore(day)
}

// EndedBefore reports whether the project's end date has passed as of the
// given day.
func (p *Project) EndedBefore(day time.Time) bool {
	if p.EndDate == nil {
		return false
	}
	return truncateToDay(*p.EndDate).Before(truncateToDay(day))
}

func truncateToDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// Membership represents a row in the project_members table. A user holds at
// most one membership with active=true at any time; explicit removal deletes
// the row, while reassignment after project end deactivates it instead.
type Membership struct {
	ID          uuid.UUID
	ProjectID   uuid.UUID
	UserID      uuid.UUID
	Active      bool
	AssignedAt  time.Time
	CompletedAt *time.Time
}

// UserProjectRole is a role assignment scoped to one project, distinct from
// the user's global roles. Project creation inserts one for the creator.
type UserProjectRole struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	RoleID    uuid.UUID
	ProjectID uuid.UUID
}

// Join request statuses. A request stays PENDING until the project's leader
// reviews it; the reviewed row is deleted, so APPROVED and DENIED only ever
// appear on the wire.
const (
	JoinStatusPending  = "PENDING"
	JoinStatusApproved = "APPROVED"
	JoinStatusDenied   = "DENIED"
)

// ValidJoinDecision reports whether the status is one a reviewer may set.
func ValidJoinDecision(status string) bool {
	return status == JoinStatusApproved || status == JoinStatusDenied
}

// JoinRequest represents a row in the join_requests table: a user asking the
// project's leader to let them in.
type JoinRequest struct {
	ID        uuid.UUID
	ProjectID uuid.UUID
	UserID    uuid.UUID
	Status    string
	CreatedAt time.Time
}
