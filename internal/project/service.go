package project

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

// IdentityClient is the slice of the identity service the project service
// depends on.
type IdentityClient interface {
	GetUserByID(ctx context.Context, bearer string, userID uuid.UUID) (*hive.UserDTO, error)
	AddProjectLeaderRole(ctx context.Context, bearer string, userID uuid.UUID) error
	ProjectLeaderRoleID(ctx context.Context, bearer string) (uuid.UUID, error)
}

// CreateRequest carries a project creation or update.
type CreateRequest struct {
	ProjectName string     `json:"projectName"`
	Description string     `json:"projectDescription"`
	StartDate   *time.Time `json:"startDate"`
	EndDate     *time.Time `json:"endDate"`
}

// JoinResponse reports the outcome of a join request operation.
type JoinResponse struct {
	Status     string `json:"status"`
	JoinStatus string `json:"joinStatus"`
}

// JoinRequestDTO is a pending join request as shown to the project's leader.
type JoinRequestDTO struct {
	JoinRequestID uuid.UUID `json:"joinRequestId"`
	ProjectName   string    `json:"projectName"`
	Email         string    `json:"joinRequestUsersEmail"`
	JoinStatus    string    `json:"joinStatus"`
}

// SearchResult is a project as returned by the search and listing endpoints,
// with the leader and members resolved to identity snapshots.
type SearchResult struct {
	ProjectID   uuid.UUID      `json:"projectId"`
	LeaderID    uuid.UUID      `json:"leaderId"`
	ProjectName string         `json:"projectName"`
	LeaderName  string         `json:"leaderName"`
	Description string         `json:"projectDescription"`
	Members     []hive.UserDTO `json:"members"`
	Progress    int            `json:"progress"`
	StartDate   *time.Time     `json:"startDate"`
	EndDate     *time.Time     `json:"endDate"`
}

// Service implements project management and the membership invariant: a user
// holds at most one active project assignment at a time.
type Service struct {
	projects     Repository
	memberships  MembershipRepository
	roles        UserProjectRoleRepository
	joinRequests JoinRequestRepository
	identity     IdentityClient

	// adminLeadsAnyProject lets a global ADMIN pass the per-project
	// leadership check without a project-scoped role row.
	adminLeadsAnyProject bool

	now func() time.Time
}

// NewService creates a project Service.
func NewService(
	projects Repository,
	memberships MembershipRepository,
	roles UserProjectRoleRepository,
	joinRequests JoinRequestRepository,
	identity IdentityClient,
	adminLeadsAnyProject bool,
) *Service {
	return &Service{
		projects:             projects,
		memberships:          memberships,
		roles:                roles,
		joinRequests:         joinRequests,
		identity:             identity,
		adminLeadsAnyProject: adminLeadsAnyProject,
		now:                  time.Now,
	}
}

// CreateProject creates a project led by the requester, promotes the
// requester to PROJECT_LEADER in the identity directory, and records both
// the creator's membership and their project-scoped leader role.
func (s *Service) CreateProject(ctx context.Context, bearer string, requester *hive.UserDTO, req CreateRequest) (*hive.ProjectDTO, error) {
	if req.ProjectName == "" {
		return nil, hive.InvalidRequest("projectName is required")
	}

	if _, err := s.projects.GetByName(ctx, req.ProjectName); err == nil {
		return nil, hive.AlreadyExists(http.StatusNotAcceptable,
			"Project with provided name: {%s} already exists", req.ProjectName)
	} else if !errors.Is(err, ErrProjectNotFound) {
		return nil, fmt.Errorf("checking project name: %w", err)
	}

	if err := s.identity.AddProjectLeaderRole(ctx, bearer, requester.UserID); err != nil {
		return nil, err
	}
	leaderRoleID, err := s.identity.ProjectLeaderRoleID(ctx, bearer)
	if err != nil {
		return nil, err
	}

	p := &Project{
		Name:        req.ProjectName,
		Description: req.Description,
		LeaderID:    requester.UserID,
		MemberCount: 1,
		Progress:    0,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
	}
	if err := s.projects.Create(ctx, p); err != nil {
		if errors.Is(err, ErrDuplicateProjectName) {
			return nil, hive.AlreadyExists(http.StatusNotAcceptable,
				"Project with provided name: {%s} already exists", req.ProjectName)
		}
		return nil, fmt.Errorf("creating project: %w", err)
	}

	m := &Membership{
		ProjectID:  p.ID,
		UserID:     requester.UserID,
		Active:     true,
		AssignedAt: s.now(),
	}
	if err := s.memberships.Create(ctx, m); err != nil {
		return nil, fmt.Errorf("creating leader membership: %w", err)
	}

	upr := &UserProjectRole{UserID: requester.UserID, RoleID: leaderRoleID, ProjectID: p.ID}
	if err := s.roles.Create(ctx, upr); err != nil {
		return nil, fmt.Errorf("creating project role assignment: %w", err)
	}

	slog.Info("project created", "projectId", p.ID, "leaderId", requester.UserID)
	return toDTO(p), nil
}

// requireAddRemoveAuthority enforces who may mutate a project's membership
// or review its join requests: a global ADMIN, or a PROJECT_LEADER who leads
// this project.
func requireAddRemoveAuthority(p *Project, requester *hive.UserDTO, action string) error {
	if requester.HasRole(hive.RoleAdmin) {
		return nil
	}
	if requester.HasRole(hive.RoleProjectLeader) && p.LeaderID == requester.UserID {
		return nil
	}
	return hive.NotAuthorized(fmt.Sprintf("Not authorized to %s this project", action))
}

// AddMember assigns the user to the project, enforcing the single active
// assignment invariant.
//
// The active-assignment lookup and the insert are two separate writes with
// no transaction around them; concurrent add-member calls for the same user
// can race. That mirrors the upstream behavior and is tolerated rather than
// papered over.
func (s *Service) AddMember(ctx context.Context, bearer string, requester *hive.UserDTO, projectID, userID uuid.UUID) error {
	p, err := s.getProject(ctx, projectID)
	if err != nil {
		return err
	}

	if err := requireAddRemoveAuthority(p, requester, "add members of"); err != nil {
		return err
	}

	return s.assignMember(ctx, bearer, p, userID)
}

// assignMember records the user's membership in the project, enforcing the
// single active assignment invariant. Shared by direct member addition and
// join request approval.
func (s *Service) assignMember(ctx context.Context, bearer string, p *Project, userID uuid.UUID) error {
	target, err := s.identity.GetUserByID(ctx, bearer, userID)
	if err != nil {
		return err
	}
	if !target.HasRole(hive.RoleTeamMember) {
		return hive.InvalidRequest("Only TEAM_MEMBERs can be added to a project")
	}

	active, err := s.memberships.FindActiveByUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("finding active memberships: %w", err)
	}
	if len(active) > 0 {
		current := active[0]
		currentProject, err := s.getProject(ctx, current.ProjectID)
		if err != nil {
			return err
		}
		if currentProject.EndedBefore(s.now()) {
			if err := s.memberships.Deactivate(ctx, current.ID, s.now()); err != nil {
				return fmt.Errorf("deactivating completed membership: %w", err)
			}
			slog.Info("deactivated completed assignment",
				"userId", userID, "projectId", current.ProjectID)
		} else {
			return hive.InvalidRequest("User already has an active project assignment.")
		}
	}

	alreadyMember, err := s.memberships.ExistsByProjectAndUser(ctx, p.ID, userID)
	if err != nil {
		return fmt.Errorf("checking duplicate membership: %w", err)
	}
	if alreadyMember {
		return hive.InvalidRequest("User is already a member of this project")
	}

	m := &Membership{
		ProjectID:  p.ID,
		UserID:     userID,
		Active:     true,
		AssignedAt: s.now(),
	}
	if err := s.memberships.Create(ctx, m); err != nil {
		return fmt.Errorf("creating membership: %w", err)
	}

	p.MemberCount++
	if err := s.projects.Update(ctx, p); err != nil {
		return fmt.Errorf("updating member count: %w", err)
	}

	slog.Info("member added to project", "projectId", p.ID, "userId", userID)
	return nil
}

// RemoveMember deletes the user's membership row and decrements the member
// count, floored at zero.
func (s *Service) RemoveMember(ctx context.Context, bearer string, requester *hive.UserDTO, projectID, userID uuid.UUID) error {
	p, err := s.getProject(ctx, projectID)
	if err != nil {
		return err
	}

	if err := requireAddRemoveAuthority(p, requester, "remove members of"); err != nil {
		return err
	}

	target, err := s.identity.GetUserByID(ctx, bearer, userID)
	if err != nil {
		return err
	}
	if !target.HasRole(hive.RoleTeamMember) {
		return hive.InvalidRequest("Only TEAM_MEMBERs can be removed from a project")
	}

	if err := s.memberships.Delete(ctx, projectID, userID); err != nil {
		if errors.Is(err, ErrMembershipNotFound) {
			return hive.NotFound("User is not a member of this project")
		}
		return fmt.Errorf("deleting membership: %w", err)
	}

	if p.MemberCount > 0 {
		p.MemberCount--
		if err := s.projects.Update(ctx, p); err != nil {
			return fmt.Errorf("updating member count: %w", err)
		}
	}

	slog.Info("member removed from project", "projectId", projectID, "userId", userID)
	return nil
}

// ListMembers returns identity snapshots of everyone holding a membership
// row in the project.
func (s *Service) ListMembers(ctx context.Context, bearer string, projectID uuid.UUID) ([]hive.UserDTO, error) {
	if _, err := s.getProject(ctx, projectID); err != nil {
		return nil, err
	}

	memberships, err := s.memberships.ListByProject(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("listing memberships: %w", err)
	}

	members := make([]hive.UserDTO, 0, len(memberships))
	for _, m := range memberships {
		dto, err := s.identity.GetUserByID(ctx, bearer, m.UserID)
		if err != nil {
			return nil, err
		}
		members = append(members, *dto)
	}
	return members, nil
}

// UpdateProject patches the provided fields. Only a global ADMIN or the
// project's leader may update.
func (s *Service) UpdateProject(ctx context.Context, requester *hive.UserDTO, projectID uuid.UUID, req CreateRequest) error {
	p, err := s.getProject(ctx, projectID)
	if err != nil {
		return err
	}

	if !requester.HasRole(hive.RoleAdmin) &&
		!(requester.HasRole(hive.RoleProjectLeader) && p.LeaderID == requester.UserID) {
		return hive.NotAuthorized("Not authorized to update this project")
	}

	if req.ProjectName != "" {
		p.Name = req.ProjectName
	}
	if req.Description != "" {
		p.Description = req.Description
	}
	if req.StartDate != nil {
		p.StartDate = req.StartDate
	}
	if req.EndDate != nil {
		p.EndDate = req.EndDate
	}

	if err := s.projects.Update(ctx, p); err != nil {
		return fmt.Errorf("updating project: %w", err)
	}
	return nil
}

// IsMemberOfProject answers the inter-communication membership check: any
// membership row, active or not, counts.
func (s *Service) IsMemberOfProject(ctx context.Context, projectID, userID uuid.UUID) (bool, error) {
	if _, err := s.getProject(ctx, projectID); err != nil {
		return false, err
	}
	exists, err := s.memberships.ExistsByProjectAndUser(ctx, projectID, userID)
	if err != nil {
		return false, fmt.Errorf("checking membership: %w", err)
	}
	return exists, nil
}

// IsLeaderOrAdminOfProject answers the inter-communication leadership check.
// Holding the global PROJECT_LEADER or ADMIN role is necessary but not
// sufficient: a role assignment scoped to this project must also exist. The
// one configurable exception is adminLeadsAnyProject, which lets a global
// ADMIN pass without the scoped row.
func (s *Service) IsLeaderOrAdminOfProject(ctx context.Context, bearer string, projectID, userID uuid.UUID) (bool, error) {
	if _, err := s.getProject(ctx, projectID); err != nil {
		return false, err
	}

	user, err := s.identity.GetUserByID(ctx, bearer, userID)
	if err != nil {
		return false, err
	}

	if s.adminLeadsAnyProject && user.HasRole(hive.RoleAdmin) {
		return true, nil
	}

	if !user.HasRole(hive.RoleProjectLeader) && !user.HasRole(hive.RoleAdmin) {
		return false, nil
	}

	scoped, err := s.roles.ExistsForProject(ctx, userID, projectID)
	if err != nil {
		return false, fmt.Errorf("checking project role assignment: %w", err)
	}
	return scoped, nil
}

// RequestToJoin records the requester's pending join request for the
// project. One request per user per project; current members cannot request.
func (s *Service) RequestToJoin(ctx context.Context, requester *hive.UserDTO, projectID uuid.UUID) (*JoinResponse, error) {
	p, err := s.getProject(ctx, projectID)
	if err != nil {
		return nil, err
	}

	pending, err := s.joinRequests.ExistsByProjectAndUser(ctx, projectID, requester.UserID)
	if err != nil {
		return nil, fmt.Errorf("checking pending join request: %w", err)
	}
	if pending {
		return nil, hive.AlreadyExists(http.StatusBadRequest,
			"You already sent a join request for this project")
	}

	member, err := s.memberships.ExistsByProjectAndUser(ctx, projectID, requester.UserID)
	if err != nil {
		return nil, fmt.Errorf("checking membership: %w", err)
	}
	if member {
		return nil, hive.InvalidRequest("User is already a member of this project")
	}

	jr := &JoinRequest{
		ProjectID: projectID,
		UserID:    requester.UserID,
		Status:    JoinStatusPending,
	}
	if err := s.joinRequests.Create(ctx, jr); err != nil {
		return nil, fmt.Errorf("creating join request: %w", err)
	}

	slog.Info("join request sent", "projectId", p.ID, "userId", requester.UserID)
	return &JoinResponse{Status: "Join request sent", JoinStatus: JoinStatusPending}, nil
}

// ListJoinRequests returns the project's pending join requests. Only a
// global ADMIN or the project's leader may review them.
func (s *Service) ListJoinRequests(ctx context.Context, bearer string, requester *hive.UserDTO, projectID uuid.UUID) ([]JoinRequestDTO, error) {
	p, err := s.getProject(ctx, projectID)
	if err != nil {
		return nil, err
	}

	if err := requireAddRemoveAuthority(p, requester, "review join requests for"); err != nil {
		return nil, err
	}

	pending, err := s.joinRequests.ListByProjectAndStatus(ctx, projectID, JoinStatusPending)
	if err != nil {
		return nil, fmt.Errorf("listing join requests: %w", err)
	}

	dtos := make([]JoinRequestDTO, 0, len(pending))
	for _, jr := range pending {
		sender, err := s.identity.GetUserByID(ctx, bearer, jr.UserID)
		if err != nil {
			return nil, err
		}
		dtos = append(dtos, JoinRequestDTO{
			JoinRequestID: jr.ID,
			ProjectName:   p.Name,
			Email:         sender.Email,
			JoinStatus:    jr.Status,
		})
	}
	return dtos, nil
}

// ReviewJoinRequest approves or denies a pending join request. Approval
// runs the same membership path as direct member addition, so the single
// active assignment invariant holds either way. The reviewed request row is
// deleted once the decision sticks.
func (s *Service) ReviewJoinRequest(ctx context.Context, bearer string, requester *hive.UserDTO, joinRequestID uuid.UUID, decision string) (*JoinResponse, error) {
	if !ValidJoinDecision(decision) {
		return nil, hive.InvalidRequest("joinStatus must be %s or %s", JoinStatusApproved, JoinStatusDenied)
	}

	jr, err := s.joinRequests.GetByID(ctx, joinRequestID)
	if err != nil {
		if errors.Is(err, ErrJoinRequestNotFound) {
			return nil, hive.NotFound("Join request with the given joinRequestId was not found")
		}
		return nil, fmt.Errorf("finding join request: %w", err)
	}

	p, err := s.getProject(ctx, jr.ProjectID)
	if err != nil {
		return nil, err
	}

	if err := requireAddRemoveAuthority(p, requester, "review join requests for"); err != nil {
		return nil, err
	}

	if decision == JoinStatusApproved {
		if err := s.assignMember(ctx, bearer, p, jr.UserID); err != nil {
			return nil, err
		}
	}

	if err := s.joinRequests.Delete(ctx, jr.ID); err != nil {
		return nil, fmt.Errorf("deleting reviewed join request: %w", err)
	}

	slog.Info("join request reviewed",
		"joinRequestId", jr.ID, "projectId", p.ID, "decision", decision)
	return &JoinResponse{Status: "Join request reviewed", JoinStatus: decision}, nil
}

// ListProjects returns the projects visible to the requester: all of them
// for a global ADMIN, the ones they lead for a PROJECT_LEADER, and the ones
// they hold a membership in for a TEAM_MEMBER.
func (s *Service) ListProjects(ctx context.Context, bearer string, requester *hive.UserDTO) ([]SearchResult, error) {
	var projects []Project

	switch {
	case requester.HasRole(hive.RoleAdmin):
		all, err := s.projects.List(ctx)
		if err != nil {
			return nil, fmt.Errorf("listing projects: %w", err)
		}
		projects = all

	case requester.HasRole(hive.RoleProjectLeader):
		all, err := s.projects.List(ctx)
		if err != nil {
			return nil, fmt.Errorf("listing projects: %w", err)
		}
		for _, p := range all {
			if p.LeaderID == requester.UserID {
				projects = append(projects, p)
			}
		}

	case requester.HasRole(hive.RoleTeamMember):
		memberships, err := s.memberships.ListByUser(ctx, requester.UserID)
		if err != nil {
			return nil, fmt.Errorf("listing user memberships: %w", err)
		}
		for _, m := range memberships {
			p, err := s.getProject(ctx, m.ProjectID)
			if err != nil {
				return nil, err
			}
			projects = append(projects, *p)
		}
	}

	return s.toSearchResults(ctx, bearer, projects)
}

// SearchProjects returns the projects whose name contains the given
// fragment. No match is reported as not-found rather than an empty list.
func (s *Service) SearchProjects(ctx context.Context, bearer, name string) ([]SearchResult, error) {
	if name == "" {
		return nil, hive.InvalidRequest("projectName is required")
	}

	projects, err := s.projects.SearchByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("searching projects: %w", err)
	}
	if len(projects) == 0 {
		return nil, hive.NotFound("Project with name containing '%s' was not found", name)
	}

	return s.toSearchResults(ctx, bearer, projects)
}

func (s *Service) toSearchResults(ctx context.Context, bearer string, projects []Project) ([]SearchResult, error) {
	results := make([]SearchResult, 0, len(projects))
	for i := range projects {
		p := &projects[i]

		leader, err := s.identity.GetUserByID(ctx, bearer, p.LeaderID)
		if err != nil {
			return nil, err
		}
		members, err := s.ListMembers(ctx, bearer, p.ID)
		if err != nil {
			return nil, err
		}

		results = append(results, SearchResult{
			ProjectID:   p.ID,
			LeaderID:    p.LeaderID,
			ProjectName: p.Name,
			LeaderName:  leader.Username,
			Description: p.Description,
			Members:     members,
			Progress:    p.Progress,
			StartDate:   p.StartDate,
			EndDate:     p.EndDate,
		})
	}
	return results, nil
}

// ProjectDTOByID returns the project snapshot served to other services.
func (s *Service) ProjectDTOByID(ctx context.Context, projectID uuid.UUID) (*hive.ProjectDTO, error) {
	p, err := s.getProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	return toDTO(p), nil
}

func (s *Service) getProject(ctx context.Context, projectID uuid.UUID) (*Project, error) {
	p, err := s.projects.GetByID(ctx, projectID)
	if err != nil {
		if errors.Is(err, ErrProjectNotFound) {
			return nil, hive.NotFound("Project with the given projectId was not found")
		}
		return nil, fmt.Errorf("finding project: %w", err)
	}
	return p, nil
}

func toDTO(p *Project) *hive.ProjectDTO {
	return &hive.ProjectDTO{
		ProjectID:   p.ID,
		ProjectName: p.Name,
		Description: p.Description,
		LeaderID:    p.LeaderID,
		MemberCount: p.MemberCount,
		Progress:    p.Progress,
		StartDate:   p.StartDate,
		EndDate:     p.EndDate,
	}
}
