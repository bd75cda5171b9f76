package identity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/glhive/hive/internal/hive"
	"github.com/glhive/hive/internal/token"
)

// RegisterRequest carries a registration attempt.
type RegisterRequest struct {
	Username   string `json:"username"`
	Email      string `json:"email"`
	Password   string `json:"password"`
	Department string `json:"department,omitempty"`
}

// AuthenticationResponse is returned by registration and login.
type AuthenticationResponse struct {
	Username string   `json:"username"`
	Active   bool     `json:"active"`
	Roles    []string `json:"roles"`
	Token    string   `json:"token"`
}

// Service implements the identity directory: registration, login, account
// verification, and the lookups other services depend on.
type Service struct {
	users         UserRepository
	roles         RoleRepository
	departments   DepartmentRepository
	verifications VerificationTokenRepository
	ledger        token.Ledger
	codec         *token.Codec
	tokenTTL      time.Duration
	bcryptCost    int
}

// NewService creates an identity Service.
func NewService(
	users UserRepository,
	roles RoleRepository,
	departments DepartmentRepository,
	verifications VerificationTokenRepository,
	ledger token.Ledger,
	codec *token.Codec,
	tokenTTL time.Duration,
	bcryptCost int,
) *Service {
	return &Service{
		users:         users,
		roles:         roles,
		departments:   departments,
		verifications: verifications,
		ledger:        ledger,
		codec:         codec,
		tokenTTL:      tokenTTL,
		bcryptCost:    bcryptCost,
	}
}

// Seed ensures the fixed role and department reference data exists.
func (s *Service) Seed(ctx context.Context) error {
	if err := s.roles.Ensure(ctx, hive.RoleAdmin, hive.RoleProjectLeader, hive.RoleTeamMember); err != nil {
		return fmt.Errorf("seeding roles: %w", err)
	}
	err := s.departments.Ensure(ctx,
		hive.DepartmentEngineering,
		hive.DepartmentDesign,
		hive.DepartmentMarketing,
		hive.DepartmentSales,
		hive.DepartmentFinance,
	)
	if err != nil {
		return fmt.Errorf("seeding departments: %w", err)
	}
	return nil
}

// Register creates a new user with the default TEAM_MEMBER role, records a
// verification token for account activation, and issues a first identity
// token. Email delivery is out of scope; the activation link is logged.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*AuthenticationResponse, error) {
	if req.Email == "" || req.Username == "" || req.Password == "" {
		return nil, hive.InvalidRequest("username, email and password are required")
	}

	if _, err := s.users.GetByEmail(ctx, req.Email); err == nil {
		return nil, hive.AlreadyExists(http.StatusBadRequest,
			"User with email {%s} already exists, provide a unique email", req.Email)
	} else if !errors.Is(err, ErrUserNotFound) {
		return nil, fmt.Errorf("checking existing user: %w", err)
	}

	teamMemberRole, err := s.roles.GetByName(ctx, hive.RoleTeamMember)
	if err != nil {
		if errors.Is(err, ErrRoleNotFound) {
			return nil, hive.NotFound("Role %s was not found", hive.RoleTeamMember)
		}
		return nil, fmt.Errorf("finding default role: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	user := &User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: string(hash),
		Active:       false,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, ErrDuplicateEmail) {
			return nil, hive.AlreadyExists(http.StatusBadRequest,
				"User with email {%s} already exists, provide a unique email", req.Email)
		}
		return nil, fmt.Errorf("creating user: %w", err)
	}

	if err := s.users.AddRole(ctx, user.ID, teamMemberRole.ID); err != nil {
		return nil, fmt.Errorf("assigning default role: %w", err)
	}

	if req.Department != "" {
		dept, err := s.departments.GetByName(ctx, req.Department)
		if err != nil {
			if errors.Is(err, ErrDepartmentNotFound) {
				return nil, hive.NotFound("Department %s was not found", req.Department)
			}
			return nil, fmt.Errorf("finding department: %w", err)
		}
		if err := s.users.AddDepartment(ctx, user.ID, dept.ID); err != nil {
			return nil, fmt.Errorf("assigning department: %w", err)
		}
	}

	vt, err := s.verifications.Create(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("creating verification token: %w", err)
	}
	slog.Info("user registered, awaiting account verification",
		"email", user.Email, "verificationToken", vt.Token.String())

	roles := []string{hive.RoleTeamMember}
	jwt, err := s.codec.Issue(user.ID, user.Username, roles, s.tokenTTL)
	if err != nil {
		return nil, fmt.Errorf("issuing token: %w", err)
	}
	if err := s.ledger.RecordIssuance(ctx, user.ID, jwt); err != nil {
		return nil, fmt.Errorf("recording token issuance: %w", err)
	}

	return &AuthenticationResponse{
		Username: user.Username,
		Active:   user.Active,
		Roles:    roles,
		Token:    jwt,
	}, nil
}

// VerifyAccount activates the user referenced by the verification token.
func (s *Service) VerifyAccount(ctx context.Context, rawToken string) error {
	tok, err := uuid.Parse(rawToken)
	if err != nil {
		return hive.NotFound("Verification token {%s} was not found", rawToken)
	}

	vt, err := s.verifications.GetByToken(ctx, tok)
	if err != nil {
		if errors.Is(err, ErrVerificationTokenNotFound) {
			return hive.NotFound("Verification token {%s} was not found", rawToken)
		}
		return fmt.Errorf("finding verification token: %w", err)
	}

	if err := s.users.SetActive(ctx, vt.UserID, true); err != nil {
		return fmt.Errorf("activating user: %w", err)
	}

	slog.Info("user account activated", "userId", vt.UserID)
	return nil
}

// Login authenticates the credentials, issues a fresh token, and enforces
// the single-session policy: every previously valid token for the user is
// revoked immediately before the new issuance is recorded. The two writes
// are not atomic; see the Ledger contract.
func (s *Service) Login(ctx context.Context, email, password string) (*AuthenticationResponse, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, hive.AuthenticationFailed("Invalid email or password")
		}
		return nil, fmt.Errorf("finding user: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, hive.AuthenticationFailed("Invalid email or password")
	}

	if !user.Active {
		return nil, hive.AuthenticationFailed("Account not activated. Please verify your email before logging in.")
	}

	roles, err := s.roleNames(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	jwt, err := s.codec.Issue(user.ID, user.Username, roles, s.tokenTTL)
	if err != nil {
		return nil, fmt.Errorf("issuing token: %w", err)
	}

	if err := s.ledger.RevokeAll(ctx, user.ID); err != nil {
		return nil, fmt.Errorf("revoking previous tokens: %w", err)
	}
	if err := s.ledger.RecordIssuance(ctx, user.ID, jwt); err != nil {
		return nil, fmt.Errorf("recording token issuance: %w", err)
	}

	slog.Info("user logged in", "userId", user.ID, "roles", roles)

	return &AuthenticationResponse{
		Username: user.Username,
		Active:   user.Active,
		Roles:    roles,
		Token:    jwt,
	}, nil
}

// UserDTOByID returns the identity snapshot served to other services.
func (s *Service) UserDTOByID(ctx context.Context, id uuid.UUID) (*hive.UserDTO, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, hive.NotFound("User with the given userId was not found")
		}
		return nil, fmt.Errorf("finding user: %w", err)
	}
	return s.buildDTO(ctx, user)
}

// ResolveIdentity satisfies the gateway filter's resolver contract. The
// identity service answers from its own tables; the bearer token is unused
// locally but part of the shared signature.
func (s *Service) ResolveIdentity(ctx context.Context, _ string, userID uuid.UUID) (*hive.UserDTO, error) {
	return s.UserDTOByID(ctx, userID)
}

// CurrentUser resolves a raw bearer token to the identity snapshot of its
// subject.
func (s *Service) CurrentUser(ctx context.Context, rawToken string) (*hive.UserDTO, error) {
	claims, err := s.codec.Verify(rawToken)
	if err != nil {
		return nil, hive.AuthenticationFailed("Authentication header is not valid")
	}
	return s.UserDTOByID(ctx, claims.UserID)
}

// AddProjectLeaderRole grants the PROJECT_LEADER role to the user. Called by
// the project service when the user creates a project.
func (s *Service) AddProjectLeaderRole(ctx context.Context, userID uuid.UUID) error {
	role, err := s.roles.GetByName(ctx, hive.RoleProjectLeader)
	if err != nil {
		if errors.Is(err, ErrRoleNotFound) {
			return hive.NotFound("Role %s was not found", hive.RoleProjectLeader)
		}
		return fmt.Errorf("finding role: %w", err)
	}

	if _, err := s.users.GetByID(ctx, userID); err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return hive.NotFound("User with the given userId was not found")
		}
		return fmt.Errorf("finding user: %w", err)
	}

	return s.users.AddRole(ctx, userID, role.ID)
}

// ProjectLeaderRoleID returns the id of the PROJECT_LEADER role.
func (s *Service) ProjectLeaderRoleID(ctx context.Context) (uuid.UUID, error) {
	role, err := s.roles.GetByName(ctx, hive.RoleProjectLeader)
	if err != nil {
		if errors.Is(err, ErrRoleNotFound) {
			return uuid.Nil, hive.NotFound("Role %s was not found", hive.RoleProjectLeader)
		}
		return uuid.Nil, fmt.Errorf("finding role: %w", err)
	}
	return role.ID, nil
}

// ListUsers returns snapshots of every user. Admin surface.
func (s *Service) ListUsers(ctx context.Context) ([]hive.UserDTO, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	return s.buildDTOs(ctx, users)
}

// ListUsersByDepartment returns snapshots of the department's users.
func (s *Service) ListUsersByDepartment(ctx context.Context, department string) ([]hive.UserDTO, error) {
	users, err := s.users.ListByDepartment(ctx, department)
	if err != nil {
		return nil, fmt.Errorf("listing users by department: %w", err)
	}
	return s.buildDTOs(ctx, users)
}

func (s *Service) buildDTOs(ctx context.Context, users []User) ([]hive.UserDTO, error) {
	dtos := make([]hive.UserDTO, 0, len(users))
	for i := range users {
		dto, err := s.buildDTO(ctx, &users[i])
		if err != nil {
			return nil, err
		}
		dtos = append(dtos, *dto)
	}
	return dtos, nil
}

func (s *Service) buildDTO(ctx context.Context, user *User) (*hive.UserDTO, error) {
	roles, err := s.roleNames(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	departments, err := s.users.DepartmentsOf(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("fetching departments: %w", err)
	}
	departmentNames := make([]string, 0, len(departments))
	for _, d := range departments {
		departmentNames = append(departmentNames, d.Name)
	}

	return &hive.UserDTO{
		UserID:      user.ID,
		Username:    user.Username,
		Email:       user.Email,
		Active:      user.Active,
		Roles:       roles,
		Departments: departmentNames,
	}, nil
}

func (s *Service) roleNames(ctx context.Context, userID uuid.UUID) ([]string, error) {
	roles, err := s.users.RolesOf(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("fetching roles: %w", err)
	}
	names := make([]string, 0, len(roles))
	for _, r := range roles {
		names = append(names, r.Name)
	}
	return names, nil
}
