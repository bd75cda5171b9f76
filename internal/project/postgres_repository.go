package project

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository implements Repository using pgxpool.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a Repository backed by the given connection pool.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &PostgresRepository{pool: pool}
}

// Create inserts a new project record.
func (r *PostgresRepository) Create(ctx context.Context, p *Project) error {
	query := `
		INSERT INTO projects (name, description, leader_id, member_count, progress, start_date, end_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at`

	err := r.pool.QueryRow(ctx, query,
		p.Name, p.Description, p.LeaderID, p.MemberCount, p.Progress, p.StartDate, p.EndDate).
		Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicateProjectName
		}
		return fmt.Errorf("inserting project: %w", err)
	}

	return nil
}

// GetByID retrieves a single project by its UUID.
func (r *PostgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*Project, error) {
	query := `
		SELECT id, name, description, leader_id, member_count, progress, start_date, end_date, created_at
		FROM projects
		WHERE id = $1`

	return r.scanOne(r.pool.QueryRow(ctx, query, id))
}

// GetByName retrieves a single project by name, case-insensitively.
func (r *PostgresRepository) GetByName(ctx context.Context, name string) (*Project, error) {
	query := `
		SELECT id, name, description, leader_id, member_count, progress, start_date, end_date, created_at
		FROM projects
		WHERE LOWER(name) = LOWER($1)`

	return r.scanOne(r.pool.QueryRow(ctx, query, name))
}

// List returns every project, oldest first.
func (r *PostgresRepository) List(ctx context.Context) ([]Project, error) {
	query := `
		SELECT id, name, description, leader_id, member_count, progress, start_date, end_date, created_at
		FROM projects
		ORDER BY created_at ASC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying projects: %w", err)
	}
	defer rows.Close()

	return collectProjects(rows)
}

// SearchByName returns the projects whose name contains the fragment,
// case-insensitively.
func (r *PostgresRepository) SearchByName(ctx context.Context, fragment string) ([]Project, error) {
	query := `
		SELECT id, name, description, leader_id, member_count, progress, start_date, end_date, created_at
		FROM projects
		WHERE name ILIKE '%' || $1 || '%'
		ORDER BY created_at ASC`

	rows, err := r.pool.Query(ctx, query, fragment)
	if err != nil {
		return nil, fmt.Errorf("searching projects: %w", err)
	}
	defer rows.Close()

	return collectProjects(rows)
}

func collectProjects(rows pgx.Rows) ([]Project, error) {
	var projects []Project
	for rows.Next() {
		var p Project
		err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.LeaderID,
			&p.MemberCount, &p.Progress, &p.StartDate, &p.EndDate, &p.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scanning project row: %w", err)
		}
		projects = append(projects, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating project rows: %w", err)
	}

	if projects == nil {
		projects = []Project{}
	}
	return projects, nil
}

func (r *PostgresRepository) scanOne(row pgx.Row) (*Project, error) {
	var p Project
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.LeaderID,
		&p.MemberCount, &p.Progress, &p.StartDate, &p.EndDate, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("querying project: %w", err)
	}
	return &p, nil
}

// Update persists the mutable project fields.
func (r *PostgresRepository) Update(ctx context.Context, p *Project) error {
	query := `
		UPDATE projects
		SET name = $2, description = $3, member_count = $4, progress = $5, start_date = $6, end_date = $7
		WHERE id = $1`

	result, err := r.pool.Exec(ctx, query,
		p.ID, p.Name, p.Description, p.MemberCount, p.Progress, p.StartDate, p.EndDate)
	if err != nil {
		return fmt.Errorf("updating project: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrProjectNotFound
	}
	return nil
}

// PostgresMembershipRepository implements MembershipRepository using pgxpool.
type PostgresMembershipRepository struct {
	pool *pgxpool.Pool
}

// NewMembershipRepository creates a MembershipRepository backed by the pool.
func NewMembershipRepository(pool *pgxpool.Pool) MembershipRepository {
	return &PostgresMembershipRepository{pool: pool}
}

// Create inserts a new membership record.
func (r *PostgresMembershipRepository) Create(ctx context.Context, m *Membership) error {
	query := `
		INSERT INTO project_members (project_id, user_id, active, assigned_at, completed_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`

	err := r.pool.QueryRow(ctx, query, m.ProjectID, m.UserID, m.Active, m.AssignedAt, m.CompletedAt).
		Scan(&m.ID)
	if err != nil {
		return fmt.Errorf("inserting membership: %w", err)
	}
	return nil
}

// FindActiveByUser returns the user's memberships with active=true. The
// invariant keeps this at most one; returning a slice lets callers observe a
// violation instead of masking it.
func (r *PostgresMembershipRepository) FindActiveByUser(ctx context.Context, userID uuid.UUID) ([]Membership, error) {
	query := `
		SELECT id, project_id, user_id, active, assigned_at, completed_at
		FROM project_members
		WHERE user_id = $1 AND active = true
		ORDER BY assigned_at ASC`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("querying active memberships: %w", err)
	}
	defer rows.Close()

	return collectMemberships(rows)
}

// ExistsByProjectAndUser reports whether any membership row, active or not,
// links the user to the project.
func (r *PostgresMembershipRepository) ExistsByProjectAndUser(ctx context.Context, projectID, userID uuid.UUID) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM project_members WHERE project_id = $1 AND user_id = $2)`
	if err := r.pool.QueryRow(ctx, query, projectID, userID).Scan(&exists); err != nil {
		return false, fmt.Errorf("checking membership existence: %w", err)
	}
	return exists, nil
}

// ListByProject returns all membership rows of a project.
func (r *PostgresMembershipRepository) ListByProject(ctx context.Context, projectID uuid.UUID) ([]Membership, error) {
	query := `
		SELECT id, project_id, user_id, active, assigned_at, completed_at
		FROM project_members
		WHERE project_id = $1
		ORDER BY assigned_at ASC`

	rows, err := r.pool.Query(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("querying project memberships: %w", err)
	}
	defer rows.Close()

	return collectMemberships(rows)
}

// ListByUser returns every membership row of a user, active or not.
func (r *PostgresMembershipRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]Membership, error) {
	query := `
		SELECT id, project_id, user_id, active, assigned_at, completed_at
		FROM project_members
		WHERE user_id = $1
		ORDER BY assigned_at ASC`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("querying user memberships: %w", err)
	}
	defer rows.Close()

	return collectMemberships(rows)
}

func collectMemberships(rows pgx.Rows) ([]Membership, error) {
	var memberships []Membership
	for rows.Next() {
		var m Membership
		err := rows.Scan(&m.ID, &m.ProjectID, &m.UserID, &m.Active, &m.AssignedAt, &m.CompletedAt)
		if err != nil {
			return nil, fmt.Errorf("scanning membership row: %w", err)
		}
		memberships = append(memberships, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating membership rows: %w", err)
	}

	if memberships == nil {
		memberships = []Membership{}
	}
	return memberships, nil
}

// Deactivate transitions a membership to inactive with the completion time.
func (r *PostgresMembershipRepository) Deactivate(ctx context.Context, id uuid.UUID, completedAt time.Time) error {
	query := `
		UPDATE project_members
		SET active = false, completed_at = $2
		WHERE id = $1`

	result, err := r.pool.Exec(ctx, query, id, completedAt)
	if err != nil {
		return fmt.Errorf("deactivating membership: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrMembershipNotFound
	}
	return nil
}

// Delete removes the membership row linking the user to the project.
func (r *PostgresMembershipRepository) Delete(ctx context.Context, projectID, userID uuid.UUID) error {
	query := `DELETE FROM project_members WHERE project_id = $1 AND user_id = $2`

	result, err := r.pool.Exec(ctx, query, projectID, userID)
	if err != nil {
		return fmt.Errorf("deleting membership: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrMembershipNotFound
	}
	return nil
}

// PostgresJoinRequestRepository implements JoinRequestRepository using
// pgxpool.
type PostgresJoinRequestRepository struct {
	pool *pgxpool.Pool
}

// NewJoinRequestRepository creates a JoinRequestRepository backed by the
// given pool.
func NewJoinRequestRepository(pool *pgxpool.Pool) JoinRequestRepository {
	return &PostgresJoinRequestRepository{pool: pool}
}

// Create inserts a new join request record.
func (r *PostgresJoinRequestRepository) Create(ctx context.Context, jr *JoinRequest) error {
	query := `
		INSERT INTO join_requests (project_id, user_id, status)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`

	err := r.pool.QueryRow(ctx, query, jr.ProjectID, jr.UserID, jr.Status).
		Scan(&jr.ID, &jr.CreatedAt)
	if err != nil {
		return fmt.Errorf("inserting join request: %w", err)
	}
	return nil
}

// GetByID retrieves a single join request by its UUID.
func (r *PostgresJoinRequestRepository) GetByID(ctx context.Context, id uuid.UUID) (*JoinRequest, error) {
	query := `
		SELECT id, project_id, user_id, status, created_at
		FROM join_requests
		WHERE id = $1`

	var jr JoinRequest
	err := r.pool.QueryRow(ctx, query, id).
		Scan(&jr.ID, &jr.ProjectID, &jr.UserID, &jr.Status, &jr.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrJoinRequestNotFound
		}
		return nil, fmt.Errorf("querying join request: %w", err)
	}
	return &jr, nil
}

// ExistsByProjectAndUser reports whether the user already has a join request
// for the project.
func (r *PostgresJoinRequestRepository) ExistsByProjectAndUser(ctx context.Context, projectID, userID uuid.UUID) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM join_requests WHERE project_id = $1 AND user_id = $2)`
	if err := r.pool.QueryRow(ctx, query, projectID, userID).Scan(&exists); err != nil {
		return false, fmt.Errorf("checking join request existence: %w", err)
	}
	return exists, nil
}

// ListByProjectAndStatus returns the project's join requests with the given
// status.
func (r *PostgresJoinRequestRepository) ListByProjectAndStatus(ctx context.Context, projectID uuid.UUID, status string) ([]JoinRequest, error) {
	query := `
		SELECT id, project_id, user_id, status, created_at
		FROM join_requests
		WHERE project_id = $1 AND status = $2
		ORDER BY created_at ASC`

	rows, err := r.pool.Query(ctx, query, projectID, status)
	if err != nil {
		return nil, fmt.Errorf("querying join requests: %w", err)
	}
	defer rows.Close()

	var requests []JoinRequest
	for rows.Next() {
		var jr JoinRequest
		err := rows.Scan(&jr.ID, &jr.ProjectID, &jr.UserID, &jr.Status, &jr.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scanning join request row: %w", err)
		}
		requests = append(requests, jr)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating join request rows: %w", err)
	}

	if requests == nil {
		requests = []JoinRequest{}
	}
	return requests, nil
}

// Delete removes the join request row.
func (r *PostgresJoinRequestRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM join_requests WHERE id = $1`

	result, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("deleting join request: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrJoinRequestNotFound
	}
	return nil
}

// PostgresUserProjectRoleRepository implements UserProjectRoleRepository
// using pgxpool.
type PostgresUserProjectRoleRepository struct {
	pool *pgxpool.Pool
}

// NewUserProjectRoleRepository creates a UserProjectRoleRepository backed by
// the given pool.
func NewUserProjectRoleRepository(pool *pgxpool.Pool) UserProjectRoleRepository {
	return &PostgresUserProjectRoleRepository{pool: pool}
}

// Create inserts a project-scoped role assignment.
func (r *PostgresUserProjectRoleRepository) Create(ctx context.Context, upr *UserProjectRole) error {
	query := `
		INSERT INTO user_project_roles (user_id, role_id, project_id)
		VALUES ($1, $2, $3)
		ON CONFLICT DO NOTHING
		RETURNING id`

	err := r.pool.QueryRow(ctx, query, upr.UserID, upr.RoleID, upr.ProjectID).Scan(&upr.ID)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("inserting user project role: %w", err)
	}
	return nil
}

// ExistsForProject reports whether the user holds any role assignment scoped
// to the project.
func (r *PostgresUserProjectRoleRepository) ExistsForProject(ctx context.Context, userID, projectID uuid.UUID) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM user_project_roles WHERE user_id = $1 AND project_id = $2)`
	if err := r.pool.QueryRow(ctx, query, userID, projectID).Scan(&exists); err != nil {
		return false, fmt.Errorf("checking user project role: %w", err)
	}
	return exists, nil
}
