package identity

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresUserRepository implements UserRepository using pgxpool.
type PostgresUserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository creates a UserRepository backed by the given pool.
func NewUserRepository(pool *pgxpool.Pool) UserRepository {
	return &PostgresUserRepository{pool: pool}
}

// Create inserts a new user record.
func (r *PostgresUserRepository) Create(ctx context.Context, u *User) error {
	query := `
		INSERT INTO users (username, email, password_hash, active)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	err := r.pool.QueryRow(ctx, query, u.Username, u.Email, u.PasswordHash, u.Active).
		Scan(&u.ID, &u.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("inserting user: %w", err)
	}

	return nil
}

// GetByID retrieves a single user by its UUID.
func (r *PostgresUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	query := `
		SELECT id, username, email, password_hash, active, created_at
		FROM users
		WHERE id = $1`

	return r.scanOne(r.pool.QueryRow(ctx, query, id))
}

// GetByEmail retrieves a single user by email.
func (r *PostgresUserRepository) GetByEmail(ctx context.Context, email string) (*User, error) {
	query := `
		SELECT id, username, email, password_hash, active, created_at
		FROM users
		WHERE email = $1`

	return r.scanOne(r.pool.QueryRow(ctx, query, email))
}

func (r *PostgresUserRepository) scanOne(row pgx.Row) (*User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Active, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("querying user: %w", err)
	}
	return &u, nil
}

// List retrieves all users ordered by creation time.
func (r *PostgresUserRepository) List(ctx context.Context) ([]User, error) {
	query := `
		SELECT id, username, email, password_hash, active, created_at
		FROM users
		ORDER BY created_at ASC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	defer rows.Close()

	return r.collect(rows)
}

// ListByDepartment retrieves users holding the named department.
func (r *PostgresUserRepository) ListByDepartment(ctx context.Context, department string) ([]User, error) {
	query := `
		SELECT u.id, u.username, u.email, u.password_hash, u.active, u.created_at
		FROM users u
		JOIN user_departments ud ON ud.user_id = u.id
		JOIN departments d ON d.id = ud.department_id
		WHERE d.name = $1
		ORDER BY u.created_at ASC`

	rows, err := r.pool.Query(ctx, query, department)
	if err != nil {
		return nil, fmt.Errorf("listing users by department: %w", err)
	}
	defer rows.Close()

	return r.collect(rows)
}

func (r *PostgresUserRepository) collect(rows pgx.Rows) ([]User, error) {
	var users []User
	for rows.Next() {
		var u User
		err := rows.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Active, &u.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scanning user row: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating user rows: %w", err)
	}

	if users == nil {
		users = []User{}
	}
	return users, nil
}

// SetActive flips the active flag for the user.
func (r *PostgresUserRepository) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	result, err := r.pool.Exec(ctx, `UPDATE users SET active = $2 WHERE id = $1`, id, active)
	if err != nil {
		return fmt.Errorf("updating user active flag: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

// RolesOf returns the user's roles via the user_roles join table.
func (r *PostgresUserRepository) RolesOf(ctx context.Context, userID uuid.UUID) ([]Role, error) {
	query := `
		SELECT ro.id, ro.name
		FROM roles ro
		JOIN user_roles ur ON ur.role_id = ro.id
		WHERE ur.user_id = $1
		ORDER BY ro.name ASC`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("querying user roles: %w", err)
	}
	defer rows.Close()

	var roles []Role
	for rows.Next() {
		var ro Role
		if err := rows.Scan(&ro.ID, &ro.Name); err != nil {
			return nil, fmt.Errorf("scanning role row: %w", err)
		}
		roles = append(roles, ro)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating role rows: %w", err)
	}

	return roles, nil
}

// DepartmentsOf returns the user's departments via the join table.
func (r *PostgresUserRepository) DepartmentsOf(ctx context.Context, userID uuid.UUID) ([]Department, error) {
	query := `
		SELECT d.id, d.name
		FROM departments d
		JOIN user_departments ud ON ud.department_id = d.id
		WHERE ud.user_id = $1
		ORDER BY d.name ASC`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("querying user departments: %w", err)
	}
	defer rows.Close()

	var departments []Department
	for rows.Next() {
		var d Department
		if err := rows.Scan(&d.ID, &d.Name); err != nil {
			return nil, fmt.Errorf("scanning department row: %w", err)
		}
		departments = append(departments, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating department rows: %w", err)
	}

	return departments, nil
}

// AddRole links a role to the user. Adding the same role twice is a no-op.
func (r *PostgresUserRepository) AddRole(ctx context.Context, userID, roleID uuid.UUID) error {
	query := `
		INSERT INTO user_roles (user_id, role_id)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING`

	if _, err := r.pool.Exec(ctx, query, userID, roleID); err != nil {
		return fmt.Errorf("inserting user role: %w", err)
	}
	return nil
}

// AddDepartment links a department to the user.
func (r *PostgresUserRepository) AddDepartment(ctx context.Context, userID, departmentID uuid.UUID) error {
	query := `
		INSERT INTO user_departments (user_id, department_id)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING`

	if _, err := r.pool.Exec(ctx, query, userID, departmentID); err != nil {
		return fmt.Errorf("inserting user department: %w", err)
	}
	return nil
}

// PostgresRoleRepository implements RoleRepository using pgxpool.
type PostgresRoleRepository struct {
	pool *pgxpool.Pool
}

// NewRoleRepository creates a RoleRepository backed by the given pool.
func NewRoleRepository(pool *pgxpool.Pool) RoleRepository {
	return &PostgresRoleRepository{pool: pool}
}

// GetByName retrieves a role by its symbolic name.
func (r *PostgresRoleRepository) GetByName(ctx context.Context, name string) (*Role, error) {
	var ro Role
	err := r.pool.QueryRow(ctx, `SELECT id, name FROM roles WHERE name = $1`, name).
		Scan(&ro.ID, &ro.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRoleNotFound
		}
		return nil, fmt.Errorf("querying role: %w", err)
	}
	return &ro, nil
}

// Ensure seeds the named roles if they do not exist yet.
func (r *PostgresRoleRepository) Ensure(ctx context.Context, names ...string) error {
	for _, name := range names {
		query := `INSERT INTO roles (name) VALUES ($1) ON CONFLICT (name) DO NOTHING`
		if _, err := r.pool.Exec(ctx, query, name); err != nil {
			return fmt.Errorf("seeding role %s: %w", name, err)
		}
	}
	return nil
}

// PostgresDepartmentRepository implements DepartmentRepository using pgxpool.
type PostgresDepartmentRepository struct {
	pool *pgxpool.Pool
}

// NewDepartmentRepository creates a DepartmentRepository backed by the pool.
func NewDepartmentRepository(pool *pgxpool.Pool) DepartmentRepository {
	return &PostgresDepartmentRepository{pool: pool}
}

// GetByName retrieves a department by name.
func (r *PostgresDepartmentRepository) GetByName(ctx context.Context, name string) (*Department, error) {
	var d Department
	err := r.pool.QueryRow(ctx, `SELECT id, name FROM departments WHERE name = $1`, name).
		Scan(&d.ID, &d.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrDepartmentNotFound
		}
		return nil, fmt.Errorf("querying department: %w", err)
	}
	return &d, nil
}

// Ensure seeds the named departments if they do not exist yet.
func (r *PostgresDepartmentRepository) Ensure(ctx context.Context, names ...string) error {
	for _, name := range names {
		query := `INSERT INTO departments (name) VALUES ($1) ON CONFLICT (name) DO NOTHING`
		if _, err := r.pool.Exec(ctx, query, name); err != nil {
			return fmt.Errorf("seeding department %s: %w", name, err)
		}
	}
	return nil
}

// PostgresVerificationTokenRepository implements VerificationTokenRepository
// using pgxpool.
type PostgresVerificationTokenRepository struct {
	pool *pgxpool.Pool
}

// NewVerificationTokenRepository creates a VerificationTokenRepository backed
// by the given pool.
func NewVerificationTokenRepository(pool *pgxpool.Pool) VerificationTokenRepository {
	return &PostgresVerificationTokenRepository{pool: pool}
}

// Create inserts a fresh verification token for the user.
func (r *PostgresVerificationTokenRepository) Create(ctx context.Context, userID uuid.UUID) (*VerificationToken, error) {
	vt := &VerificationToken{Token: uuid.New(), UserID: userID}

	query := `
		INSERT INTO verification_tokens (token, user_id)
		VALUES ($1, $2)
		RETURNING created_at`

	if err := r.pool.QueryRow(ctx, query, vt.Token, vt.UserID).Scan(&vt.CreatedAt); err != nil {
		return nil, fmt.Errorf("inserting verification token: %w", err)
	}
	return vt, nil
}

// GetByToken retrieves a verification token.
func (r *PostgresVerificationTokenRepository) GetByToken(ctx context.Context, tok uuid.UUID) (*VerificationToken, error) {
	var vt VerificationToken
	query := `SELECT token, user_id, created_at FROM verification_tokens WHERE token = $1`
	err := r.pool.QueryRow(ctx, query, tok).Scan(&vt.Token, &vt.UserID, &vt.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrVerificationTokenNotFound
		}
		return nil, fmt.Errorf("querying verification token: %w", err)
	}
	return &vt, nil
}
