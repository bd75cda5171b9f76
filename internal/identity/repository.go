package identity

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrUserNotFound is returned when a user record is not found.
var ErrUserNotFound = errors.New("user not found")

// ErrDuplicateEmail is returned when a user with the same email exists.
var ErrDuplicateEmail = errors.New("email already exists")

// ErrRoleNotFound is returned when a role record is not found.
var ErrRoleNotFound = errors.New("role not found")

// ErrDepartmentNotFound is returned when a department record is not found.
var ErrDepartmentNotFound = errors.New("department not found")

// ErrVerificationTokenNotFound is returned when a verification token is not
// found.
var ErrVerificationTokenNotFound = errors.New("verification token not found")

// UserRepository provides operations on the users table and its join tables.
// Role and department membership is unidirectional: the inverse side is
// answered by indexed query, not by a materialized set on the entity.
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	List(ctx context.Context) ([]User, error)
	ListByDepartment(ctx context.Context, department string) ([]User, error)
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
	RolesOf(ctx context.Context, userID uuid.UUID) ([]Role, error)
	DepartmentsOf(ctx context.Context, userID uuid.UUID) ([]Department, error)
	AddRole(ctx context.Context, userID, roleID uuid.UUID) error
	AddDepartment(ctx context.Context, userID, departmentID uuid.UUID) error
}

// RoleRepository provides operations on the roles reference table.
type RoleRepository interface {
	GetByName(ctx context.Context, name string) (*Role, error)
	Ensure(ctx context.Context, names ...string) error
}

// DepartmentRepository provides operations on the departments reference table.
type DepartmentRepository interface {
	GetByName(ctx context.Context, name string) (*Department, error)
	Ensure(ctx context.Context, names ...string) error
}

// VerificationTokenRepository provides operations on account verification
// tokens.
type VerificationTokenRepository interface {
	Create(ctx context.Context, userID uuid.UUID) (*VerificationToken, error)
	GetByToken(ctx context.Context, token uuid.UUID) (*VerificationToken, error)
}
