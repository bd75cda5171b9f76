package identity

import (
	"time"

	"github.com/google/uuid"
)

// User represents a row in the users table. Accounts start inactive and are
// activated through the email verification flow.
type User struct {
	ID           uuid.UUID
	Username     string
	Email        string
	PasswordHash string
	Active       bool
	CreatedAt    time.Time
}

// Role is immutable reference data, seeded once at startup.
type Role struct {
	ID   uuid.UUID
	Name string
}

// Department is immutable reference data, seeded once at startup.
type Department struct {
	ID   uuid.UUID
	Name string
}

// VerificationToken links an account-activation token to a user.
type VerificationToken struct {
	Token     uuid.UUID
	UserID    uuid.UUID
	CreatedAt time.Time
}
