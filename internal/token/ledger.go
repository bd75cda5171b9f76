package token

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// TokenType distinguishes issued token records. Only bearer tokens exist
// today.
const TypeBearer = "BEARER"

// IssuedToken is a row in the issued_tokens table. Rows are never deleted;
// revocation flips the flags so the issuance history stays auditable.
type IssuedToken struct {
	ID       uuid.UUID
	UserID   uuid.UUID
	Token    string
	Type     string
	Expired  bool
	Revoked  bool
	IssuedAt time.Time
}

// Ledger records token issuance and revocation per user. The ledger is
// advisory: the codec alone is sufficient to accept a token at the gateway.
//
// The authentication flow calls RevokeAll for an identity immediately before
// RecordIssuance for its new login. The two writes are not atomic; a crash
// between them can leave a user with zero valid tokens until the next login.
// That gap is a known property of the flow, not something the ledger papers
// over.
type Ledger interface {
	RecordIssuance(ctx context.Context, userID uuid.UUID, token string) error
	RevokeAll(ctx context.Context, userID uuid.UUID) error
	FindValidByUser(ctx context.Context, userID uuid.UUID) ([]IssuedToken, error)
}
