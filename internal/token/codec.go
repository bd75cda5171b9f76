package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrInvalidSignature is returned when a token's signature does not verify.
var ErrInvalidSignature = errors.New("token signature is invalid")

// ErrExpired is returned when a token's embedded expiry is in the past.
var ErrExpired = errors.New("token is expired")

// ErrMalformed is returned when token claims cannot be parsed.
var ErrMalformed = errors.New("token is malformed")

// Claims is the verified content of an identity token.
type Claims struct {
	UserID    uuid.UUID
	Username  string
	Roles     []string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

type jwtClaims struct {
	Username string   `json:"username"`
	Roles    []string `json:"roles"`
	jwt.RegisteredClaims
}

// Codec signs and verifies identity tokens. It is stateless apart from the
// signing keys, which are loaded once at startup. Tokens carry the signing
// key's id in the header so a new key can be introduced while tokens signed
// by the old one still verify.
type Codec struct {
	activeKeyID string
	keys        map[string][]byte
}

// NewCodec creates a Codec that signs with the given key under keyID.
func NewCodec(keyID string, key []byte) *Codec {
	return &Codec{
		activeKeyID: keyID,
		keys:        map[string][]byte{keyID: key},
	}
}

// AddVerificationKey registers an additional key accepted during Verify.
// Issue keeps using the active key.
func (c *Codec) AddVerificationKey(keyID string, key []byte) {
	c.keys[keyID] = key
}

// Issue produces a signed token embedding the subject id and role list.
func (c *Codec) Issue(userID uuid.UUID, username string, roles []string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwtClaims{
		Username: username,
		Roles:    roles,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tok.Header["kid"] = c.activeKeyID

	signed, err := tok.SignedString(c.keys[c.activeKeyID])
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	return signed, nil
}

// Verify checks the signature and expiry of a raw token and returns its
// claims. It has no side effects; ledger revocation is a separate, advisory
// check left to callers that care about forced logout.
func (c *Codec) Verify(raw string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(raw, &jwtClaims{}, func(t *jwt.Token) (any, error) {
		keyID := c.activeKeyID
		if kid, ok := t.Header["kid"].(string); ok {
			keyID = kid
		}
		key, ok := c.keys[keyID]
		if !ok {
			return nil, fmt.Errorf("unknown key id %q", keyID)
		}
		return key, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, ErrInvalidSignature
		default:
			return nil, ErrMalformed
		}
	}

	claims, ok := parsed.Claims.(*jwtClaims)
	if !ok || claims.Subject == "" {
		return nil, ErrMalformed
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, ErrMalformed
	}

	out := &Claims{
		UserID:   userID,
		Username: claims.Username,
		Roles:    claims.Roles,
	}
	if claims.IssuedAt != nil {
		out.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		out.ExpiresAt = claims.ExpiresAt.Time
	}
	return out, nil
}
