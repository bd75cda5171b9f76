package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/glhive/hive/internal/api/response"
	"github.com/glhive/hive/internal/hive"
	"github.com/glhive/hive/internal/token"
)

const identityKey contextKey = "identity"
const bearerKey contextKey = "bearerHeader"

// IdentityResolver loads the identity snapshot for a verified token subject.
// The identity service resolves from its own tables; the other services
// resolve over RPC, forwarding the caller's bearer header.
type IdentityResolver interface {
	ResolveIdentity(ctx context.Context, bearerHeader string, userID uuid.UUID) (*hive.UserDTO, error)
}

// Auth is the authentication gateway filter. Per request it walks
// header -> token -> identity: extracts the bearer token, verifies it with
// the codec, loads the identity, and populates the request context. Any
// failure rejects the request before the handler runs.
//
// An inactive account may still hold an unexpired token issued before
// deactivation; that case is rejected here, not left to business logic.
func Auth(codec *token.Codec, resolver IdentityResolver, prefix string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				response.Error(w, hive.MissingAuthHeader("Authentication header is missing"))
				return
			}

			if !strings.HasPrefix(header, prefix) {
				response.Error(w, hive.AuthenticationFailed("Authentication header is not valid"))
				return
			}

			claims, err := codec.Verify(header[len(prefix):])
			if err != nil {
				response.Error(w, hive.AuthenticationFailed("Authentication token is not valid"))
				return
			}

			identity, err := resolver.ResolveIdentity(r.Context(), header, claims.UserID)
			if err != nil {
				if hive.IsKind(err, hive.KindUpstreamUnavailable) {
					response.Error(w, err)
					return
				}
				response.Error(w, hive.AuthenticationFailed("Authentication failed"))
				return
			}

			if !identity.Active {
				response.Error(w, hive.AuthenticationFailed("Account is not active"))
				return
			}

			ctx := context.WithValue(r.Context(), identityKey, identity)
			ctx = context.WithValue(ctx, bearerKey, header)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetIdentity retrieves the authenticated identity from the request context.
func GetIdentity(ctx context.Context) *hive.UserDTO {
	if id, ok := ctx.Value(identityKey).(*hive.UserDTO); ok {
		return id
	}
	return nil
}

// GetBearerHeader retrieves the caller's original Authorization header so
// outbound calls can forward it unchanged.
func GetBearerHeader(ctx context.Context) string {
	if h, ok := ctx.Value(bearerKey).(string); ok {
		return h
	}
	return ""
}
