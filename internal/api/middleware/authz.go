package middleware

import (
	"net/http"

	"github.com/glhive/hive/internal/api/response"
	"github.com/glhive/hive/internal/hive"
)

// RequireRole returns middleware that rejects identities holding none of the
// allowed global roles. The check is a plain set-membership test against the
// roles the gateway filter resolved.
func RequireRole(roles ...string) func(http.Handler) http.Handler {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity := GetIdentity(r.Context())
			if identity == nil {
				response.Error(w, hive.MissingAuthHeader("Authentication header is missing"))
				return
			}

			permitted := false
			for _, role := range identity.Roles {
				if allowed[role] {
					permitted = true
					break
				}
			}
			if !permitted {
				response.Error(w, hive.NotAuthorized("Insufficient permissions"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
