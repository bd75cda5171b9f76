package middleware

import (
	"log/slog"
	"net/http"

	"github.com/glhive/hive/internal/api/response"
	"github.com/glhive/hive/internal/hive"
)

// Recovery is middleware that recovers from panics and returns a 500 error.
// Nothing in request handling is fatal to the process; all failures stay
// scoped to the single request.
func Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				slog.Error("panic recovered", "error", err, "requestId", GetRequestID(r.Context()))
				response.Error(w, hive.Internal("An unexpected error occurred"))
			}
		}()
		next.ServeHTTP(w, r)
	})
}
