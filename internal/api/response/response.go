package response

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/glhive/hive/internal/hive"
)

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// Error writes an error in the shared wire shape
// {"message","httpStatus","statusCode"}. Every service answers errors this
// way so the cross-service clients can decode them losslessly.
func Error(w http.ResponseWriter, err error) {
	e := hive.FromError(err)
	if e.StatusCode >= http.StatusInternalServerError {
		slog.Error("request failed", "error", err, "status", e.StatusCode)
	}
	JSON(w, e.StatusCode, e)
}

// NoContent writes a 204 No Content response.
func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}
