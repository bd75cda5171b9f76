package handler

import (
	"context"
	"net/http"

	"github.com/glhive/hive/internal/api/response"
)

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler handles the GET /health endpoint.
type HealthHandler struct {
	db      Pinger
	service string
	version string
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(db Pinger, service, version string) *HealthHandler {
	return &HealthHandler{db: db, service: service, version: version}
}

type databaseStatus struct {
	Connected bool `json:"connected"`
}

type healthData struct {
	Status   string         `json:"status"`
	Service  string         `json:"service"`
	Version  string         `json:"version"`
	Database databaseStatus `json:"database"`
}

// ServeHTTP handles the health check request.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	status := "healthy"
	connected := true

	if err := h.db.Ping(r.Context()); err != nil {
		status = "degraded"
		connected = false
	}

	response.JSON(w, http.StatusOK, healthData{
		Status:   status,
		Service:  h.service,
		Version:  h.version,
		Database: databaseStatus{Connected: connected},
	})
}
