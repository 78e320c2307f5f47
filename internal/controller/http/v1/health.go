package v1

import (
	"log/slog"
	"net/http"
)

type HealthHandler struct {
	log *slog.Logger
	db  Pinger
}

func NewHealthHandler(log *slog.Logger, db Pinger) *HealthHandler {
	return &HealthHandler{
		log: log,
		db:  db,
	}
}

type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
}

func (h *HealthHandler) GetHealth(w http.ResponseWriter, r *http.Request) {
	if err := h.db.Ping(r.Context()); err != nil {
		logError(r, h.log, "database is unreachable", err)
		writeJSON(w, http.StatusServiceUnavailable, HealthResponse{Status: "DEGRADED", Database: "unreachable"})
		return
	}

	writeJSON(w, http.StatusOK, HealthResponse{Status: "OK", Database: "connected"})
}
