package rest

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"time"
)

type HealthHandler struct {
	db *sql.DB
}

func NewHealthHandler(db *sql.DB) *HealthHandler {
	return &HealthHandler{db: db}
}

type healthReport struct {
	Status     string    `json:"status"`
	Database   string    `json:"database"`
	LatencyMs  int64     `json:"latency_ms"`
	CheckedAt  time.Time `json:"checked_at"`
	FailReason string    `json:"fail_reason,omitempty"`
}

func (h *HealthHandler) pingHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "OK"})
}

// healthCheckHandler pings the database with a short deadline so a stuck
// pool turns the probe red instead of hanging it.
func (h *HealthHandler) healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	start := time.Now()
	err := h.db.PingContext(ctx)

	report := healthReport{
		Status:    "healthy",
		Database:  "up",
		LatencyMs: time.Since(start).Milliseconds(),
		CheckedAt: time.Now(),
	}

	statusCode := http.StatusOK
	if err != nil {
		report.Status = "unhealthy"
		report.Database = "down"
		report.FailReason = err.Error()
		statusCode = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(report)
}
