package handlers

import (
	"database/sql"
	"net/http"

	"github.com/redis/go-redis/v9"
)

// HealthHandler provides a liveness check that also pings the store and
// the cache when wired with them.
type HealthHandler struct {
	DB    *sql.DB
	Redis *redis.Client
}

func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	checks := map[string]string{"status": "ok"}

	if h.DB != nil {
		if err := h.DB.PingContext(r.Context()); err != nil {
			checks["status"] = "degraded"
			checks["database"] = err.Error()
		}
	}

	// A down cache degrades to source fetches, so it is reported but does
	// not fail the check.
	if h.Redis != nil {
		if err := h.Redis.Ping(r.Context()).Err(); err != nil {
			checks["cache"] = err.Error()
		}
	}

	status := http.StatusOK
	if checks["status"] != "ok" {
		status = http.StatusServiceUnavailable
	}

	writeJSON(w, r, status, checks)
}
