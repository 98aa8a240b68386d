package server

import (
	"context"
	"net/http"
	"time"
)

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// HealthHandler reports liveness plus backend connectivity. A degraded
// cache does not fail the check: the core still authenticates without it.
func (s *Server) HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		resp := healthResponse{Status: "ok", Checks: map[string]string{}}
		status := http.StatusOK

		if s.dbPing != nil {
			if err := s.dbPing.Health(ctx); err != nil {
				resp.Checks["database"] = "down"
				resp.Status = "degraded"
				status = http.StatusServiceUnavailable
			} else {
				resp.Checks["database"] = "up"
			}
		}
		if s.cachePing != nil {
			if err := s.cachePing.Health(ctx); err != nil {
				resp.Checks["cache"] = "down"
				if resp.Status == "ok" {
					resp.Status = "degraded"
				}
			} else {
				resp.Checks["cache"] = "up"
			}
		}

		writeJSON(w, status, resp)
	}
}
