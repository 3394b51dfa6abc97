package gateway

import (
	"net/http"

	"github.com/flemzord/oddjob/internal/host"
)

// HealthResponse is the JSON response for GET /health.
type HealthResponse struct {
	Status  string `json:"status"` // "ok" or "degraded"
	Jobs    int    `json:"jobs"`
	Running int    `json:"running"`
	Faulted int    `json:"faulted"`
}

// handleHealth returns an http.HandlerFunc for GET /health.
// Returns 200 unless a hosted job has faulted, in which case it returns 503.
func (g *Gateway) handleHealth() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		resp := HealthResponse{Status: "ok"}

		if snap, ok := g.snapshot(); ok {
			resp.Jobs = len(snap.Jobs)
			resp.Running = snap.Running
			for _, st := range snap.Jobs {
				if st.State == host.StateFaulted {
					resp.Faulted++
				}
			}
		}

		code := http.StatusOK
		if resp.Faulted > 0 {
			resp.Status = "degraded"
			code = http.StatusServiceUnavailable
		}
		writeJSON(w, code, resp)
	}
}
