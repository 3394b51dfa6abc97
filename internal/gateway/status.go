package gateway

import (
	"net/http"
	"time"

	"github.com/flemzord/oddjob/internal/core"
	"github.com/flemzord/oddjob/internal/host"
)

// statusSource is implemented by *host.Host.
type statusSource interface {
	Status() host.Snapshot
}

// StatusResponse is the JSON response for GET /status.
type StatusResponse struct {
	Uptime      int64          `json:"uptime_seconds"`
	Subscribers int            `json:"event_subscribers"`
	Host        *host.Snapshot `json:"host,omitempty"`
}

// snapshot resolves the host lazily: it is published after every job,
// including this one, has been built.
func (g *Gateway) snapshot() (host.Snapshot, bool) {
	src, ok := core.ServiceAs[statusSource](g.appCtx, core.ServiceHost)
	if !ok {
		return host.Snapshot{}, false
	}
	return src.Status(), true
}

// handleStatus returns an http.HandlerFunc for GET /status.
func (g *Gateway) handleStatus() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		resp := StatusResponse{
			Uptime:      int64(time.Since(g.startedAt) / time.Second),
			Subscribers: g.hub.Subscribers(),
		}
		if snap, ok := g.snapshot(); ok {
			resp.Host = &snap
		}
		writeJSON(w, http.StatusOK, resp)
	}
}
