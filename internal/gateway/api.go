package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/flemzord/oddjob/internal/core"
	"github.com/flemzord/oddjob/internal/history"
)

const maxRunsLimit = 500

// runLister is implemented by *history.Store.
type runLister interface {
	Recent(ctx context.Context, job string, limit int) ([]history.Run, error)
}

// handleListRuns serves GET /api/runs?job=&limit=.
func (g *Gateway) handleListRuns() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		store, ok := core.ServiceAs[runLister](g.appCtx, core.ServiceHistory)
		if !ok {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "run history is disabled"})
			return
		}

		limit := 50
		if raw := r.URL.Query().Get("limit"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n <= 0 {
				writeJSON(w, http.StatusBadRequest, map[string]string{"error": "limit must be a positive integer"})
				return
			}
			limit = min(n, maxRunsLimit)
		}

		runs, err := store.Recent(r.Context(), r.URL.Query().Get("job"), limit)
		if err != nil {
			g.logger.Error("gateway: listing runs failed", "error", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list runs"})
			return
		}
		if runs == nil {
			runs = []history.Run{}
		}
		writeJSON(w, http.StatusOK, runs)
	}
}

// kindJSON is one entry of GET /api/kinds.
type kindJSON struct {
	ID        string `json:"id"`
	Namespace string `json:"namespace"`
	Name      string `json:"name"`
	Summary   string `json:"summary,omitempty"`
}

// handleListKinds lists every compiled job kind.
func (g *Gateway) handleListKinds() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		mods := core.GetModules()
		out := make([]kindJSON, 0, len(mods))
		for _, m := range mods {
			out = append(out, kindJSON{
				ID:        string(m.ID),
				Namespace: m.ID.Namespace(),
				Name:      m.ID.Name(),
				Summary:   m.Summary,
			})
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// handleMetrics serves the Prometheus exposition when a metrics service is
// published.
func (g *Gateway) handleMetrics() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		m, ok := core.ServiceAs[interface{ Handler() http.Handler }](g.appCtx, core.ServiceMetrics)
		if !ok {
			http.NotFound(w, r)
			return
		}
		m.Handler().ServeHTTP(w, r)
	}
}

// writeJSON encodes v as JSON with the given status code.
func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
