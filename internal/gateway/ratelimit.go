package gateway

import (
	"log/slog"
	"net/http"

	"golang.org/x/time/rate"
)

// rateLimitMiddleware rejects requests with 429 once the shared token
// bucket is empty. Websocket upgrades count as one request.
func rateLimitMiddleware(cfg RateLimit, logger *slog.Logger) func(http.Handler) http.Handler {
	limiter := rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.burst())
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				logger.Warn("gateway: rate limit exceeded",
					"remote_addr", r.RemoteAddr,
					"path", r.URL.Path,
				)
				w.Header().Set("Retry-After", "1")
				http.Error(w, "too many requests", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
