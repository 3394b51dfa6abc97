package gateway

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestRateLimitMiddleware(t *testing.T) {
	t.Parallel()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler := rateLimitMiddleware(RateLimit{RequestsPerSecond: 0.001, Burst: 2}, logger)(
		http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) }),
	)

	want := []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}
	for i, code := range want {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/status", nil))
		if rec.Code != code {
			t.Errorf("request %d: status = %d, want %d", i, rec.Code, code)
		}
		if code == http.StatusTooManyRequests && rec.Header().Get("Retry-After") == "" {
			t.Error("missing Retry-After header")
		}
	}
}

func TestRateLimit_Burst(t *testing.T) {
	t.Parallel()

	tests := []struct {
		cfg  RateLimit
		want int
	}{
		{RateLimit{RequestsPerSecond: 2.5}, 3},
		{RateLimit{RequestsPerSecond: 0.1}, 1},
		{RateLimit{RequestsPerSecond: 10, Burst: 4}, 4},
	}
	for _, tt := range tests {
		if got := tt.cfg.burst(); got != tt.want {
			t.Errorf("%+v.burst() = %d, want %d", tt.cfg, got, tt.want)
		}
	}
	if (RateLimit{}).IsConfigured() {
		t.Error("zero rate limit should be disabled")
	}
}
