package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/iho/energyledger/internal/infrastructure/metrics"
)

func TestRateLimiter_Limit(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())
	rl := NewRateLimiter(1, 2).WithMetrics(m)
	handler := rl.Limit(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		codes = append(codes, rr.Code)
	}

	if codes[0] != http.StatusOK || codes[1] != http.StatusOK || codes[2] != http.StatusTooManyRequests {
		t.Fatalf("unexpected status sequence %v", codes)
	}
	if got := testutil.ToFloat64(m.RateLimitHits); got != 1 {
		t.Fatalf("expected 1 rate limit hit, got %v", got)
	}

	// a different client has its own bucket, whatever its port
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.2:9999"
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected other client to pass, got %d", rr.Code)
	}
}

func TestRateLimiter_CleanupLimiters(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(1, 1)
	rl.now = func() time.Time { return now }

	rl.getLimiter("a")
	now = now.Add(time.Hour)
	rl.getLimiter("b")

	rl.CleanupLimiters(30 * time.Minute)

	if _, ok := rl.visitors["a"]; ok {
		t.Fatal("expected idle limiter to be removed")
	}
	if _, ok := rl.visitors["b"]; !ok {
		t.Fatal("expected recent limiter to be kept")
	}
}
