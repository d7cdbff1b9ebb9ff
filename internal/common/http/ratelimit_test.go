package http

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/SafronovIK/authgate/internal/common/clock"
)

func newTestLimiter(maxRequests int) (*SlidingWindowLimiter, *clock.MockClock) {
	clk := clock.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	rl := NewSlidingWindowLimiter(maxRequests, clk)
	return rl, clk
}

func TestSlidingWindowLimiterAllowsUpToLimit(t *testing.T) {
	rl, _ := newTestLimiter(3)
	defer rl.Stop()

	for i := 0; i < 3; i++ {
		if !rl.Allow("10.0.0.1") {
			t.Fatalf("request %d denied, want admitted", i+1)
		}
	}

	if rl.Allow("10.0.0.1") {
		t.Fatal("request over limit admitted, want denied")
	}
}

func TestSlidingWindowLimiterIsolatesIdentifiers(t *testing.T) {
	rl, _ := newTestLimiter(1)
	defer rl.Stop()

	if !rl.Allow("10.0.0.1") {
		t.Fatal("first identifier denied")
	}
	if !rl.Allow("10.0.0.2") {
		t.Fatal("second identifier denied, want independent window")
	}
	if rl.Allow("10.0.0.1") {
		t.Fatal("first identifier admitted over its limit")
	}
}

func TestSlidingWindowLimiterWindowSlides(t *testing.T) {
	rl, clk := newTestLimiter(2)
	defer rl.Stop()

	rl.Allow("10.0.0.1")
	clk.Advance(30 * time.Second)
	rl.Allow("10.0.0.1")

	if rl.Allow("10.0.0.1") {
		t.Fatal("third request within window admitted")
	}

	// First timestamp falls out of the window; one slot frees up.
	clk.Advance(31 * time.Second)
	if !rl.Allow("10.0.0.1") {
		t.Fatal("request denied after oldest timestamp expired")
	}
	if rl.Allow("10.0.0.1") {
		t.Fatal("window still holds two timestamps, want denial")
	}
}

func TestSlidingWindowLimiterDenialDoesNotRecord(t *testing.T) {
	rl, clk := newTestLimiter(1)
	defer rl.Stop()

	rl.Allow("10.0.0.1")
	for i := 0; i < 10; i++ {
		rl.Allow("10.0.0.1")
	}

	// Only the single admitted timestamp should age out.
	clk.Advance(61 * time.Second)
	if !rl.Allow("10.0.0.1") {
		t.Fatal("denied requests extended the window")
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	rl, _ := newTestLimiter(2)
	defer rl.Stop()

	handler := rl.Middleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	do := func(path string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.RemoteAddr = "10.0.0.1:54321"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}

	first := do("/auth/register")
	if first.Code != http.StatusOK {
		t.Fatalf("first request status = %d, want 200", first.Code)
	}
	if got := first.Header().Get("X-RateLimit-Limit"); got != "2" {
		t.Errorf("X-RateLimit-Limit = %q, want 2", got)
	}

	do("/auth/register")

	third := do("/auth/register")
	if third.Code != http.StatusTooManyRequests {
		t.Fatalf("third request status = %d, want 429", third.Code)
	}

	// Health and metrics bypass the limiter entirely.
	if rec := do("/health"); rec.Code != http.StatusOK {
		t.Errorf("/health status = %d, want 200", rec.Code)
	}
	if rec := do("/metrics"); rec.Code != http.StatusOK {
		t.Errorf("/metrics status = %d, want 200", rec.Code)
	}
}
