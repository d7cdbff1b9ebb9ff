package http

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/SafronovIK/authgate/internal/common/clock"
	commonerrors "github.com/SafronovIK/authgate/internal/common/errors"
	"github.com/SafronovIK/authgate/internal/observability/metrics"
)

const rateLimitWindow = time.Minute

// SlidingWindowLimiter admits up to maxRequests per identifier within a
// rolling one-minute window. Timestamps are pruned lazily on each call; a
// background sweep drops identifiers whose windows have emptied so the map
// does not grow with every client ever seen.
type SlidingWindowLimiter struct {
	mu          sync.Mutex
	buckets     map[string][]time.Time
	maxRequests int
	clock       clock.Clock
	sweep       *time.Ticker
	done        chan struct{}
}

func NewSlidingWindowLimiter(maxRequests int, clk clock.Clock) *SlidingWindowLimiter {
	if maxRequests <= 0 {
		maxRequests = 60
	}
	if clk == nil {
		clk = clock.NewRealClock()
	}

	rl := &SlidingWindowLimiter{
		buckets:     make(map[string][]time.Time),
		maxRequests: maxRequests,
		clock:       clk,
		sweep:       time.NewTicker(rateLimitWindow),
		done:        make(chan struct{}),
	}

	go rl.sweepEmptyBuckets()

	return rl
}

// Allow prunes the identifier's window and admits the request if fewer
// than maxRequests timestamps remain. Admitted requests are recorded.
func (rl *SlidingWindowLimiter) Allow(identifier string) bool {
	now := rl.clock.Now()
	cutoff := now.Add(-rateLimitWindow)

	rl.mu.Lock()
	defer rl.mu.Unlock()

	window := rl.buckets[identifier]
	pruned := window[:0]
	for _, ts := range window {
		if ts.After(cutoff) {
			pruned = append(pruned, ts)
		}
	}

	if len(pruned) >= rl.maxRequests {
		rl.buckets[identifier] = pruned
		return false
	}

	rl.buckets[identifier] = append(pruned, now)
	return true
}

func (rl *SlidingWindowLimiter) Limit() int {
	return rl.maxRequests
}

func (rl *SlidingWindowLimiter) Stop() {
	rl.sweep.Stop()
	close(rl.done)
}

func (rl *SlidingWindowLimiter) sweepEmptyBuckets() {
	for {
		select {
		case <-rl.done:
			return
		case <-rl.sweep.C:
			cutoff := rl.clock.Now().Add(-rateLimitWindow)

			rl.mu.Lock()
			for key, window := range rl.buckets {
				empty := true
				for _, ts := range window {
					if ts.After(cutoff) {
						empty = false
						break
					}
				}
				if empty {
					delete(rl.buckets, key)
				}
			}
			rl.mu.Unlock()
		}
	}
}

// Middleware keys by client IP and skips health and metrics endpoints.
// Admitted responses carry X-RateLimit-Limit.
func (rl *SlidingWindowLimiter) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/health" || r.URL.Path == "/metrics" {
				next.ServeHTTP(w, r)
				return
			}

			if !rl.Allow(GetClientIP(r)) {
				metrics.RateLimitBlocked.WithLabelValues(r.URL.Path, "sliding_window").Inc()
				WriteErrorEnvelope(w, http.StatusTooManyRequests,
					commonerrors.ErrRateLimitExceeded.Code(),
					commonerrors.ErrRateLimitExceeded.Message(),
					nil, TraceIDFromContext(r.Context()))
				return
			}

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(rl.maxRequests))
			next.ServeHTTP(w, r)
		})
	}
}
