package middleware

import (
	"math"
	"net/http"
	"strconv"
	"time"

	json "github.com/goccy/go-json"
	"golang.org/x/time/rate"

	"github.com/kbukum/convpipe/errors"
)

// RateLimit rejects requests above rps per second with 429. burst bounds
// how many may arrive at once and defaults to rps rounded up. Probe paths
// are never limited. rps <= 0 disables the limit.
func RateLimit(rps float64, burst int) Middleware {
	if rps <= 0 {
		return passthrough
	}
	if burst <= 0 {
		burst = int(math.Ceil(rps))
	}
	limiter := rate.NewLimiter(rate.Limit(rps), burst)
	retryAfter := strconv.Itoa(int(math.Max(1, math.Ceil(1/rps))))

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if quietPaths[r.URL.Path] || limiter.Allow() {
				next.ServeHTTP(w, r)
				return
			}
			w.Header().Set("Retry-After", retryAfter)
			writeError(w, errors.New(errors.ErrCodeResourceLimitExceeded, "rate limit exceeded", http.StatusTooManyRequests).
				WithDetail("limit", "rate").
				WithDetail("rps", rps))
		})
	}
}

// ConcurrencyLimit lets at most limit requests run at once. A request that
// finds no free slot waits up to maxWait, then gets 503. Probe paths bypass
// the limit. limit <= 0 disables it.
func ConcurrencyLimit(limit int, maxWait time.Duration) Middleware {
	if limit <= 0 {
		return passthrough
	}
	slots := make(chan struct{}, limit)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if quietPaths[r.URL.Path] {
				next.ServeHTTP(w, r)
				return
			}
			if !acquire(r, slots, maxWait) {
				writeError(w, errors.New(errors.ErrCodeResourceLimitExceeded, "too many concurrent requests", http.StatusServiceUnavailable).
					WithDetail("limit", "concurrency").
					WithDetail("max", limit))
				return
			}
			defer func() { <-slots }()
			next.ServeHTTP(w, r)
		})
	}
}

func acquire(r *http.Request, slots chan struct{}, maxWait time.Duration) bool {
	select {
	case slots <- struct{}{}:
		return true
	default:
	}
	if maxWait <= 0 {
		return false
	}

	timer := time.NewTimer(maxWait)
	defer timer.Stop()
	select {
	case slots <- struct{}{}:
		return true
	case <-timer.C:
		return false
	case <-r.Context().Done():
		return false
	}
}

func passthrough(next http.Handler) http.Handler { return next }

func writeError(w http.ResponseWriter, err error) {
	status, body := errors.Response(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
