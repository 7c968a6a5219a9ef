// Package ratelimit provides admission control for the API: a global token
// bucket on request rate and a cap on requests being served at once.
package ratelimit

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"

	"fanout-api/internal/handlers"
)

// RateMiddleware answers 429 once more than rps requests per second (with the
// given burst) arrive. rps <= 0 disables it.
func RateMiddleware(rps float64, burst int) func(http.Handler) http.Handler {
	if rps <= 0 {
		return passthrough
	}

	limiter := rate.NewLimiter(rate.Limit(rps), burst)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			res := limiter.Reserve()
			if delay := res.Delay(); delay > 0 {
				res.Cancel()
				w.Header().Set("Retry-After", strconv.Itoa(int(delay.Seconds())+1))
				handlers.WriteError(w, http.StatusTooManyRequests, "rate limit exceeded")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// InFlightMiddleware lets at most max requests through at once. A request
// waits up to wait for a slot (0 means fail immediately) and gets 503 if none
// frees up. max <= 0 disables it.
func InFlightMiddleware(max int, wait time.Duration) func(http.Handler) http.Handler {
	if max <= 0 {
		return passthrough
	}

	slots := semaphore.NewWeighted(int64(max))

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !acquire(r.Context(), slots, wait) {
				handlers.WriteError(w, http.StatusServiceUnavailable, "server busy")
				return
			}
			defer slots.Release(1)

			next.ServeHTTP(w, r)
		})
	}
}

func acquire(ctx context.Context, slots *semaphore.Weighted, wait time.Duration) bool {
	if wait <= 0 {
		return slots.TryAcquire(1)
	}

	ctx, cancel := context.WithTimeout(ctx, wait)
	defer cancel()
	return slots.Acquire(ctx, 1) == nil
}

func passthrough(next http.Handler) http.Handler { return next }
