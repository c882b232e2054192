package handlers

import (
	"net/http"

	"golang.org/x/time/rate"
)

// RateLimit admits at most rps requests per second with the given burst,
// shared across all clients of the service. Excess load gets 429 instead of
// piling up on the database.
func RateLimit(rps float64, burst int) func(http.Handler) http.Handler {
	limiter := rate.NewLimiter(rate.Limit(rps), burst)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				writeProblem(w, http.StatusTooManyRequests, "rate_limited", "too many requests")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
