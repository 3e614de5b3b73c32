package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/eventease/server/internal/metrics"
)

// Metrics records request counts and latency per route pattern. The pattern,
// not the raw path, keeps label cardinality bounded.
func Metrics() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rw := &responseWriter{ResponseWriter: w}

			next.ServeHTTP(rw, r)

			pattern := r.Pattern
			if pattern == "" {
				pattern = "unmatched"
			}
			metrics.HTTPRequests.WithLabelValues(r.Method, pattern, strconv.Itoa(rw.status)).Inc()
			metrics.HTTPDuration.WithLabelValues(r.Method, pattern).Observe(time.Since(start).Seconds())
		})
	}
}
