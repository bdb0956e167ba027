package middleware

import (
	"net"
	"net/http"

	"github.com/itchan-dev/foro/internal/middleware/ratelimiter"
	"github.com/itchan-dev/foro/shared/logger"
)

// RateLimit rejects requests with 429 once the bucket for the key runs dry. A nil limiter
// disables the check.
func RateLimit(rl *ratelimiter.KeyedLimiter, key func(r *http.Request) string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if rl == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			k := key(r)
			if !rl.Allow(k) {
				logger.Log.Warn("rate limit exceeded", "key", k, "path", r.URL.Path)
				http.Error(w, "Rate limit exceeded, try again later", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ClientIP keys on the connection address, already rewritten by chi's RealIP when that
// runs first.
func ClientIP(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}
