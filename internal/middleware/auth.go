package middleware

import (
	"net/http"

	"github.com/itchan-dev/foro/shared/logger"
)

type SessionChecker interface {
	LoggedIn() bool
}

// RequireSession lets requests through only while someone is logged in. Everyone else
// is sent back to the index, which shows the login screen.
func RequireSession(s SessionChecker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !s.LoggedIn() {
				logger.Log.Debug("no session, redirecting to login", "path", r.URL.Path)
				http.Redirect(w, r, "/", http.StatusSeeOther)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
