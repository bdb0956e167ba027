package middleware

import (
	"context"
	"net/http"

	"github.com/itchan-dev/foro/shared/csrf"
	"github.com/itchan-dev/foro/shared/logger"
)

type csrfContextKey struct{}

// CSRF issues a token cookie when the client has none and rejects state-changing
// requests whose submitted token does not match it.
func CSRF(secureCookies bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var token string
			if cookie, err := r.Cookie(csrf.CookieName); err == nil && cookie.Value != "" {
				token = cookie.Value
			}

			if isUnsafeMethod(r.Method) {
				if !csrf.ValidateToken(token, csrf.Submitted(r)) {
					logger.Log.Warn("CSRF token validation failed", "path", r.URL.Path)
					http.Error(w, "CSRF token invalid", http.StatusForbidden)
					return
				}
			} else if token == "" {
				var err error
				token, err = csrf.GenerateToken()
				if err != nil {
					logger.Log.Error("failed to generate CSRF token", "error", err)
					http.Error(w, "Internal server error", http.StatusInternalServerError)
					return
				}
				http.SetCookie(w, csrf.Cookie(token, secureCookies))
			}

			ctx := context.WithValue(r.Context(), csrfContextKey{}, token)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func CSRFToken(r *http.Request) string {
	token, _ := r.Context().Value(csrfContextKey{}).(string)
	return token
}

func isUnsafeMethod(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}
