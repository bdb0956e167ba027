// Package csrf implements double-submit tokens: the same random value travels in a
// cookie and in the submitted form (or header) and both must match.
package csrf

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"net/http"
)

const (
	TokenLength = 32 // bytes
	CookieName  = "foro_csrf"
	FormField   = "csrf_token"
	HeaderName  = "X-CSRF-Token"
)

func GenerateToken() (string, error) {
	buf := make([]byte, TokenLength)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// ValidateToken reports whether the submitted token matches the cookie token.
func ValidateToken(cookieToken, submitted string) bool {
	if cookieToken == "" || submitted == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(cookieToken), []byte(submitted)) == 1
}

// Submitted returns the token sent with r, preferring the header over the form field.
func Submitted(r *http.Request) string {
	if token := r.Header.Get(HeaderName); token != "" {
		return token
	}
	return r.PostFormValue(FormField)
}

// Cookie builds the cookie that carries token for a day.
func Cookie(token string, secure bool) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   86400,
	}
}
