package handler

import (
	"encoding/base64"
	"net/http"
)

const (
	flashCookieError      = "foro_flash_error"
	usernamePrefillCookie = "foro_username"
)

// setFlash stores a one-shot message for the next page render.
func (h *Handler) setFlash(w http.ResponseWriter, name, value string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    base64.RawURLEncoding.EncodeToString([]byte(value)),
		Path:     "/",
		HttpOnly: true,
		Secure:   h.cfg.HTTP.SecureCookies,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   60,
	})
}

// popFlash reads and clears a flash cookie.
func (h *Handler) popFlash(w http.ResponseWriter, r *http.Request, name string) string {
	cookie, err := r.Cookie(name)
	if err != nil || cookie.Value == "" {
		return ""
	}
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   h.cfg.HTTP.SecureCookies,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
	value, err := base64.RawURLEncoding.DecodeString(cookie.Value)
	if err != nil {
		return ""
	}
	return string(value)
}

func (h *Handler) redirectWithFlash(w http.ResponseWriter, r *http.Request, targetURL, name, value string) {
	h.setFlash(w, name, value)
	http.Redirect(w, r, targetURL, http.StatusSeeOther)
}
