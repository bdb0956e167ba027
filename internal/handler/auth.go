package handler

import (
	"net/http"
	"strings"

	"github.com/itchan-dev/foro/internal/utils"
	"github.com/itchan-dev/foro/shared/errors"
	"github.com/itchan-dev/foro/shared/logger"
)

// Only the username is trimmed; passwords are compared exactly as typed.
func (h *Handler) LoginPostHandler(w http.ResponseWriter, r *http.Request) {
	form := utils.LoginForm{
		Username: strings.TrimSpace(r.PostFormValue("username")),
		Password: r.PostFormValue("password"),
	}
	if err := form.Validate(); err != nil {
		h.setFlash(w, usernamePrefillCookie, form.Username)
		h.redirectWithFlash(w, r, "/", flashCookieError, errors.Message(err))
		return
	}

	// the failure message is kept by the forum and shown on the login screen
	if _, err := h.Forum.Login(form.Username, form.Password); err != nil {
		if errors.StatusCode(err) >= http.StatusInternalServerError {
			logger.Log.Error("login failed", "error", err)
		}
		h.setFlash(w, usernamePrefillCookie, form.Username)
	}
	redirectHome(w, r)
}

func (h *Handler) RegisterPostHandler(w http.ResponseWriter, r *http.Request) {
	targetURL := "/?mode=register"
	form := utils.RegistrationForm{
		Username:        strings.TrimSpace(r.PostFormValue("username")),
		Password:        r.PostFormValue("password"),
		ConfirmPassword: r.PostFormValue("confirm_password"),
	}
	if err := form.Validate(h.cfg.Auth.PasswordMinLen); err != nil {
		h.setFlash(w, usernamePrefillCookie, form.Username)
		h.redirectWithFlash(w, r, targetURL, flashCookieError, errors.Message(err))
		return
	}

	if _, err := h.Forum.Register(form.Username, form.Password); err != nil {
		if errors.StatusCode(err) >= http.StatusInternalServerError {
			logger.Log.Error("registration failed", "error", err)
		}
		h.setFlash(w, usernamePrefillCookie, form.Username)
		http.Redirect(w, r, targetURL, http.StatusSeeOther)
		return
	}
	redirectHome(w, r)
}

func (h *Handler) LogoutHandler(w http.ResponseWriter, r *http.Request) {
	h.Forum.Logout()
	redirectHome(w, r)
}
