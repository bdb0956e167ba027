// Package handler renders the forum screens as HTML and exposes a JSON snapshot.
//
// The active screen is owned by the application's view router, so every action is a
// POST that redirects back to the index, which renders whatever screen is current.
package handler

import (
	"html/template"
	"net/http"

	"github.com/itchan-dev/foro/internal/app"
	"github.com/itchan-dev/foro/internal/markdown"
	"github.com/itchan-dev/foro/shared/config"
	"github.com/itchan-dev/foro/shared/domain"
)

type Forum interface {
	Snapshot() app.Snapshot
	LoggedIn() bool
	PersistErr() error

	Login(username domain.Username, password domain.Password) (domain.User, error)
	Register(username domain.Username, password domain.Password) (domain.User, error)
	Logout()

	CreateTopic(title domain.TopicTitle, content domain.CommentText) (domain.Topic, error)
	AddComment(topicId domain.TopicId, content domain.CommentText) (domain.Topic, error)

	SelectTopic(id domain.TopicId) bool
	OpenNewTopic() bool
	Cancel() bool
	Back() bool
}

type Handler struct {
	Templates map[string]*template.Template
	Forum     Forum
	Renderer  *markdown.Renderer
	cfg       *config.Config
}

func New(templates map[string]*template.Template, forum Forum, renderer *markdown.Renderer, cfg *config.Config) *Handler {
	return &Handler{
		Templates: templates,
		Forum:     forum,
		Renderer:  renderer,
		cfg:       cfg,
	}
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	status := healthResponse{Status: "ok", Persisting: true}
	if err := h.Forum.PersistErr(); err != nil {
		status.Status = "degraded"
		status.Persisting = false
		status.Error = err.Error()
	}
	writeJSON(w, http.StatusOK, status)
}

type healthResponse struct {
	Status     string `json:"status"`
	Persisting bool   `json:"persisting"`
	Error      string `json:"error,omitempty"`
}

func redirectHome(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
