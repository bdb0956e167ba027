package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/itchan-dev/foro/internal/view"
	"github.com/itchan-dev/foro/shared/errors"
	"github.com/itchan-dev/foro/shared/logger"
)

// IndexGetHandler renders the login screen or whichever forum screen is active.
func (h *Handler) IndexGetHandler(w http.ResponseWriter, r *http.Request) {
	snap := h.Forum.Snapshot()
	common := h.initCommonTemplateData(w, r, &snap)

	if !snap.LoggedIn() {
		if common.Error == "" {
			common.Error = snap.LoginError
		}
		page := LoginPage{
			Register: r.URL.Query().Get("mode") == "register",
			Username: h.popFlash(w, r, usernamePrefillCookie),
		}
		h.renderTemplate(w, "login.html", TemplateData{Data: page, Common: common})
		return
	}

	switch snap.View.Screen {
	case view.TopicView:
		if snap.Topic != nil {
			h.renderTemplate(w, "topic_view.html", TemplateData{Data: h.topicPage(*snap.Topic, snap.Users), Common: common})
			return
		}
	case view.NewTopic:
		h.renderTemplate(w, "new_topic.html", TemplateData{Common: common})
		return
	}
	h.renderTemplate(w, "topic_list.html", TemplateData{Data: summarize(snap.Topics, snap.Users), Common: common})
}

func (h *Handler) OpenNewTopicHandler(w http.ResponseWriter, r *http.Request) {
	h.Forum.OpenNewTopic()
	redirectHome(w, r)
}

func (h *Handler) CancelHandler(w http.ResponseWriter, r *http.Request) {
	h.Forum.Cancel()
	redirectHome(w, r)
}

func (h *Handler) BackHandler(w http.ResponseWriter, r *http.Request) {
	h.Forum.Back()
	redirectHome(w, r)
}

func (h *Handler) SelectTopicHandler(w http.ResponseWriter, r *http.Request) {
	h.Forum.SelectTopic(chi.URLParam(r, "topicId"))
	redirectHome(w, r)
}

func (h *Handler) CreateTopicHandler(w http.ResponseWriter, r *http.Request) {
	_, err := h.Forum.CreateTopic(r.PostFormValue("title"), r.PostFormValue("content"))
	if err != nil {
		h.actionFailed(w, r, "create topic", err)
		return
	}
	redirectHome(w, r)
}

func (h *Handler) AddCommentHandler(w http.ResponseWriter, r *http.Request) {
	_, err := h.Forum.AddComment(chi.URLParam(r, "topicId"), r.PostFormValue("content"))
	if err != nil {
		h.actionFailed(w, r, "add comment", err)
		return
	}
	redirectHome(w, r)
}

func (h *Handler) actionFailed(w http.ResponseWriter, r *http.Request, action string, err error) {
	if errors.StatusCode(err) >= http.StatusInternalServerError {
		logger.Log.Error("action failed", "action", action, "error", err)
	}
	h.redirectWithFlash(w, r, "/", flashCookieError, errors.Message(err))
}
