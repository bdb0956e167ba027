package handler

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/itchan-dev/foro/internal/app"
	"github.com/itchan-dev/foro/internal/view"
	"github.com/itchan-dev/foro/shared/domain"
	"github.com/itchan-dev/foro/shared/logger"
)

type apiUser struct {
	Id       domain.UserId   `json:"id"`
	Username domain.Username `json:"username"`
}

type apiComment struct {
	Id        domain.CommentId   `json:"id"`
	Content   domain.CommentText `json:"content"`
	AuthorId  domain.UserId      `json:"authorId"`
	Author    domain.Username    `json:"author"`
	Timestamp domain.Timestamp   `json:"timestamp"`
}

type apiTopicSummary struct {
	Id        domain.TopicId    `json:"id"`
	Title     domain.TopicTitle `json:"title"`
	AuthorId  domain.UserId     `json:"authorId"`
	Author    domain.Username   `json:"author"`
	Timestamp domain.Timestamp  `json:"timestamp"`
	Replies   int               `json:"replies"`
}

type apiTopic struct {
	apiTopicSummary
	Comments []apiComment `json:"comments"`
}

type apiState struct {
	CurrentUser *apiUser          `json:"currentUser"`
	View        view.State        `json:"view"`
	Topics      []apiTopicSummary `json:"topics"`
	Topic       *apiTopic         `json:"topic,omitempty"`
	LoginError  string            `json:"loginError,omitempty"`
	Version     uint64            `json:"version"`
}

func stateOf(snap *app.Snapshot) apiState {
	state := apiState{
		View:       snap.View,
		Topics:     make([]apiTopicSummary, len(snap.Topics)),
		LoginError: snap.LoginError,
		Version:    snap.Version,
	}
	if snap.Session != nil {
		state.CurrentUser = &apiUser{Id: snap.Session.Id, Username: snap.Session.Username}
	}
	for i, t := range snap.Topics {
		state.Topics[i] = summaryOf(t, snap)
	}
	if snap.Topic != nil {
		topic := &apiTopic{apiTopicSummary: summaryOf(*snap.Topic, snap), Comments: make([]apiComment, len(snap.Topic.Comments))}
		for i, c := range snap.Topic.Comments {
			topic.Comments[i] = apiComment{
				Id:        c.Id,
				Content:   c.Content,
				AuthorId:  c.AuthorId,
				Author:    snap.Users.Name(c.AuthorId),
				Timestamp: c.Timestamp,
			}
		}
		state.Topic = topic
	}
	return state
}

func summaryOf(t domain.Topic, snap *app.Snapshot) apiTopicSummary {
	return apiTopicSummary{
		Id:        t.Id,
		Title:     t.Title,
		AuthorId:  t.AuthorId,
		Author:    snap.Users.Name(t.AuthorId),
		Timestamp: t.Timestamp,
		Replies:   t.Replies(),
	}
}

// StateGetHandler returns the forum snapshot as JSON. Passwords are never included.
func (h *Handler) StateGetHandler(w http.ResponseWriter, r *http.Request) {
	snap := h.Forum.Snapshot()

	if checkNotModified(w, r, etagOf(&snap)) {
		return
	}
	writeJSON(w, http.StatusOK, stateOf(&snap))
}

func etagOf(snap *app.Snapshot) string {
	return fmt.Sprintf(`"v%d-%s-%t"`, snap.Version, snap.View, snap.LoggedIn())
}

// checkNotModified answers 304 when the client already holds the current snapshot.
func checkNotModified(w http.ResponseWriter, r *http.Request, etag string) bool {
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("ETag", etag)
	if r.Header.Get("If-None-Match") == etag {
		w.WriteHeader(http.StatusNotModified)
		return true
	}
	return false
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		logger.Log.Error("failed to encode response", "error", err)
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(append(data, '\n'))
}
