package handler

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path"

	"github.com/itchan-dev/foro/internal/app"
	"github.com/itchan-dev/foro/internal/middleware"
	"github.com/itchan-dev/foro/internal/store"
	"github.com/itchan-dev/foro/shared/domain"
	"github.com/itchan-dev/foro/shared/logger"
)

const (
	baseTemplate     = "base.html"
	partialsTemplate = "partials.html"
	dateLayout       = "Jan 2, 2006 15:04"
)

//go:embed templates/*.html
var templateFS embed.FS

// LoadTemplates parses every page template together with the base layout and partials.
func LoadTemplates() (map[string]*template.Template, error) {
	files, err := fs.ReadDir(templateFS, "templates")
	if err != nil {
		return nil, err
	}

	templates := make(map[string]*template.Template)
	for _, f := range files {
		name := f.Name()
		if path.Ext(name) != ".html" || name == baseTemplate || name == partialsTemplate {
			continue
		}
		tmpl, err := template.New(baseTemplate).Funcs(template.FuncMap{
			"date": formatDate,
		}).ParseFS(templateFS,
			path.Join("templates", baseTemplate),
			path.Join("templates", partialsTemplate),
			path.Join("templates", name),
		)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
		templates[name] = tmpl
	}
	return templates, nil
}

func formatDate(ts domain.Timestamp) string {
	return domain.TimeOf(ts).Local().Format(dateLayout)
}

// CommonTemplateData is available to every page as .Common.
type CommonTemplateData struct {
	Error      string
	User       *domain.User
	CSRFToken  string
	Validation ValidationData
}

type ValidationData struct {
	PasswordMinLen int
	TitleMaxLen    int
	ContentMaxLen  int
}

// TemplateData wraps page-specific data (.Data) with the common fields (.Common).
type TemplateData struct {
	Data   any
	Common CommonTemplateData
}

type LoginPage struct {
	Register bool
	Username string
}

type TopicSummary struct {
	Id        domain.TopicId
	Title     domain.TopicTitle
	Author    domain.Username
	Timestamp domain.Timestamp
	Replies   int
}

type CommentView struct {
	Id        domain.CommentId
	Author    domain.Username
	Timestamp domain.Timestamp
	HTML      template.HTML
	Opening   bool
}

type TopicPage struct {
	Id        domain.TopicId
	Title     domain.TopicTitle
	Author    domain.Username
	Timestamp domain.Timestamp
	Replies   int
	Comments  []CommentView
}

func summarize(topics []domain.Topic, users *store.UserIndex) []TopicSummary {
	out := make([]TopicSummary, len(topics))
	for i := range topics {
		out[i] = TopicSummary{
			Id:        topics[i].Id,
			Title:     topics[i].Title,
			Author:    users.Name(topics[i].AuthorId),
			Timestamp: topics[i].Timestamp,
			Replies:   topics[i].Replies(),
		}
	}
	return out
}

func (h *Handler) topicPage(topic domain.Topic, users *store.UserIndex) TopicPage {
	page := TopicPage{
		Id:        topic.Id,
		Title:     topic.Title,
		Author:    users.Name(topic.AuthorId),
		Timestamp: topic.Timestamp,
		Replies:   topic.Replies(),
		Comments:  make([]CommentView, len(topic.Comments)),
	}
	for i, c := range topic.Comments {
		page.Comments[i] = CommentView{
			Id:        c.Id,
			Author:    users.Name(c.AuthorId),
			Timestamp: c.Timestamp,
			HTML:      h.Renderer.Render(c.Content),
			Opening:   i == 0,
		}
	}
	return page
}

func (h *Handler) initCommonTemplateData(w http.ResponseWriter, r *http.Request, snap *app.Snapshot) CommonTemplateData {
	common := CommonTemplateData{
		User:      snap.Session,
		CSRFToken: middleware.CSRFToken(r),
		Validation: ValidationData{
			PasswordMinLen: h.cfg.Auth.PasswordMinLen,
			TitleMaxLen:    h.cfg.Forum.TitleMaxLen,
			ContentMaxLen:  h.cfg.Forum.ContentMaxLen,
		},
	}
	if msg := h.popFlash(w, r, flashCookieError); msg != "" {
		common.Error = msg
	}
	return common
}

func (h *Handler) renderTemplate(w http.ResponseWriter, name string, data TemplateData) {
	tmpl, ok := h.Templates[name]
	if !ok {
		http.Error(w, fmt.Sprintf("Template %s not found", name), http.StatusInternalServerError)
		return
	}

	buf := new(bytes.Buffer)
	if err := tmpl.Execute(buf, data); err != nil {
		logger.Log.Error("error executing template", "template", name, "error", err)
		http.Error(w, "Internal Server Error rendering template", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = buf.WriteTo(w)
}
