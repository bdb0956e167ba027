package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/itchan-dev/foro/internal/handler"
	mw "github.com/itchan-dev/foro/internal/middleware"
	"github.com/itchan-dev/foro/internal/middleware/ratelimiter"
	"github.com/itchan-dev/foro/shared/config"
)

// New builds the HTTP routes. Every state-changing route is a form POST protected by
// the CSRF middleware; everything past the login screen requires a session.
func New(h *handler.Handler, cfg config.HTTP) http.Handler {
	r := chi.NewRouter()

	var authLimiter *ratelimiter.KeyedLimiter
	if cfg.AuthRatePerMinute > 0 {
		authLimiter = ratelimiter.PerMinute(cfg.AuthRatePerMinute, cfg.AuthBurst)
	}

	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(mw.Metrics)
	r.Use(mw.SecurityHeaders(cfg.SecureCookies, mw.PageCSP))

	r.Get("/health", h.Health)
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   cfg.AllowedOrigins,
			AllowedMethods:   []string{http.MethodGet, http.MethodOptions},
			AllowedHeaders:   []string{"Accept", "If-None-Match"},
			ExposedHeaders:   []string{"ETag"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
		r.Get("/api/state", h.StateGetHandler)
	})

	r.Group(func(r chi.Router) {
		r.Use(chimw.Compress(5, "text/html"))
		r.Use(mw.CSRF(cfg.SecureCookies))

		r.Get("/", h.IndexGetHandler)
		r.With(mw.RateLimit(authLimiter, mw.ClientIP)).Post("/login", h.LoginPostHandler)
		r.With(mw.RateLimit(authLimiter, mw.ClientIP)).Post("/register", h.RegisterPostHandler)

		r.Group(func(r chi.Router) {
			r.Use(mw.RequireSession(h.Forum))

			r.Post("/logout", h.LogoutHandler)
			r.Post("/topics", h.CreateTopicHandler)
			r.Post("/topics/new", h.OpenNewTopicHandler)
			r.Post("/topics/cancel", h.CancelHandler)
			r.Post("/topics/{topicId}/open", h.SelectTopicHandler)
			r.Post("/topics/{topicId}/comments", h.AddCommentHandler)
			r.Post("/back", h.BackHandler)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Not found", http.StatusNotFound)
	})
	return r
}
