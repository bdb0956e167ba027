package router

import (
	"context"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itchan-dev/foro/internal/setup"
	"github.com/itchan-dev/foro/shared/config"
	"github.com/itchan-dev/foro/shared/csrf"
	"github.com/itchan-dev/foro/shared/domain"
)

type browser struct {
	t      *testing.T
	client *http.Client
	base   string
}

func newBrowser(t *testing.T, opts ...func(*config.Config)) (*browser, *setup.Dependencies) {
	t.Helper()
	cfg := config.Default()
	cfg.Auth.BcryptCost = 4
	for _, opt := range opts {
		opt(cfg)
	}

	deps, err := setup.SetupDependencies(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { deps.Close() })

	srv := httptest.NewServer(New(deps.Handler, cfg.HTTP))
	t.Cleanup(srv.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &browser{t: t, client: &http.Client{Jar: jar}, base: srv.URL}, deps
}

func (b *browser) get(path string) (int, string) {
	b.t.Helper()
	resp, err := b.client.Get(b.base + path)
	require.NoError(b.t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(b.t, err)
	return resp.StatusCode, string(body)
}

func (b *browser) csrfToken() string {
	u, _ := url.Parse(b.base)
	for _, c := range b.client.Jar.Cookies(u) {
		if c.Name == csrf.CookieName {
			return c.Value
		}
	}
	return ""
}

// post submits a form the way the rendered pages do, following the redirect.
func (b *browser) post(path string, form url.Values) (int, string) {
	b.t.Helper()
	if form == nil {
		form = url.Values{}
	}
	form.Set(csrf.FormField, b.csrfToken())
	resp, err := b.client.PostForm(b.base+path, form)
	require.NoError(b.t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(b.t, err)
	return resp.StatusCode, string(body)
}

func TestAliceThroughTheBrowser(t *testing.T) {
	b, deps := newBrowser(t)

	code, body := b.get("/")
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, `action="/login"`)

	code, body = b.post("/register", url.Values{"username": {"alice"}, "password": {"pw1234"}, "confirm_password": {"pw1234"}})
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, "Logged in as <strong>alice</strong>")
	assert.Contains(t, body, "No topics yet")

	_, body = b.post("/topics/new", nil)
	assert.Contains(t, body, "Create New Topic")
	assert.Contains(t, body, `action="/topics/cancel"`)

	_, body = b.post("/topics", url.Values{"title": {"Hello"}, "content": {"World"}})
	assert.Contains(t, body, "Hello")
	assert.Contains(t, body, "0 replies")

	topicId := deps.Forum.Snapshot().Topics[0].Id
	_, body = b.post("/topics/"+topicId+"/open", nil)
	assert.Contains(t, body, "<h2>Hello</h2>")

	_, body = b.post("/topics/"+topicId+"/comments", url.Values{"content": {"Reply"}})
	assert.Contains(t, body, "<p>World</p>")
	assert.Contains(t, body, "<p>Reply</p>")

	_, body = b.post("/back", nil)
	assert.Contains(t, body, "1 reply")

	_, body = b.post("/logout", nil)
	assert.Contains(t, body, `action="/login"`)

	_, body = b.post("/login", url.Values{"username": {"ALICE"}, "password": {"pw1234"}})
	assert.Contains(t, body, "Logged in as <strong>alice</strong>")
	assert.Contains(t, body, "Hello")
}

func TestLoginErrorsAreShown(t *testing.T) {
	b, _ := newBrowser(t)
	b.get("/")

	_, body := b.post("/login", url.Values{"username": {"ghost"}, "password": {"whatever"}})
	assert.Contains(t, body, "User not found. Please register.")
	assert.Contains(t, body, `value="ghost"`)

	_, body = b.post("/register", url.Values{"username": {"bob"}, "password": {"secret1"}, "confirm_password": {"secret2"}})
	assert.Contains(t, body, "Passwords do not match.")
}

func TestCreateTopicValidation(t *testing.T) {
	b, deps := newBrowser(t)
	b.get("/")
	b.post("/register", url.Values{"username": {"carol"}, "password": {"secret1"}, "confirm_password": {"secret1"}})
	b.post("/topics/new", nil)

	_, body := b.post("/topics", url.Values{"title": {"   "}, "content": {"body"}})
	assert.Contains(t, body, "Title is required")
	assert.Contains(t, body, `action="/topics/cancel"`, "stays on the form")
	assert.Empty(t, deps.Forum.Snapshot().Topics)
}

func TestCSRFRequired(t *testing.T) {
	b, _ := newBrowser(t)
	b.get("/")

	resp, err := b.client.PostForm(b.base+"/login", url.Values{"username": {"a"}, "password": {"b"}})
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestActionsNeedSession(t *testing.T) {
	b, deps := newBrowser(t)
	b.get("/")

	_, body := b.post("/topics", url.Values{"title": {"Sneaky"}, "content": {"post"}})
	assert.Contains(t, body, `action="/login"`)
	assert.Empty(t, deps.Forum.Snapshot().Topics)
}

func TestAPIAndOps(t *testing.T) {
	b, _ := newBrowser(t)

	code, body := b.get("/api/state")
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, `"currentUser":null`)
	assert.Contains(t, body, `"screen":"topic_list"`)

	code, body = b.get("/health")
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, `"status":"ok"`)

	code, body = b.get("/metrics")
	assert.Equal(t, http.StatusOK, code)
	assert.True(t, strings.Contains(body, "foro_http_requests_total"))

	code, _ = b.get("/nope")
	assert.Equal(t, http.StatusNotFound, code)
}

func TestAuthRateLimited(t *testing.T) {
	b, _ := newBrowser(t, func(cfg *config.Config) {
		cfg.HTTP.AuthRatePerMinute = 1
		cfg.HTTP.AuthBurst = 2
	})
	b.get("/")

	for i := 0; i < 2; i++ {
		code, _ := b.post("/login", url.Values{"username": {"ghost"}, "password": {"whatever"}})
		require.Equal(t, http.StatusOK, code)
	}
	code, body := b.post("/register", url.Values{"username": {"ghost"}, "password": {"whatever"}, "confirm_password": {"whatever"}})
	assert.Equal(t, http.StatusTooManyRequests, code)
	assert.Contains(t, body, "Rate limit exceeded")

	code, _ = b.get("/")
	assert.Equal(t, http.StatusOK, code, "reading is not limited")
}

func TestPasswordsAreExact(t *testing.T) {
	t.Run("stored plaintext with trailing space", func(t *testing.T) {
		b, deps := newBrowser(t)
		b.get("/")
		deps.Store.CommitUsers([]domain.User{{Id: "user_legacy", Username: "bob", Password: "secret1 "}})

		_, body := b.post("/login", url.Values{"username": {"bob"}, "password": {"secret1"}})
		assert.Contains(t, body, "Incorrect password. Please try again.")

		_, body = b.post("/login", url.Values{"username": {"bob"}, "password": {"secret1 "}})
		assert.Contains(t, body, "Logged in as <strong>bob</strong>")
	})

	t.Run("padded registration needs the padding", func(t *testing.T) {
		b, deps := newBrowser(t)
		b.get("/")
		b.post("/register", url.Values{"username": {" dave "}, "password": {"  abcdef  "}, "confirm_password": {"  abcdef  "}})
		require.True(t, deps.Forum.LoggedIn())
		b.post("/logout", nil)

		_, body := b.post("/login", url.Values{"username": {"dave"}, "password": {"abcdef"}})
		assert.Contains(t, body, "Incorrect password. Please try again.")
		assert.False(t, deps.Forum.LoggedIn())

		_, body = b.post("/login", url.Values{"username": {"dave"}, "password": {"  abcdef  "}})
		assert.Contains(t, body, "Logged in as <strong>dave</strong>")
	})
}

func TestStateETagTracksLoginError(t *testing.T) {
	b, _ := newBrowser(t)
	b.get("/")

	resp, err := b.client.Get(b.base + "/api/state")
	require.NoError(t, err)
	resp.Body.Close()
	etag := resp.Header.Get("ETag")
	require.NotEmpty(t, etag)

	b.post("/login", url.Values{"username": {"ghost"}, "password": {"whatever"}})

	req, err := http.NewRequest(http.MethodGet, b.base+"/api/state", nil)
	require.NoError(t, err)
	req.Header.Set("If-None-Match", etag)
	resp, err = b.client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEqual(t, etag, resp.Header.Get("ETag"))
	assert.Contains(t, string(body), "User not found. Please register.")
}
