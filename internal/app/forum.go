// Package app wires the store, services and view router into one forum session.
//
// Every action runs under a single mutex and completes before the next one starts, so
// concurrent HTTP requests see the same sequential behaviour as a single user clicking
// through the screens.
package app

import (
	"sync"

	"github.com/itchan-dev/foro/internal/service"
	"github.com/itchan-dev/foro/internal/store"
	"github.com/itchan-dev/foro/internal/view"
	"github.com/itchan-dev/foro/shared/domain"
	"github.com/itchan-dev/foro/shared/errors"
	"github.com/itchan-dev/foro/shared/logger"
)

type Forum struct {
	mu       sync.Mutex
	store    *store.Store
	auth     service.AuthService
	forum    service.ForumService
	router   *view.Router
	loginErr string
	version  uint64
}

// Snapshot is everything a screen needs to render.
type Snapshot struct {
	Session    *domain.User     `json:"currentUser"`
	Users      *store.UserIndex `json:"-"`
	Topics     []domain.Topic   `json:"topics"`
	View       view.State       `json:"view"`
	Topic      *domain.Topic    `json:"topic,omitempty"`
	LoginError string           `json:"loginError,omitempty"`
	Version    uint64           `json:"version"`
}

func (s *Snapshot) LoggedIn() bool {
	return s.Session != nil
}

func New(st *store.Store, auth service.AuthService, forum service.ForumService) *Forum {
	f := &Forum{
		store:  st,
		auth:   auth,
		forum:  forum,
		router: view.NewRouter(),
	}
	// commits only happen inside actions, which already hold f.mu
	st.OnChange(f.onChange)
	return f
}

func (f *Forum) onChange(c store.Collection) {
	f.version++
	if c == store.Session {
		f.router.Reset()
	}
}

// setLoginErr bumps the version when the message changes so cached snapshots go stale.
func (f *Forum) setLoginErr(msg string) {
	if f.loginErr == msg {
		return
	}
	f.loginErr = msg
	f.version++
}

func (f *Forum) currentUser() *domain.User {
	user, ok := f.store.CurrentUser()
	if !ok {
		return nil
	}
	return &user
}

func (f *Forum) Snapshot() Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()

	state := f.router.Resolve(func(id domain.TopicId) bool {
		_, ok := f.store.Topic(id)
		return ok
	})

	snap := Snapshot{
		Session:    f.currentUser(),
		Users:      f.store.UserIndex(),
		Topics:     f.store.Topics(),
		View:       state,
		LoginError: f.loginErr,
		Version:    f.version,
	}
	if state.Screen == view.TopicView {
		if topic, ok := f.store.Topic(state.TopicId); ok {
			snap.Topic = &topic
		}
	}
	return snap
}

func (f *Forum) LoggedIn() bool {
	_, ok := f.store.CurrentUser()
	return ok
}

// PersistErr is non-nil while any collection failed its last write to the key-value store.
func (f *Forum) PersistErr() error {
	return f.store.PersistErr()
}

// Login clears any previous login error, then records the new one on failure.
func (f *Forum) Login(username domain.Username, password domain.Password) (domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.setLoginErr("")
	user, err := f.auth.Login(username, password)
	if err != nil {
		f.setLoginErr(errors.Message(err))
		return domain.User{}, err
	}
	return user, nil
}

func (f *Forum) Register(username domain.Username, password domain.Password) (domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.setLoginErr("")
	user, err := f.auth.Register(username, password)
	if err != nil {
		f.setLoginErr(errors.Message(err))
		return domain.User{}, err
	}
	return user, nil
}

func (f *Forum) Logout() {
	f.mu.Lock()
	defer f.mu.Unlock()

	if user := f.currentUser(); user != nil {
		logger.Log.Info("user logged out", "user_id", user.Id)
	}
	f.auth.Logout()
	f.router.Reset()
}

// CreateTopic posts a topic as the current user and returns to the topic list.
func (f *Forum) CreateTopic(title domain.TopicTitle, content domain.CommentText) (domain.Topic, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	topic, err := f.forum.CreateTopic(title, content, f.currentUser())
	if err != nil {
		return domain.Topic{}, err
	}
	if !f.router.Submitted() {
		f.router.Reset()
	}
	return topic, nil
}

func (f *Forum) AddComment(topicId domain.TopicId, content domain.CommentText) (domain.Topic, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.forum.AddComment(topicId, content, f.currentUser())
}

// SelectTopic opens a topic. Unknown ids are accepted here and rejected by the guard
// on the next Snapshot.
func (f *Forum) SelectTopic(id domain.TopicId) bool {
	return f.navigate(func(r *view.Router) bool { return r.SelectTopic(id) })
}

func (f *Forum) OpenNewTopic() bool {
	return f.navigate((*view.Router).OpenNewTopic)
}

func (f *Forum) Cancel() bool {
	return f.navigate((*view.Router).Cancel)
}

func (f *Forum) Back() bool {
	return f.navigate((*view.Router).Back)
}

func (f *Forum) navigate(move func(*view.Router) bool) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.currentUser() == nil {
		return false
	}
	from := f.router.State()
	ok := move(f.router)
	if !ok {
		logger.Log.Debug("ignored navigation", "from", from.String())
	}
	return ok
}
