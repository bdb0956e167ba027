// Package store holds the forum's canonical state: users, topics and the current session.
//
// Every collection is replaced wholesale on commit and never mutated afterwards, so the
// slices handed out by the accessors are safe to read without copying. Commits write
// through to the key-value store; write failures are logged and the in-memory state stays
// authoritative for the rest of the process.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/itchan-dev/foro/shared/config"
	"github.com/itchan-dev/foro/shared/domain"
	"github.com/itchan-dev/foro/shared/kv"
	"github.com/itchan-dev/foro/shared/logger"
)

type Collection string

const (
	Users   Collection = "users"
	Topics  Collection = "topics"
	Session Collection = "session"
)

var persistFailures = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "foro_store_persist_failures_total",
		Help: "Commits whose write-through to the key-value store failed",
	},
	[]string{"collection"},
)

type Store struct {
	kv      kv.Store
	keys    config.Keys
	timeout time.Duration

	mu           sync.RWMutex
	users        []domain.User
	topics       []domain.Topic
	session      *domain.User
	usersVersion uint64
	index        *UserIndex
	persistErrs  map[Collection]error
	listeners    []func(Collection)
}

func New(store kv.Store, keys config.Keys, opTimeout time.Duration) *Store {
	return &Store{
		kv:      store,
		keys:    keys,
		timeout: opTimeout,
		users:   []domain.User{},
		topics:  []domain.Topic{},

		persistErrs: make(map[Collection]error),
	}
}

// Load replaces the in-memory state with what the key-value store holds. Missing or
// malformed values fall back to an empty collection or an absent session.
func (s *Store) Load() {
	users := loadJSON(s, s.keys.Users, []domain.User{})
	topics := loadJSON(s, s.keys.Topics, []domain.Topic{})
	session := loadJSON[*domain.User](s, s.keys.CurrentUser, nil)

	if users == nil {
		users = []domain.User{}
	}
	if topics == nil {
		topics = []domain.Topic{}
	}

	s.mu.Lock()
	s.users = users
	s.topics = topics
	s.session = session
	s.usersVersion++
	s.mu.Unlock()

	logger.Log.Info("forum state loaded", "users", len(users), "topics", len(topics), "session", session != nil)
}

func loadJSON[T any](s *Store, key string, fallback T) T {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	data, ok, err := s.kv.Get(ctx, key)
	if err != nil {
		logger.Log.Warn("failed to read stored value, using default", "key", key, "error", err)
		return fallback
	}
	if !ok {
		return fallback
	}
	var out T
	if err := json.Unmarshal(data, &out); err != nil {
		logger.Log.Warn("stored value is not valid JSON, using default", "key", key, "error", err)
		return fallback
	}
	return out
}

func (s *Store) persist(collection Collection, key string, value any) {
	data, err := json.Marshal(value)
	if err == nil {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		err = s.kv.Set(ctx, key, data)
		cancel()
	}

	s.mu.Lock()
	if err != nil {
		s.persistErrs[collection] = err
	} else {
		delete(s.persistErrs, collection)
	}
	s.mu.Unlock()

	if err != nil {
		persistFailures.WithLabelValues(string(collection)).Inc()
		logger.Log.Error("failed to persist, keeping in-memory state", "collection", collection, "key", key, "error", err)
	}
}

func (s *Store) notify(collection Collection) {
	s.mu.RLock()
	listeners := s.listeners
	s.mu.RUnlock()
	for _, fn := range listeners {
		fn(collection)
	}
}

// OnChange registers fn to run after every commit.
func (s *Store) OnChange(fn func(Collection)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	// copy so notify can iterate a stable slice
	listeners := make([]func(Collection), len(s.listeners), len(s.listeners)+1)
	copy(listeners, s.listeners)
	s.listeners = append(listeners, fn)
}

// CommitUsers replaces the Users collection. users must not be modified afterwards.
func (s *Store) CommitUsers(users []domain.User) {
	s.mu.Lock()
	s.users = users
	s.usersVersion++
	s.mu.Unlock()

	s.persist(Users, s.keys.Users, users)
	s.notify(Users)
}

// CommitTopics replaces the Topics collection. topics must not be modified afterwards.
func (s *Store) CommitTopics(topics []domain.Topic) {
	s.mu.Lock()
	s.topics = topics
	s.mu.Unlock()

	s.persist(Topics, s.keys.Topics, topics)
	s.notify(Topics)
}

// CommitSession sets the current user; nil logs out.
func (s *Store) CommitSession(user *domain.User) {
	if user != nil {
		u := *user
		user = &u
	}
	s.mu.Lock()
	s.session = user
	s.mu.Unlock()

	s.persist(Session, s.keys.CurrentUser, user)
	s.notify(Session)
}

func (s *Store) Users() []domain.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.users
}

// Topics returns the topics in display order, newest first.
func (s *Store) Topics() []domain.Topic {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.topics
}

func (s *Store) CurrentUser() (domain.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.session == nil {
		return domain.User{}, false
	}
	return *s.session, true
}

func (s *Store) Topic(id domain.TopicId) (domain.Topic, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, t := range s.topics {
		if t.Id == id {
			return t, true
		}
	}
	return domain.Topic{}, false
}

// UserIndex returns the id lookup for the current Users collection, rebuilding it only
// when the collection has been replaced since the last call.
func (s *Store) UserIndex() *UserIndex {
	s.mu.RLock()
	index, version, users := s.index, s.usersVersion, s.users
	s.mu.RUnlock()

	if index != nil && index.version == version {
		return index
	}

	index = newUserIndex(users, version)
	s.mu.Lock()
	if s.usersVersion == version {
		s.index = index
	}
	s.mu.Unlock()
	return index
}

// PersistErr joins the errors of every collection whose last write-through failed. Non-nil
// means part of the forum lives in memory only until that collection is committed again.
func (s *Store) PersistErr() error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var errs []error
	for _, c := range []Collection{Users, Topics, Session} {
		if err := s.persistErrs[c]; err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", c, err))
		}
	}
	return errors.Join(errs...)
}
