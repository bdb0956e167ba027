package app

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/itchan-dev/foro/internal/service"
	"github.com/itchan-dev/foro/internal/store"
	"github.com/itchan-dev/foro/internal/utils"
	"github.com/itchan-dev/foro/internal/view"
	"github.com/itchan-dev/foro/shared/config"
	"github.com/itchan-dev/foro/shared/domain"
	internal_errors "github.com/itchan-dev/foro/shared/errors"
	"github.com/itchan-dev/foro/shared/kv"
	"github.com/itchan-dev/foro/shared/kv/memory"
)

func newForum(t *testing.T, backend kv.Store) (*Forum, *store.Store) {
	t.Helper()
	cfg := config.Default()
	st := store.New(backend, cfg.Keys, time.Second)
	st.Load()

	auth := service.NewAuth(st, utils.NewBcryptHasher(bcrypt.MinCost), utils.UsernameValidator{}, utils.NewId)
	forum := service.NewForum(st, utils.NewTopicValidator(cfg.Forum), utils.NewId, time.Now)
	return New(st, auth, forum), st
}

func TestAliceScenario(t *testing.T) {
	backend := memory.New()
	f, st := newForum(t, backend)

	alice, err := f.Register("alice", "pw1234")
	require.NoError(t, err)

	snap := f.Snapshot()
	require.True(t, snap.LoggedIn())
	assert.Equal(t, alice, *snap.Session)
	assert.Equal(t, view.State{Screen: view.TopicList}, snap.View)

	require.True(t, f.OpenNewTopic())
	assert.Equal(t, view.NewTopic, f.Snapshot().View.Screen)

	topic, err := f.CreateTopic("Hello", "World")
	require.NoError(t, err)

	snap = f.Snapshot()
	assert.Equal(t, view.TopicList, snap.View.Screen, "submit returns to the list")
	require.Len(t, snap.Topics, 1)
	assert.Equal(t, topic.Id, snap.Topics[0].Id)
	assert.Equal(t, "alice", snap.Users.Name(snap.Topics[0].AuthorId))
	assert.Equal(t, 0, snap.Topics[0].Replies())

	require.True(t, f.SelectTopic(topic.Id))
	_, err = f.AddComment(topic.Id, "Reply")
	require.NoError(t, err)

	snap = f.Snapshot()
	require.NotNil(t, snap.Topic)
	assert.Equal(t, view.State{Screen: view.TopicView, TopicId: topic.Id}, snap.View)
	require.Len(t, snap.Topic.Comments, 2)
	assert.Equal(t, "World", snap.Topic.Comments[0].Content)
	assert.Equal(t, "Reply", snap.Topic.Comments[1].Content)
	assert.Equal(t, 1, snap.Topic.Replies())

	f.Logout()
	snap = f.Snapshot()
	assert.False(t, snap.LoggedIn())
	assert.Equal(t, view.TopicList, snap.View.Screen)
	require.Len(t, snap.Topics, 1, "topics survive logout")
	assert.Equal(t, 1, snap.Users.Len())

	// reload from the same backend: everything was written through
	reloaded, _ := newForum(t, backend)
	snap = reloaded.Snapshot()
	assert.False(t, snap.LoggedIn())
	require.Len(t, snap.Topics, 1)
	assert.Len(t, snap.Topics[0].Comments, 2)

	_, err = reloaded.Login("ALICE", "pw1234")
	require.NoError(t, err)
	assert.Equal(t, alice.Id, reloaded.Snapshot().Session.Id)

	require.NoError(t, st.PersistErr())
}

func TestSessionSurvivesReload(t *testing.T) {
	backend := memory.New()
	f, _ := newForum(t, backend)

	user, err := f.Register("bob", "hunter22")
	require.NoError(t, err)

	reloaded, _ := newForum(t, backend)
	snap := reloaded.Snapshot()
	require.True(t, snap.LoggedIn())
	assert.Equal(t, user, *snap.Session)
}

func TestLoginError(t *testing.T) {
	f, _ := newForum(t, memory.New())

	_, err := f.Login("nobody", "pw")
	assert.ErrorIs(t, err, internal_errors.ErrUserNotFound)
	assert.Equal(t, "User not found. Please register.", f.Snapshot().LoginError)

	_, err = f.Register("nobody", "secret1")
	require.NoError(t, err)
	assert.Empty(t, f.Snapshot().LoginError, "cleared on the next attempt")

	f.Logout()
	_, err = f.Login("nobody", "wrong")
	assert.ErrorIs(t, err, internal_errors.ErrInvalidCredentials)
	assert.Equal(t, "Incorrect password. Please try again.", f.Snapshot().LoginError)

	_, err = f.Register("NoBody", "secret1")
	assert.ErrorIs(t, err, internal_errors.ErrUsernameTaken)
	assert.Equal(t, "Username already exists. Please try to log in or choose a different username.", f.Snapshot().LoginError)
}

func TestRouterResetOnLoginAndLogout(t *testing.T) {
	f, _ := newForum(t, memory.New())
	_, err := f.Register("carol", "secret1")
	require.NoError(t, err)

	require.True(t, f.OpenNewTopic())
	f.Logout()
	assert.Equal(t, view.TopicList, f.Snapshot().View.Screen)

	_, err = f.Login("carol", "secret1")
	require.NoError(t, err)
	assert.Equal(t, view.TopicList, f.Snapshot().View.Screen)
}

func TestNavigationRequiresSession(t *testing.T) {
	f, _ := newForum(t, memory.New())

	assert.False(t, f.OpenNewTopic())
	assert.False(t, f.SelectTopic("topic_1"))

	_, err := f.CreateTopic("Hello", "World")
	assert.ErrorIs(t, err, internal_errors.ErrNotAuthenticated)
	assert.Empty(t, f.Snapshot().Topics)
}

func TestSelectMissingTopicFallsBack(t *testing.T) {
	f, _ := newForum(t, memory.New())
	_, err := f.Register("dave", "secret1")
	require.NoError(t, err)

	require.True(t, f.SelectTopic("topic_ghost"))
	snap := f.Snapshot()
	assert.Equal(t, view.State{Screen: view.TopicList}, snap.View)
	assert.Nil(t, snap.Topic)
}

func TestAddCommentUnknownTopic(t *testing.T) {
	f, _ := newForum(t, memory.New())
	_, err := f.Register("erin", "secret1")
	require.NoError(t, err)
	_, err = f.CreateTopic("T", "C")
	require.NoError(t, err)
	before := f.Snapshot().Topics

	_, err = f.AddComment("topic_missing", "hi")
	assert.ErrorIs(t, err, internal_errors.ErrTopicNotFound)
	assert.Equal(t, before, f.Snapshot().Topics)
}

func TestVersionAdvancesOnCommit(t *testing.T) {
	f, _ := newForum(t, memory.New())
	v0 := f.Snapshot().Version

	_, err := f.Register("frank", "secret1")
	require.NoError(t, err)
	v1 := f.Snapshot().Version
	assert.Greater(t, v1, v0)

	f.Snapshot()
	assert.Equal(t, v1, f.Snapshot().Version, "reads do not bump the version")
}

func TestVersionAdvancesOnLoginError(t *testing.T) {
	f, _ := newForum(t, memory.New())
	v0 := f.Snapshot().Version

	_, err := f.Login("ghost", "whatever")
	require.Error(t, err)
	snap := f.Snapshot()
	assert.Equal(t, "User not found. Please register.", snap.LoginError)
	assert.Greater(t, snap.Version, v0, "a new login error is a new snapshot")

	_, err = f.Register("ghost", "secret1")
	require.NoError(t, err)
	snap2 := f.Snapshot()
	assert.Empty(t, snap2.LoginError)
	assert.Greater(t, snap2.Version, snap.Version)
}

func TestUnknownAuthorPlaceholder(t *testing.T) {
	backend := memory.New()
	cfg := config.Default()
	orphan := `[{"id":"topic_1","title":"Old","authorId":"user_gone","timestamp":1,"comments":[{"id":"c1","content":"x","authorId":"user_gone","timestamp":1}]}]`
	require.NoError(t, backend.Set(context.Background(), cfg.Keys.Topics, []byte(orphan)))

	f, _ := newForum(t, backend)
	snap := f.Snapshot()
	require.Len(t, snap.Topics, 1)
	assert.Equal(t, domain.UnknownUserName, snap.Users.Name(snap.Topics[0].AuthorId))
}

type failingKV struct{ kv.Store }

func (failingKV) Set(context.Context, string, []byte) error { return assert.AnError }

func TestPersistFailureIsNotFatal(t *testing.T) {
	f, st := newForum(t, failingKV{memory.New()})

	user, err := f.Register("gina", "secret1")
	require.NoError(t, err)
	_, err = f.CreateTopic("T", "C")
	require.NoError(t, err)

	snap := f.Snapshot()
	assert.Equal(t, user, *snap.Session)
	assert.Len(t, snap.Topics, 1)
	assert.ErrorIs(t, st.PersistErr(), assert.AnError)
}

type usersFailKV struct{ kv.Store }

func (k usersFailKV) Set(ctx context.Context, key string, value []byte) error {
	if key == config.Default().Keys.Users {
		return assert.AnError
	}
	return k.Store.Set(ctx, key, value)
}

func TestLostUsersWriteStaysReported(t *testing.T) {
	f, _ := newForum(t, usersFailKV{memory.New()})

	_, err := f.Register("hank", "secret1")
	require.NoError(t, err)

	err = f.PersistErr()
	require.ErrorIs(t, err, assert.AnError, "the session write after it succeeded")
	assert.Contains(t, err.Error(), "users")
}
