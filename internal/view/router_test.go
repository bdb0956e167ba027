package view

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func existsOnly(ids ...string) func(string) bool {
	return func(id string) bool {
		for _, known := range ids {
			if known == id {
				return true
			}
		}
		return false
	}
}

func TestRouterInitialState(t *testing.T) {
	r := NewRouter()
	assert.Equal(t, State{Screen: TopicList}, r.State())
}

func TestRouterTransitions(t *testing.T) {
	t.Run("list to topic and back", func(t *testing.T) {
		r := NewRouter()
		require.True(t, r.SelectTopic("topic_1"))
		assert.Equal(t, State{Screen: TopicView, TopicId: "topic_1"}, r.State())

		require.True(t, r.Back())
		assert.Equal(t, State{Screen: TopicList}, r.State())
	})

	t.Run("new topic submit and cancel", func(t *testing.T) {
		r := NewRouter()
		require.True(t, r.OpenNewTopic())
		assert.Equal(t, NewTopic, r.State().Screen)
		require.True(t, r.Submitted())
		assert.Equal(t, TopicList, r.State().Screen)

		require.True(t, r.OpenNewTopic())
		require.True(t, r.Cancel())
		assert.Equal(t, TopicList, r.State().Screen)
	})

	t.Run("reset from any state", func(t *testing.T) {
		r := NewRouter()
		r.SelectTopic("topic_1")
		r.Reset()
		assert.Equal(t, State{Screen: TopicList}, r.State())

		r.OpenNewTopic()
		r.Reset()
		assert.Equal(t, State{Screen: TopicList}, r.State())
	})
}

func TestRouterInvalidTransitions(t *testing.T) {
	r := NewRouter()

	assert.False(t, r.Back(), "back from list")
	assert.False(t, r.Cancel(), "cancel from list")
	assert.False(t, r.Submitted(), "submit from list")
	assert.False(t, r.SelectTopic(""), "empty id")
	assert.Equal(t, State{Screen: TopicList}, r.State())

	require.True(t, r.OpenNewTopic())
	assert.False(t, r.Back(), "back from new topic")
	assert.False(t, r.SelectTopic("topic_1"))
	assert.False(t, r.OpenNewTopic())
	assert.Equal(t, State{Screen: NewTopic}, r.State())

	r.Reset()
	require.True(t, r.SelectTopic("topic_1"))
	assert.False(t, r.Cancel())
	assert.False(t, r.OpenNewTopic())
	assert.False(t, r.SelectTopic("topic_2"))
	assert.Equal(t, State{Screen: TopicView, TopicId: "topic_1"}, r.State())
}

func TestRouterResolve(t *testing.T) {
	t.Run("existing topic stays", func(t *testing.T) {
		r := NewRouter()
		r.SelectTopic("topic_1")
		assert.Equal(t, State{Screen: TopicView, TopicId: "topic_1"}, r.Resolve(existsOnly("topic_1")))
	})

	t.Run("missing topic falls back to list", func(t *testing.T) {
		r := NewRouter()
		r.SelectTopic("ghost")
		assert.Equal(t, State{Screen: TopicList}, r.Resolve(existsOnly("topic_1")))
		assert.Equal(t, State{Screen: TopicList}, r.State())
	})

	t.Run("other screens are not checked", func(t *testing.T) {
		r := NewRouter()
		r.OpenNewTopic()
		called := false
		state := r.Resolve(func(string) bool { called = true; return false })
		assert.False(t, called)
		assert.Equal(t, NewTopic, state.Screen)
	})
}

func TestStateJSON(t *testing.T) {
	data, err := json.Marshal(State{Screen: TopicView, TopicId: "topic_1"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"screen":"topic_view","topicId":"topic_1"}`, string(data))

	data, err = json.Marshal(State{})
	require.NoError(t, err)
	assert.JSONEq(t, `{"screen":"topic_list"}`, string(data))

	var decoded State
	require.NoError(t, json.Unmarshal([]byte(`{"screen":"new_topic"}`), &decoded))
	assert.Equal(t, State{Screen: NewTopic}, decoded)

	assert.Error(t, json.Unmarshal([]byte(`{"screen":"bogus"}`), &decoded))
}
