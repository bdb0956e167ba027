package main

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itchan-dev/foro/internal/store"
	"github.com/itchan-dev/foro/shared/config"
	"github.com/itchan-dev/foro/shared/domain"
	internal_errors "github.com/itchan-dev/foro/shared/errors"
	"github.com/itchan-dev/foro/shared/kv/memory"
)

func seededStore(t *testing.T) *store.Store {
	t.Helper()
	st := store.New(memory.New(), config.Default().Keys, time.Second)
	alice := domain.User{Id: "user_1", Username: "alice", Password: "secret-hash"}
	st.CommitUsers([]domain.User{alice, {Id: "user_2", Username: "bob", Password: "x"}})
	st.CommitSession(&alice)
	st.CommitTopics([]domain.Topic{{
		Id: "topic_1", Title: "Hello", AuthorId: "user_1", Timestamp: 1700000000000,
		Comments: []domain.Comment{
			{Id: "c1", Content: "World", AuthorId: "user_1", Timestamp: 1700000000000},
			{Id: "c2", Content: "Reply", AuthorId: "user_9", Timestamp: 1700000060000},
		},
	}})
	return st
}

func TestPrintUsers(t *testing.T) {
	st := seededStore(t)

	var buf bytes.Buffer
	require.NoError(t, printUsers(&buf, st, false))
	out := buf.String()
	assert.Contains(t, out, "alice")
	assert.Contains(t, out, "bob")
	assert.NotContains(t, out, "secret-hash")

	buf.Reset()
	require.NoError(t, printUsers(&buf, st, true))
	var rows []userRow
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rows))
	require.Len(t, rows, 2)
	assert.True(t, rows[0].Current)
	assert.False(t, rows[1].Current)
}

func TestPrintTopics(t *testing.T) {
	st := seededStore(t)

	var buf bytes.Buffer
	require.NoError(t, printTopics(&buf, st, false))
	assert.Contains(t, buf.String(), "Hello")
	assert.Contains(t, buf.String(), "2023-11-14 22:13:20")

	buf.Reset()
	require.NoError(t, printTopics(&buf, st, true))
	var rows []topicRow
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rows))
	require.Len(t, rows, 1)
	assert.Equal(t, "alice", rows[0].Author)
	assert.Equal(t, 1, rows[0].Replies)
}

func TestPrintTopic(t *testing.T) {
	st := seededStore(t)

	var buf bytes.Buffer
	require.NoError(t, printTopic(&buf, st, "topic_1", false))
	out := buf.String()
	assert.Contains(t, out, "by alice")
	assert.Contains(t, out, "Unknown User:\nReply")
	assert.Less(t, bytes.Index(buf.Bytes(), []byte("World")), bytes.Index(buf.Bytes(), []byte("Reply")))

	err := printTopic(&buf, st, "topic_404", false)
	assert.ErrorIs(t, err, internal_errors.ErrTopicNotFound)
}
