package fs

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itchan-dev/foro/shared/kv"
	"github.com/itchan-dev/foro/shared/kv/kvtest"
)

func TestCompliance(t *testing.T) {
	kvtest.Run(t, func(t *testing.T) kv.Store {
		s, err := New(t.TempDir())
		require.NoError(t, err)
		return s
	})
}

func TestNew_CreatesDirectory(t *testing.T) {
	root := filepath.Join(t.TempDir(), "nested", "data")
	_, err := New(root)
	require.NoError(t, err)

	info, err := os.Stat(root)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestKeysStayInsideRoot(t *testing.T) {
	root := t.TempDir()
	s, err := New(root)
	require.NoError(t, err)

	require.NoError(t, s.Set(context.Background(), "../escape/forum_users", []byte(`[]`)))

	entries, err := os.ReadDir(root)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.False(t, entries[0].IsDir())

	v, ok, err := s.Get(context.Background(), "../escape/forum_users")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "[]", string(v))
}

func TestValuesSurviveReopen(t *testing.T) {
	root := t.TempDir()
	ctx := context.Background()

	first, err := New(root)
	require.NoError(t, err)
	require.NoError(t, first.Set(ctx, "forum_topics", []byte(`[{"id":"topic_1"}]`)))
	require.NoError(t, first.Close())

	second, err := New(root)
	require.NoError(t, err)
	v, ok, err := second.Get(ctx, "forum_topics")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.JSONEq(t, `[{"id":"topic_1"}]`, string(v))
}
