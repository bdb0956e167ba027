// Package kvtest is a compliance suite every kv.Store backend runs in its tests.
package kvtest

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itchan-dev/foro/shared/kv"
)

// Run exercises the kv.Store contract. makeStore must return a clean, isolated store;
// Run closes it at the end.
func Run(t *testing.T, makeStore func(t *testing.T) kv.Store) {
	t.Helper()

	s := makeStore(t)
	ctx := context.Background()
	key := "k-" + uuid.NewString()

	t.Run("missing key is absent, not an error", func(t *testing.T) {
		v, ok, err := s.Get(ctx, key)
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Nil(t, v)
	})

	t.Run("set then get", func(t *testing.T) {
		require.NoError(t, s.Set(ctx, key, []byte(`[{"id":"user_1"}]`)))
		v, ok, err := s.Get(ctx, key)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.JSONEq(t, `[{"id":"user_1"}]`, string(v))
	})

	t.Run("set overwrites", func(t *testing.T) {
		require.NoError(t, s.Set(ctx, key, []byte(`null`)))
		v, ok, err := s.Get(ctx, key)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "null", string(v))
	})

	t.Run("corrupt values are stored verbatim", func(t *testing.T) {
		other := key + "-corrupt"
		require.NoError(t, s.Set(ctx, other, []byte(`{not json`)))
		v, ok, err := s.Get(ctx, other)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "{not json", string(v))
	})

	t.Run("keys are independent", func(t *testing.T) {
		a, b := key+"-a", key+"-b"
		require.NoError(t, s.Set(ctx, a, []byte(`"a"`)))
		require.NoError(t, s.Set(ctx, b, []byte(`"b"`)))
		va, _, err := s.Get(ctx, a)
		require.NoError(t, err)
		vb, _, err := s.Get(ctx, b)
		require.NoError(t, err)
		assert.Equal(t, `"a"`, string(va))
		assert.Equal(t, `"b"`, string(vb))
	})

	t.Run("prefix namespaces keys", func(t *testing.T) {
		p := kv.WithPrefix(s, "ns:")
		require.NoError(t, p.Set(ctx, key, []byte(`1`)))
		v, ok, err := s.Get(ctx, "ns:"+key)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "1", string(v))
	})

	require.NoError(t, s.Close())
}
