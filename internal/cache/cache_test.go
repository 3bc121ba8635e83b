package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/portal-access/portal-access/internal/config"
)

func exerciseCache(t *testing.T, c Cache) {
	t.Helper()

	ctx := context.Background()

	_, err := c.Get(ctx, "user:1")
	require.ErrorIs(t, err, ErrMiss)

	require.NoError(t, c.Set(ctx, "user:1", []byte(`{"id":"1"}`)))
	require.NoError(t, c.Set(ctx, "roles", []byte(`{}`)))

	got, err := c.Get(ctx, "user:1")
	require.NoError(t, err)
	assert.Equal(t, `{"id":"1"}`, string(got))

	require.NoError(t, c.Delete(ctx, "user:1", "missing"))

	_, err = c.Get(ctx, "user:1")
	require.ErrorIs(t, err, ErrMiss)

	_, err = c.Get(ctx, "roles")
	require.NoError(t, err)

	require.NoError(t, c.Delete(ctx))
}

func TestMemory(t *testing.T) {
	exerciseCache(t, NewMemory(16, time.Minute))
}

func TestMemory_ValueIsCopied(t *testing.T) {
	c := NewMemory(4, time.Minute)
	ctx := context.Background()

	value := []byte("abc")
	require.NoError(t, c.Set(ctx, "k", value))
	value[0] = 'x'

	got, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(got))
}

func TestMemory_Evicts(t *testing.T) {
	c := NewMemory(2, time.Minute)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "a", []byte("1")))
	require.NoError(t, c.Set(ctx, "b", []byte("2")))
	require.NoError(t, c.Set(ctx, "c", []byte("3")))

	assert.Equal(t, 2, c.Len())

	_, err := c.Get(ctx, "a")
	require.ErrorIs(t, err, ErrMiss)
}

func TestRedis(t *testing.T) {
	mr := miniredis.RunT(t)

	c, err := NewRedis(context.Background(), mr.Addr(), "portal:", time.Minute)
	require.NoError(t, err)

	t.Cleanup(func() { _ = c.Close() })

	exerciseCache(t, c)

	require.NoError(t, c.Set(context.Background(), "roles", []byte("x")))
	assert.True(t, mr.Exists("portal:roles"))

	mr.FastForward(2 * time.Minute)

	_, err = c.Get(context.Background(), "roles")
	require.ErrorIs(t, err, ErrMiss)
}

func TestRedis_Unreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := NewRedis(context.Background(), addr, "", time.Minute)
	require.Error(t, err)
}

func TestNew(t *testing.T) {
	mr := miniredis.RunT(t)

	testCases := []struct {
		name          string
		cfg           config.Cache
		expectedType  any
		expectedError error
	}{
		{name: "default is memory", cfg: config.Cache{}, expectedType: &Memory{}},
		{name: "memory", cfg: config.Cache{Backend: BackendMemory, Size: 8, TTL: 1}, expectedType: &Memory{}},
		{name: "redis", cfg: config.Cache{Backend: BackendRedis, RedisAddr: mr.Addr()}, expectedType: &Redis{}},
		{name: "unknown", cfg: config.Cache{Backend: "memcached"}, expectedError: ErrUnknownBackend},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			c, err := New(context.Background(), tc.cfg)
			if tc.expectedError != nil {
				require.ErrorIs(t, err, tc.expectedError)

				return
			}

			require.NoError(t, err)
			assert.IsType(t, tc.expectedType, c)
		})
	}
}
