package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T) (*Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	c, err := Connect(context.Background(), "redis://"+mr.Addr())
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c, mr
}

func TestIncrWindow(t *testing.T) {
	c, mr := newTestClient(t)
	ctx := context.Background()

	n, err := c.IncrWindow(ctx, "k", time.Minute)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
	n, err = c.IncrWindow(ctx, "k", time.Minute)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	mr.FastForward(2 * time.Minute)
	n, err = c.IncrWindow(ctx, "k", time.Minute)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestClaim(t *testing.T) {
	c, _ := newTestClient(t)
	ctx := context.Background()

	won, err := c.Claim(ctx, "idem", "1", time.Minute)
	require.NoError(t, err)
	assert.True(t, won)

	won, err = c.Claim(ctx, "idem", "1", time.Minute)
	require.NoError(t, err)
	assert.False(t, won)

	v, err := c.Get(ctx, "idem")
	require.NoError(t, err)
	assert.Equal(t, "1", v)

	require.NoError(t, c.Del(ctx, "idem"))
	v, err = c.Get(ctx, "idem")
	require.NoError(t, err)
	assert.Empty(t, v)
}

func TestConnectRejectsBadURL(t *testing.T) {
	_, err := Connect(context.Background(), "::nope")
	assert.Error(t, err)
}
