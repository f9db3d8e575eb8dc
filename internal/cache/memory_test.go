package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory_SetGetDelete(t *testing.T) {
	ctx := context.Background()
	c := NewMemory("jg")

	_, err := c.Get(ctx, "sid:x")
	require.True(t, IsNotFound(err))

	require.NoError(t, c.Set(ctx, "sid:x", `{"user_id":"1"}`, time.Minute))
	v, err := c.Get(ctx, "sid:x")
	require.NoError(t, err)
	assert.Equal(t, `{"user_id":"1"}`, v)

	ok, err := c.Exists(ctx, "sid:x")
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, c.Delete(ctx, "sid:x"))
	ok, err = c.Exists(ctx, "sid:x")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemory_Expiration(t *testing.T) {
	ctx := context.Background()
	c := NewMemory("")

	require.NoError(t, c.Set(ctx, "k", "v", 20*time.Millisecond))
	require.NoError(t, c.Set(ctx, "forever", "v", 0))
	time.Sleep(50 * time.Millisecond)

	_, err := c.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrNotFound)
	v, err := c.Get(ctx, "forever")
	require.NoError(t, err)
	assert.Equal(t, "v", v)
}

func TestNew_Kinds(t *testing.T) {
	c, err := New(context.Background(), Config{Kind: ""})
	require.NoError(t, err)
	assert.IsType(t, &Memory{}, c)
	require.NoError(t, c.Ping(context.Background()))
	require.NoError(t, c.Close())

	_, err = New(context.Background(), Config{Kind: "memcached"})
	assert.Error(t, err)
}
