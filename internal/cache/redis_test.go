package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisRoundTrip(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	ctx := context.Background()
	client, err := Dial(ctx, addr, os.Getenv("REDIS_PASSWORD"), 0)
	require.NoError(t, err)
	defer client.Close()

	c := NewRedis(client, "blogroll_test")
	c.Clear(ctx)

	c.Set(ctx, "index_page", []byte("html"), time.Minute)
	got, ok := c.Get(ctx, "index_page")
	require.True(t, ok)
	assert.Equal(t, "html", string(got))

	c.Clear(ctx)
	_, ok = c.Get(ctx, "index_page")
	assert.False(t, ok)
}
