package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheRoundTrip(t *testing.T) {
	mr := miniredis.RunT(t)
	c := New(mr.Addr())
	defer c.Close()

	ctx := context.Background()

	type payload struct {
		Name  string `json:"name"`
		Count int    `json:"count"`
	}

	var out payload
	assert.False(t, c.GetJSON(ctx, "missing", &out))

	c.SetJSON(ctx, "k", payload{Name: "feed", Count: 3}, time.Minute)
	require.True(t, c.GetJSON(ctx, "k", &out))
	assert.Equal(t, "feed", out.Name)
	assert.Equal(t, 3, out.Count)

	c.Delete(ctx, "k")
	assert.False(t, c.GetJSON(ctx, "k", &out))
}

func TestCacheExpiry(t *testing.T) {
	mr := miniredis.RunT(t)
	c := New(mr.Addr())
	defer c.Close()

	ctx := context.Background()
	c.SetJSON(ctx, "k", "v", time.Second)

	mr.FastForward(2 * time.Second)

	var out string
	assert.False(t, c.GetJSON(ctx, "k", &out))
}

func TestCacheDegradesWithoutRedis(t *testing.T) {
	// No address at all: every call is a miss or a no-op.
	c := New("")
	ctx := context.Background()

	var out string
	assert.False(t, c.GetJSON(ctx, "k", &out))
	c.SetJSON(ctx, "k", "v", time.Minute)
	c.Delete(ctx, "k")
	c.Close()
}
