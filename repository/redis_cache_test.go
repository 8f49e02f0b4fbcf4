package repository

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// closedAddr returns a local address nothing listens on.
func closedAddr(t *testing.T) string {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	require.NoError(t, l.Close())
	return addr
}

func TestRedisCache_Unreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	c := NewRedisCache(RedisOptions{Address: closedAddr(t)})
	defer c.Close()

	assert.ErrorContains(t, c.Ping(ctx), "pinging redis")

	_, ok := c.Get(ctx, "narration:1")
	assert.False(t, ok, "errors read as a miss")

	assert.Error(t, c.Set(ctx, "narration:1", "text", time.Minute))
}
