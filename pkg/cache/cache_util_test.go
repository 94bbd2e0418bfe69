package cache

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

func TestKey(t *testing.T) {
	assert.Equal(t, "pilotonotary:session_tokens:01JX", Key("session_tokens", "01JX"))
}

func TestUnreachableRedisSurfacesErrors(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = rdb.Close() })
	c := FromClient(rdb)
	ctx := context.Background()

	_, err := c.Get(ctx, "session_tokens", "x")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrMiss)
	assert.Error(t, c.Set(ctx, "session_tokens", "x", "U1", time.Minute))
}
