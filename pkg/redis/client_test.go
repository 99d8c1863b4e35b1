package redis

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Adithya-Monish-Kumar-K/vector-space-search/pkg/config"
)

func TestIsNilError(t *testing.T) {
	if !IsNilError(redis.Nil) {
		t.Fatal("redis.Nil must be a nil error")
	}
	if !IsNilError(fmt.Errorf("get: %w", redis.Nil)) {
		t.Fatal("wrapped redis.Nil must be a nil error")
	}
	if IsNilError(fmt.Errorf("connection refused")) {
		t.Fatal("other errors are not nil errors")
	}
}

// TestClientRoundTrip needs a reachable server in TEST_REDIS_ADDR.
func TestClientRoundTrip(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}
	ctx := context.Background()
	c, err := NewClient(ctx, config.RedisConfig{Addr: addr, PoolSize: 2})
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer c.Close()

	prefix := fmt.Sprintf("test:%d:", time.Now().UnixNano())
	for i := 0; i < 3; i++ {
		if err := c.Set(ctx, fmt.Sprintf("%s%d", prefix, i), []byte("v"), time.Minute); err != nil {
			t.Fatalf("set: %v", err)
		}
	}
	if v, err := c.Get(ctx, prefix+"0"); err != nil || string(v) != "v" {
		t.Fatalf("get = %q, %v", v, err)
	}
	n, err := c.FlushByPattern(ctx, prefix+"*")
	if err != nil || n != 3 {
		t.Fatalf("flush = %d, %v", n, err)
	}
	if _, err := c.Get(ctx, prefix+"0"); !IsNilError(err) {
		t.Fatalf("expected nil error after flush, got %v", err)
	}
}
