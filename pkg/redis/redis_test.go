package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return Wrap(rdb, zap.NewNop())
}

func TestCheckRateLimit(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		allowed, err := c.CheckRateLimit(ctx, "1.2.3.4:/api/v1/commands", 3, time.Minute)
		if err != nil {
			t.Fatalf("第 %d 次请求出错: %v", i+1, err)
		}
		if !allowed {
			t.Fatalf("第 %d 次请求应被放行", i+1)
		}
	}

	allowed, err := c.CheckRateLimit(ctx, "1.2.3.4:/api/v1/commands", 3, time.Minute)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if allowed {
		t.Error("超过上限的请求应被拒绝")
	}

	// 不同 key 互不影响
	allowed, _ = c.CheckRateLimit(ctx, "5.6.7.8:/api/v1/commands", 3, time.Minute)
	if !allowed {
		t.Error("其他客户端的请求应被放行")
	}
}

func TestPing(t *testing.T) {
	c := newTestClient(t)
	if err := c.Ping(context.Background()); err != nil {
		t.Fatalf("Ping 失败: %v", err)
	}
}
