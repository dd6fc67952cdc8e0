package cache

import (
	"context"
	"testing"
	"time"

	"github.com/businessguru/crm/internal/testutil"
)

func newTestCache(t *testing.T) *Cache {
	t.Helper()
	redisURL := testutil.RequireEnv(t, "REDIS_TEST_URL")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	c, err := New(ctx, redisURL)
	if err != nil {
		t.Fatalf("failed to connect to test Redis: %v", err)
	}
	t.Cleanup(func() {
		_ = testutil.FlushRedis(context.Background(), c.Client())
		_ = c.Close()
	})
	return c
}

func TestCache_SeenMessage(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	chatID := testutil.UniqueMobile() + "@c.us"
	messageID := testutil.UniqueID("msg")

	seen, err := c.SeenMessage(ctx, chatID, messageID)
	if err != nil {
		t.Fatalf("seen message: %v", err)
	}
	if seen {
		t.Fatal("message should not be seen before marking")
	}

	if err := c.MarkMessageProcessed(ctx, chatID, messageID); err != nil {
		t.Fatalf("mark message processed: %v", err)
	}

	seen, err = c.SeenMessage(ctx, chatID, messageID)
	if err != nil {
		t.Fatalf("seen message after mark: %v", err)
	}
	if !seen {
		t.Fatal("message should be seen after marking")
	}
}
