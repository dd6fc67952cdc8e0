package cache

import (
	"context"
	"fmt"
	"time"
)

// SeenMessageTTL bounds how long processed webhook message IDs are
// remembered. The database unique index is the durable guard; this is
// only a fast path that spares a Mongo round trip on gateway retries.
const SeenMessageTTL = 24 * time.Hour

func seenMessageKey(chatID, messageID string) string {
	return fmt.Sprintf("webhook:seen:%s:%s", chatID, messageID)
}

// SeenMessage reports whether a webhook message was already processed.
func (c *Cache) SeenMessage(ctx context.Context, chatID, messageID string) (bool, error) {
	n, err := c.client.Exists(ctx, seenMessageKey(chatID, messageID)).Result()
	if err != nil {
		return false, fmt.Errorf("check seen message: %w", err)
	}
	return n > 0, nil
}

// MarkMessageProcessed records a webhook message ID so retried
// deliveries can be skipped cheaply.
func (c *Cache) MarkMessageProcessed(ctx context.Context, chatID, messageID string) error {
	if err := c.client.Set(ctx, seenMessageKey(chatID, messageID), "1", SeenMessageTTL).Err(); err != nil {
		return fmt.Errorf("mark message processed: %w", err)
	}
	return nil
}
