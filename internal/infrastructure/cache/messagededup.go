package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// dedupKeyPrefix namespaces bank message deduplication keys
const dedupKeyPrefix = "edupay:dedup:"

// MessageDeduplicator provides Redis-based suppression of duplicate bank
// message deliveries. SMS forwarder apps retry aggressively, so the same
// message often arrives at the webhook more than once.
type MessageDeduplicator struct {
	client *redis.Client
}

func NewMessageDeduplicator(client *redis.Client) *MessageDeduplicator {
	return &MessageDeduplicator{client: client}
}

// SeenRecently atomically records the key with SetNX and reports whether
// it was already present. SetNX keeps the check-and-record race free
// across multiple webhook instances.
func (d *MessageDeduplicator) SeenRecently(ctx context.Context, key string, window time.Duration) (bool, error) {
	acquired, err := d.client.SetNX(ctx, dedupKeyPrefix+key, "1", window).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check message dedup key: %w", err)
	}

	return !acquired, nil
}
