package autocomplete

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// ContextWindow bounds the number of recent message lines kept per chat.
	ContextWindow = 20

	keyPrefix = "chatctx:"

	// entries expire after a short idle window to bound memory use
	cacheTTL = 5 * time.Minute
)

// Cache is the Redis-backed sliding context window: push new, drop oldest,
// expire when idle.
type Cache struct {
	rdb *redis.Client
}

func NewCache(rdb *redis.Client) *Cache {
	return &Cache{rdb: rdb}
}

func (c *Cache) Append(ctx context.Context, chatID, line string) error {
	key := keyPrefix + chatID
	if err := c.rdb.RPush(ctx, key, line).Err(); err != nil {
		return err
	}
	if err := c.rdb.LTrim(ctx, key, -ContextWindow, -1).Err(); err != nil {
		return err
	}
	return c.rdb.Expire(ctx, key, cacheTTL).Err()
}

func (c *Cache) Recent(ctx context.Context, chatID string) ([]string, error) {
	return c.rdb.LRange(ctx, keyPrefix+chatID, 0, -1).Result()
}
