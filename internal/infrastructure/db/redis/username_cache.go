package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/technotes/notes-api/internal/api/metrics"
)

const defaultUsernameTTL = 10 * time.Minute

// UsernameCache stores user ID to username mappings used by note listings.
// Key format: username:<user_id>
type UsernameCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewUsernameCache creates a UsernameCache wrapping the given Redis client.
// A non-positive ttl falls back to defaultUsernameTTL.
func NewUsernameCache(client *redis.Client, ttl time.Duration) *UsernameCache {
	if ttl <= 0 {
		ttl = defaultUsernameTTL
	}
	return &UsernameCache{client: client, ttl: ttl}
}

// GetMany fetches all IDs with one MGET. Missing keys are absent from the result.
func (c *UsernameCache) GetMany(ctx context.Context, ids []string) (map[string]string, error) {
	out := make(map[string]string, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = c.key(id)
	}

	vals, err := c.client.MGet(ctx, keys...).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("username cache get: %w", err)
	}
	for i, v := range vals {
		if s, ok := v.(string); ok {
			out[ids[i]] = s
		}
	}

	metrics.UsernameCacheTotal.WithLabelValues("hit").Add(float64(len(out)))
	metrics.UsernameCacheTotal.WithLabelValues("miss").Add(float64(len(ids) - len(out)))
	return out, nil
}

// SetMany writes all mappings in a single pipeline, each expiring after ttl.
func (c *UsernameCache) SetMany(ctx context.Context, usernames map[string]string) error {
	if len(usernames) == 0 {
		return nil
	}
	_, err := c.client.Pipelined(ctx, func(p redis.Pipeliner) error {
		for id, name := range usernames {
			p.Set(ctx, c.key(id), name, c.ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("username cache set: %w", err)
	}
	return nil
}

// Invalidate drops the mapping for a renamed or deleted user.
func (c *UsernameCache) Invalidate(ctx context.Context, id string) error {
	return c.client.Del(ctx, c.key(id)).Err()
}

func (c *UsernameCache) key(id string) string {
	return "username:" + id
}
