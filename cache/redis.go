// api/cache/redis.go
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// envelope is the stored form of an Entry. The tier travels by name so a
// tier table change does not invalidate deserialization, and StoredAt is
// recorded explicitly because freshness is computed by the caller, not by
// the Redis expiry.
type envelope struct {
	Payload  []byte    `json:"payload"`
	StoredAt time.Time `json:"stored_at"`
	Tier     string    `json:"tier"`
}

// RedisStore is the production Store. A single SET is atomic in Redis, which
// gives the torn-read guarantee for free; the key expiry is ttl+stale so
// entries past the servable window vanish on their own.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (r *RedisStore) Get(ctx context.Context, key Key) (Entry, bool, error) {
	raw, err := r.client.Get(ctx, key.String()).Bytes()
	if err == redis.Nil {
		return Entry{}, false, nil
	} else if err != nil {
		return Entry{}, false, fmt.Errorf("failed to read cache entry: %w", err)
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return Entry{}, false, fmt.Errorf("failed to unmarshal cache entry: %w", err)
	}

	entry := Entry{
		Payload:  env.Payload,
		StoredAt: env.StoredAt,
		Tier:     TierByName(env.Tier),
	}
	// The Redis expiry already bounds entry age, but an operator may have
	// shortened the tier table since the entry was written.
	if Freshness(entry, time.Now()) == Expired {
		return Entry{}, false, nil
	}
	return entry, true, nil
}

func (r *RedisStore) Set(ctx context.Context, key Key, payload []byte, tier Tier) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	raw, err := json.Marshal(envelope{
		Payload:  payload,
		StoredAt: time.Now(),
		Tier:     tier.Name,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal cache entry: %w", err)
	}

	if err := r.client.Set(ctx, key.String(), raw, tier.TTL+tier.Stale).Err(); err != nil {
		return fmt.Errorf("failed to store cache entry: %w", err)
	}
	return nil
}
