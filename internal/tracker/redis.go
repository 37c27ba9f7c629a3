package tracker

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/RichMarin19/fast-life-sub000/internal/guidance"
)

// dailyCountTTL keeps stale previous-day counters from accumulating. Two
// days is comfortably past any rollover edge; correctness never depends on
// the expiry.
const dailyCountTTL = 48 * time.Hour

// RedisStore persists tracker state in Redis so throttle and daily-limit
// decisions survive process restarts.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore creates a Store over an existing Redis client.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func throttleKey(activity guidance.ActivityType) string {
	return fmt.Sprintf("throttle.lastFired.%s", activity)
}

func dailyKey(activity guidance.ActivityType, dayKey string) string {
	return fmt.Sprintf("dailyCount.%s.%s", activity, dayKey)
}

func (r *RedisStore) GetLastFired(ctx context.Context, activity guidance.ActivityType) (time.Time, bool, error) {
	raw, err := r.client.Get(ctx, throttleKey(activity)).Result()
	if err == redis.Nil {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("failed to read last-fired: %w", err)
	}
	firedAt, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		// A corrupt record degrades to "never fired".
		return time.Time{}, false, fmt.Errorf("corrupt last-fired record: %w", err)
	}
	return firedAt, true, nil
}

func (r *RedisStore) SetLastFired(ctx context.Context, activity guidance.ActivityType, firedAt time.Time) error {
	if err := r.client.Set(ctx, throttleKey(activity), firedAt.Format(time.RFC3339Nano), 0).Err(); err != nil {
		return fmt.Errorf("failed to write last-fired: %w", err)
	}
	return nil
}

func (r *RedisStore) GetDailyCount(ctx context.Context, activity guidance.ActivityType, dayKey string) (int, error) {
	count, err := r.client.Get(ctx, dailyKey(activity, dayKey)).Int()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read daily count: %w", err)
	}
	return count, nil
}

func (r *RedisStore) IncrDailyCount(ctx context.Context, activity guidance.ActivityType, dayKey string) error {
	key := dailyKey(activity, dayKey)
	pipe := r.client.Pipeline()

	pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, dailyCountTTL)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to increment daily count: %w", err)
	}
	return nil
}
