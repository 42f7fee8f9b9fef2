package limits

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var ErrLimitExceeded = errors.New("rate limit exceeded")

// Decision describes the state of a key's current window.
type Decision struct {
	Limit      int
	Remaining  int
	RetryAfter time.Duration
}

// RateLimiter is a fixed-window counter stored in Redis, shared by every
// instance of the server.
type RateLimiter struct {
	client *redis.Client
	prefix string
	limit  int
	window time.Duration
}

func NewRateLimiter(client *redis.Client, prefix string, limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{client: client, prefix: prefix, limit: limit, window: window}
}

// Allow counts one hit for key. It returns ErrLimitExceeded once the window
// holds more than limit hits. A nil limiter or client allows everything.
func (l *RateLimiter) Allow(ctx context.Context, key string) (Decision, error) {
	if l == nil || l.client == nil {
		return Decision{}, nil
	}

	cnt, err := l.countCheck(ctx, fmt.Sprintf("%s:%s", l.prefix, key))
	if err != nil {
		return Decision{}, err
	}

	d := Decision{Limit: l.limit, Remaining: l.limit - int(cnt)}
	if d.Remaining < 0 {
		d.Remaining = 0
	}
	if int(cnt) > l.limit {
		d.RetryAfter = l.window
		return d, ErrLimitExceeded
	}
	return d, nil
}

// Reset clears the current window for key.
func (l *RateLimiter) Reset(ctx context.Context, key string) error {
	if l == nil || l.client == nil {
		return nil
	}
	return l.client.Del(ctx, l.windowKey(fmt.Sprintf("%s:%s", l.prefix, key))).Err()
}

func (l *RateLimiter) countCheck(ctx context.Context, key string) (int64, error) {
	redisKey := l.windowKey(key)

	cnt, err := l.client.Incr(ctx, redisKey).Result()
	if err != nil {
		return 0, err
	}
	if cnt == 1 {
		l.client.Expire(ctx, redisKey, l.window)
	}
	return cnt, nil
}

func (l *RateLimiter) windowKey(key string) string {
	slot := time.Now().UTC().Unix() / int64(l.window.Seconds())
	return fmt.Sprintf("%s:%d", key, slot)
}
