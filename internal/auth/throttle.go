package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// ThrottleStore is the subset of redis commands the login throttle
// uses. *redis.Client satisfies it.
type ThrottleStore interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Incr(ctx context.Context, key string) *redis.IntCmd
	Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// LoginThrottle counts failed login attempts per email and client IP
// in Redis and blocks further attempts once the limit is reached
// inside the window. A nil store disables throttling entirely.
type LoginThrottle struct {
	store  ThrottleStore
	limit  int
	window time.Duration
}

// NewLoginThrottle constructs a throttle.
func NewLoginThrottle(store ThrottleStore, limit, windowMinutes int) *LoginThrottle {
	if limit <= 0 {
		limit = 10
	}
	if windowMinutes <= 0 {
		windowMinutes = 15
	}
	return &LoginThrottle{
		store:  store,
		limit:  limit,
		window: time.Duration(windowMinutes) * time.Minute,
	}
}

func (t *LoginThrottle) key(email, ip string) string {
	return fmt.Sprintf("login_attempts:%s:%s", strings.ToLower(email), ip)
}

// Allow reports whether another login attempt is permitted. Redis
// outages fail open; authentication still runs.
func (t *LoginThrottle) Allow(ctx context.Context, email, ip string) bool {
	if t == nil || t.store == nil {
		return true
	}
	count, err := t.store.Get(ctx, t.key(email, ip)).Int()
	if err != nil {
		return true
	}
	return count < t.limit
}

// RecordFailure increments the failure counter, starting the window on
// the first failure.
func (t *LoginThrottle) RecordFailure(ctx context.Context, email, ip string) {
	if t == nil || t.store == nil {
		return
	}
	key := t.key(email, ip)
	if count, err := t.store.Incr(ctx, key).Result(); err == nil && count == 1 {
		t.store.Expire(ctx, key, t.window)
	}
}

// Reset clears the counter after a successful login.
func (t *LoginThrottle) Reset(ctx context.Context, email, ip string) {
	if t == nil || t.store == nil {
		return
	}
	t.store.Del(ctx, t.key(email, ip))
}
