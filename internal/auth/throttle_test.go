package auth

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

type throttleState struct {
	counts  map[string]int64
	expires map[string]time.Duration
	failing bool
}

func newThrottleState() *throttleState {
	return &throttleState{
		counts:  make(map[string]int64),
		expires: make(map[string]time.Duration),
	}
}

func (s *throttleState) Get(ctx context.Context, key string) *redis.StringCmd {
	cmd := redis.NewStringCmd(ctx)
	if s.failing {
		cmd.SetErr(errors.New("connection refused"))
		return cmd
	}
	if n, ok := s.counts[key]; ok {
		cmd.SetVal(strconv.FormatInt(n, 10))
	} else {
		cmd.SetErr(redis.Nil)
	}
	return cmd
}

func (s *throttleState) Incr(ctx context.Context, key string) *redis.IntCmd {
	cmd := redis.NewIntCmd(ctx)
	if s.failing {
		cmd.SetErr(errors.New("connection refused"))
		return cmd
	}
	s.counts[key]++
	cmd.SetVal(s.counts[key])
	return cmd
}

func (s *throttleState) Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd {
	s.expires[key] = expiration
	cmd := redis.NewBoolCmd(ctx)
	cmd.SetVal(true)
	return cmd
}

func (s *throttleState) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	cmd := redis.NewIntCmd(ctx)
	var removed int64
	for _, key := range keys {
		if _, ok := s.counts[key]; ok {
			delete(s.counts, key)
			removed++
		}
	}
	cmd.SetVal(removed)
	return cmd
}

func TestThrottleCountsPerEmailAndIP(t *testing.T) {
	state := newThrottleState()
	throttle := NewLoginThrottle(state, 3, 15)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		assert.True(t, throttle.Allow(ctx, "alice@example.com", "203.0.113.9"))
		throttle.RecordFailure(ctx, "alice@example.com", "203.0.113.9")
	}
	assert.False(t, throttle.Allow(ctx, "alice@example.com", "203.0.113.9"))

	// Other address and other account are separate counters.
	assert.True(t, throttle.Allow(ctx, "alice@example.com", "198.51.100.7"))
	assert.True(t, throttle.Allow(ctx, "bob@example.com", "203.0.113.9"))
}

func TestThrottleKeyIsCaseInsensitiveOnEmail(t *testing.T) {
	state := newThrottleState()
	throttle := NewLoginThrottle(state, 2, 15)
	ctx := context.Background()

	throttle.RecordFailure(ctx, "Alice@Example.com", "203.0.113.9")
	throttle.RecordFailure(ctx, "alice@example.com", "203.0.113.9")

	assert.False(t, throttle.Allow(ctx, "ALICE@EXAMPLE.COM", "203.0.113.9"))
}

func TestThrottleWindowStartsOnFirstFailure(t *testing.T) {
	state := newThrottleState()
	throttle := NewLoginThrottle(state, 5, 15)
	ctx := context.Background()

	throttle.RecordFailure(ctx, "alice@example.com", "203.0.113.9")
	throttle.RecordFailure(ctx, "alice@example.com", "203.0.113.9")

	assert.Len(t, state.expires, 1)
	for _, window := range state.expires {
		assert.Equal(t, 15*time.Minute, window)
	}
}

func TestThrottleResetClearsCounter(t *testing.T) {
	state := newThrottleState()
	throttle := NewLoginThrottle(state, 2, 15)
	ctx := context.Background()

	throttle.RecordFailure(ctx, "alice@example.com", "203.0.113.9")
	throttle.RecordFailure(ctx, "alice@example.com", "203.0.113.9")
	assert.False(t, throttle.Allow(ctx, "alice@example.com", "203.0.113.9"))

	throttle.Reset(ctx, "alice@example.com", "203.0.113.9")
	assert.True(t, throttle.Allow(ctx, "alice@example.com", "203.0.113.9"))
}

func TestThrottleFailsOpen(t *testing.T) {
	ctx := context.Background()

	var nilThrottle *LoginThrottle
	assert.True(t, nilThrottle.Allow(ctx, "alice@example.com", "203.0.113.9"))

	noStore := NewLoginThrottle(nil, 2, 15)
	assert.True(t, noStore.Allow(ctx, "alice@example.com", "203.0.113.9"))
	noStore.RecordFailure(ctx, "alice@example.com", "203.0.113.9")
	assert.True(t, noStore.Allow(ctx, "alice@example.com", "203.0.113.9"))

	state := newThrottleState()
	state.failing = true
	unreachable := NewLoginThrottle(state, 2, 15)
	assert.True(t, unreachable.Allow(ctx, "alice@example.com", "203.0.113.9"))
}
