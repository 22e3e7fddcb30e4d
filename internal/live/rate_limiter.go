package live

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// RateLimiter throttles trainee messages per session using a fixed Redis
// window. The limiter fails open: if Redis is down, messages are allowed and
// the error is logged, so the simulation never stalls on infrastructure.
type RateLimiter struct {
	rdb *redis.Client
	ctx context.Context
}

// NewRateLimiter creates a limiter over the shared Redis client.
func NewRateLimiter() *RateLimiter {
	return &RateLimiter{
		rdb: GetRedisClient(),
		ctx: GetContext(),
	}
}

// NewRateLimiterWithClient is used by tests to inject a client.
func NewRateLimiterWithClient(client *redis.Client) *RateLimiter {
	return &RateLimiter{
		rdb: client,
		ctx: context.Background(),
	}
}

// RateLimitConfig defines the message throttle rules.
type RateLimitConfig struct {
	MaxMessages   int           // per window per session
	MessageWindow time.Duration // window length
}

// DefaultRateLimitConfig allows 20 messages per minute per session, roughly
// double a fast typist's realistic turn pace.
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		MaxMessages:   20,
		MessageWindow: time.Minute,
	}
}

// AllowMessage increments the session's window counter and reports whether
// the message is within the limit.
func (rl *RateLimiter) AllowMessage(sessionID string, config RateLimitConfig) bool {
	if rl == nil || rl.rdb == nil {
		return true
	}

	key := fmt.Sprintf("rate:message:%s", sessionID)

	count, err := rl.rdb.Incr(rl.ctx, key).Result()
	if err != nil {
		log.Printf("rate limiter unavailable, allowing message: %v", err)
		return true
	}

	// Set expiration if first time
	if count == 1 {
		rl.rdb.Expire(rl.ctx, key, config.MessageWindow)
	}

	return count <= int64(config.MaxMessages)
}

// Reset clears a session's window, used when a session ends.
func (rl *RateLimiter) Reset(sessionID string) {
	if rl == nil || rl.rdb == nil {
		return
	}
	key := fmt.Sprintf("rate:message:%s", sessionID)
	if err := rl.rdb.Del(rl.ctx, key).Err(); err != nil {
		log.Printf("failed to reset rate limit for %s: %v", sessionID, err)
	}
}
