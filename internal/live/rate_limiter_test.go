package live

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func testLimiter(t *testing.T) (*RateLimiter, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewRateLimiterWithClient(client), mr
}

func TestAllowMessageWithinLimit(t *testing.T) {
	rl, _ := testLimiter(t)
	config := RateLimitConfig{MaxMessages: 3, MessageWindow: time.Minute}

	for i := 0; i < 3; i++ {
		if !rl.AllowMessage("session-1", config) {
			t.Errorf("Message %d should be allowed", i+1)
		}
	}
	if rl.AllowMessage("session-1", config) {
		t.Errorf("Fourth message should be rejected")
	}
}

func TestAllowMessagePerSession(t *testing.T) {
	rl, _ := testLimiter(t)
	config := RateLimitConfig{MaxMessages: 1, MessageWindow: time.Minute}

	if !rl.AllowMessage("session-a", config) {
		t.Errorf("First message for session-a should be allowed")
	}
	// A different session has its own window
	if !rl.AllowMessage("session-b", config) {
		t.Errorf("First message for session-b should be allowed")
	}
	if rl.AllowMessage("session-a", config) {
		t.Errorf("Second message for session-a should be rejected")
	}
}

func TestAllowMessageWindowExpiry(t *testing.T) {
	rl, mr := testLimiter(t)
	config := RateLimitConfig{MaxMessages: 1, MessageWindow: time.Second}

	if !rl.AllowMessage("session-1", config) {
		t.Fatalf("First message should be allowed")
	}
	if rl.AllowMessage("session-1", config) {
		t.Fatalf("Second message should be rejected inside the window")
	}

	mr.FastForward(2 * time.Second)
	if !rl.AllowMessage("session-1", config) {
		t.Errorf("Message after window expiry should be allowed")
	}
}

func TestReset(t *testing.T) {
	rl, _ := testLimiter(t)
	config := RateLimitConfig{MaxMessages: 1, MessageWindow: time.Minute}

	rl.AllowMessage("session-1", config)
	rl.Reset("session-1")
	if !rl.AllowMessage("session-1", config) {
		t.Errorf("Message after reset should be allowed")
	}
}

func TestFailOpenWithoutRedis(t *testing.T) {
	// No client wired at all: every message is allowed
	rl := NewRateLimiterWithClient(nil)
	if !rl.AllowMessage("session-1", DefaultRateLimitConfig()) {
		t.Errorf("Expected fail-open with nil client")
	}

	// Unreachable Redis: still allowed
	dead := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"})
	rl = NewRateLimiterWithClient(dead)
	if !rl.AllowMessage("session-1", DefaultRateLimitConfig()) {
		t.Errorf("Expected fail-open with unreachable Redis")
	}
}
