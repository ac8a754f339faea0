package middleware

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// LoginRateLimiter throttles login attempts per email and per client IP,
// backed by Redis so limits hold across process restarts and replicas.
type LoginRateLimiter struct {
	client      *redis.Client
	maxAttempts int
	window      time.Duration
	block       time.Duration
}

func NewLoginRateLimiter(client *redis.Client, maxAttempts int, window, block time.Duration) *LoginRateLimiter {
	return &LoginRateLimiter{
		client:      client,
		maxAttempts: maxAttempts,
		window:      window,
		block:       block,
	}
}

func attemptKey(subject string) string {
	return fmt.Sprintf("login:attempts:%s", subject)
}

func blockKey(subject string) string {
	return fmt.Sprintf("login:blocked:%s", subject)
}

// Allow reports whether a login attempt for this email/IP pair may proceed.
// Fails open if Redis is unreachable: login availability beats throttling.
func (rl *LoginRateLimiter) Allow(ctx context.Context, email, ip string) bool {
	for _, subject := range []string{email, ip} {
		blocked, err := rl.client.Exists(ctx, blockKey(subject)).Result()
		if err != nil {
			return true
		}
		if blocked > 0 {
			return false
		}
	}
	return true
}

// RecordFailure counts a failed attempt against both subjects and starts a
// block window once the attempt budget is exhausted.
func (rl *LoginRateLimiter) RecordFailure(ctx context.Context, email, ip string) {
	for _, subject := range []string{email, ip} {
		key := attemptKey(subject)
		count, err := rl.client.Incr(ctx, key).Result()
		if err != nil {
			continue
		}
		if count == 1 {
			rl.client.Expire(ctx, key, rl.window)
		}
		if count >= int64(rl.maxAttempts) {
			rl.client.Set(ctx, blockKey(subject), "1", rl.block)
			rl.client.Del(ctx, key)
		}
	}
}

// Reset clears the attempt counters after a successful login.
func (rl *LoginRateLimiter) Reset(ctx context.Context, email, ip string) {
	rl.client.Del(ctx, attemptKey(email), attemptKey(ip))
}
