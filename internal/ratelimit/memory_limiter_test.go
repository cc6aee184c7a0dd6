package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devaqn/financeira-bot/pkg/config"
)

func TestMemoryLimiter_AllowsWithinLimit(t *testing.T) {
	limiter := NewMemoryLimiter(testLogger())
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		result, err := limiter.Check(ctx, "chat:1", 5, time.Minute)
		require.NoError(t, err)
		assert.True(t, result.Allowed)
	}
}

func TestMemoryLimiter_BlocksWhenExceeded(t *testing.T) {
	limiter := NewMemoryLimiter(testLogger())
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		result, err := limiter.Check(ctx, "chat:1", 2, time.Minute)
		require.NoError(t, err)
		assert.True(t, result.Allowed)
	}

	result, err := limiter.Check(ctx, "chat:1", 2, time.Minute)
	assert.ErrorIs(t, err, ErrLimitExceeded)
	assert.False(t, result.Allowed)

	// Other chats are unaffected.
	other, err := limiter.Check(ctx, "chat:2", 2, time.Minute)
	require.NoError(t, err)
	assert.True(t, other.Allowed)
}

func TestRulesPerChatLimit(t *testing.T) {
	rules := NewRules(config.RateLimitConfig{
		Enabled:       true,
		PerMinute:     20,
		WindowSeconds: 30,
	})

	assert.True(t, rules.Enabled())
	limit, window := rules.PerChatLimit()
	assert.Equal(t, 20, limit)
	assert.Equal(t, 30*time.Second, window)
}

func TestRulesDisabled(t *testing.T) {
	rules := NewRules(config.RateLimitConfig{Enabled: false, PerMinute: 20})
	assert.False(t, rules.Enabled())

	rules = NewRules(config.RateLimitConfig{Enabled: true, PerMinute: 0})
	assert.False(t, rules.Enabled())

	// Window falls back to one minute when unset.
	rules = NewRules(config.RateLimitConfig{Enabled: true, PerMinute: 5})
	_, window := rules.PerChatLimit()
	assert.Equal(t, time.Minute, window)
}
