package ratelimit

import (
	"time"

	"github.com/devaqn/financeira-bot/pkg/config"
)

// Rules translates configuration into the per-chat limit applied to
// inbound messages.
type Rules struct {
	config config.RateLimitConfig
}

// NewRules constructs rate limiting rules from configuration settings.
func NewRules(cfg config.RateLimitConfig) *Rules {
	return &Rules{config: cfg}
}

// Enabled reports whether rate limiting is active.
func (r *Rules) Enabled() bool {
	return r.config.Enabled && r.config.PerMinute > 0
}

// PerChatLimit returns the message limit and sliding window for one chat.
func (r *Rules) PerChatLimit() (int, time.Duration) {
	window := time.Duration(r.config.WindowSeconds) * time.Second
	if window <= 0 {
		window = time.Minute
	}

	return r.config.PerMinute, window
}
