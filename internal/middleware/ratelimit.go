package middleware

import (
	"context"
	"fmt"
	"log/slog"

	telebot "gopkg.in/telebot.v3"

	"github.com/devaqn/financeira-bot/internal/ratelimit"
	"github.com/devaqn/financeira-bot/pkg/metrics"
)

// RateLimitMiddleware enforces per-chat limits on incoming Telegram updates.
type RateLimitMiddleware struct {
	limiter ratelimit.Limiter
	rules   *ratelimit.Rules
	log     *slog.Logger
}

// NewRateLimitMiddleware constructs a rate-limit middleware component.
func NewRateLimitMiddleware(limiter ratelimit.Limiter, rules *ratelimit.Rules, log *slog.Logger) *RateLimitMiddleware {
	if log == nil {
		log = slog.Default()
	}

	return &RateLimitMiddleware{
		limiter: limiter,
		rules:   rules,
		log:     log,
	}
}

// Handle returns a telebot middleware that enforces the per-chat limit.
// Limiter failures fail open so an infrastructure hiccup never blocks users.
func (m *RateLimitMiddleware) Handle(next telebot.HandlerFunc) telebot.HandlerFunc {
	return func(c telebot.Context) error {
		if m.limiter == nil || m.rules == nil || !m.rules.Enabled() {
			return next(c)
		}

		chat := c.Chat()
		if chat == nil {
			return next(c)
		}

		limit, window := m.rules.PerChatLimit()
		key := fmt.Sprintf("chat:%d", chat.ID)

		result, err := m.limiter.Check(context.Background(), key, limit, window)
		if err != nil && result == nil {
			m.log.Warn("rate limiter error", slog.Int64("chat_id", chat.ID), slog.Any("error", err))
			return next(c)
		}

		if !result.Allowed {
			m.log.Warn("rate limit exceeded", slog.Int64("chat_id", chat.ID))
			metrics.RecordRateLimited()
			return c.Send("⏳ Calma! Você enviou muitas mensagens. Tente de novo em instantes.")
		}

		return next(c)
	}
}
