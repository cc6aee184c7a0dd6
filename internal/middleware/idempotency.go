package middleware

import (
	"context"
	"fmt"
	"log/slog"

	telebot "gopkg.in/telebot.v3"

	"github.com/devaqn/financeira-bot/internal/idempotency"
	"github.com/devaqn/financeira-bot/pkg/metrics"
)

// Dedupe drops updates that were already processed. Telegram redelivers
// updates after restarts; without this guard a redelivered expense message
// would be booked twice.
func Dedupe(deduper *idempotency.Deduper, log *slog.Logger) telebot.MiddlewareFunc {
	if log == nil {
		log = slog.Default()
	}

	return func(next telebot.HandlerFunc) telebot.HandlerFunc {
		return func(c telebot.Context) error {
			if deduper == nil {
				return next(c)
			}

			msg := c.Message()
			if msg == nil || msg.ID == 0 {
				return next(c)
			}

			chatID := int64(0)
			if msg.Chat != nil {
				chatID = msg.Chat.ID
			}

			if !deduper.FirstSeen(context.Background(), chatID, fmt.Sprintf("%d", msg.ID)) {
				log.Info("duplicate update skipped",
					slog.Int64("chat_id", chatID),
					slog.Int("message_id", msg.ID),
				)
				metrics.RecordDuplicate()
				return nil
			}

			return next(c)
		}
	}
}
