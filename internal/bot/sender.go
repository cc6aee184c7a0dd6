package bot

import (
	"context"
	"errors"
	"log/slog"

	telebot "gopkg.in/telebot.v3"

	apperrors "github.com/devaqn/financeira-bot/internal/errors"
)

// Sender delivers outbound messages with retry and a circuit breaker, so a
// Telegram outage degrades to dropped notifications instead of a stuck bot.
type Sender struct {
	telebot *telebot.Bot
	breaker *apperrors.CircuitBreaker
	log     *slog.Logger
}

// NewSender wraps the telebot instance.
func NewSender(tb *telebot.Bot, log *slog.Logger) *Sender {
	if log == nil {
		log = slog.Default()
	}

	return &Sender{
		telebot: tb,
		breaker: apperrors.NewCircuitBreaker(),
		log:     log,
	}
}

// Reply sends text back into the chat of the update being handled.
func (s *Sender) Reply(ctx context.Context, c telebot.Context, text string) error {
	return s.deliver(ctx, func() error {
		return c.Send(text)
	})
}

// Notify sends text to a user by Telegram ID. Implements reminder.Notifier.
func (s *Sender) Notify(ctx context.Context, telegramID int64, text string) error {
	recipient := &telebot.User{ID: telegramID}

	return s.deliver(ctx, func() error {
		_, err := s.telebot.Send(recipient, text)
		return err
	})
}

func (s *Sender) deliver(ctx context.Context, send func() error) error {
	err := s.breaker.Call(func() error {
		return apperrors.WithRetry(ctx, func() error {
			if sendErr := send(); sendErr != nil {
				return apperrors.NewTransportError(sendErr)
			}
			return nil
		})
	})
	if err != nil {
		if errors.Is(err, apperrors.ErrCircuitOpen) {
			s.log.Warn("outbound circuit open, message dropped")
		} else {
			s.log.Error("failed to deliver message", slog.Any("error", err))
		}
		return err
	}

	return nil
}
