// Package middleware holds the telebot middleware chain applied to every
// inbound update, plus the HTTP logging middleware of the operational server.
package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"

	telebot "gopkg.in/telebot.v3"

	apperrors "github.com/devaqn/financeira-bot/internal/errors"
)

// Recovery catches panics, reports them via the centralized handler, and
// notifies the user. A panicking handler must never take down the poller.
func Recovery(log *slog.Logger, errHandler *apperrors.Handler) telebot.MiddlewareFunc {
	if log == nil {
		log = slog.Default()
	}

	return func(next telebot.HandlerFunc) telebot.HandlerFunc {
		return func(c telebot.Context) (err error) {
			defer func() {
				if r := recover(); r != nil {
					log.Error("panic recovered in handler",
						slog.Any("panic", r),
						slog.String("stack", string(debug.Stack())),
					)

					userMsg := "⚠️ Ocorreu um erro. Tente novamente mais tarde"
					if errHandler != nil {
						appErr := apperrors.NewDatabaseError(fmt.Errorf("panic recovered: %v", r))
						if msg, _ := errHandler.Handle(context.Background(), appErr); msg != "" {
							userMsg = msg
						}
					}

					if c != nil {
						if sendErr := c.Send(userMsg); sendErr != nil {
							log.Error("failed to notify user about panic", slog.Any("error", sendErr))
						}
					}

					err = nil
				}
			}()

			return next(c)
		}
	}
}
