// Package bot adapts Telegram updates into chat.InboundMessage values and
// delivers the rendered replies. All finance logic lives behind the
// processor; this package only owns the transport.
package bot

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	telebot "gopkg.in/telebot.v3"

	"github.com/devaqn/financeira-bot/internal/chat"
	apperrors "github.com/devaqn/financeira-bot/internal/errors"
	"github.com/devaqn/financeira-bot/internal/idempotency"
	"github.com/devaqn/financeira-bot/internal/middleware"
	"github.com/devaqn/financeira-bot/pkg/config"
	"github.com/devaqn/financeira-bot/pkg/logger"
)

// Bot wraps telebot.Bot with the middleware chain and the message processor.
type Bot struct {
	telebot    *telebot.Bot
	processor  *chat.Processor
	sender     *Sender
	log        *slog.Logger
	errHandler *apperrors.Handler
}

// New builds a long-polling Telegram bot wired to the processor.
func New(
	cfg config.Config,
	log *slog.Logger,
	processor *chat.Processor,
	deduper *idempotency.Deduper,
	rateLimitMw *middleware.RateLimitMiddleware,
	errHandler *apperrors.Handler,
) (*Bot, error) {
	settings := telebot.Settings{
		Token: cfg.Bot.Token,
		Poller: &telebot.LongPoller{
			Timeout: time.Duration(cfg.Bot.PollTimeout) * time.Second,
		},
	}

	tb, err := telebot.NewBot(settings)
	if err != nil {
		return nil, fmt.Errorf("initialize telebot: %w", err)
	}

	b := &Bot{
		telebot:    tb,
		processor:  processor,
		sender:     NewSender(tb, log),
		log:        log,
		errHandler: errHandler,
	}

	tb.Use(middleware.Recovery(log, errHandler))
	tb.Use(middleware.Dedupe(deduper, log))
	if rateLimitMw != nil {
		tb.Use(rateLimitMw.Handle)
	}

	tb.Handle(telebot.OnText, b.handleText)

	return b, nil
}

// Start runs the telegram bot event loop. It blocks until Stop is called.
func (b *Bot) Start() {
	if b.telebot != nil {
		b.telebot.Start()
	}
}

// Stop gracefully stops the telegram bot.
func (b *Bot) Stop() {
	if b.telebot == nil {
		return
	}

	b.log.Info("stopping telegram bot")
	b.telebot.Stop()
}

// Notifier returns the outbound sender, used by the reminder sweep.
func (b *Bot) Notifier() *Sender {
	return b.sender
}

// Telebot exposes the underlying client for health checks.
func (b *Bot) Telebot() *telebot.Bot {
	return b.telebot
}

func (b *Bot) handleText(c telebot.Context) error {
	sender := c.Sender()
	msg := c.Message()
	if sender == nil || msg == nil {
		return nil
	}

	chatID := int64(0)
	if msg.Chat != nil {
		chatID = msg.Chat.ID
	}

	ctx := logger.WithCorrelationID(context.Background())

	inbound := chat.InboundMessage{
		TelegramID: sender.ID,
		ChatID:     strconv.FormatInt(chatID, 10),
		MessageID:  strconv.Itoa(msg.ID),
		SenderName: senderName(sender),
		Text:       msg.Text,
	}

	reply := b.processor.Process(ctx, inbound)
	if reply == "" {
		return nil
	}

	if err := b.sender.Reply(ctx, c, reply); err != nil {
		userMsg, _ := b.errHandler.Handle(ctx, apperrors.NewTransportError(err))
		_ = userMsg // nothing left to deliver it with
		return err
	}

	return nil
}

func senderName(u *telebot.User) string {
	if u.FirstName != "" {
		return u.FirstName
	}
	if u.Username != "" {
		return u.Username
	}
	return "Usuário"
}
