// Package chat orchestrates one inbound message end to end: resolve the
// account, classify the text, run the ledger operation and render the reply.
// It is transport agnostic; internal/bot adapts Telegram updates into
// InboundMessage values.
package chat

// InboundMessage is one user message, already stripped of transport detail.
type InboundMessage struct {
	TelegramID int64
	ChatID     string
	MessageID  string
	SenderName string
	Text       string
}
