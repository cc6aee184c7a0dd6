package logger

import (
	"context"
	"log/slog"
	"strings"
)

const maskedValue = "[redacted]"

// Keys are matched by substring so bot_token, database.password and
// sentry dsn style attributes are all covered.
var sensitiveSubstrings = []string{
	"password",
	"token",
	"secret",
	"dsn",
	"api_key",
	"authorization",
}

// MaskingHandler redacts credential-bearing attributes before the record
// reaches any sink, including Sentry.
type MaskingHandler struct {
	next slog.Handler
}

func NewMaskingHandler(next slog.Handler) *MaskingHandler {
	return &MaskingHandler{next: next}
}

func (h *MaskingHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *MaskingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	masked := make([]slog.Attr, len(attrs))
	for i, attr := range attrs {
		masked[i] = maskAttr(attr)
	}

	return &MaskingHandler{next: h.next.WithAttrs(masked)}
}

func (h *MaskingHandler) WithGroup(name string) slog.Handler {
	return &MaskingHandler{next: h.next.WithGroup(name)}
}

func (h *MaskingHandler) Handle(ctx context.Context, record slog.Record) error {
	masked := slog.NewRecord(record.Time, record.Level, record.Message, record.PC)
	record.Attrs(func(attr slog.Attr) bool {
		masked.AddAttrs(maskAttr(attr))
		return true
	})

	return h.next.Handle(ctx, masked)
}

func maskAttr(attr slog.Attr) slog.Attr {
	if attr.Value.Kind() == slog.KindGroup {
		members := attr.Value.Group()
		maskedMembers := make([]slog.Attr, len(members))
		for i, member := range members {
			maskedMembers[i] = maskAttr(member)
		}
		return slog.Attr{Key: attr.Key, Value: slog.GroupValue(maskedMembers...)}
	}

	if isSensitiveKey(attr.Key) {
		attr.Value = slog.StringValue(maskedValue)
	}

	return attr
}

func isSensitiveKey(key string) bool {
	lower := strings.ToLower(key)
	for _, substr := range sensitiveSubstrings {
		if strings.Contains(lower, substr) {
			return true
		}
	}

	return false
}
