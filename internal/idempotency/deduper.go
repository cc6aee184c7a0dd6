// Package idempotency suppresses reprocessing of Telegram updates that are
// delivered more than once. Long polling redelivers updates after restarts
// and network hiccups; recording an expense twice would corrupt balances.
package idempotency

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"
)

// DefaultTTL keeps seen markers long enough to cover Telegram's redelivery
// window with margin.
const DefaultTTL = 24 * time.Hour

// Store persists seen-message markers.
type Store interface {
	// Remember marks key as seen and reports whether this was the first
	// sighting. The marker expires after ttl.
	Remember(ctx context.Context, key string, ttl time.Duration) (bool, error)
}

// Deduper decides whether an inbound message should be processed.
type Deduper struct {
	store Store
	ttl   time.Duration
	log   *slog.Logger
}

// NewDeduper builds a Deduper over the given store.
func NewDeduper(store Store, ttl time.Duration, log *slog.Logger) *Deduper {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if log == nil {
		log = slog.Default()
	}

	return &Deduper{
		store: store,
		ttl:   ttl,
		log:   log,
	}
}

// FirstSeen reports whether the (chat, message) pair is new. Store failures
// are logged and treated as first sightings: losing deduplication briefly is
// better than dropping user messages.
func (d *Deduper) FirstSeen(ctx context.Context, chatID int64, messageID string) bool {
	key := GenerateKey(chatID, messageID)

	first, err := d.store.Remember(ctx, key, d.ttl)
	if err != nil {
		d.log.Error("idempotency store unavailable, processing anyway",
			slog.Int64("chat_id", chatID),
			slog.Any("error", err),
		)
		return true
	}

	return first
}

// GenerateKey builds a deterministic key using all provided parts.
func GenerateKey(parts ...interface{}) string {
	h := sha256.New()
	for _, part := range parts {
		fmt.Fprintf(h, "%v:", part)
	}

	return hex.EncodeToString(h.Sum(nil))
}
