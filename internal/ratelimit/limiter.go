// Package ratelimit throttles inbound chat messages so a single chat
// cannot flood the bot.
package ratelimit

import (
	"context"
	"errors"
	"time"
)

// Result is the outcome of one limit check.
type Result struct {
	Allowed   bool
	Remaining int
	ResetAt   time.Time
}

// Limiter checks whether another message fits inside the sliding window
// for key. A blocked check returns a non-nil Result together with
// ErrLimitExceeded; any other error means the backend itself failed.
type Limiter interface {
	Check(ctx context.Context, key string, limit int, window time.Duration) (*Result, error)
}

// ErrLimitExceeded is returned when the window for a key is full.
var ErrLimitExceeded = errors.New("rate limit exceeded")
