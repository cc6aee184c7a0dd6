package ratelimit

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	checksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ratelimit_checks_total",
		Help: "Rate limit checks by backend and result.",
	}, []string{"backend", "result"})

	fallbacksTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ratelimit_fallbacks_total",
		Help: "Checks served by the in-memory backend after a Redis failure.",
	})
)

// AdaptiveLimiter runs checks against Redis and degrades to the in-memory
// limiter when Redis fails. The in-memory window only sees this process, so
// the quota is halved while degraded.
type AdaptiveLimiter struct {
	primary  Limiter
	fallback Limiter
	log      *slog.Logger
}

func NewAdaptiveLimiter(primary, fallback Limiter, log *slog.Logger) Limiter {
	if log == nil {
		log = slog.Default()
	}

	return &AdaptiveLimiter{
		primary:  primary,
		fallback: fallback,
		log:      log,
	}
}

func (a *AdaptiveLimiter) Check(ctx context.Context, key string, limit int, window time.Duration) (*Result, error) {
	result, err := a.primary.Check(ctx, key, limit, window)
	if err == nil || errors.Is(err, ErrLimitExceeded) {
		checksTotal.WithLabelValues("redis", outcome(result)).Inc()
		return result, err
	}

	fallbacksTotal.Inc()
	a.log.Warn("redis limiter failed, degrading to in-memory window",
		slog.String("key", key),
		slog.Any("error", err),
	)

	degraded := limit / 2
	if degraded < 1 {
		degraded = 1
	}

	result, err = a.fallback.Check(ctx, key, degraded, window)
	if result != nil {
		checksTotal.WithLabelValues("memory", outcome(result)).Inc()
	}

	return result, err
}

func outcome(r *Result) string {
	if r != nil && r.Allowed {
		return "allowed"
	}
	return "rejected"
}
