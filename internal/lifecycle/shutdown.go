// Package lifecycle coordinates named shutdown hooks.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

type hook struct {
	name string
	fn   func(ctx context.Context) error
}

// Shutdown runs registered hooks in parallel when the process stops. Hooks
// must be independent of each other; ordering is not guaranteed.
type Shutdown struct {
	mu    sync.Mutex
	hooks []hook
	log   *slog.Logger
}

func NewShutdown(log *slog.Logger) *Shutdown {
	if log == nil {
		log = slog.Default()
	}

	return &Shutdown{log: log}
}

// Register adds a named hook. Registration after Execute has started is
// ignored for that run.
func (s *Shutdown) Register(name string, fn func(context.Context) error) {
	if fn == nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.hooks = append(s.hooks, hook{name: name, fn: fn})
}

// Execute runs every hook concurrently and waits for all of them. The
// returned error joins every hook failure.
func (s *Shutdown) Execute(ctx context.Context) error {
	s.mu.Lock()
	hooks := append([]hook(nil), s.hooks...)
	s.mu.Unlock()

	s.log.Info("shutdown started", slog.Int("hooks", len(hooks)))
	start := time.Now()

	errCh := make(chan error, len(hooks))
	var wg sync.WaitGroup

	for _, h := range hooks {
		wg.Add(1)
		go func(h hook) {
			defer wg.Done()

			if err := h.fn(ctx); err != nil {
				s.log.Error("shutdown hook failed", slog.String("hook", h.name), slog.Any("error", err))
				errCh <- fmt.Errorf("%s: %w", h.name, err)
				return
			}

			s.log.Debug("shutdown hook done", slog.String("hook", h.name))
		}(h)
	}

	wg.Wait()
	close(errCh)

	var errs []error
	for err := range errCh {
		errs = append(errs, err)
	}

	s.log.Info("shutdown finished",
		slog.Duration("elapsed", time.Since(start)),
		slog.Int("failed", len(errs)),
	)

	return errors.Join(errs...)
}
