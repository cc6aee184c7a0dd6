// Package account resolves Telegram senders to ledger accounts.
package account

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/devaqn/financeira-bot/internal/domain"
	"github.com/devaqn/financeira-bot/internal/repository"
)

const cacheTTL = time.Hour

// Service provides business operations over accounts.
type Service struct {
	repo  repository.AccountRepository
	cache *Cache
	log   *slog.Logger
}

// NewService constructs a new Service instance. cache may be nil.
func NewService(repo repository.AccountRepository, cache *Cache, log *slog.Logger) *Service {
	return &Service{repo: repo, cache: cache, log: log}
}

// Resolve returns the account for a Telegram sender, creating it on first
// contact. The identity mapping is cached; balances must be read through
// Current because cached snapshots go stale.
func (s *Service) Resolve(ctx context.Context, telegramID int64, name string) (*domain.Account, error) {
	if cached, err := s.cache.Get(ctx, telegramID); err == nil && cached != nil {
		if cached.Name == name || name == "" {
			return cached, nil
		}
		// Name changed on Telegram, fall through to refresh the row.
	} else if err != nil {
		s.log.Warn("account cache read failed",
			slog.Int64("telegram_id", telegramID),
			slog.Any("error", err),
		)
	}

	if name == "" {
		name = "Usuário"
	}

	acct, err := s.repo.UpsertByTelegramID(ctx, telegramID, name)
	if err != nil {
		s.log.Error("failed to resolve account",
			slog.Int64("telegram_id", telegramID),
			slog.Any("error", err),
		)
		return nil, fmt.Errorf("resolve account: %w", err)
	}

	if err := s.cache.Set(ctx, telegramID, acct, cacheTTL); err != nil {
		s.log.Warn("account cache write failed",
			slog.Int64("telegram_id", telegramID),
			slog.Any("error", err),
		)
	}

	return acct, nil
}

// Current returns the account with fresh balances straight from the database.
func (s *Service) Current(ctx context.Context, telegramID int64) (*domain.Account, error) {
	acct, err := s.repo.ByTelegramID(ctx, telegramID)
	if err != nil {
		return nil, err
	}

	return acct, nil
}
