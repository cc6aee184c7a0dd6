// Package reminder implements the periodic low balance sweep. Each run warns
// users whose checking balance dropped below the configured threshold and
// clears the warned flag once the balance recovers, so every user is warned
// at most once per dip.
package reminder

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/devaqn/financeira-bot/internal/domain"
	"github.com/devaqn/financeira-bot/internal/render"
	"github.com/devaqn/financeira-bot/internal/repository"
	"github.com/devaqn/financeira-bot/pkg/metrics"
)

// Notifier delivers a text message to a Telegram user.
type Notifier interface {
	Notify(ctx context.Context, telegramID int64, text string) error
}

// Sweeper runs the low balance check over all accounts.
type Sweeper struct {
	repo      repository.AccountRepository
	notifier  Notifier
	threshold float64
	log       *slog.Logger
}

// NewSweeper builds a Sweeper with the configured threshold.
func NewSweeper(repo repository.AccountRepository, notifier Notifier, threshold float64, log *slog.Logger) *Sweeper {
	if log == nil {
		log = slog.Default()
	}

	return &Sweeper{
		repo:      repo,
		notifier:  notifier,
		threshold: threshold,
		log:       log,
	}
}

// Run executes one sweep. Delivery failures of individual warnings are
// logged and skipped; the account stays unwarned so the next sweep retries.
func (s *Sweeper) Run(ctx context.Context) error {
	low, err := s.repo.ListBelowThreshold(ctx, s.threshold)
	if err != nil {
		metrics.RecordReminderRun("error")
		return fmt.Errorf("list low balance accounts: %w", err)
	}

	warned := 0
	for i := range low {
		if s.warn(ctx, &low[i]) {
			warned++
		}
	}

	recovered, err := s.repo.ListWarnedAboveThreshold(ctx, s.threshold)
	if err != nil {
		metrics.RecordReminderRun("error")
		return fmt.Errorf("list recovered accounts: %w", err)
	}

	for i := range recovered {
		if err := s.repo.SetLowBalanceWarned(ctx, recovered[i].ID, false); err != nil {
			s.log.Error("failed to clear low balance flag",
				slog.Int64("account_id", recovered[i].ID),
				slog.Any("error", err),
			)
		}
	}

	s.log.Info("low balance sweep finished",
		slog.Int("warned", warned),
		slog.Int("recovered", len(recovered)),
	)

	metrics.RecordReminderRun("ok")

	return nil
}

func (s *Sweeper) warn(ctx context.Context, acct *domain.Account) bool {
	text := render.LowBalance(acct, s.threshold)

	if err := s.notifier.Notify(ctx, acct.TelegramID, text); err != nil {
		s.log.Error("failed to deliver low balance warning",
			slog.Int64("account_id", acct.ID),
			slog.Any("error", err),
		)
		return false
	}

	if err := s.repo.SetLowBalanceWarned(ctx, acct.ID, true); err != nil {
		s.log.Error("failed to set low balance flag",
			slog.Int64("account_id", acct.ID),
			slog.Any("error", err),
		)
		return false
	}

	metrics.RecordReminderNotice()

	return true
}
