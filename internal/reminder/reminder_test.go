package reminder

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devaqn/financeira-bot/internal/domain"
)

type fakeAccountRepo struct {
	low       []domain.Account
	recovered []domain.Account
	flags     map[int64]bool
	listErr   error
}

func newFakeAccountRepo() *fakeAccountRepo {
	return &fakeAccountRepo{flags: make(map[int64]bool)}
}

func (f *fakeAccountRepo) UpsertByTelegramID(_ context.Context, _ int64, _ string) (*domain.Account, error) {
	return nil, errors.New("not used")
}

func (f *fakeAccountRepo) ByTelegramID(_ context.Context, _ int64) (*domain.Account, error) {
	return nil, errors.New("not used")
}

func (f *fakeAccountRepo) SetLowBalanceWarned(_ context.Context, accountID int64, warned bool) error {
	f.flags[accountID] = warned
	return nil
}

func (f *fakeAccountRepo) ListBelowThreshold(_ context.Context, _ float64) ([]domain.Account, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.low, nil
}

func (f *fakeAccountRepo) ListWarnedAboveThreshold(_ context.Context, _ float64) ([]domain.Account, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.recovered, nil
}

type fakeNotifier struct {
	sent map[int64]string
	err  error
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{sent: make(map[int64]string)}
}

func (f *fakeNotifier) Notify(_ context.Context, telegramID int64, text string) error {
	if f.err != nil {
		return f.err
	}
	f.sent[telegramID] = text
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSweepWarnsLowBalances(t *testing.T) {
	repo := newFakeAccountRepo()
	repo.low = []domain.Account{
		{ID: 1, TelegramID: 11, Name: "Ana", CheckingBalance: 42.5},
		{ID: 2, TelegramID: 22, Name: "Bruno", CheckingBalance: -10},
	}
	notifier := newFakeNotifier()

	sweeper := NewSweeper(repo, notifier, 100, testLogger())
	require.NoError(t, sweeper.Run(context.Background()))

	assert.Len(t, notifier.sent, 2)
	assert.Contains(t, notifier.sent[11], "R$ 42,50")
	assert.True(t, repo.flags[1])
	assert.True(t, repo.flags[2])
}

func TestSweepClearsRecoveredFlags(t *testing.T) {
	repo := newFakeAccountRepo()
	repo.recovered = []domain.Account{
		{ID: 3, TelegramID: 33, Name: "Carla", CheckingBalance: 250},
	}
	notifier := newFakeNotifier()

	sweeper := NewSweeper(repo, notifier, 100, testLogger())
	require.NoError(t, sweeper.Run(context.Background()))

	assert.Empty(t, notifier.sent)
	assert.False(t, repo.flags[3])
}

func TestSweepKeepsFlagClearOnDeliveryFailure(t *testing.T) {
	repo := newFakeAccountRepo()
	repo.low = []domain.Account{
		{ID: 1, TelegramID: 11, Name: "Ana", CheckingBalance: 42.5},
	}
	notifier := newFakeNotifier()
	notifier.err = errors.New("telegram unavailable")

	sweeper := NewSweeper(repo, notifier, 100, testLogger())
	require.NoError(t, sweeper.Run(context.Background()))

	_, flagged := repo.flags[1]
	assert.False(t, flagged)
}

func TestSweepPropagatesListFailure(t *testing.T) {
	repo := newFakeAccountRepo()
	repo.listErr = errors.New("db down")

	sweeper := NewSweeper(repo, newFakeNotifier(), 100, testLogger())
	assert.Error(t, sweeper.Run(context.Background()))
}
