package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/devaqn/financeira-bot/internal/domain"
	"github.com/devaqn/financeira-bot/internal/ledger"
)

// AccountRepository defines persistence operations for accounts.
type AccountRepository interface {
	UpsertByTelegramID(ctx context.Context, telegramID int64, name string) (*domain.Account, error)
	ByTelegramID(ctx context.Context, telegramID int64) (*domain.Account, error)
	SetLowBalanceWarned(ctx context.Context, accountID int64, warned bool) error
	ListBelowThreshold(ctx context.Context, threshold float64) ([]domain.Account, error)
	ListWarnedAboveThreshold(ctx context.Context, threshold float64) ([]domain.Account, error)
}

type accountRepository struct {
	db  *sql.DB
	log *slog.Logger
}

// NewAccountRepository creates a SQL-backed account repository.
func NewAccountRepository(db *sql.DB, log *slog.Logger) AccountRepository {
	return &accountRepository{
		db:  db,
		log: log,
	}
}

const accountColumns = `
	id, telegram_id, name, initial_balance, checking_balance,
	savings_balance, emergency_balance, low_balance_warned,
	created_at, updated_at
`

// UpsertByTelegramID creates the account on the first observed message from
// an identity, or refreshes the display name on later ones.
func (r *accountRepository) UpsertByTelegramID(ctx context.Context, telegramID int64, name string) (*domain.Account, error) {
	const query = `
		INSERT INTO accounts (telegram_id, name)
		VALUES ($1, $2)
		ON CONFLICT (telegram_id) DO UPDATE
			SET name = EXCLUDED.name, updated_at = now()
		RETURNING ` + accountColumns

	row := r.db.QueryRowContext(ctx, query, telegramID, name)

	acct, err := scanAccount(row)
	if err != nil {
		if r.log != nil {
			r.log.Error("failed to upsert account", slog.Int64("telegram_id", telegramID), slog.Any("error", err))
		}
		return nil, fmt.Errorf("upsert account by telegram id: %w", err)
	}

	return acct, nil
}

func (r *accountRepository) ByTelegramID(ctx context.Context, telegramID int64) (*domain.Account, error) {
	const query = `SELECT ` + accountColumns + ` FROM accounts WHERE telegram_id = $1`

	acct, err := scanAccount(r.db.QueryRowContext(ctx, query, telegramID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ledger.ErrAccountNotFound
		}

		if r.log != nil {
			r.log.Error("failed to fetch account by telegram id", slog.Int64("telegram_id", telegramID), slog.Any("error", err))
		}
		return nil, fmt.Errorf("select account by telegram id: %w", err)
	}

	return acct, nil
}

func (r *accountRepository) SetLowBalanceWarned(ctx context.Context, accountID int64, warned bool) error {
	const query = `UPDATE accounts SET low_balance_warned = $2, updated_at = now() WHERE id = $1`

	if _, err := r.db.ExecContext(ctx, query, accountID, warned); err != nil {
		if r.log != nil {
			r.log.Error("failed to update low balance flag", slog.Int64("account_id", accountID), slog.Any("error", err))
		}
		return fmt.Errorf("update low_balance_warned: %w", err)
	}

	return nil
}

// ListBelowThreshold returns accounts whose checking balance dropped under
// the threshold and that have not been warned yet.
func (r *accountRepository) ListBelowThreshold(ctx context.Context, threshold float64) ([]domain.Account, error) {
	const query = `
		SELECT ` + accountColumns + `
		FROM accounts
		WHERE checking_balance < $1 AND NOT low_balance_warned
		ORDER BY id
	`

	return r.queryAccounts(ctx, query, threshold)
}

// ListWarnedAboveThreshold returns warned accounts whose checking balance
// recovered, so the flag can be cleared and a later drop warns again.
func (r *accountRepository) ListWarnedAboveThreshold(ctx context.Context, threshold float64) ([]domain.Account, error) {
	const query = `
		SELECT ` + accountColumns + `
		FROM accounts
		WHERE checking_balance >= $1 AND low_balance_warned
		ORDER BY id
	`

	return r.queryAccounts(ctx, query, threshold)
}

func (r *accountRepository) queryAccounts(ctx context.Context, query string, args ...any) ([]domain.Account, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("select accounts: %w", err)
	}
	defer rows.Close()

	var accounts []domain.Account
	for rows.Next() {
		acct, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		accounts = append(accounts, *acct)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate accounts: %w", err)
	}

	return accounts, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (*domain.Account, error) {
	var acct domain.Account
	if err := row.Scan(
		&acct.ID,
		&acct.TelegramID,
		&acct.Name,
		&acct.InitialBalance,
		&acct.CheckingBalance,
		&acct.SavingsBalance,
		&acct.EmergencyBalance,
		&acct.LowBalanceWarned,
		&acct.CreatedAt,
		&acct.UpdatedAt,
	); err != nil {
		return nil, err
	}

	return &acct, nil
}
