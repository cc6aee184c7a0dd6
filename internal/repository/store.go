package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/devaqn/financeira-bot/internal/domain"
	"github.com/devaqn/financeira-bot/internal/ledger"
)

// LedgerStore implements ledger.Store on top of database/sql. The capability
// flag decides whether the transaction_type column is written and filtered;
// nothing here inspects the schema at runtime.
type LedgerStore struct {
	db   *sql.DB
	caps ledger.Capabilities
	log  *slog.Logger
}

// NewLedgerStore creates the SQL persistence collaborator of the ledger engine.
func NewLedgerStore(db *sql.DB, caps ledger.Capabilities, log *slog.Logger) *LedgerStore {
	return &LedgerStore{
		db:   db,
		caps: caps,
		log:  log,
	}
}

func (s *LedgerStore) AccountByID(ctx context.Context, id int64) (*domain.Account, error) {
	const query = `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1`

	acct, err := scanAccount(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ledger.ErrAccountNotFound
		}
		return nil, fmt.Errorf("select account by id: %w", err)
	}

	return acct, nil
}

// WithinTx runs fn inside one SQL transaction. Any error rolls everything
// back so a failed operation leaves no partial state behind.
func (s *LedgerStore) WithinTx(ctx context.Context, fn func(tx ledger.TxStore) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	if err := fn(&ledgerTx{tx: tx, caps: s.caps}); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			if s.log != nil {
				s.log.Error("rollback failed", slog.Any("error", rbErr))
			}
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}

// ListTransactions returns the account's transactions ordered by date
// descending, applying the optional filters.
func (s *LedgerStore) ListTransactions(ctx context.Context, accountID int64, f ledger.Filter) ([]domain.Transaction, error) {
	query := `
		SELECT id, account_id, amount, description, category_id, ` + s.typeColumn() + `,
		       date, chat_id, COALESCE(message_id, ''), created_at
		FROM transactions
		WHERE account_id = $1
	`
	args := []any{accountID}

	if f.From != nil {
		args = append(args, *f.From)
		query += ` AND date >= $` + strconv.Itoa(len(args))
	}
	if f.To != nil {
		args = append(args, *f.To)
		query += ` AND date <= $` + strconv.Itoa(len(args))
	}
	if f.CategoryID != 0 {
		args = append(args, f.CategoryID)
		query += ` AND category_id = $` + strconv.Itoa(len(args))
	}
	if f.Type != "" && s.caps.TransactionTypes {
		args = append(args, string(f.Type))
		query += ` AND transaction_type = $` + strconv.Itoa(len(args))
	}

	query += ` ORDER BY date DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("select transactions: %w", err)
	}
	defer rows.Close()

	var txns []domain.Transaction
	for rows.Next() {
		var t domain.Transaction
		var typ string
		if err := rows.Scan(
			&t.ID, &t.AccountID, &t.Amount, &t.Description, &t.CategoryID,
			&typ, &t.Date, &t.ChatID, &t.MessageID, &t.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		t.Type = domain.TransactionType(typ)
		txns = append(txns, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}

	return txns, nil
}

// TotalsByCategory aggregates expense amounts per category in the window,
// largest total first.
func (s *LedgerStore) TotalsByCategory(ctx context.Context, accountID int64, from, to time.Time) ([]domain.CategoryTotal, error) {
	query := `
		SELECT c.name, c.emoji, COUNT(t.id), COALESCE(SUM(t.amount), 0)
		FROM transactions t
		JOIN categories c ON t.category_id = c.id
		WHERE t.account_id = $1 AND t.date >= $2 AND t.date <= $3
	`
	if s.caps.TransactionTypes {
		query += ` AND t.transaction_type = 'expense'`
	}
	query += `
		GROUP BY c.id, c.name, c.emoji
		ORDER BY 4 DESC
	`

	rows, err := s.db.QueryContext(ctx, query, accountID, from, to)
	if err != nil {
		return nil, fmt.Errorf("select totals by category: %w", err)
	}
	defer rows.Close()

	var totals []domain.CategoryTotal
	for rows.Next() {
		var ct domain.CategoryTotal
		if err := rows.Scan(&ct.CategoryName, &ct.CategoryEmoji, &ct.Count, &ct.Total); err != nil {
			return nil, fmt.Errorf("scan category total: %w", err)
		}
		totals = append(totals, ct)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate category totals: %w", err)
	}

	return totals, nil
}

// ExpenseStats summarizes the account's expense-type transactions.
func (s *LedgerStore) ExpenseStats(ctx context.Context, accountID int64) (*domain.ExpenseStats, error) {
	query := `
		SELECT COUNT(*),
		       COALESCE(SUM(amount), 0),
		       COALESCE(AVG(amount), 0),
		       COALESCE(MAX(amount), 0),
		       COALESCE(MIN(amount), 0)
		FROM transactions
		WHERE account_id = $1
	`
	if s.caps.TransactionTypes {
		query += ` AND transaction_type = 'expense'`
	}

	var stats domain.ExpenseStats
	err := s.db.QueryRowContext(ctx, query, accountID).Scan(
		&stats.Count, &stats.Total, &stats.Average, &stats.Max, &stats.Min,
	)
	if err != nil {
		return nil, fmt.Errorf("select expense stats: %w", err)
	}

	return &stats, nil
}

func (s *LedgerStore) typeColumn() string {
	if s.caps.TransactionTypes {
		return "transaction_type"
	}
	return "'expense'"
}

type ledgerTx struct {
	tx   *sql.Tx
	caps ledger.Capabilities
}

func (t *ledgerTx) UpdateBalances(ctx context.Context, acct *domain.Account) error {
	const query = `
		UPDATE accounts
		SET initial_balance = $2,
		    checking_balance = $3,
		    savings_balance = $4,
		    emergency_balance = $5,
		    updated_at = now()
		WHERE id = $1
	`

	res, err := t.tx.ExecContext(ctx, query,
		acct.ID,
		acct.InitialBalance,
		acct.CheckingBalance,
		acct.SavingsBalance,
		acct.EmergencyBalance,
	)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ledger.ErrAccountNotFound
	}

	return nil
}

func (t *ledgerTx) InsertTransaction(ctx context.Context, txn *domain.Transaction) (*domain.Transaction, error) {
	var messageID any
	if txn.MessageID != "" {
		messageID = txn.MessageID
	}

	saved := *txn

	if t.caps.TransactionTypes {
		const query = `
			INSERT INTO transactions (account_id, amount, description, category_id, transaction_type, date, chat_id, message_id)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			RETURNING id, created_at
		`
		err := t.tx.QueryRowContext(ctx, query,
			txn.AccountID, txn.Amount, txn.Description, txn.CategoryID,
			string(txn.Type), txn.Date, txn.ChatID, messageID,
		).Scan(&saved.ID, &saved.CreatedAt)
		if err != nil {
			return nil, err
		}

		return &saved, nil
	}

	// Legacy stores predate the transaction_type column.
	const query = `
		INSERT INTO transactions (account_id, amount, description, category_id, date, chat_id, message_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`
	err := t.tx.QueryRowContext(ctx, query,
		txn.AccountID, txn.Amount, txn.Description, txn.CategoryID,
		txn.Date, txn.ChatID, messageID,
	).Scan(&saved.ID, &saved.CreatedAt)
	if err != nil {
		return nil, err
	}

	return &saved, nil
}
