// Package ledger applies validated financial operations to an account's three
// balance buckets and appends immutable transaction records. Mutations are
// atomic: the balance update and the inserted row commit together or the
// operation reports a decline/error with no observable change.
//
// The engine reads current state and writes new state without internal
// locking; the host must serialize operations per account.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/devaqn/financeira-bot/internal/domain"
)

// ErrAccountNotFound is returned by stores when no account row exists.
var ErrAccountNotFound = errors.New("account not found")

// Default descriptions for transfer transactions.
const (
	descToSavings      = "Transferência para poupança"
	descFromSavings    = "Retirada da poupança"
	descToEmergency    = "Depósito na reserva de emergência"
	descFromEmergency  = "Retirada da reserva de emergência"
	descDefaultExpense = "Gasto"
)

// Engine is the ledger core. It owns no timers, renders no output, and leaves
// schema concerns to the store behind the capability flag.
type Engine struct {
	store Store
	cats  CategoryResolver
	caps  Capabilities
	log   *slog.Logger
}

func NewEngine(store Store, cats CategoryResolver, caps Capabilities, log *slog.Logger) *Engine {
	if log == nil {
		log = slog.Default()
	}

	return &Engine{
		store: store,
		cats:  cats,
		caps:  caps,
		log:   log,
	}
}

// RecordExpense debits checking and appends an expense row. There is no
// funds-sufficiency precondition: checking may go negative, total funds still
// shrink by exactly the amount.
func (e *Engine) RecordExpense(ctx context.Context, accountID int64, amount float64, categoryID int64, description, chatID, messageID string) (*Result, error) {
	acct, res, err := e.loadAccount(ctx, accountID)
	if res != nil || err != nil {
		return res, err
	}
	if amount <= 0 {
		return declined(ReasonInvalidAmount, 0), nil
	}

	if description == "" {
		description = descDefaultExpense
	}

	acct.CheckingBalance = Round2(acct.CheckingBalance - amount)

	txn := &domain.Transaction{
		AccountID:   acct.ID,
		Amount:      Round2(amount),
		Description: description,
		CategoryID:  categoryID,
		Type:        domain.TypeExpense,
		Date:        time.Now().UTC(),
		ChatID:      chatID,
		MessageID:   messageID,
	}

	return e.commit(ctx, acct, txn)
}

// SetInitialBalance is administrative: it resets both the baseline and the
// checking balance and appends no transaction row.
func (e *Engine) SetInitialBalance(ctx context.Context, accountID int64, amount float64) (*Result, error) {
	acct, res, err := e.loadAccount(ctx, accountID)
	if res != nil || err != nil {
		return res, err
	}
	if amount <= 0 {
		return declined(ReasonInvalidAmount, 0), nil
	}

	acct.InitialBalance = Round2(amount)
	acct.CheckingBalance = Round2(amount)

	return e.commit(ctx, acct, nil)
}

// AddBalance is administrative: it raises both the baseline and the checking
// balance and appends no transaction row.
func (e *Engine) AddBalance(ctx context.Context, accountID int64, amount float64) (*Result, error) {
	acct, res, err := e.loadAccount(ctx, accountID)
	if res != nil || err != nil {
		return res, err
	}
	if amount <= 0 {
		return declined(ReasonInvalidAmount, 0), nil
	}

	acct.InitialBalance = Round2(acct.InitialBalance + amount)
	acct.CheckingBalance = Round2(acct.CheckingBalance + amount)

	return e.commit(ctx, acct, nil)
}

func (e *Engine) TransferToSavings(ctx context.Context, accountID int64, amount float64) (*Result, error) {
	return e.transfer(ctx, accountID, amount, transferSpec{
		source:      bucketChecking,
		dest:        bucketSavings,
		txnType:     domain.TypeSavingsDeposit,
		category:    domain.CategorySavings,
		description: descToSavings,
	})
}

func (e *Engine) TransferFromSavings(ctx context.Context, accountID int64, amount float64) (*Result, error) {
	return e.transfer(ctx, accountID, amount, transferSpec{
		source:      bucketSavings,
		dest:        bucketChecking,
		txnType:     domain.TypeSavingsWithdrawal,
		category:    domain.CategorySavings,
		description: descFromSavings,
	})
}

func (e *Engine) TransferToEmergency(ctx context.Context, accountID int64, amount float64) (*Result, error) {
	return e.transfer(ctx, accountID, amount, transferSpec{
		source:      bucketChecking,
		dest:        bucketEmergency,
		txnType:     domain.TypeEmergencyDeposit,
		category:    domain.CategoryEmergency,
		description: descToEmergency,
	})
}

func (e *Engine) TransferFromEmergency(ctx context.Context, accountID int64, amount float64) (*Result, error) {
	return e.transfer(ctx, accountID, amount, transferSpec{
		source:      bucketEmergency,
		dest:        bucketChecking,
		txnType:     domain.TypeEmergencyWithdrawal,
		category:    domain.CategoryEmergency,
		description: descFromEmergency,
	})
}

// ListTransactions returns the account's transactions, newest first. The type
// filter is silently dropped when the store predates transaction types.
func (e *Engine) ListTransactions(ctx context.Context, accountID int64, f Filter) ([]domain.Transaction, error) {
	if !e.caps.TransactionTypes {
		f.Type = ""
	}

	return e.store.ListTransactions(ctx, accountID, f)
}

// TotalsByCategory aggregates expense amounts per category inside the window,
// ordered by total descending.
func (e *Engine) TotalsByCategory(ctx context.Context, accountID int64, from, to time.Time) ([]domain.CategoryTotal, error) {
	return e.store.TotalsByCategory(ctx, accountID, from, to)
}

// ExpenseStats summarizes the account's expense-type transactions.
func (e *Engine) ExpenseStats(ctx context.Context, accountID int64) (*domain.ExpenseStats, error) {
	return e.store.ExpenseStats(ctx, accountID)
}

type bucket int

const (
	bucketChecking bucket = iota
	bucketSavings
	bucketEmergency
)

type transferSpec struct {
	source      bucket
	dest        bucket
	txnType     domain.TransactionType
	category    string
	description string
}

// transfer moves funds between two buckets as a zero-sum operation. The
// source must cover the amount or the whole operation is declined untouched.
func (e *Engine) transfer(ctx context.Context, accountID int64, amount float64, spec transferSpec) (*Result, error) {
	acct, res, err := e.loadAccount(ctx, accountID)
	if res != nil || err != nil {
		return res, err
	}
	if amount <= 0 {
		return declined(ReasonInvalidAmount, 0), nil
	}

	available := bucketValue(acct, spec.source)
	if available < amount {
		return declined(ReasonInsufficientFunds, available), nil
	}

	setBucket(acct, spec.source, Round2(available-amount))
	setBucket(acct, spec.dest, Round2(bucketValue(acct, spec.dest)+amount))

	cat, ok := e.cats.ByName(spec.category)
	if !ok {
		return nil, fmt.Errorf("reserved category %q is not configured", spec.category)
	}

	txn := &domain.Transaction{
		AccountID:   acct.ID,
		Amount:      Round2(amount),
		Description: spec.description,
		CategoryID:  cat.ID,
		Type:        spec.txnType,
		Date:        time.Now().UTC(),
		ChatID:      strconv.FormatInt(acct.TelegramID, 10),
	}

	return e.commit(ctx, acct, txn)
}

// loadAccount reads current account state. A missing account is a declined
// result, not an error.
func (e *Engine) loadAccount(ctx context.Context, accountID int64) (*domain.Account, *Result, error) {
	acct, err := e.store.AccountByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			return nil, declined(ReasonAccountNotFound, 0), nil
		}
		return nil, nil, fmt.Errorf("load account %d: %w", accountID, err)
	}

	return acct, nil, nil
}

// commit persists the new balances and the optional transaction row in one
// atomic unit.
func (e *Engine) commit(ctx context.Context, acct *domain.Account, txn *domain.Transaction) (*Result, error) {
	var saved *domain.Transaction

	err := e.store.WithinTx(ctx, func(tx TxStore) error {
		if err := tx.UpdateBalances(ctx, acct); err != nil {
			return fmt.Errorf("update balances for account %d: %w", acct.ID, err)
		}

		if txn == nil {
			return nil
		}

		inserted, err := tx.InsertTransaction(ctx, txn)
		if err != nil {
			return fmt.Errorf("insert %s transaction for account %d: %w", txn.Type, acct.ID, err)
		}
		saved = inserted

		return nil
	})
	if err != nil {
		return nil, err
	}

	if txn != nil {
		e.log.Info("ledger operation applied",
			slog.Int64("account_id", acct.ID),
			slog.String("type", string(txn.Type)),
			slog.Float64("amount", txn.Amount),
		)
	}

	return &Result{Account: acct, Transaction: saved}, nil
}

func bucketValue(a *domain.Account, b bucket) float64 {
	switch b {
	case bucketSavings:
		return a.SavingsBalance
	case bucketEmergency:
		return a.EmergencyBalance
	default:
		return a.CheckingBalance
	}
}

func setBucket(a *domain.Account, b bucket, v float64) {
	switch b {
	case bucketSavings:
		a.SavingsBalance = v
	case bucketEmergency:
		a.EmergencyBalance = v
	default:
		a.CheckingBalance = v
	}
}
