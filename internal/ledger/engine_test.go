package ledger

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devaqn/financeira-bot/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeStore keeps one account in memory and mimics transactional semantics:
// changes inside WithinTx become visible only when the callback succeeds.
type fakeStore struct {
	acct      *domain.Account
	inserted  []domain.Transaction
	nextTxnID int64

	updateErr error
	insertErr error

	lastFilter Filter
}

type fakeTx struct {
	store    *fakeStore
	acct     *domain.Account
	inserted []domain.Transaction
}

func (s *fakeStore) AccountByID(ctx context.Context, id int64) (*domain.Account, error) {
	if s.acct == nil || s.acct.ID != id {
		return nil, ErrAccountNotFound
	}
	clone := *s.acct
	return &clone, nil
}

func (s *fakeStore) WithinTx(ctx context.Context, fn func(tx TxStore) error) error {
	tx := &fakeTx{store: s}
	if err := fn(tx); err != nil {
		return err
	}

	if tx.acct != nil {
		s.acct = tx.acct
	}
	s.inserted = append(s.inserted, tx.inserted...)
	return nil
}

func (s *fakeStore) ListTransactions(ctx context.Context, accountID int64, f Filter) ([]domain.Transaction, error) {
	s.lastFilter = f
	return s.inserted, nil
}

func (s *fakeStore) TotalsByCategory(ctx context.Context, accountID int64, from, to time.Time) ([]domain.CategoryTotal, error) {
	return nil, nil
}

func (s *fakeStore) ExpenseStats(ctx context.Context, accountID int64) (*domain.ExpenseStats, error) {
	return &domain.ExpenseStats{}, nil
}

func (t *fakeTx) UpdateBalances(ctx context.Context, acct *domain.Account) error {
	if t.store.updateErr != nil {
		return t.store.updateErr
	}
	clone := *acct
	t.acct = &clone
	return nil
}

func (t *fakeTx) InsertTransaction(ctx context.Context, txn *domain.Transaction) (*domain.Transaction, error) {
	if t.store.insertErr != nil {
		return nil, t.store.insertErr
	}
	t.store.nextTxnID++
	saved := *txn
	saved.ID = t.store.nextTxnID
	t.inserted = append(t.inserted, saved)
	return &saved, nil
}

type staticResolver map[string]domain.Category

func (r staticResolver) ByName(name string) (domain.Category, bool) {
	cat, ok := r[name]
	return cat, ok
}

func newTestEngine(acct *domain.Account) (*Engine, *fakeStore) {
	store := &fakeStore{acct: acct}
	resolver := staticResolver{
		domain.CategorySavings:   {ID: 9, Name: domain.CategorySavings},
		domain.CategoryEmergency: {ID: 10, Name: domain.CategoryEmergency},
	}

	return NewEngine(store, resolver, Capabilities{TransactionTypes: true}, testLogger()), store
}

func account() *domain.Account {
	return &domain.Account{
		ID:               1,
		TelegramID:       42,
		Name:             "Ana",
		InitialBalance:   500,
		CheckingBalance:  300,
		SavingsBalance:   150,
		EmergencyBalance: 50,
	}
}

func TestRecordExpense(t *testing.T) {
	engine, store := newTestEngine(account())
	before := store.acct.TotalFunds()

	res, err := engine.RecordExpense(context.Background(), 1, 49.90, 3, "mercado", "42", "msg-1")
	require.NoError(t, err)
	require.False(t, res.Declined)

	assert.InDelta(t, 250.10, store.acct.CheckingBalance, 1e-9)
	assert.InDelta(t, before-49.90, store.acct.TotalFunds(), 1e-9)

	require.NotNil(t, res.Transaction)
	assert.Equal(t, domain.TypeExpense, res.Transaction.Type)
	assert.InDelta(t, 49.90, res.Transaction.Amount, 1e-9)
	assert.Greater(t, res.Transaction.Amount, 0.0)
	assert.Equal(t, "mercado", res.Transaction.Description)
	assert.Equal(t, "msg-1", res.Transaction.MessageID)
}

// Checking may go negative: expenses carry no funds precondition.
func TestRecordExpenseAllowsNegativeChecking(t *testing.T) {
	engine, store := newTestEngine(account())

	res, err := engine.RecordExpense(context.Background(), 1, 400, 3, "aluguel", "42", "")
	require.NoError(t, err)
	require.False(t, res.Declined)

	assert.InDelta(t, -100, store.acct.CheckingBalance, 1e-9)
}

func TestRecordExpenseRounding(t *testing.T) {
	acct := account()
	acct.CheckingBalance = 100
	engine, store := newTestEngine(acct)

	for i := 0; i < 3; i++ {
		_, err := engine.RecordExpense(context.Background(), 1, 33.33, 3, "x", "42", "")
		require.NoError(t, err)
	}

	// Per-step rounding keeps the running balance exact: 66.67, 33.34, 0.01.
	assert.InDelta(t, 0.01, store.acct.CheckingBalance, 1e-9)
}

func TestSetInitialBalance(t *testing.T) {
	engine, store := newTestEngine(account())

	res, err := engine.SetInitialBalance(context.Background(), 1, 1500.505)
	require.NoError(t, err)
	require.False(t, res.Declined)

	assert.InDelta(t, 1500.51, store.acct.InitialBalance, 1e-9)
	assert.InDelta(t, 1500.51, store.acct.CheckingBalance, 1e-9)
	assert.Nil(t, res.Transaction)
	assert.Empty(t, store.inserted, "administrative operations append no rows")
}

func TestAddBalance(t *testing.T) {
	engine, store := newTestEngine(account())

	res, err := engine.AddBalance(context.Background(), 1, 99.99)
	require.NoError(t, err)
	require.False(t, res.Declined)

	assert.InDelta(t, 599.99, store.acct.InitialBalance, 1e-9)
	assert.InDelta(t, 399.99, store.acct.CheckingBalance, 1e-9)
	assert.Empty(t, store.inserted)
}

func TestTransfersAreZeroSum(t *testing.T) {
	testCases := []struct {
		name     string
		op       func(e *Engine) (*Result, error)
		txnType  domain.TransactionType
		category int64
	}{
		{
			name:     "to savings",
			op:       func(e *Engine) (*Result, error) { return e.TransferToSavings(context.Background(), 1, 100) },
			txnType:  domain.TypeSavingsDeposit,
			category: 9,
		},
		{
			name:     "from savings",
			op:       func(e *Engine) (*Result, error) { return e.TransferFromSavings(context.Background(), 1, 100) },
			txnType:  domain.TypeSavingsWithdrawal,
			category: 9,
		},
		{
			name:     "to emergency",
			op:       func(e *Engine) (*Result, error) { return e.TransferToEmergency(context.Background(), 1, 100) },
			txnType:  domain.TypeEmergencyDeposit,
			category: 10,
		},
		{
			name:     "from emergency",
			op:       func(e *Engine) (*Result, error) { return e.TransferFromEmergency(context.Background(), 1, 50) },
			txnType:  domain.TypeEmergencyWithdrawal,
			category: 10,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			engine, store := newTestEngine(account())
			before := store.acct.TotalFunds()

			res, err := tc.op(engine)
			require.NoError(t, err)
			require.False(t, res.Declined)

			assert.InDelta(t, before, store.acct.TotalFunds(), 1e-9, "transfers conserve total funds")

			require.Len(t, store.inserted, 1)
			assert.Equal(t, tc.txnType, store.inserted[0].Type)
			assert.Equal(t, tc.category, store.inserted[0].CategoryID)
			assert.Greater(t, store.inserted[0].Amount, 0.0)
		})
	}
}

func TestTransferDeclinedInsufficientFunds(t *testing.T) {
	testCases := []struct {
		name      string
		op        func(e *Engine) (*Result, error)
		available float64
	}{
		{
			name:      "savings withdrawal over balance",
			op:        func(e *Engine) (*Result, error) { return e.TransferFromSavings(context.Background(), 1, 150.01) },
			available: 150,
		},
		{
			name:      "emergency withdrawal over balance",
			op:        func(e *Engine) (*Result, error) { return e.TransferFromEmergency(context.Background(), 1, 51) },
			available: 50,
		},
		{
			name:      "savings deposit over checking",
			op:        func(e *Engine) (*Result, error) { return e.TransferToSavings(context.Background(), 1, 300.5) },
			available: 300,
		},
		{
			name:      "emergency deposit over checking",
			op:        func(e *Engine) (*Result, error) { return e.TransferToEmergency(context.Background(), 1, 1000) },
			available: 300,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			engine, store := newTestEngine(account())
			snapshot := *store.acct

			res, err := tc.op(engine)
			require.NoError(t, err)
			require.True(t, res.Declined)

			assert.Equal(t, ReasonInsufficientFunds, res.Reason)
			assert.InDelta(t, tc.available, res.Available, 1e-9)
			assert.Equal(t, snapshot, *store.acct, "declined transfer must not mutate the account")
			assert.Empty(t, store.inserted, "declined transfer must not insert a row")
		})
	}
}

func TestOperationsDeclineUnknownAccount(t *testing.T) {
	engine, _ := newTestEngine(account())

	res, err := engine.RecordExpense(context.Background(), 999, 10, 3, "x", "42", "")
	require.NoError(t, err)
	require.True(t, res.Declined)
	assert.Equal(t, ReasonAccountNotFound, res.Reason)
}

func TestOperationsDeclineNonPositiveAmount(t *testing.T) {
	engine, store := newTestEngine(account())

	for _, amount := range []float64{0, -5} {
		res, err := engine.TransferToSavings(context.Background(), 1, amount)
		require.NoError(t, err)
		require.True(t, res.Declined)
		assert.Equal(t, ReasonInvalidAmount, res.Reason)
	}
	assert.Empty(t, store.inserted)
}

// A failing insert rolls the whole operation back: the stored account keeps
// its previous balances.
func TestCommitFailureLeavesStateUntouched(t *testing.T) {
	engine, store := newTestEngine(account())
	store.insertErr = errors.New("disk full")
	snapshot := *store.acct

	_, err := engine.RecordExpense(context.Background(), 1, 10, 3, "x", "42", "")
	require.Error(t, err)

	assert.Equal(t, snapshot, *store.acct)
	assert.Empty(t, store.inserted)
}

func TestListTransactionsDropsTypeFilterWithoutCapability(t *testing.T) {
	store := &fakeStore{acct: account()}
	engine := NewEngine(store, staticResolver{}, Capabilities{TransactionTypes: false}, testLogger())

	_, err := engine.ListTransactions(context.Background(), 1, Filter{Type: domain.TypeExpense})
	require.NoError(t, err)
	assert.Empty(t, store.lastFilter.Type, "type filter must be dropped for legacy stores")

	engineTyped := NewEngine(store, staticResolver{}, Capabilities{TransactionTypes: true}, testLogger())
	_, err = engineTyped.ListTransactions(context.Background(), 1, Filter{Type: domain.TypeExpense})
	require.NoError(t, err)
	assert.Equal(t, domain.TypeExpense, store.lastFilter.Type)
}

func TestRound2(t *testing.T) {
	testCases := []struct {
		in   float64
		want float64
	}{
		{in: 1.005, want: 1.0}, // 1.005 is stored below the midpoint in binary
		{in: 2.675, want: 2.68},
		{in: 10.554, want: 10.55},
		{in: 10.555, want: 10.56},
		{in: -1.235, want: -1.24},
		{in: 100, want: 100},
	}

	for _, tc := range testCases {
		assert.InDelta(t, tc.want, Round2(tc.in), 1e-9, "Round2(%v)", tc.in)
	}
}
