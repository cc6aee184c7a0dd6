package ledger

import (
	"context"
	"time"

	"github.com/devaqn/financeira-bot/internal/domain"
)

// Capabilities describes what the backing store supports. The flag is decided
// at wiring time; the engine never probes the schema itself. Stores created
// before the transaction_type migration keep working with the flag off.
type Capabilities struct {
	TransactionTypes bool
}

// Filter narrows transaction listings. Zero values mean "no constraint".
type Filter struct {
	From       *time.Time
	To         *time.Time
	CategoryID int64
	Type       domain.TransactionType
}

// TxStore is the write surface available inside one atomic unit. Both calls
// commit together or not at all.
type TxStore interface {
	UpdateBalances(ctx context.Context, acct *domain.Account) error
	InsertTransaction(ctx context.Context, t *domain.Transaction) (*domain.Transaction, error)
}

// Store is the persistence collaborator of the engine.
type Store interface {
	AccountByID(ctx context.Context, id int64) (*domain.Account, error)
	WithinTx(ctx context.Context, fn func(tx TxStore) error) error

	ListTransactions(ctx context.Context, accountID int64, f Filter) ([]domain.Transaction, error)
	TotalsByCategory(ctx context.Context, accountID int64, from, to time.Time) ([]domain.CategoryTotal, error)
	ExpenseStats(ctx context.Context, accountID int64) (*domain.ExpenseStats, error)
}

// CategoryResolver resolves the reserved transfer categories by name.
type CategoryResolver interface {
	ByName(name string) (domain.Category, bool)
}
