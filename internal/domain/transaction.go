package domain

import "time"

// TransactionType tells which bucket a transaction touched and in which
// direction. Amounts are always stored positive.
type TransactionType string

const (
	TypeExpense             TransactionType = "expense"
	TypeSavingsDeposit      TransactionType = "savings_deposit"
	TypeSavingsWithdrawal   TransactionType = "savings_withdrawal"
	TypeEmergencyDeposit    TransactionType = "emergency_deposit"
	TypeEmergencyWithdrawal TransactionType = "emergency_withdrawal"
)

// Transaction is an immutable append-only ledger record. Rows are inserted
// exclusively by the ledger engine and never updated or deleted.
type Transaction struct {
	ID          int64
	AccountID   int64
	Amount      float64
	Description string
	CategoryID  int64
	Type        TransactionType
	Date        time.Time
	ChatID      string
	MessageID   string
	CreatedAt   time.Time
}

// CategoryTotal is one row of the per-category aggregate query.
type CategoryTotal struct {
	CategoryName  string
	CategoryEmoji string
	Count         int64
	Total         float64
}

// ExpenseStats summarizes an account's expense-type transactions.
type ExpenseStats struct {
	Count   int64
	Total   float64
	Average float64
	Max     float64
	Min     float64
}
