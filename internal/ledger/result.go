package ledger

import "github.com/devaqn/financeira-bot/internal/domain"

// Reason explains why an operation was declined.
type Reason string

const (
	ReasonInsufficientFunds Reason = "insufficient_funds"
	ReasonAccountNotFound   Reason = "account_not_found"
	ReasonInvalidAmount     Reason = "invalid_amount"
)

// Result is the outcome of a ledger operation. A declined result carries a
// reason and guarantees that nothing was persisted; errors are reserved for
// infrastructure failures.
type Result struct {
	Declined    bool
	Reason      Reason
	Available   float64
	Account     *domain.Account
	Transaction *domain.Transaction
}

func declined(reason Reason, available float64) *Result {
	return &Result{Declined: true, Reason: reason, Available: available}
}
