package domain

import "time"

// Account holds the per-user balances tracked by the ledger. One account is
// created for every chat identity on its first observed message.
type Account struct {
	ID               int64
	TelegramID       int64
	Name             string
	InitialBalance   float64
	CheckingBalance  float64
	SavingsBalance   float64
	EmergencyBalance float64
	LowBalanceWarned bool
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// TotalFunds returns the sum of all three buckets. Transfers between buckets
// must leave this value unchanged.
func (a *Account) TotalFunds() float64 {
	return a.CheckingBalance + a.SavingsBalance + a.EmergencyBalance
}
