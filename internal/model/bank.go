package model

import "time"

// AccountType classifies a bank account.
type AccountType string

const (
	AccountChecking AccountType = "checking"
	AccountSavings  AccountType = "savings"
	AccountCredit   AccountType = "credit"
)

// Valid reports whether t is one of the known account types.
func (t AccountType) Valid() bool {
	switch t {
	case AccountChecking, AccountSavings, AccountCredit:
		return true
	}
	return false
}

// Bank is a bank account owned by a single user. All bank operations are
// scoped to the owning user; other users cannot see or reference it.
type Bank struct {
	ID          string      `json:"id"          db:"id"`
	Name        string      `json:"name"        db:"name"`
	AccountType AccountType `json:"accountType" db:"account_type"`
	UserID      string      `json:"userId"      db:"user_id"`
	CreatedAt   time.Time   `json:"createdAt"   db:"created_at"`
}
