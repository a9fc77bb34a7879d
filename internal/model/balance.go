package model

import "time"

// MonthlyBalance is the opening balance of one person's bank account for a
// given month. One row per (personName, bank, month).
type MonthlyBalance struct {
	ID              string    `json:"id"              db:"id"`
	PersonName      string    `json:"personName"      db:"person_name"`
	BankID          string    `json:"bankId"          db:"bank_id"`
	Month           time.Time `json:"month"           db:"month"`
	OpeningBalance  float64   `json:"openingBalance"  db:"opening_balance"`
	EnteredByUserID string    `json:"enteredByUserId" db:"entered_by_user_id"`
	CreatedAt       time.Time `json:"createdAt"       db:"created_at"`
}
