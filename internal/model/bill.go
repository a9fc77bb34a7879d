package model

import "time"

// BillStatus tracks whether a bill has been paid for its month.
type BillStatus string

const (
	BillPaid    BillStatus = "paid"
	BillUnpaid  BillStatus = "unpaid"
	BillSkipped BillStatus = "skipped"
)

func (s BillStatus) Valid() bool {
	switch s {
	case BillPaid, BillUnpaid, BillSkipped:
		return true
	}
	return false
}

// PaymentType records how a bill gets paid.
type PaymentType string

const (
	PaymentAuto   PaymentType = "auto"
	PaymentManual PaymentType = "manual"
	PaymentOnline PaymentType = "online"
	PaymentCheck  PaymentType = "check"
)

func (p PaymentType) Valid() bool {
	switch p {
	case PaymentAuto, PaymentManual, PaymentOnline, PaymentCheck:
		return true
	}
	return false
}

// Bill is a single expense entry for a given month.
//
// Month is always normalized to the first day of its month (UTC midnight)
// so that "same month" comparisons are plain equality.
type Bill struct {
	ID              string      `json:"id"              db:"id"`
	Name            string      `json:"name"            db:"name"`
	Amount          float64     `json:"amount"          db:"amount"`
	Status          BillStatus  `json:"status"          db:"status"`
	PaymentType     PaymentType `json:"paymentType"     db:"payment_type"`
	CategoryID      string      `json:"categoryId"      db:"category_id"`
	DueDate         time.Time   `json:"dueDate"         db:"due_date"`
	BankID          string      `json:"bankId"          db:"bank_id"`
	EnteredByUserID string      `json:"enteredByUserId" db:"entered_by_user_id"`
	Month           time.Time   `json:"month"           db:"month"`
	CreatedAt       time.Time   `json:"createdAt"       db:"created_at"`
	UpdatedAt       time.Time   `json:"updatedAt"       db:"updated_at"`
}

// FirstOfMonth truncates t to the first day of its month at UTC midnight.
func FirstOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}
