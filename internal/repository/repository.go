// Package repository declares the persistence interfaces the service layer
// programs against. The sqlite subpackage is the only implementation; tests
// substitute in-memory fakes.
package repository

import (
	"context"
	"time"

	"github.com/shaunstone0/stone-budget/internal/model"
)

// ListOptions controls pagination for list queries.
type ListOptions struct {
	Limit  int
	Offset int
}

// BillFilter narrows bill list queries. Zero values mean "no filter".
type BillFilter struct {
	Month      time.Time // matched exactly against the normalized month
	Status     model.BillStatus
	CategoryID string
}

// UserRepository is the credential store. User records are created on
// registration and read on login/profile/verify; this core never updates or
// deletes them. Email uniqueness is enforced at the store level.
type UserRepository interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	GetUserByID(ctx context.Context, id string) (*model.User, error)
}

type CategoryRepository interface {
	CreateCategory(ctx context.Context, category *model.Category) error
	GetCategoryByID(ctx context.Context, id string) (*model.Category, error)
	GetCategoryByName(ctx context.Context, name string) (*model.Category, error)
	ListCategories(ctx context.Context) ([]model.Category, error)
	UpdateCategory(ctx context.Context, category *model.Category) error
	DeleteCategory(ctx context.Context, id string) error
}

// BankRepository persists bank accounts. Reads and writes are scoped to the
// owning user: a bank id belonging to another user behaves as not found.
type BankRepository interface {
	CreateBank(ctx context.Context, bank *model.Bank) error
	GetBankByID(ctx context.Context, userID, id string) (*model.Bank, error)
	ListBanksByUser(ctx context.Context, userID string) ([]model.Bank, error)
	UpdateBank(ctx context.Context, bank *model.Bank) error
	DeleteBank(ctx context.Context, userID, id string) error
}

type BillRepository interface {
	CreateBill(ctx context.Context, bill *model.Bill) error
	GetBillByID(ctx context.Context, id string) (*model.Bill, error)
	ListBills(ctx context.Context, filter BillFilter, opts ListOptions) ([]model.Bill, int, error)
	UpdateBill(ctx context.Context, bill *model.Bill) error
	DeleteBill(ctx context.Context, id string) error
}

type BalanceRepository interface {
	CreateBalance(ctx context.Context, balance *model.MonthlyBalance) error
	GetBalanceByID(ctx context.Context, id string) (*model.MonthlyBalance, error)
	GetBalanceByPersonBankMonth(ctx context.Context, personName, bankID string, month time.Time) (*model.MonthlyBalance, error)
	ListBalancesByMonth(ctx context.Context, month time.Time) ([]model.MonthlyBalance, error)
	UpdateBalance(ctx context.Context, balance *model.MonthlyBalance) error
	DeleteBalance(ctx context.Context, id string) error
}
