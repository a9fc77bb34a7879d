package sqlite

import (
	"context"
	"testing"

	"github.com/shaunstone0/stone-budget/internal/model"
)

// newTestDB returns a DB backed by an in-memory SQLite database that is
// closed when the test finishes.
func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(":memory:")
	if err != nil {
		t.Fatalf("New(:memory:) error = %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// createTestUser creates a user and fails the test if it errors.
func createTestUser(t *testing.T, db *DB, name, email string) *model.User {
	t.Helper()
	user := &model.User{
		Name:         name,
		Email:        email,
		PasswordHash: "$2a$04$fakefakefakefakefakefuNotARealHashButLooksLikeOne",
	}
	if err := db.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// createTestBank creates a bank owned by userID.
func createTestBank(t *testing.T, db *DB, userID, name string) *model.Bank {
	t.Helper()
	bank := &model.Bank{
		Name:        name,
		AccountType: model.AccountChecking,
		UserID:      userID,
	}
	if err := db.CreateBank(context.Background(), bank); err != nil {
		t.Fatalf("failed to create test bank: %v", err)
	}
	return bank
}

// createTestCategory creates a category.
func createTestCategory(t *testing.T, db *DB, name string) *model.Category {
	t.Helper()
	category := &model.Category{Name: name, Description: "test category"}
	if err := db.CreateCategory(context.Background(), category); err != nil {
		t.Fatalf("failed to create test category: %v", err)
	}
	return category
}
