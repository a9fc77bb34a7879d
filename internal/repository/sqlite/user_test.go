package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/shaunstone0/stone-budget/internal/apperror"
	"github.com/shaunstone0/stone-budget/internal/model"
)

func TestUserCreate(t *testing.T) {
	db := newTestDB(t)

	user := &model.User{
		Name:         "Shaun",
		Email:        "shaun@example.com",
		PasswordHash: "$2a$12$notarealhash",
	}

	if err := db.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}

	// The record is filled in-place.
	if user.ID == "" {
		t.Error("CreateUser() did not set user.ID")
	}
	if user.CreatedAt.IsZero() {
		t.Error("CreateUser() did not set user.CreatedAt")
	}
}

func TestUserCreate_DuplicateEmail(t *testing.T) {
	db := newTestDB(t)
	createTestUser(t, db, "Shaun", "shaun@example.com")

	dup := &model.User{
		Name:         "Other",
		Email:        "shaun@example.com",
		PasswordHash: "$2a$12$notarealhash",
	}
	err := db.CreateUser(context.Background(), dup)
	if !errors.Is(err, apperror.ErrConflict) {
		t.Errorf("CreateUser(duplicate email) error = %v, want ErrConflict", err)
	}
}

func TestUserGetByEmail(t *testing.T) {
	db := newTestDB(t)
	created := createTestUser(t, db, "Shaun", "shaun@example.com")

	got, err := db.GetUserByEmail(context.Background(), "shaun@example.com")
	if err != nil {
		t.Fatalf("GetUserByEmail() error = %v", err)
	}
	if got.ID != created.ID {
		t.Errorf("GetUserByEmail() ID = %q, want %q", got.ID, created.ID)
	}
	if got.PasswordHash == "" {
		t.Error("GetUserByEmail() should return the stored hash (login needs it)")
	}
}

func TestUserGetByEmail_NotFound(t *testing.T) {
	db := newTestDB(t)

	_, err := db.GetUserByEmail(context.Background(), "nobody@example.com")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetUserByEmail(missing) error = %v, want ErrNotFound", err)
	}
}

func TestUserGetByID(t *testing.T) {
	db := newTestDB(t)
	created := createTestUser(t, db, "Shaun", "shaun@example.com")

	got, err := db.GetUserByID(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("GetUserByID() error = %v", err)
	}
	if got.Email != "shaun@example.com" {
		t.Errorf("GetUserByID() email = %q, want shaun@example.com", got.Email)
	}

	if _, err := db.GetUserByID(context.Background(), "missing-id"); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetUserByID(missing) error = %v, want ErrNotFound", err)
	}
}
