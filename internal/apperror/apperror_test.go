package apperror

import (
	"errors"
	"testing"
)

func TestErrorsIs(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		target    error
		wantMatch bool
	}{
		{
			name:      "NotFound wraps ErrNotFound",
			err:       NotFound("bill", "abc123"),
			target:    ErrNotFound,
			wantMatch: true,
		},
		{
			name:      "ValidationFailed wraps ErrValidation",
			err:       ValidationFailed("name", "name is required"),
			target:    ErrValidation,
			wantMatch: true,
		},
		{
			name:      "Conflict wraps ErrConflict",
			err:       Conflict("User with this email already exists"),
			target:    ErrConflict,
			wantMatch: true,
		},
		{
			name:      "InvalidCredentials wraps ErrInvalidCredentials",
			err:       InvalidCredentials(),
			target:    ErrInvalidCredentials,
			wantMatch: true,
		},
		{
			name:      "TokenExpired wraps ErrTokenExpired",
			err:       TokenExpired(),
			target:    ErrTokenExpired,
			wantMatch: true,
		},
		{
			name:      "TokenExpired does NOT match ErrTokenInvalid",
			err:       TokenExpired(),
			target:    ErrTokenInvalid,
			wantMatch: false,
		},
		{
			name:      "TokenInvalid wraps ErrTokenInvalid",
			err:       TokenInvalid(),
			target:    ErrTokenInvalid,
			wantMatch: true,
		},
		{
			name:      "NotFound does NOT match ErrValidation",
			err:       NotFound("bank", "abc123"),
			target:    ErrValidation,
			wantMatch: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := errors.Is(tt.err, tt.target)
			if got != tt.wantMatch {
				t.Errorf("errors.Is(%v, %v) = %v, want %v", tt.err, tt.target, got, tt.wantMatch)
			}
		})
	}
}

func TestErrorMessages(t *testing.T) {
	tests := []struct {
		name        string
		err         *AppError
		wantMessage string
	}{
		{
			name:        "NotFound message includes resource and id",
			err:         NotFound("bill", "abc123"),
			wantMessage: "bill not found with id abc123",
		},
		{
			name:        "ValidationFailed uses custom message",
			err:         ValidationFailed("name", "name is required"),
			wantMessage: "name is required",
		},
		{
			name:        "InvalidCredentials is generic",
			err:         InvalidCredentials(),
			wantMessage: "Invalid email or password",
		},
		{
			name:        "TokenExpired message",
			err:         TokenExpired(),
			wantMessage: "Token expired",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.wantMessage {
				t.Errorf("Error() = %q, want %q", got, tt.wantMessage)
			}
		})
	}
}

func TestUnwrap(t *testing.T) {
	err := NotFound("bill", "abc123")
	if unwrapped := err.Unwrap(); unwrapped != ErrNotFound {
		t.Errorf("Unwrap() = %v, want %v", unwrapped, ErrNotFound)
	}
}

func TestValidationFailedField(t *testing.T) {
	err := ValidationFailed("email", "invalid email format")
	if err.Field != "email" {
		t.Errorf("Field = %q, want %q", err.Field, "email")
	}
}

// Login must not reveal whether the email exists, so the two failure paths
// have to produce byte-identical messages.
func TestInvalidCredentialsIsIndistinguishable(t *testing.T) {
	a := InvalidCredentials()
	b := InvalidCredentials()
	if a.Error() != b.Error() {
		t.Errorf("InvalidCredentials messages differ: %q vs %q", a.Error(), b.Error())
	}
}
