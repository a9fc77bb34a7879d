// Package apperror defines the domain error taxonomy shared by the service
// layer and the HTTP handlers. Services return these errors; handlers
// translate them to status codes. Raw storage errors never cross the
// service boundary.
package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrValidation         = errors.New("validation error")
	ErrConflict           = errors.New("conflict")
	ErrForbidden          = errors.New("forbidden")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenExpired       = errors.New("token expired")
	ErrTokenInvalid       = errors.New("token invalid")
	ErrTokenVerification  = errors.New("token verification failed")
	ErrUnauthorized       = errors.New("unauthorized")
)

type AppError struct {
	Err     error  // sentinel that errors.Is matches against
	Message string // human-readable error message
	Field   string // optional: field causing the error
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NotFound(resource, id string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found with id %s", resource, id),
	}
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

func Conflict(message string) *AppError {
	return &AppError{
		Err:     ErrConflict,
		Message: message,
	}
}

// Forbidden returns an AppError indicating the caller lacks permission.
// HTTP handlers map this to 403 Forbidden.
func Forbidden(message string) *AppError {
	return &AppError{
		Err:     ErrForbidden,
		Message: message,
	}
}

// InvalidCredentials is deliberately generic: the same error is returned
// for an unknown email and for a wrong password, so login responses cannot
// be used to enumerate accounts.
func InvalidCredentials() *AppError {
	return &AppError{
		Err:     ErrInvalidCredentials,
		Message: "Invalid email or password",
	}
}

// TokenExpired means the signature checked out but the expiry has passed.
func TokenExpired() *AppError {
	return &AppError{
		Err:     ErrTokenExpired,
		Message: "Token expired",
	}
}

// TokenInvalid means the token structure or signature is bad.
func TokenInvalid() *AppError {
	return &AppError{
		Err:     ErrTokenInvalid,
		Message: "Invalid token",
	}
}

// TokenVerification covers any token failure that is neither an expiry nor
// a structural problem.
func TokenVerification() *AppError {
	return &AppError{
		Err:     ErrTokenVerification,
		Message: "Token verification failed",
	}
}

func Unauthorized(message string) *AppError {
	return &AppError{
		Err:     ErrUnauthorized,
		Message: message,
	}
}
