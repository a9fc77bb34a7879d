package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/shaunstone0/stone-budget/internal/apperror"
)

// errMissingIdentity covers the impossible-but-checked case of a protected
// handler running without an identity in the request context.
var errMissingIdentity = apperror.Unauthorized("Authentication required")

// envelope is the shape of every API response. Clients branch on Success for
// business-logic errors and on the HTTP status for transport-level ones.
type envelope struct {
	Success    bool        `json:"success"`
	Message    string      `json:"message"`
	Data       interface{} `json:"data,omitempty"`
	Error      string      `json:"error,omitempty"`
	Pagination *pagination `json:"pagination,omitempty"`
}

// pagination accompanies list responses.
type pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
	Pages int `json:"pages"`
}

func newPagination(page, limit, total int) *pagination {
	if limit < 1 {
		limit = 1
	}
	pages := total / limit
	if total%limit != 0 {
		pages++
	}
	return &pagination{Page: page, Limit: limit, Total: total, Pages: pages}
}

func writeJSON(w http.ResponseWriter, status int, body envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		// Headers are already out; all we can do is log.
		slog.Error("failed to encode response", slog.String("error", err.Error()))
	}
}

func writeSuccess(w http.ResponseWriter, message string, data interface{}) {
	writeJSON(w, http.StatusOK, envelope{Success: true, Message: message, Data: data})
}

func writeCreated(w http.ResponseWriter, message string, data interface{}) {
	writeJSON(w, http.StatusCreated, envelope{Success: true, Message: message, Data: data})
}

func writePaginated(w http.ResponseWriter, message string, data interface{}, page, limit, total int) {
	writeJSON(w, http.StatusOK, envelope{
		Success:    true,
		Message:    message,
		Data:       data,
		Pagination: newPagination(page, limit, total),
	})
}

// writeError translates a domain error into the envelope plus an HTTP status.
// The service layer never sees status codes; this is the only place the
// mapping lives.
func writeError(w http.ResponseWriter, err error) {
	var appErr *apperror.AppError
	message := "An unexpected error occurred"
	if errors.As(err, &appErr) && appErr.Message != "" {
		message = appErr.Message
	}

	var status int
	var kind string
	switch {
	case errors.Is(err, apperror.ErrValidation):
		status, kind = http.StatusBadRequest, "validation_error"
	case errors.Is(err, apperror.ErrInvalidCredentials):
		status, kind = http.StatusUnauthorized, "invalid_credentials"
	case errors.Is(err, apperror.ErrTokenExpired):
		status, kind = http.StatusUnauthorized, "token_expired"
	case errors.Is(err, apperror.ErrTokenInvalid):
		status, kind = http.StatusUnauthorized, "token_invalid"
	case errors.Is(err, apperror.ErrTokenVerification):
		status, kind = http.StatusUnauthorized, "token_verification_failed"
	case errors.Is(err, apperror.ErrUnauthorized):
		status, kind = http.StatusUnauthorized, "unauthorized"
	case errors.Is(err, apperror.ErrForbidden):
		status, kind = http.StatusForbidden, "forbidden"
	case errors.Is(err, apperror.ErrNotFound):
		status, kind = http.StatusNotFound, "not_found"
	case errors.Is(err, apperror.ErrConflict):
		status, kind = http.StatusConflict, "conflict"
	default:
		status, kind = http.StatusInternalServerError, "internal_error"
		message = "An unexpected error occurred"
		slog.Error("unhandled error in handler", slog.String("error", err.Error()))
	}

	writeJSON(w, status, envelope{Success: false, Message: message, Error: kind})
}

// writeValidationErrors flattens validator.ValidationErrors into one message
// for the envelope, mirroring the field-level messages the services produce.
func writeValidationErrors(w http.ResponseWriter, err error) {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		writeError(w, apperror.ValidationFailed("", "Invalid request body"))
		return
	}
	fe := verrs[0]
	writeError(w, apperror.ValidationFailed(fe.Field(), validationMessage(fe)))
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "email":
		return "Please provide a valid email address"
	case "min":
		return fe.Field() + " must be at least " + fe.Param() + " characters"
	case "max":
		return fe.Field() + " must be at most " + fe.Param() + " characters"
	case "oneof":
		return fe.Field() + " must be one of: " + fe.Param()
	case "gt":
		return fe.Field() + " must be greater than " + fe.Param()
	default:
		return fe.Field() + " is invalid"
	}
}

// decodeJSON reads the request body into dst, rejecting unknown fields so a
// typo in a client payload fails loudly instead of silently zeroing a field.
func decodeJSON(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return apperror.ValidationFailed("", "Invalid request body")
	}
	return nil
}
