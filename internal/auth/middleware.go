package auth

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/shaunstone0/stone-budget/internal/apperror"
	"github.com/shaunstone0/stone-budget/internal/model"
)

// contextKey is unexported so only this package can read or write the
// identity values placed in a request context.
type contextKey string

const (
	userIDKey contextKey = "userID"
	userKey   contextKey = "user"
)

// UserResolver looks up the user a verified token points at. Implemented by
// the auth service; kept as a local interface so this package never imports
// the service layer.
type UserResolver interface {
	GetUserByID(ctx context.Context, id string) (*model.User, error)
}

// RequireAuth enforces authentication on protected routes.
//
// Per-request flow: read the bearer token from the Authorization header,
// verify it, resolve the user it names, attach both to the request context.
// Every failure short-circuits with 401 and a message naming which of the
// token failure modes occurred. Verification results are never cached;
// each request independently re-verifies, so expiry takes effect
// immediately.
func RequireAuth(tokens *TokenService, users UserResolver, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenStr, ok := bearerToken(r)
			if !ok {
				writeUnauthorized(w, "Access token required", "Authorization header missing or invalid format")
				return
			}

			userID, err := tokens.Verify(tokenStr)
			if err != nil {
				switch {
				case errors.Is(err, apperror.ErrTokenExpired):
					writeUnauthorized(w, "Token expired", "Please login again")
				case errors.Is(err, apperror.ErrTokenInvalid):
					writeUnauthorized(w, "Invalid token", "Authentication failed")
				default:
					writeUnauthorized(w, "Authentication failed", "Token verification failed")
				}
				return
			}

			user, err := users.GetUserByID(r.Context(), userID)
			if err != nil {
				// Token is cryptographically fine, but the subject vanished
				// between issuance and use.
				logger.Warn("authenticated user no longer exists", slog.String("userID", userID))
				writeUnauthorized(w, "Invalid token", "User not found")
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey, user.ID)
			ctx = context.WithValue(ctx, userKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Decision is the outcome of an authorization check.
//
// NotImplemented exists because the user model has no role data yet: the
// role check is a forward-compatibility stub, and a stub that silently
// granted access would look like a real authorization boundary.
type Decision int

const (
	Denied Decision = iota
	Granted
	NotImplemented
)

func (d Decision) String() string {
	switch d {
	case Granted:
		return "granted"
	case Denied:
		return "denied"
	case NotImplemented:
		return "not implemented"
	}
	return "unknown"
}

// CheckRole evaluates whether the user holds the given role. There is no
// role data in the user model yet, so the outcome is always NotImplemented.
func CheckRole(_ *model.User, _ string) Decision {
	return NotImplemented
}

// RequireRole gates a route on a role. Until roles exist, NotImplemented is
// treated as allow, but logged on every request so the placeholder stays
// visible in output instead of masquerading as enforcement.
func RequireRole(role string, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, _ := UserFromContext(r.Context())
			switch CheckRole(user, role) {
			case Granted:
				next.ServeHTTP(w, r)
			case NotImplemented:
				logger.Warn("role check not implemented, allowing request",
					slog.String("role", role),
					slog.String("path", r.URL.Path),
				)
				next.ServeHTTP(w, r)
			default:
				writeForbidden(w, "Insufficient permissions")
			}
		})
	}
}

// UserIDFromContext returns the authenticated user's ID, or ("", false) on
// an unauthenticated request.
func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDKey).(string)
	return id, ok && id != ""
}

// UserFromContext returns the resolved user record the middleware attached.
func UserFromContext(ctx context.Context) (*model.User, bool) {
	user, ok := ctx.Value(userKey).(*model.User)
	return user, ok && user != nil
}

// bearerToken extracts the token from "Authorization: Bearer <token>".
func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", false
	}
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") || token == "" {
		return "", false
	}
	return token, true
}

// writeUnauthorized sends a 401 in the standard response envelope. The
// handler package has its own helpers, but the middleware writes directly
// to avoid depending on it.
func writeUnauthorized(w http.ResponseWriter, message, detail string) {
	writeEnvelope(w, http.StatusUnauthorized, message, detail)
}

func writeForbidden(w http.ResponseWriter, message string) {
	writeEnvelope(w, http.StatusForbidden, message, "")
}

func writeEnvelope(w http.ResponseWriter, status int, message, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	body := map[string]any{
		"success": false,
		"message": message,
	}
	if detail != "" {
		body["error"] = detail
	}
	_ = json.NewEncoder(w).Encode(body)
}
