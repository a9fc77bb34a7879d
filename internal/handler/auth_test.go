package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shaunstone0/stone-budget/internal/auth"
	"github.com/shaunstone0/stone-budget/internal/repository/sqlite"
	"github.com/shaunstone0/stone-budget/internal/service"
)

// newAuthRouter wires a real service stack over an in-memory database, so
// these tests exercise the full path from HTTP to SQL.
func newAuthRouter(t *testing.T) chi.Router {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	db, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	tokens := auth.NewTokenService("handler-test-secret-32-bytes!!!!", time.Hour, logger)
	passwords := auth.NewPasswordServiceWithCost(4)
	authService := service.NewAuthService(db, tokens, passwords, logger)
	h := NewAuthHandler(authService, logger)

	r := chi.NewRouter()
	r.Post("/api/v1/auth/register", h.HandleRegister)
	r.Post("/api/v1/auth/login", h.HandleLogin)
	r.Group(func(r chi.Router) {
		r.Use(auth.RequireAuth(tokens, db, logger))
		r.Get("/api/v1/auth/profile", h.HandleProfile)
		r.Get("/api/v1/auth/verify", h.HandleVerify)
		r.Post("/api/v1/auth/logout", h.HandleLogout)
	})
	return r
}

func doJSON(t *testing.T, r chi.Router, method, path, token string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	var env envelope
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env), "response should be a valid envelope")
	return rr, env
}

func registerUser(t *testing.T, r chi.Router, email string) string {
	t.Helper()
	rr, env := doJSON(t, r, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"name":     "Test User",
		"email":    email,
		"password": "secret123",
	})
	require.Equal(t, http.StatusCreated, rr.Code)
	data := env.Data.(map[string]interface{})
	return data["token"].(string)
}

func TestRegisterEndpoint(t *testing.T) {
	r := newAuthRouter(t)

	rr, env := doJSON(t, r, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"name":     "Shaun",
		"email":    "shaun@example.com",
		"password": "secret123",
	})

	assert.Equal(t, http.StatusCreated, rr.Code)
	assert.True(t, env.Success)

	data := env.Data.(map[string]interface{})
	assert.NotEmpty(t, data["token"])
	user := data["user"].(map[string]interface{})
	assert.Equal(t, "shaun@example.com", user["email"])
	// The password hash must never appear in any response.
	assert.NotContains(t, rr.Body.String(), "passwordHash")
	assert.NotContains(t, rr.Body.String(), "secret123")
}

func TestRegisterEndpoint_Validation(t *testing.T) {
	r := newAuthRouter(t)

	tests := []struct {
		name string
		body map[string]string
	}{
		{"missing name", map[string]string{"email": "a@b.co", "password": "secret123"}},
		{"bad email", map[string]string{"name": "A", "email": "nope", "password": "secret123"}},
		{"short password", map[string]string{"name": "A", "email": "a@b.co", "password": "12345"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr, env := doJSON(t, r, http.MethodPost, "/api/v1/auth/register", "", tt.body)
			assert.Equal(t, http.StatusBadRequest, rr.Code)
			assert.False(t, env.Success)
			assert.Equal(t, "validation_error", env.Error)
		})
	}
}

func TestRegisterEndpoint_DuplicateEmail(t *testing.T) {
	r := newAuthRouter(t)
	registerUser(t, r, "dup@example.com")

	rr, env := doJSON(t, r, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"name":     "Other",
		"email":    "DUP@example.com",
		"password": "secret456",
	})
	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Equal(t, "conflict", env.Error)
}

func TestLoginEndpoint(t *testing.T) {
	r := newAuthRouter(t)
	registerUser(t, r, "login@example.com")

	rr, env := doJSON(t, r, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email":    "login@example.com",
		"password": "secret123",
	})
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, env.Success)

	// Wrong password and unknown email are indistinguishable.
	rr1, env1 := doJSON(t, r, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email": "login@example.com", "password": "wrong-password",
	})
	rr2, env2 := doJSON(t, r, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email": "nobody@example.com", "password": "whatever1",
	})
	assert.Equal(t, http.StatusUnauthorized, rr1.Code)
	assert.Equal(t, http.StatusUnauthorized, rr2.Code)
	assert.Equal(t, env1.Message, env2.Message)
}

func TestProfileEndpoint(t *testing.T) {
	r := newAuthRouter(t)
	token := registerUser(t, r, "profile@example.com")

	rr, env := doJSON(t, r, http.MethodGet, "/api/v1/auth/profile", token, nil)
	require.Equal(t, http.StatusOK, rr.Code)

	data := env.Data.(map[string]interface{})
	user := data["user"].(map[string]interface{})
	assert.Equal(t, "profile@example.com", user["email"])
	assert.NotEmpty(t, user["createdAt"])
}

func TestProfileEndpoint_Unauthorized(t *testing.T) {
	r := newAuthRouter(t)

	rr, env := doJSON(t, r, http.MethodGet, "/api/v1/auth/profile", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.False(t, env.Success)

	rr, _ = doJSON(t, r, http.MethodGet, "/api/v1/auth/profile", "not-a-jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	// No user data leaks on auth failure.
	assert.NotContains(t, rr.Body.String(), "email")
}

func TestVerifyEndpoint(t *testing.T) {
	r := newAuthRouter(t)
	token := registerUser(t, r, "verify@example.com")

	rr, env := doJSON(t, r, http.MethodGet, "/api/v1/auth/verify", token, nil)
	require.Equal(t, http.StatusOK, rr.Code)

	data := env.Data.(map[string]interface{})
	assert.Equal(t, true, data["tokenValid"])
	user := data["user"].(map[string]interface{})
	assert.Equal(t, "verify@example.com", user["email"])
}

func TestLogoutEndpoint(t *testing.T) {
	r := newAuthRouter(t)
	token := registerUser(t, r, "logout@example.com")

	rr, env := doJSON(t, r, http.MethodPost, "/api/v1/auth/logout", token, nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, env.Success)
	assert.Equal(t, "Logged out successfully", env.Message)

	// Logout without a token is still a protected route.
	rr, _ = doJSON(t, r, http.MethodPost, "/api/v1/auth/logout", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestRegisterEndpoint_UnknownField(t *testing.T) {
	r := newAuthRouter(t)

	rr, env := doJSON(t, r, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"name": "A", "email": "a@b.co", "password": "secret123", "role": "admin",
	})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.False(t, env.Success)
}
