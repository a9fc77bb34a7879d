package handler

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shaunstone0/stone-budget/internal/auth"
	"github.com/shaunstone0/stone-budget/internal/repository/sqlite"
	"github.com/shaunstone0/stone-budget/internal/service"
)

// newBillRouter wires auth plus the bill resource chain over an in-memory
// database and returns a ready token and seeded bank/category ids.
func newBillRouter(t *testing.T) (chi.Router, string, string, string) {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	db, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	tokens := auth.NewTokenService("bill-handler-test-secret-32bytes", time.Hour, logger)
	passwords := auth.NewPasswordServiceWithCost(4)
	authService := service.NewAuthService(db, tokens, passwords, logger)
	billService := service.NewBillService(db, db, db, logger)
	bankService := service.NewBankService(db, logger)
	categoryService := service.NewCategoryService(db, logger)

	authHandler := NewAuthHandler(authService, logger)
	billHandler := NewBillHandler(billService, logger)

	r := chi.NewRouter()
	r.Post("/api/v1/auth/register", authHandler.HandleRegister)
	r.Group(func(r chi.Router) {
		r.Use(auth.RequireAuth(tokens, db, logger))
		r.Route("/api/v1/bills", func(r chi.Router) {
			r.Get("/", billHandler.HandleList)
			r.Post("/", billHandler.HandleCreate)
			r.Get("/{id}", billHandler.HandleGet)
			r.Delete("/{id}", billHandler.HandleDelete)
		})
	})

	token := registerUser(t, r, "bills@example.com")

	result, err := authService.Login(context.Background(), "bills@example.com", "secret123")
	require.NoError(t, err)
	bank, err := bankService.Create(context.Background(), result.User.ID, "Checking", "checking")
	require.NoError(t, err)
	category, err := categoryService.Create(context.Background(), "Utilities", "Monthly utilities")
	require.NoError(t, err)

	return r, token, bank.ID, category.ID
}

func billPayload(bankID, categoryID string) map[string]interface{} {
	return map[string]interface{}{
		"name":        "Electric",
		"amount":      120.5,
		"paymentType": "auto",
		"categoryId":  categoryID,
		"dueDate":     "2026-03-15",
		"bankId":      bankID,
		"month":       "2026-03",
	}
}

func TestBillEndpoints_CreateAndGet(t *testing.T) {
	r, token, bankID, categoryID := newBillRouter(t)

	rr, env := doJSON(t, r, http.MethodPost, "/api/v1/bills/", token, billPayload(bankID, categoryID))
	require.Equal(t, http.StatusCreated, rr.Code)
	require.True(t, env.Success)

	created := env.Data.(map[string]interface{})
	assert.Equal(t, "unpaid", created["status"], "status defaults to unpaid")
	id := created["id"].(string)

	rr, env = doJSON(t, r, http.MethodGet, "/api/v1/bills/"+id, token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	got := env.Data.(map[string]interface{})
	assert.Equal(t, "Electric", got["name"])
}

func TestBillEndpoints_ListPagination(t *testing.T) {
	r, token, bankID, categoryID := newBillRouter(t)

	for i := 0; i < 3; i++ {
		rr, _ := doJSON(t, r, http.MethodPost, "/api/v1/bills/", token, billPayload(bankID, categoryID))
		require.Equal(t, http.StatusCreated, rr.Code)
	}

	rr, env := doJSON(t, r, http.MethodGet, "/api/v1/bills/?page=1&limit=2", token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	require.NotNil(t, env.Pagination)
	assert.Equal(t, 3, env.Pagination.Total)
	assert.Equal(t, 2, env.Pagination.Pages)
	assert.Len(t, env.Data.([]interface{}), 2)

	// Out-of-range paging values fall back to the effective defaults
	// instead of echoing the raw query into the pagination block.
	rr, env = doJSON(t, r, http.MethodGet, "/api/v1/bills/?limit=0", token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	require.NotNil(t, env.Pagination)
	assert.Equal(t, service.DefaultListLimit, env.Pagination.Limit)
	assert.Equal(t, 3, env.Pagination.Total)
	assert.Equal(t, 1, env.Pagination.Pages)

	rr, env = doJSON(t, r, http.MethodGet, "/api/v1/bills/?limit=1000&page=-1", token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, service.MaxListLimit, env.Pagination.Limit)
	assert.Equal(t, 1, env.Pagination.Page)
	assert.Equal(t, 1, env.Pagination.Pages)

	// A month with no bills returns an empty page, not null.
	rr, env = doJSON(t, r, http.MethodGet, "/api/v1/bills/?month=1999-01", token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.NotNil(t, env.Data)
	assert.Len(t, env.Data.([]interface{}), 0)
}

func TestBillEndpoints_InvalidID(t *testing.T) {
	r, token, _, _ := newBillRouter(t)

	rr, env := doJSON(t, r, http.MethodGet, "/api/v1/bills/not-an-xid", token, nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "validation_error", env.Error)
}

func TestBillEndpoints_BadMonthFilter(t *testing.T) {
	r, token, _, _ := newBillRouter(t)

	rr, env := doJSON(t, r, http.MethodGet, "/api/v1/bills/?month=March", token, nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, env.Message, "YYYY-MM")
}

func TestBillEndpoints_RequireAuth(t *testing.T) {
	r, _, bankID, categoryID := newBillRouter(t)

	rr, _ := doJSON(t, r, http.MethodPost, "/api/v1/bills/", "", billPayload(bankID, categoryID))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestBillEndpoints_Delete(t *testing.T) {
	r, token, bankID, categoryID := newBillRouter(t)

	_, env := doJSON(t, r, http.MethodPost, "/api/v1/bills/", token, billPayload(bankID, categoryID))
	id := env.Data.(map[string]interface{})["id"].(string)

	rr, _ := doJSON(t, r, http.MethodDelete, "/api/v1/bills/"+id, token, nil)
	require.Equal(t, http.StatusOK, rr.Code)

	rr, _ = doJSON(t, r, http.MethodDelete, "/api/v1/bills/"+id, token, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}
