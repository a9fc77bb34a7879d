package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/shaunstone0/stone-budget/internal/apperror"
	"github.com/shaunstone0/stone-budget/internal/auth"
	"github.com/shaunstone0/stone-budget/internal/model"
	"github.com/shaunstone0/stone-budget/internal/service"
)

// BalanceHandler exposes CRUD for monthly opening balances. One balance per
// (person, bank, month); duplicates are a conflict.
type BalanceHandler struct {
	balances *service.BalanceService
	validate *validator.Validate
	logger   *slog.Logger
}

func NewBalanceHandler(balances *service.BalanceService, logger *slog.Logger) *BalanceHandler {
	return &BalanceHandler{
		balances: balances,
		validate: validator.New(),
		logger:   logger,
	}
}

type createBalanceRequest struct {
	PersonName     string  `json:"personName"     validate:"required,max=100"`
	BankID         string  `json:"bankId"         validate:"required"`
	Month          string  `json:"month"          validate:"required"`
	OpeningBalance float64 `json:"openingBalance"`
}

type updateBalanceRequest struct {
	OpeningBalance float64 `json:"openingBalance"`
}

func (h *BalanceHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, errMissingIdentity)
		return
	}

	var req createBalanceRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeValidationErrors(w, err)
		return
	}

	month, err := parseMonth("month", req.Month)
	if err != nil {
		writeError(w, err)
		return
	}

	balance, err := h.balances.Create(r.Context(), userID, req.PersonName, req.BankID, month, req.OpeningBalance)
	if err != nil {
		writeError(w, err)
		return
	}
	writeCreated(w, "Balance created", balance)
}

// HandleList requires ?month=YYYY-MM and returns all balances for that month.
func (h *BalanceHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("month")
	if raw == "" {
		writeError(w, apperror.ValidationFailed("month", "Month query parameter is required"))
		return
	}
	month, err := parseMonth("month", raw)
	if err != nil {
		writeError(w, err)
		return
	}

	balances, err := h.balances.ListByMonth(r.Context(), month)
	if err != nil {
		writeError(w, err)
		return
	}
	if balances == nil {
		balances = []model.MonthlyBalance{}
	}
	writeSuccess(w, "Balances retrieved", balances)
}

func (h *BalanceHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	balance, err := h.balances.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, "Balance retrieved", balance)
}

func (h *BalanceHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	var req updateBalanceRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	balance, err := h.balances.Update(r.Context(), id, req.OpeningBalance)
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, "Balance updated", balance)
}

func (h *BalanceHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.balances.Delete(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, "Balance deleted", nil)
}
