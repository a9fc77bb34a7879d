package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/shaunstone0/stone-budget/internal/auth"
	"github.com/shaunstone0/stone-budget/internal/model"
	"github.com/shaunstone0/stone-budget/internal/service"
)

// BankHandler exposes CRUD for bank accounts. Every operation is scoped to
// the authenticated user; another user's bank id behaves as not found.
type BankHandler struct {
	banks    *service.BankService
	validate *validator.Validate
	logger   *slog.Logger
}

func NewBankHandler(banks *service.BankService, logger *slog.Logger) *BankHandler {
	return &BankHandler{
		banks:    banks,
		validate: validator.New(),
		logger:   logger,
	}
}

type bankRequest struct {
	Name        string `json:"name"        validate:"required,max=100"`
	AccountType string `json:"accountType" validate:"required,oneof=checking savings credit"`
}

func (h *BankHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, errMissingIdentity)
		return
	}

	var req bankRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeValidationErrors(w, err)
		return
	}

	bank, err := h.banks.Create(r.Context(), userID, req.Name, model.AccountType(req.AccountType))
	if err != nil {
		writeError(w, err)
		return
	}
	writeCreated(w, "Bank created", bank)
}

func (h *BankHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, errMissingIdentity)
		return
	}

	banks, err := h.banks.ListByUser(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, "Banks retrieved", banks)
}

func (h *BankHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, errMissingIdentity)
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	bank, err := h.banks.GetByID(r.Context(), userID, id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, "Bank retrieved", bank)
}

func (h *BankHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, errMissingIdentity)
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	var req bankRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeValidationErrors(w, err)
		return
	}

	bank, err := h.banks.Update(r.Context(), userID, id, req.Name, model.AccountType(req.AccountType))
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, "Bank updated", bank)
}

func (h *BankHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, errMissingIdentity)
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.banks.Delete(r.Context(), userID, id); err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, "Bank deleted", nil)
}
