package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/xid"

	"github.com/shaunstone0/stone-budget/internal/apperror"
	"github.com/shaunstone0/stone-budget/internal/service"
)

// CategoryHandler exposes CRUD for expense categories. Categories are shared
// across the household, not per-user.
type CategoryHandler struct {
	categories *service.CategoryService
	validate   *validator.Validate
	logger     *slog.Logger
}

func NewCategoryHandler(categories *service.CategoryService, logger *slog.Logger) *CategoryHandler {
	return &CategoryHandler{
		categories: categories,
		validate:   validator.New(),
		logger:     logger,
	}
}

type categoryRequest struct {
	Name        string `json:"name"        validate:"required,max=100"`
	Description string `json:"description" validate:"max=500"`
}

func (h *CategoryHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeValidationErrors(w, err)
		return
	}

	category, err := h.categories.Create(r.Context(), req.Name, req.Description)
	if err != nil {
		writeError(w, err)
		return
	}
	writeCreated(w, "Category created", category)
}

func (h *CategoryHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	categories, err := h.categories.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, "Categories retrieved", categories)
}

func (h *CategoryHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	category, err := h.categories.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, "Category retrieved", category)
}

func (h *CategoryHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	var req categoryRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeValidationErrors(w, err)
		return
	}

	category, err := h.categories.Update(r.Context(), id, req.Name, req.Description)
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, "Category updated", category)
}

func (h *CategoryHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.categories.Delete(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, "Category deleted", nil)
}

// pathID pulls a resource id out of the route and rejects anything that is
// not a well-formed xid before any store round-trip.
func pathID(r *http.Request, name string) (string, error) {
	raw := chi.URLParam(r, name)
	if raw == "" {
		return "", apperror.ValidationFailed(name, "Resource id is required")
	}
	id, err := xid.FromString(raw)
	if err != nil {
		return "", apperror.ValidationFailed(name, "Invalid id format")
	}
	return id.String(), nil
}
