package handler

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/shaunstone0/stone-budget/internal/apperror"
	"github.com/shaunstone0/stone-budget/internal/auth"
	"github.com/shaunstone0/stone-budget/internal/model"
	"github.com/shaunstone0/stone-budget/internal/repository"
	"github.com/shaunstone0/stone-budget/internal/service"
)

// monthLayout is the wire format for month values: "2026-03".
const monthLayout = "2006-01"

// BillHandler exposes CRUD plus filtered, paginated listing for bills.
type BillHandler struct {
	bills    *service.BillService
	validate *validator.Validate
	logger   *slog.Logger
}

func NewBillHandler(bills *service.BillService, logger *slog.Logger) *BillHandler {
	return &BillHandler{
		bills:    bills,
		validate: validator.New(),
		logger:   logger,
	}
}

type createBillRequest struct {
	Name        string  `json:"name"        validate:"required,max=100"`
	Amount      float64 `json:"amount"      validate:"required,gt=0"`
	Status      string  `json:"status"      validate:"omitempty,oneof=paid unpaid skipped"`
	PaymentType string  `json:"paymentType" validate:"required,oneof=auto manual online check"`
	CategoryID  string  `json:"categoryId"  validate:"required"`
	DueDate     string  `json:"dueDate"     validate:"required"`
	BankID      string  `json:"bankId"      validate:"required"`
	Month       string  `json:"month"       validate:"required"`
}

type updateBillRequest struct {
	Name        *string  `json:"name"        validate:"omitempty,max=100"`
	Amount      *float64 `json:"amount"      validate:"omitempty,gt=0"`
	Status      *string  `json:"status"      validate:"omitempty,oneof=paid unpaid skipped"`
	PaymentType *string  `json:"paymentType" validate:"omitempty,oneof=auto manual online check"`
	CategoryID  *string  `json:"categoryId"  validate:"omitempty"`
	DueDate     *string  `json:"dueDate"     validate:"omitempty"`
	BankID      *string  `json:"bankId"      validate:"omitempty"`
}

func (h *BillHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, errMissingIdentity)
		return
	}

	var req createBillRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeValidationErrors(w, err)
		return
	}

	dueDate, err := parseDate("dueDate", req.DueDate)
	if err != nil {
		writeError(w, err)
		return
	}
	month, err := parseMonth("month", req.Month)
	if err != nil {
		writeError(w, err)
		return
	}

	bill, err := h.bills.Create(r.Context(), userID, service.CreateBillInput{
		Name:        req.Name,
		Amount:      req.Amount,
		Status:      model.BillStatus(req.Status),
		PaymentType: model.PaymentType(req.PaymentType),
		CategoryID:  req.CategoryID,
		DueDate:     dueDate,
		BankID:      req.BankID,
		Month:       month,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeCreated(w, "Bill created", bill)
}

// HandleList supports ?month=2026-03&status=unpaid&categoryId=...&page=1&limit=20.
func (h *BillHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var filter repository.BillFilter
	if raw := q.Get("month"); raw != "" {
		month, err := parseMonth("month", raw)
		if err != nil {
			writeError(w, err)
			return
		}
		filter.Month = month
	}
	filter.Status = model.BillStatus(q.Get("status"))
	filter.CategoryID = q.Get("categoryId")

	// Clamp here so the pagination block reports the effective values, not
	// whatever arrived on the query string.
	page := queryInt(q.Get("page"), 1)
	if page < 1 {
		page = 1
	}
	limit := queryInt(q.Get("limit"), service.DefaultListLimit)
	if limit <= 0 {
		limit = service.DefaultListLimit
	}
	if limit > service.MaxListLimit {
		limit = service.MaxListLimit
	}

	bills, total, err := h.bills.List(r.Context(), filter, page, limit)
	if err != nil {
		writeError(w, err)
		return
	}
	if bills == nil {
		bills = []model.Bill{}
	}
	writePaginated(w, "Bills retrieved", bills, page, limit, total)
}

func (h *BillHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	bill, err := h.bills.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, "Bill retrieved", bill)
}

func (h *BillHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
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

	var req updateBillRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeValidationErrors(w, err)
		return
	}

	var in service.UpdateBillInput
	in.Name = req.Name
	in.Amount = req.Amount
	in.CategoryID = req.CategoryID
	in.BankID = req.BankID
	if req.Status != nil {
		status := model.BillStatus(*req.Status)
		in.Status = &status
	}
	if req.PaymentType != nil {
		pt := model.PaymentType(*req.PaymentType)
		in.PaymentType = &pt
	}
	if req.DueDate != nil {
		dueDate, err := parseDate("dueDate", *req.DueDate)
		if err != nil {
			writeError(w, err)
			return
		}
		in.DueDate = &dueDate
	}

	bill, err := h.bills.Update(r.Context(), userID, id, in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, "Bill updated", bill)
}

func (h *BillHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.bills.Delete(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, "Bill deleted", nil)
}

// parseMonth accepts "2006-01" and falls back to full RFC 3339 for clients
// that send a complete timestamp.
func parseMonth(field, raw string) (time.Time, error) {
	if t, err := time.Parse(monthLayout, raw); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	return time.Time{}, apperror.ValidationFailed(field, "Month must be in YYYY-MM format")
}

// parseDate accepts "2006-01-02" or full RFC 3339.
func parseDate(field, raw string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	return time.Time{}, apperror.ValidationFailed(field, "Date must be in YYYY-MM-DD format")
}

func queryInt(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}
