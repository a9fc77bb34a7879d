package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shaunstone0/stone-budget/internal/apperror"
	"github.com/shaunstone0/stone-budget/internal/model"
	"github.com/shaunstone0/stone-budget/internal/repository"
)

const (
	MaxBillNameLength = 100
	DefaultListLimit  = 20
	MaxListLimit      = 100
)

// BillService handles business logic for bills. Category and bank
// references are resolved before any write, so a bill can never point at a
// category that does not exist or a bank the caller does not own.
type BillService struct {
	bills      repository.BillRepository
	banks      repository.BankRepository
	categories repository.CategoryRepository
	logger     *slog.Logger
}

func NewBillService(
	bills repository.BillRepository,
	banks repository.BankRepository,
	categories repository.CategoryRepository,
	logger *slog.Logger,
) *BillService {
	return &BillService{
		bills:      bills,
		banks:      banks,
		categories: categories,
		logger:     logger,
	}
}

// CreateBillInput carries the fields for a new bill. Month and DueDate are
// already parsed by the handler; Month is normalized here.
type CreateBillInput struct {
	Name        string
	Amount      float64
	Status      model.BillStatus // empty means unpaid
	PaymentType model.PaymentType
	CategoryID  string
	DueDate     time.Time
	BankID      string
	Month       time.Time
}

// UpdateBillInput uses pointers for partial updates: nil fields keep their
// current values.
type UpdateBillInput struct {
	Name        *string
	Amount      *float64
	Status      *model.BillStatus
	PaymentType *model.PaymentType
	CategoryID  *string
	DueDate     *time.Time
	BankID      *string
}

func (s *BillService) Create(ctx context.Context, userID string, in CreateBillInput) (*model.Bill, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return nil, apperror.ValidationFailed("name", "Bill name is required")
	}
	if len(in.Name) > MaxBillNameLength {
		return nil, apperror.ValidationFailed("name",
			fmt.Sprintf("Bill name must be %d characters or fewer", MaxBillNameLength))
	}
	if in.Amount <= 0 {
		return nil, apperror.ValidationFailed("amount", "Amount must be greater than zero")
	}
	if in.Status == "" {
		in.Status = model.BillUnpaid
	}
	if !in.Status.Valid() {
		return nil, apperror.ValidationFailed("status", "Status must be one of: paid, unpaid, skipped")
	}
	if !in.PaymentType.Valid() {
		return nil, apperror.ValidationFailed("paymentType",
			"Payment type must be one of: auto, manual, online, check")
	}
	if in.DueDate.IsZero() {
		return nil, apperror.ValidationFailed("dueDate", "Due date is required")
	}
	if in.Month.IsZero() {
		return nil, apperror.ValidationFailed("month", "Month is required")
	}

	if _, err := s.categories.GetCategoryByID(ctx, in.CategoryID); err != nil {
		return nil, err
	}
	if _, err := s.banks.GetBankByID(ctx, userID, in.BankID); err != nil {
		return nil, err
	}

	bill := &model.Bill{
		Name:            in.Name,
		Amount:          in.Amount,
		Status:          in.Status,
		PaymentType:     in.PaymentType,
		CategoryID:      in.CategoryID,
		DueDate:         in.DueDate,
		BankID:          in.BankID,
		EnteredByUserID: userID,
		Month:           model.FirstOfMonth(in.Month),
	}
	if err := s.bills.CreateBill(ctx, bill); err != nil {
		return nil, err
	}

	s.logger.Info("bill created",
		slog.String("billID", bill.ID),
		slog.String("name", bill.Name),
		slog.String("month", bill.Month.Format("2006-01")),
	)
	return bill, nil
}

func (s *BillService) GetByID(ctx context.Context, id string) (*model.Bill, error) {
	return s.bills.GetBillByID(ctx, id)
}

// List returns one page of bills plus the total match count. The month
// filter is normalized to the first of its month before matching.
func (s *BillService) List(ctx context.Context, filter repository.BillFilter, page, limit int) ([]model.Bill, int, error) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, 0, apperror.ValidationFailed("status", "Status must be one of: paid, unpaid, skipped")
	}
	if !filter.Month.IsZero() {
		filter.Month = model.FirstOfMonth(filter.Month)
	}

	opts := repository.ListOptions{Limit: limit, Offset: (page - 1) * limit}
	return s.bills.ListBills(ctx, filter, opts)
}

func (s *BillService) Update(ctx context.Context, userID, id string, in UpdateBillInput) (*model.Bill, error) {
	bill, err := s.bills.GetBillByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, apperror.ValidationFailed("name", "Bill name is required")
		}
		bill.Name = name
	}
	if in.Amount != nil {
		if *in.Amount <= 0 {
			return nil, apperror.ValidationFailed("amount", "Amount must be greater than zero")
		}
		bill.Amount = *in.Amount
	}
	if in.Status != nil {
		if !in.Status.Valid() {
			return nil, apperror.ValidationFailed("status", "Status must be one of: paid, unpaid, skipped")
		}
		bill.Status = *in.Status
	}
	if in.PaymentType != nil {
		if !in.PaymentType.Valid() {
			return nil, apperror.ValidationFailed("paymentType",
				"Payment type must be one of: auto, manual, online, check")
		}
		bill.PaymentType = *in.PaymentType
	}
	if in.CategoryID != nil {
		if _, err := s.categories.GetCategoryByID(ctx, *in.CategoryID); err != nil {
			return nil, err
		}
		bill.CategoryID = *in.CategoryID
	}
	if in.BankID != nil {
		if _, err := s.banks.GetBankByID(ctx, userID, *in.BankID); err != nil {
			return nil, err
		}
		bill.BankID = *in.BankID
	}
	if in.DueDate != nil {
		bill.DueDate = *in.DueDate
	}

	if err := s.bills.UpdateBill(ctx, bill); err != nil {
		return nil, err
	}
	return bill, nil
}

func (s *BillService) Delete(ctx context.Context, id string) error {
	return s.bills.DeleteBill(ctx, id)
}
