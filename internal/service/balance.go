package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shaunstone0/stone-budget/internal/apperror"
	"github.com/shaunstone0/stone-budget/internal/model"
	"github.com/shaunstone0/stone-budget/internal/repository"
)

const MaxPersonNameLength = 100

// BalanceService handles monthly opening balances. One record exists per
// (person, bank, month); a second create for the same triple is a conflict.
type BalanceService struct {
	balances repository.BalanceRepository
	banks    repository.BankRepository
	logger   *slog.Logger
}

func NewBalanceService(
	balances repository.BalanceRepository,
	banks repository.BankRepository,
	logger *slog.Logger,
) *BalanceService {
	return &BalanceService{balances: balances, banks: banks, logger: logger}
}

func (s *BalanceService) Create(ctx context.Context, userID, personName, bankID string, month time.Time, openingBalance float64) (*model.MonthlyBalance, error) {
	personName = strings.TrimSpace(personName)
	if personName == "" {
		return nil, apperror.ValidationFailed("personName", "Person name is required")
	}
	if len(personName) > MaxPersonNameLength {
		return nil, apperror.ValidationFailed("personName",
			fmt.Sprintf("Person name must be %d characters or fewer", MaxPersonNameLength))
	}
	if month.IsZero() {
		return nil, apperror.ValidationFailed("month", "Month is required")
	}

	if _, err := s.banks.GetBankByID(ctx, userID, bankID); err != nil {
		return nil, err
	}

	month = model.FirstOfMonth(month)

	// Pre-check for a friendly error; the unique index backstops races.
	if _, err := s.balances.GetBalanceByPersonBankMonth(ctx, personName, bankID, month); err == nil {
		return nil, apperror.Conflict("Monthly balance already exists for this person, bank, and month")
	} else if !errors.Is(err, apperror.ErrNotFound) {
		return nil, fmt.Errorf("service/balance: checking existing balance: %w", err)
	}

	balance := &model.MonthlyBalance{
		PersonName:      personName,
		BankID:          bankID,
		Month:           month,
		OpeningBalance:  openingBalance,
		EnteredByUserID: userID,
	}
	if err := s.balances.CreateBalance(ctx, balance); err != nil {
		return nil, err
	}

	s.logger.Info("monthly balance created",
		slog.String("balanceID", balance.ID),
		slog.String("month", month.Format("2006-01")),
	)
	return balance, nil
}

func (s *BalanceService) GetByID(ctx context.Context, id string) (*model.MonthlyBalance, error) {
	return s.balances.GetBalanceByID(ctx, id)
}

func (s *BalanceService) ListByMonth(ctx context.Context, month time.Time) ([]model.MonthlyBalance, error) {
	if month.IsZero() {
		return nil, apperror.ValidationFailed("month", "Month is required")
	}
	return s.balances.ListBalancesByMonth(ctx, model.FirstOfMonth(month))
}

func (s *BalanceService) Update(ctx context.Context, id string, openingBalance float64) (*model.MonthlyBalance, error) {
	balance, err := s.balances.GetBalanceByID(ctx, id)
	if err != nil {
		return nil, err
	}

	balance.OpeningBalance = openingBalance
	if err := s.balances.UpdateBalance(ctx, balance); err != nil {
		return nil, err
	}
	return balance, nil
}

func (s *BalanceService) Delete(ctx context.Context, id string) error {
	return s.balances.DeleteBalance(ctx, id)
}
