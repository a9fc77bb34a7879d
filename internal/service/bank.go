package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/shaunstone0/stone-budget/internal/apperror"
	"github.com/shaunstone0/stone-budget/internal/model"
	"github.com/shaunstone0/stone-budget/internal/repository"
)

const MaxBankNameLength = 100

// BankService handles business logic for bank accounts. Every operation is
// scoped to the calling user; another user's bank behaves as not found.
type BankService struct {
	repo   repository.BankRepository
	logger *slog.Logger
}

func NewBankService(repo repository.BankRepository, logger *slog.Logger) *BankService {
	return &BankService{repo: repo, logger: logger}
}

func (s *BankService) Create(ctx context.Context, userID, name string, accountType model.AccountType) (*model.Bank, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperror.ValidationFailed("name", "Bank name is required")
	}
	if len(name) > MaxBankNameLength {
		return nil, apperror.ValidationFailed("name",
			fmt.Sprintf("Bank name must be %d characters or fewer", MaxBankNameLength))
	}
	if !accountType.Valid() {
		return nil, apperror.ValidationFailed("accountType",
			"Account type must be one of: checking, savings, credit")
	}

	bank := &model.Bank{Name: name, AccountType: accountType, UserID: userID}
	if err := s.repo.CreateBank(ctx, bank); err != nil {
		return nil, err
	}

	s.logger.Info("bank created", slog.String("bankID", bank.ID), slog.String("userID", userID))
	return bank, nil
}

func (s *BankService) GetByID(ctx context.Context, userID, id string) (*model.Bank, error) {
	return s.repo.GetBankByID(ctx, userID, id)
}

func (s *BankService) ListByUser(ctx context.Context, userID string) ([]model.Bank, error) {
	return s.repo.ListBanksByUser(ctx, userID)
}

func (s *BankService) Update(ctx context.Context, userID, id, name string, accountType model.AccountType) (*model.Bank, error) {
	bank, err := s.repo.GetBankByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperror.ValidationFailed("name", "Bank name is required")
	}
	if !accountType.Valid() {
		return nil, apperror.ValidationFailed("accountType",
			"Account type must be one of: checking, savings, credit")
	}

	bank.Name = name
	bank.AccountType = accountType
	if err := s.repo.UpdateBank(ctx, bank); err != nil {
		return nil, err
	}
	return bank, nil
}

func (s *BankService) Delete(ctx context.Context, userID, id string) error {
	return s.repo.DeleteBank(ctx, userID, id)
}
