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

const (
	MaxCategoryNameLength        = 50
	MaxCategoryDescriptionLength = 200
)

// CategoryService handles business logic for bill categories. Categories
// are shared across users; a default set is seeded at startup.
type CategoryService struct {
	repo   repository.CategoryRepository
	logger *slog.Logger
}

func NewCategoryService(repo repository.CategoryRepository, logger *slog.Logger) *CategoryService {
	return &CategoryService{repo: repo, logger: logger}
}

func (s *CategoryService) Create(ctx context.Context, name, description string) (*model.Category, error) {
	name = strings.TrimSpace(name)
	description = strings.TrimSpace(description)

	if name == "" {
		return nil, apperror.ValidationFailed("name", "Category name is required")
	}
	if len(name) > MaxCategoryNameLength {
		return nil, apperror.ValidationFailed("name",
			fmt.Sprintf("Category name must be %d characters or fewer", MaxCategoryNameLength))
	}
	if len(description) > MaxCategoryDescriptionLength {
		return nil, apperror.ValidationFailed("description",
			fmt.Sprintf("Description must be %d characters or fewer", MaxCategoryDescriptionLength))
	}

	category := &model.Category{Name: name, Description: description}
	if err := s.repo.CreateCategory(ctx, category); err != nil {
		return nil, err
	}

	s.logger.Info("category created", slog.String("categoryID", category.ID), slog.String("name", name))
	return category, nil
}

func (s *CategoryService) GetByID(ctx context.Context, id string) (*model.Category, error) {
	return s.repo.GetCategoryByID(ctx, id)
}

func (s *CategoryService) List(ctx context.Context) ([]model.Category, error) {
	return s.repo.ListCategories(ctx)
}

func (s *CategoryService) Update(ctx context.Context, id, name, description string) (*model.Category, error) {
	category, err := s.repo.GetCategoryByID(ctx, id)
	if err != nil {
		return nil, err
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperror.ValidationFailed("name", "Category name is required")
	}
	if len(name) > MaxCategoryNameLength {
		return nil, apperror.ValidationFailed("name",
			fmt.Sprintf("Category name must be %d characters or fewer", MaxCategoryNameLength))
	}

	category.Name = name
	category.Description = strings.TrimSpace(description)
	if err := s.repo.UpdateCategory(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

func (s *CategoryService) Delete(ctx context.Context, id string) error {
	return s.repo.DeleteCategory(ctx, id)
}
