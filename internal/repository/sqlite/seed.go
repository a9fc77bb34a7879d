package sqlite

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/shaunstone0/stone-budget/internal/apperror"
	"github.com/shaunstone0/stone-budget/internal/model"
)

// defaultCategories is inserted on first start so a fresh database is
// usable without any manual setup.
var defaultCategories = []model.Category{
	{Name: "Recurring", Description: "Monthly recurring bills and subscriptions"},
	{Name: "Telecommunications", Description: "Phone, internet, cable, and streaming services"},
	{Name: "Groceries", Description: "Food, beverages, and household items"},
	{Name: "Utilities", Description: "Electric, gas, water, trash, and sewer"},
	{Name: "Transportation", Description: "Car payments, gas, insurance, and maintenance"},
	{Name: "Healthcare", Description: "Medical bills, insurance, and prescriptions"},
	{Name: "Entertainment", Description: "Dining out, movies, events, and hobbies"},
	{Name: "Housing", Description: "Rent, mortgage, HOA fees, and home maintenance"},
	{Name: "Insurance", Description: "Life, health, auto, and home insurance"},
	{Name: "Miscellaneous", Description: "Other expenses that don't fit specific categories"},
}

// SeedCategories inserts the default categories that are not already
// present. Safe to run on every start.
func (db *DB) SeedCategories(ctx context.Context, logger *slog.Logger) error {
	for _, c := range defaultCategories {
		_, err := db.GetCategoryByName(ctx, c.Name)
		if err == nil {
			continue // already seeded
		}
		if !errors.Is(err, apperror.ErrNotFound) {
			return fmt.Errorf("sqlite: checking category %q: %w", c.Name, err)
		}

		category := c
		if err := db.CreateCategory(ctx, &category); err != nil {
			return fmt.Errorf("sqlite: seeding category %q: %w", c.Name, err)
		}
		logger.Info("seeded default category", slog.String("name", c.Name))
	}
	return nil
}
