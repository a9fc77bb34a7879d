package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/xid"

	"github.com/shaunstone0/stone-budget/internal/apperror"
	"github.com/shaunstone0/stone-budget/internal/model"
	"github.com/shaunstone0/stone-budget/internal/repository"
)

var _ repository.BankRepository = (*DB)(nil)

func (db *DB) CreateBank(ctx context.Context, bank *model.Bank) error {
	bank.ID = xid.New().String()
	bank.CreatedAt = time.Now().UTC()

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO banks (id, name, account_type, user_id, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		bank.ID, bank.Name, bank.AccountType, bank.UserID, bank.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting bank: %w", err)
	}
	return nil
}

// GetBankByID is scoped to the owning user: someone else's bank id behaves
// exactly like a missing one, so ids cannot be probed across accounts.
func (db *DB) GetBankByID(ctx context.Context, userID, id string) (*model.Bank, error) {
	var b model.Bank
	err := db.conn.QueryRowContext(ctx,
		`SELECT id, name, account_type, user_id, created_at
		 FROM banks WHERE id = ? AND user_id = ?`,
		id, userID,
	).Scan(&b.ID, &b.Name, &b.AccountType, &b.UserID, &b.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("bank", id)
		}
		return nil, fmt.Errorf("sqlite: getting bank %s: %w", id, err)
	}
	return &b, nil
}

func (db *DB) ListBanksByUser(ctx context.Context, userID string) ([]model.Bank, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, name, account_type, user_id, created_at
		 FROM banks WHERE user_id = ? ORDER BY name`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing banks: %w", err)
	}
	defer rows.Close()

	banks := []model.Bank{}
	for rows.Next() {
		var b model.Bank
		if err := rows.Scan(&b.ID, &b.Name, &b.AccountType, &b.UserID, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("sqlite: scanning bank: %w", err)
		}
		banks = append(banks, b)
	}
	return banks, rows.Err()
}

func (db *DB) UpdateBank(ctx context.Context, bank *model.Bank) error {
	res, err := db.conn.ExecContext(ctx,
		`UPDATE banks SET name = ?, account_type = ? WHERE id = ? AND user_id = ?`,
		bank.Name, bank.AccountType, bank.ID, bank.UserID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating bank %s: %w", bank.ID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperror.NotFound("bank", bank.ID)
	}
	return nil
}

func (db *DB) DeleteBank(ctx context.Context, userID, id string) error {
	res, err := db.conn.ExecContext(ctx,
		`DELETE FROM banks WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		if isForeignKeyViolation(err) {
			return apperror.Conflict("Bank is referenced by existing bills or balances")
		}
		return fmt.Errorf("sqlite: deleting bank %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperror.NotFound("bank", id)
	}
	return nil
}
