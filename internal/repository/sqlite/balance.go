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

var _ repository.BalanceRepository = (*DB)(nil)

const balanceColumns = `id, person_name, bank_id, month, opening_balance,
	entered_by_user_id, created_at`

func (db *DB) CreateBalance(ctx context.Context, balance *model.MonthlyBalance) error {
	balance.ID = xid.New().String()
	balance.CreatedAt = time.Now().UTC()

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO monthly_balances (`+balanceColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		balance.ID, balance.PersonName, balance.BankID, balance.Month,
		balance.OpeningBalance, balance.EnteredByUserID, balance.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("Monthly balance already exists for this person, bank, and month")
		}
		return fmt.Errorf("sqlite: inserting monthly balance: %w", err)
	}
	return nil
}

func (db *DB) GetBalanceByID(ctx context.Context, id string) (*model.MonthlyBalance, error) {
	var b model.MonthlyBalance
	err := db.conn.QueryRowContext(ctx,
		`SELECT `+balanceColumns+` FROM monthly_balances WHERE id = ?`, id,
	).Scan(&b.ID, &b.PersonName, &b.BankID, &b.Month, &b.OpeningBalance,
		&b.EnteredByUserID, &b.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("monthly balance", id)
		}
		return nil, fmt.Errorf("sqlite: getting monthly balance %s: %w", id, err)
	}
	return &b, nil
}

func (db *DB) GetBalanceByPersonBankMonth(ctx context.Context, personName, bankID string, month time.Time) (*model.MonthlyBalance, error) {
	var b model.MonthlyBalance
	err := db.conn.QueryRowContext(ctx,
		`SELECT `+balanceColumns+` FROM monthly_balances
		 WHERE person_name = ? AND bank_id = ? AND month = ?`,
		personName, bankID, month,
	).Scan(&b.ID, &b.PersonName, &b.BankID, &b.Month, &b.OpeningBalance,
		&b.EnteredByUserID, &b.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("monthly balance", personName)
		}
		return nil, fmt.Errorf("sqlite: getting monthly balance: %w", err)
	}
	return &b, nil
}

func (db *DB) ListBalancesByMonth(ctx context.Context, month time.Time) ([]model.MonthlyBalance, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+balanceColumns+` FROM monthly_balances
		 WHERE month = ? ORDER BY person_name`,
		month,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing monthly balances: %w", err)
	}
	defer rows.Close()

	balances := []model.MonthlyBalance{}
	for rows.Next() {
		var b model.MonthlyBalance
		if err := rows.Scan(&b.ID, &b.PersonName, &b.BankID, &b.Month,
			&b.OpeningBalance, &b.EnteredByUserID, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("sqlite: scanning monthly balance: %w", err)
		}
		balances = append(balances, b)
	}
	return balances, rows.Err()
}

func (db *DB) UpdateBalance(ctx context.Context, balance *model.MonthlyBalance) error {
	res, err := db.conn.ExecContext(ctx,
		`UPDATE monthly_balances SET person_name = ?, bank_id = ?, month = ?,
		 opening_balance = ? WHERE id = ?`,
		balance.PersonName, balance.BankID, balance.Month,
		balance.OpeningBalance, balance.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("Monthly balance already exists for this person, bank, and month")
		}
		return fmt.Errorf("sqlite: updating monthly balance %s: %w", balance.ID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperror.NotFound("monthly balance", balance.ID)
	}
	return nil
}

func (db *DB) DeleteBalance(ctx context.Context, id string) error {
	res, err := db.conn.ExecContext(ctx, `DELETE FROM monthly_balances WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting monthly balance %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperror.NotFound("monthly balance", id)
	}
	return nil
}
