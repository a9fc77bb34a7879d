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

var _ repository.BillRepository = (*DB)(nil)

const billColumns = `id, name, amount, status, payment_type, category_id,
	due_date, bank_id, entered_by_user_id, month, created_at, updated_at`

func scanBill(row interface{ Scan(...any) error }) (*model.Bill, error) {
	var b model.Bill
	err := row.Scan(
		&b.ID, &b.Name, &b.Amount, &b.Status, &b.PaymentType, &b.CategoryID,
		&b.DueDate, &b.BankID, &b.EnteredByUserID, &b.Month, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (db *DB) CreateBill(ctx context.Context, bill *model.Bill) error {
	now := time.Now().UTC()
	bill.ID = xid.New().String()
	bill.CreatedAt = now
	bill.UpdatedAt = now

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO bills (`+billColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		bill.ID, bill.Name, bill.Amount, bill.Status, bill.PaymentType,
		bill.CategoryID, bill.DueDate, bill.BankID, bill.EnteredByUserID,
		bill.Month, bill.CreatedAt, bill.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting bill: %w", err)
	}
	return nil
}

func (db *DB) GetBillByID(ctx context.Context, id string) (*model.Bill, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+billColumns+` FROM bills WHERE id = ?`, id)
	b, err := scanBill(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("bill", id)
		}
		return nil, fmt.Errorf("sqlite: getting bill %s: %w", id, err)
	}
	return b, nil
}

// ListBills returns one page of bills matching the filter plus the total
// match count, newest due date first. Filter fields with zero values are
// not applied.
func (db *DB) ListBills(ctx context.Context, filter repository.BillFilter, opts repository.ListOptions) ([]model.Bill, int, error) {
	where := ` WHERE 1=1`
	args := []any{}
	if !filter.Month.IsZero() {
		where += ` AND month = ?`
		args = append(args, filter.Month)
	}
	if filter.Status != "" {
		where += ` AND status = ?`
		args = append(args, filter.Status)
	}
	if filter.CategoryID != "" {
		where += ` AND category_id = ?`
		args = append(args, filter.CategoryID)
	}

	var total int
	if err := db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM bills`+where, args...,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("sqlite: counting bills: %w", err)
	}

	query := `SELECT ` + billColumns + ` FROM bills` + where +
		` ORDER BY due_date DESC LIMIT ? OFFSET ?`
	args = append(args, opts.Limit, opts.Offset)

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("sqlite: listing bills: %w", err)
	}
	defer rows.Close()

	bills := []model.Bill{}
	for rows.Next() {
		b, err := scanBill(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("sqlite: scanning bill: %w", err)
		}
		bills = append(bills, *b)
	}
	return bills, total, rows.Err()
}

func (db *DB) UpdateBill(ctx context.Context, bill *model.Bill) error {
	bill.UpdatedAt = time.Now().UTC()

	res, err := db.conn.ExecContext(ctx,
		`UPDATE bills SET name = ?, amount = ?, status = ?, payment_type = ?,
		 category_id = ?, due_date = ?, bank_id = ?, updated_at = ?
		 WHERE id = ?`,
		bill.Name, bill.Amount, bill.Status, bill.PaymentType,
		bill.CategoryID, bill.DueDate, bill.BankID, bill.UpdatedAt,
		bill.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating bill %s: %w", bill.ID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperror.NotFound("bill", bill.ID)
	}
	return nil
}

func (db *DB) DeleteBill(ctx context.Context, id string) error {
	res, err := db.conn.ExecContext(ctx, `DELETE FROM bills WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting bill %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperror.NotFound("bill", id)
	}
	return nil
}
