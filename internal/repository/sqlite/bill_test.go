package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shaunstone0/stone-budget/internal/apperror"
	"github.com/shaunstone0/stone-budget/internal/model"
	"github.com/shaunstone0/stone-budget/internal/repository"
)

func createTestBill(t *testing.T, db *DB, name string, month time.Time, status model.BillStatus) *model.Bill {
	t.Helper()
	user := createTestUser(t, db, "Owner "+name, name+"@example.com")
	bank := createTestBank(t, db, user.ID, "Bank for "+name)
	category := createTestCategory(t, db, "Category for "+name)

	bill := &model.Bill{
		Name:            name,
		Amount:          42.50,
		Status:          status,
		PaymentType:     model.PaymentAuto,
		CategoryID:      category.ID,
		DueDate:         month.AddDate(0, 0, 14),
		BankID:          bank.ID,
		EnteredByUserID: user.ID,
		Month:           month,
	}
	if err := db.CreateBill(context.Background(), bill); err != nil {
		t.Fatalf("failed to create test bill: %v", err)
	}
	return bill
}

func TestBillCreateAndGet(t *testing.T) {
	db := newTestDB(t)
	month := model.FirstOfMonth(time.Now())
	created := createTestBill(t, db, "Electric", month, model.BillUnpaid)

	got, err := db.GetBillByID(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("GetBillByID() error = %v", err)
	}
	if got.Name != "Electric" || got.Amount != 42.50 {
		t.Errorf("GetBillByID() = %+v, want Electric/42.50", got)
	}
	if !got.Month.Equal(month) {
		t.Errorf("GetBillByID() month = %v, want %v", got.Month, month)
	}
}

func TestBillList_Pagination(t *testing.T) {
	db := newTestDB(t)
	month := model.FirstOfMonth(time.Now())
	for _, name := range []string{"a", "b", "c", "d", "e"} {
		createTestBill(t, db, name, month, model.BillUnpaid)
	}

	bills, total, err := db.ListBills(context.Background(),
		repository.BillFilter{}, repository.ListOptions{Limit: 2, Offset: 0})
	if err != nil {
		t.Fatalf("ListBills() error = %v", err)
	}
	if total != 5 {
		t.Errorf("ListBills() total = %d, want 5", total)
	}
	if len(bills) != 2 {
		t.Errorf("ListBills() returned %d bills, want 2", len(bills))
	}

	// Last page is short.
	bills, _, err = db.ListBills(context.Background(),
		repository.BillFilter{}, repository.ListOptions{Limit: 2, Offset: 4})
	if err != nil {
		t.Fatalf("ListBills(last page) error = %v", err)
	}
	if len(bills) != 1 {
		t.Errorf("ListBills(last page) returned %d bills, want 1", len(bills))
	}
}

func TestBillList_Filters(t *testing.T) {
	db := newTestDB(t)
	thisMonth := model.FirstOfMonth(time.Now())
	lastMonth := thisMonth.AddDate(0, -1, 0)

	createTestBill(t, db, "paid-this", thisMonth, model.BillPaid)
	createTestBill(t, db, "unpaid-this", thisMonth, model.BillUnpaid)
	createTestBill(t, db, "unpaid-last", lastMonth, model.BillUnpaid)

	opts := repository.ListOptions{Limit: 10}

	bills, total, err := db.ListBills(context.Background(),
		repository.BillFilter{Month: thisMonth}, opts)
	if err != nil {
		t.Fatalf("ListBills(month) error = %v", err)
	}
	if total != 2 || len(bills) != 2 {
		t.Errorf("ListBills(month) = %d/%d, want 2/2", len(bills), total)
	}

	bills, total, err = db.ListBills(context.Background(),
		repository.BillFilter{Month: thisMonth, Status: model.BillPaid}, opts)
	if err != nil {
		t.Fatalf("ListBills(month+status) error = %v", err)
	}
	if total != 1 || bills[0].Name != "paid-this" {
		t.Errorf("ListBills(month+status) = %+v (total %d), want just paid-this", bills, total)
	}
}

func TestBillUpdate(t *testing.T) {
	db := newTestDB(t)
	month := model.FirstOfMonth(time.Now())
	bill := createTestBill(t, db, "Water", month, model.BillUnpaid)

	bill.Status = model.BillPaid
	bill.Amount = 55.00
	if err := db.UpdateBill(context.Background(), bill); err != nil {
		t.Fatalf("UpdateBill() error = %v", err)
	}

	got, err := db.GetBillByID(context.Background(), bill.ID)
	if err != nil {
		t.Fatalf("GetBillByID() error = %v", err)
	}
	if got.Status != model.BillPaid || got.Amount != 55.00 {
		t.Errorf("after update: status=%s amount=%v, want paid/55", got.Status, got.Amount)
	}
}

func TestBillUpdate_NotFound(t *testing.T) {
	db := newTestDB(t)
	err := db.UpdateBill(context.Background(), &model.Bill{ID: "missing"})
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("UpdateBill(missing) error = %v, want ErrNotFound", err)
	}
}

func TestBillDelete(t *testing.T) {
	db := newTestDB(t)
	month := model.FirstOfMonth(time.Now())
	bill := createTestBill(t, db, "Trash", month, model.BillUnpaid)

	if err := db.DeleteBill(context.Background(), bill.ID); err != nil {
		t.Fatalf("DeleteBill() error = %v", err)
	}
	if _, err := db.GetBillByID(context.Background(), bill.ID); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetBillByID(deleted) error = %v, want ErrNotFound", err)
	}
	if err := db.DeleteBill(context.Background(), bill.ID); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("DeleteBill(again) error = %v, want ErrNotFound", err)
	}
}
