package repository

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"

	"github.com/seedlink/platform/internal/model"
)

func TestReserveTxDecrementsWhenStockSuffices(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE seedling_inventory SET status = CASE").
		WithArgs(3, 3, 3, uint64(1), "USSD_MIXED", 3).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	repo := NewInventoryRepo(db)
	tx, err := db.Begin()
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	if err := repo.ReserveTx(context.Background(), tx, 1, "USSD_MIXED", 3); err != nil {
		t.Fatalf("ReserveTx: %v", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("commit: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestReserveTxInsufficientStockLeavesLedgerUntouched(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	// The guard matched zero rows: stock was short and nothing changed.
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE seedling_inventory SET status = CASE").
		WithArgs(5, 5, 5, uint64(1), "USSD_MIXED", 5).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	repo := NewInventoryRepo(db)
	tx, err := db.Begin()
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	if err := repo.ReserveTx(context.Background(), tx, 1, "USSD_MIXED", 5); err != ErrInsufficientStock {
		t.Fatalf("ReserveTx error = %v, want ErrInsufficientStock", err)
	}
	if err := tx.Rollback(); err != nil {
		t.Fatalf("rollback: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestGetDerivesStatusFromQuantity(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	rows := sqlmock.NewRows([]string{"id", "station_id", "seedling_type", "quantity_available", "updated_at"}).
		AddRow(9, 1, "Moringa", 7, time.Now())
	mock.ExpectQuery("SELECT id, station_id, seedling_type, quantity_available, updated_at").
		WithArgs(uint64(1), "Moringa").
		WillReturnRows(rows)

	repo := NewInventoryRepo(db)
	line, err := repo.Get(context.Background(), 1, "Moringa")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if line.Status != model.StatusLowStock {
		t.Errorf("status = %s, want LOW_STOCK for quantity 7", line.Status)
	}
}

func TestGetNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("SELECT id, station_id, seedling_type, quantity_available, updated_at").
		WithArgs(uint64(1), "Baobab").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	repo := NewInventoryRepo(db)
	if _, err := repo.Get(context.Background(), 1, "Baobab"); err != ErrNotFound {
		t.Fatalf("Get error = %v, want ErrNotFound", err)
	}
}

func TestRestockUpserts(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectExec("INSERT INTO seedling_inventory").
		WithArgs(uint64(2), "Moringa", 25, 25, 25).
		WillReturnResult(sqlmock.NewResult(1, 1))

	repo := NewInventoryRepo(db)
	if err := repo.Restock(context.Background(), 2, "Moringa", 25); err != nil {
		t.Fatalf("Restock: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}
