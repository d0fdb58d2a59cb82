package booking

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"

	"github.com/seedlink/platform/internal/repository"
)

func newTestReconciler(t *testing.T) (*Reconciler, sqlmock.Sqlmock, *recordingNotifier) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	notifier := &recordingNotifier{}
	r := NewReconciler(db,
		repository.NewUserRepo(db),
		repository.NewBookingRepo(db),
		repository.NewInventoryRepo(db),
		notifier, 24, 31)
	return r, mock, notifier
}

func expiryCandidateRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "user_id", "station_id", "seedling_type", "quantity"}).
		AddRow(10, 7, 1, "USSD_MIXED", 3)
}

func TestReconcilerExpiresReleasesAndPenalizes(t *testing.T) {
	r, mock, notifier := newTestReconciler(t)

	mock.ExpectQuery("SELECT id, user_id, station_id, seedling_type, quantity").
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(expiryCandidateRows())
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE bookings SET status = 'EXPIRED'").
		WithArgs(uint64(10)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE seedling_inventory SET status = CASE").
		WithArgs(3, 3, 3, uint64(1), "USSD_MIXED").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE users SET cooldown_until").
		WithArgs(sqlmock.AnyArg(), uint64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	expired, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if expired != 1 {
		t.Errorf("expired = %d, want 1", expired)
	}
	if len(notifier.titles) != 1 || notifier.titles[0] != "Booking expired" {
		t.Errorf("notifications = %v", notifier.titles)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestReconcilerSkipsAlreadyExpiredBooking(t *testing.T) {
	r, mock, notifier := newTestReconciler(t)

	// A concurrent sweep expired the booking between the candidate query
	// and our transaction; the latch reports no transition and the stock
	// release must not happen.
	mock.ExpectQuery("SELECT id, user_id, station_id, seedling_type, quantity").
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(expiryCandidateRows())
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE bookings SET status = 'EXPIRED'").
		WithArgs(uint64(10)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	expired, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if expired != 0 {
		t.Errorf("expired = %d, want 0", expired)
	}
	if len(notifier.titles) != 0 {
		t.Errorf("unexpected notifications: %v", notifier.titles)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestReconcilerNoCandidates(t *testing.T) {
	r, mock, _ := newTestReconciler(t)

	mock.ExpectQuery("SELECT id, user_id, station_id, seedling_type, quantity").
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "station_id", "seedling_type", "quantity"}))

	expired, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if expired != 0 {
		t.Errorf("expired = %d, want 0", expired)
	}
}

func TestReminderSweepFlipsBeforeNotifying(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()
	notifier := &recordingNotifier{}
	sweep := NewReminderSweep(repository.NewBookingRepo(db), notifier, 24*time.Hour)

	mock.ExpectQuery("SELECT id, user_id, station_id, seedling_type, quantity, scheduled_pickup").
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "station_id", "seedling_type", "quantity", "scheduled_pickup"}).
			AddRow(10, 7, 1, "USSD_MIXED", 3, time.Now().Add(12*time.Hour)))
	mock.ExpectExec("UPDATE bookings SET reminder_sent = TRUE").
		WithArgs(uint64(10)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	reminded, err := sweep.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if reminded != 1 {
		t.Errorf("reminded = %d, want 1", reminded)
	}
	if len(notifier.titles) != 1 || notifier.titles[0] != "Pickup reminder" {
		t.Errorf("notifications = %v", notifier.titles)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestReminderSweepSkipsWhenFlagAlreadyFlipped(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()
	notifier := &recordingNotifier{}
	sweep := NewReminderSweep(repository.NewBookingRepo(db), notifier, 24*time.Hour)

	mock.ExpectQuery("SELECT id, user_id, station_id, seedling_type, quantity, scheduled_pickup").
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "station_id", "seedling_type", "quantity", "scheduled_pickup"}).
			AddRow(10, 7, 1, "USSD_MIXED", 3, time.Now().Add(12*time.Hour)))
	mock.ExpectExec("UPDATE bookings SET reminder_sent = TRUE").
		WithArgs(uint64(10)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	reminded, err := sweep.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if reminded != 0 {
		t.Errorf("reminded = %d, want 0", reminded)
	}
	if len(notifier.titles) != 0 {
		t.Errorf("unexpected notifications: %v", notifier.titles)
	}
}
