package booking

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"

	"github.com/seedlink/platform/internal/model"
	"github.com/seedlink/platform/internal/repository"
)

// recordingNotifier captures notifications instead of publishing them.
type recordingNotifier struct {
	domains []string
	titles  []string
}

func (n *recordingNotifier) Notify(_ context.Context, _ uint64, domain, title, _ string) error {
	n.domains = append(n.domains, domain)
	n.titles = append(n.titles, title)
	return nil
}

func testPolicy() Policy {
	return Policy{
		PickupMinLead:    48 * time.Hour,
		PickupMaxHorizon: 14 * 24 * time.Hour,
		IndividualQuota:  5,
		InstitutionQuota: 50,
	}
}

func newTestEngine(t *testing.T) (*Engine, sqlmock.Sqlmock, *recordingNotifier) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	notifier := &recordingNotifier{}
	engine := NewEngine(db,
		repository.NewUserRepo(db),
		repository.NewBookingRepo(db),
		repository.NewInventoryRepo(db),
		notifier, testPolicy())
	return engine, mock, notifier
}

func userLockRows(cooldown interface{}) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "cooldown_until", "account_type"}).
		AddRow(7, cooldown, "INDIVIDUAL")
}

func validRequest() Request {
	return Request{
		UserID:       7,
		StationID:    1,
		SeedlingType: "USSD_MIXED",
		Quantity:     3,
		PickupAt:     time.Now().UTC().Add(72 * time.Hour),
		StationName:  "Karura Nursery",
	}
}

func TestReserveSuccess(t *testing.T) {
	engine, mock, notifier := newTestEngine(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id, cooldown_until, account_type FROM users").
		WithArgs(uint64(7)).
		WillReturnRows(userLockRows(nil))
	mock.ExpectQuery(`SELECT COALESCE\(SUM\(quantity\), 0\)`).
		WithArgs(uint64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"total"}).AddRow(0))
	mock.ExpectExec("UPDATE seedling_inventory SET status = CASE").
		WithArgs(3, 3, 3, uint64(1), "USSD_MIXED", 3).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO bookings").
		WithArgs(uint64(7), uint64(1), "USSD_MIXED", 3, "CONFIRMED", sqlmock.AnyArg(), false).
		WillReturnResult(sqlmock.NewResult(42, 1))
	mock.ExpectQuery("SELECT created_at, updated_at FROM bookings").
		WithArgs(uint64(42)).
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(time.Now(), time.Now()))
	mock.ExpectCommit()

	booked, err := engine.Reserve(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("Reserve: %v", err)
	}
	if booked.ID != 42 || booked.Status != model.BookingConfirmed {
		t.Errorf("booking = %+v", booked)
	}
	if len(notifier.domains) != 1 || notifier.domains[0] != "booking" {
		t.Errorf("notifications = %v", notifier.domains)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestReserveRejectsPickupOutsideWindow(t *testing.T) {
	engine, mock, _ := newTestEngine(t)

	req := validRequest()
	req.PickupAt = time.Now().UTC().Add(12 * time.Hour) // inside the minimum lead
	if _, err := engine.Reserve(context.Background(), req); err != ErrInvalidPickupWindow {
		t.Fatalf("error = %v, want ErrInvalidPickupWindow", err)
	}

	req.PickupAt = time.Now().UTC().AddDate(0, 0, 30) // past the horizon
	if _, err := engine.Reserve(context.Background(), req); err != ErrInvalidPickupWindow {
		t.Fatalf("error = %v, want ErrInvalidPickupWindow", err)
	}

	// The window check never reaches the database.
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unexpected database activity: %v", err)
	}
}

func TestReserveRejectsBookerOnCooldown(t *testing.T) {
	engine, mock, notifier := newTestEngine(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id, cooldown_until, account_type FROM users").
		WithArgs(uint64(7)).
		WillReturnRows(userLockRows(time.Now().UTC().AddDate(0, 0, 10)))
	mock.ExpectRollback()

	if _, err := engine.Reserve(context.Background(), validRequest()); err != ErrOnCooldown {
		t.Fatalf("error = %v, want ErrOnCooldown", err)
	}
	if len(notifier.domains) != 0 {
		t.Errorf("unexpected notifications: %v", notifier.domains)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestReserveRejectsWhenQuotaWouldBeExceeded(t *testing.T) {
	engine, mock, _ := newTestEngine(t)

	// Outstanding 3 plus requested 3 exceeds the individual quota of 5.
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id, cooldown_until, account_type FROM users").
		WithArgs(uint64(7)).
		WillReturnRows(userLockRows(nil))
	mock.ExpectQuery(`SELECT COALESCE\(SUM\(quantity\), 0\)`).
		WithArgs(uint64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"total"}).AddRow(3))
	mock.ExpectRollback()

	if _, err := engine.Reserve(context.Background(), validRequest()); err != ErrQuotaExceeded {
		t.Fatalf("error = %v, want ErrQuotaExceeded", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestReserveRollsBackOnInsufficientStock(t *testing.T) {
	engine, mock, _ := newTestEngine(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id, cooldown_until, account_type FROM users").
		WithArgs(uint64(7)).
		WillReturnRows(userLockRows(nil))
	mock.ExpectQuery(`SELECT COALESCE\(SUM\(quantity\), 0\)`).
		WithArgs(uint64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"total"}).AddRow(0))
	mock.ExpectExec("UPDATE seedling_inventory SET status = CASE").
		WithArgs(3, 3, 3, uint64(1), "USSD_MIXED", 3).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	if _, err := engine.Reserve(context.Background(), validRequest()); err != ErrInsufficientStock {
		t.Fatalf("error = %v, want ErrInsufficientStock", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestIsRejectionSeparatesPolicyFromInfrastructure(t *testing.T) {
	for _, err := range []error{ErrInvalidPickupWindow, ErrOnCooldown, ErrQuotaExceeded, ErrInsufficientStock} {
		if !IsRejection(err) {
			t.Errorf("IsRejection(%v) = false, want true", err)
		}
	}
	if IsRejection(context.DeadlineExceeded) {
		t.Error("IsRejection treated a transport error as a policy rejection")
	}
	if IsRejection(nil) {
		t.Error("IsRejection(nil) = true")
	}
}

func TestReserveRejectsNonPositiveQuantity(t *testing.T) {
	engine, _, _ := newTestEngine(t)
	req := validRequest()
	req.Quantity = 0
	if _, err := engine.Reserve(context.Background(), req); err == nil {
		t.Fatal("expected error for zero quantity")
	}
}
