package repository

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"

	"github.com/seedlink/platform/internal/model"
)

var sessionColumns = []string{
	"session_id", "phone_number", "user_id", "current_flow", "current_step",
	"invalid_attempts", "login_step", "is_active", "last_interaction",
}

func TestLoadReturnsBlankSessionWhenMissing(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("SELECT session_id, phone_number, user_id").
		WithArgs("sess-1").
		WillReturnRows(sqlmock.NewRows(sessionColumns))

	repo := NewSessionRepo(db)
	s, err := repo.Load(context.Background(), "sess-1", "+254712345678")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !s.IsActive || s.CurrentFlow != model.FlowWelcome || s.SessionID != "sess-1" {
		t.Errorf("blank session = %+v", s)
	}
	if s.PhoneNumber != "+254712345678" {
		t.Errorf("phone = %q", s.PhoneNumber)
	}
}

func TestLoadReturnsBlankSessionWhenInactive(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	// A terminated session is never resurrected; the caller starts over.
	rows := sqlmock.NewRows(sessionColumns).
		AddRow("sess-1", "+254712345678", nil, "BOOKING", "2*Nairobi", 1, "", false, time.Now())
	mock.ExpectQuery("SELECT session_id, phone_number, user_id").
		WithArgs("sess-1").
		WillReturnRows(rows)

	repo := NewSessionRepo(db)
	s, err := repo.Load(context.Background(), "sess-1", "+254712345678")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !s.IsActive || s.CurrentFlow != model.FlowWelcome || s.CurrentStep != "" || s.InvalidAttempts != 0 {
		t.Errorf("expected fresh session, got %+v", s)
	}
}

func TestLoadActiveSession(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	rows := sqlmock.NewRows(sessionColumns).
		AddRow("sess-1", "+254712345678", int64(7), "LOGIN", "", 2, "ENTER_PIN", true, time.Now())
	mock.ExpectQuery("SELECT session_id, phone_number, user_id").
		WithArgs("sess-1").
		WillReturnRows(rows)

	repo := NewSessionRepo(db)
	s, err := repo.Load(context.Background(), "sess-1", "+254712345678")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.CurrentFlow != model.FlowLogin || s.LoginStep != model.LoginStepEnterPin || s.InvalidAttempts != 2 {
		t.Errorf("session = %+v", s)
	}
	if s.UserID == nil || *s.UserID != 7 {
		t.Errorf("user id = %v", s.UserID)
	}
}

func TestSaveUpserts(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	uid := uint64(7)
	mock.ExpectExec("INSERT INTO ussd_sessions").
		WithArgs("sess-1", "+254712345678", uid, "BOOKING", "2*Nairobi*1", 0, "", true).
		WillReturnResult(sqlmock.NewResult(1, 1))

	repo := NewSessionRepo(db)
	err = repo.Save(context.Background(), &model.Session{
		SessionID:   "sess-1",
		PhoneNumber: "+254712345678",
		UserID:      &uid,
		CurrentFlow: model.FlowBooking,
		CurrentStep: "2*Nairobi*1",
		IsActive:    true,
	})
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestSweepExpiredReportsCount(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectExec("UPDATE ussd_sessions SET is_active = FALSE").
		WithArgs(sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 3))

	repo := NewSessionRepo(db)
	n, err := repo.SweepExpired(context.Background(), 5)
	if err != nil {
		t.Fatalf("SweepExpired: %v", err)
	}
	if n != 3 {
		t.Errorf("swept = %d, want 3", n)
	}
}
