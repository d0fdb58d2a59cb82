package handler

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seedlink/platform/internal/booking"
	"github.com/seedlink/platform/internal/repository"
	"github.com/seedlink/platform/internal/ussd"
)

func newUssdTestServer(t *testing.T) (*UssdHandler, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	users := repository.NewUserRepo(db)
	bookings := repository.NewBookingRepo(db)
	inventory := repository.NewInventoryRepo(db)
	stations := repository.NewStationRepo(db)
	events := repository.NewEventRepo(db)
	sessions := repository.NewSessionRepo(db)

	policy := booking.Policy{
		PickupMinLead:    48 * time.Hour,
		PickupMaxHorizon: 14 * 24 * time.Hour,
		IndividualQuota:  5,
		InstitutionQuota: 50,
	}
	engine := booking.NewEngine(db, users, bookings, inventory, nil, policy)

	dispatcher := &ussd.Dispatcher{
		Sessions:     sessions,
		Users:        users,
		Login:        &ussd.LoginFlow{},
		Registration: &ussd.RegistrationFlow{Users: users},
		Booking: &ussd.BookingFlow{
			Users:         users,
			Stations:      stations,
			Engine:        engine,
			MaxQuantity:   5,
			PickupMinLead: policy.PickupMinLead,
			PickupHorizon: policy.PickupMaxHorizon,
		},
		Events:             &ussd.EventsFlow{Users: users, Events: events},
		MaxInvalidAttempts: 3,
		SessionIdleMinutes: 5,
	}
	return NewUssdHandler(dispatcher), mock
}

func postUssd(t *testing.T, h *UssdHandler, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/ussd", strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	rec := httptest.NewRecorder()
	require.NoError(t, h.Handle(e.NewContext(req, rec)))
	return rec
}

func TestUssdHandlerFreshTurn(t *testing.T) {
	h, mock := newUssdTestServer(t)

	// Lazy sweep, session load (none), user lookup (unknown), save.
	mock.ExpectExec("UPDATE ussd_sessions SET is_active = FALSE").
		WithArgs(sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT session_id, phone_number, user_id").
		WithArgs("ATUid_1").
		WillReturnRows(sqlmock.NewRows([]string{"session_id"}))
	mock.ExpectQuery("SELECT id, phone_number, name, county, account_type").
		WithArgs("+254712345678").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectExec("INSERT INTO ussd_sessions").
		WillReturnResult(sqlmock.NewResult(1, 1))

	rec := postUssd(t, h, url.Values{
		"sessionId":   {"ATUid_1"},
		"phoneNumber": {"0712345678"},
		"text":        {""},
	})

	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.HasPrefix(body, "CON "), "body %q", body)
	assert.Contains(t, body, "Welcome to SeedLink")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUssdHandlerRejectsMalformedCallback(t *testing.T) {
	h, _ := newUssdTestServer(t)

	rec := postUssd(t, h, url.Values{"text": {"1"}})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "END Invalid request.", rec.Body.String())
}
