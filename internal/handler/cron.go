package handler

import (
	"crypto/subtle"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/seedlink/platform/internal/booking"
)

// CronHandler exposes the scheduled sweeps as HTTP triggers. An external
// scheduler hits these at a fixed cadence; both sweeps are idempotent,
// so overlapping or repeated triggers are harmless. When a shared secret
// is configured the X-Cron-Secret header must match it.
type CronHandler struct {
	Reconciler *booking.Reconciler
	Reminders  *booking.ReminderSweep
	Secret     string
}

// NewCronHandler constructs a CronHandler.
func NewCronHandler(reconciler *booking.Reconciler, reminders *booking.ReminderSweep, secret string) *CronHandler {
	if reconciler == nil || reminders == nil {
		panic("nil dependency passed to NewCronHandler")
	}
	return &CronHandler{Reconciler: reconciler, Reminders: reminders, Secret: secret}
}

func (h *CronHandler) authorized(c echo.Context) bool {
	if h.Secret == "" {
		return true
	}
	given := c.Request().Header.Get("X-Cron-Secret")
	return subtle.ConstantTimeCompare([]byte(given), []byte(h.Secret)) == 1
}

// ExpireBookings handles POST /v1/cron/expire-bookings.
func (h *CronHandler) ExpireBookings(c echo.Context) error {
	if !h.authorized(c) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	expired, err := h.Reconciler.Run(c.Request().Context())
	if err != nil {
		c.Logger().Errorf("cron: expiry sweep failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "sweep failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"expired": expired})
}

// SendReminders handles POST /v1/cron/reminders.
func (h *CronHandler) SendReminders(c echo.Context) error {
	if !h.authorized(c) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	reminded, err := h.Reminders.Run(c.Request().Context())
	if err != nil {
		c.Logger().Errorf("cron: reminder sweep failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "sweep failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"reminded": reminded})
}
