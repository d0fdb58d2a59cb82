package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/seedlink/platform/internal/booking"
	"github.com/seedlink/platform/internal/model"
	"github.com/seedlink/platform/internal/repository"
)

// BookingHandler serves the authenticated booking API used by the web
// client. It shares the reservation engine with the USSD channel, so
// both surfaces enforce identical quota, cooldown and stock rules.
type BookingHandler struct {
	Engine   *booking.Engine
	Bookings *repository.BookingRepo
	Stations *repository.StationRepo
}

// NewBookingHandler constructs a BookingHandler. All dependencies must
// be non-nil.
func NewBookingHandler(engine *booking.Engine, bookings *repository.BookingRepo, stations *repository.StationRepo) *BookingHandler {
	if engine == nil || bookings == nil || stations == nil {
		panic("nil dependency passed to NewBookingHandler")
	}
	return &BookingHandler{Engine: engine, Bookings: bookings, Stations: stations}
}

// Create handles POST /v1/bookings. The body names the station, the
// seedling type, the quantity and the pickup date; the booker comes from
// the JWT. Engine rejections map to distinct statuses so clients can
// tell a retryable stock conflict from a policy refusal.
func (h *BookingHandler) Create(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	var body struct {
		StationID    uint64 `json:"station_id"`
		SeedlingType string `json:"seedling_type"`
		Quantity     int    `json:"quantity"`
		PickupDate   string `json:"pickup_date"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.StationID == 0 || body.SeedlingType == "" || body.Quantity <= 0 || body.PickupDate == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "station_id, seedling_type, quantity and pickup_date are required"})
	}
	pickup, err := parsePickupDate(body.PickupDate)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "pickup_date must be YYYY-MM-DD or RFC3339"})
	}

	ctx := c.Request().Context()
	station, err := h.Stations.GetByID(ctx, body.StationID)
	if err == repository.ErrNotFound {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "station not found"})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}

	booked, err := h.Engine.Reserve(ctx, booking.Request{
		UserID:       userID,
		StationID:    station.ID,
		SeedlingType: body.SeedlingType,
		Quantity:     body.Quantity,
		PickupAt:     pickup,
		StationName:  station.Name,
	})
	switch {
	case err == nil:
		return c.JSON(http.StatusCreated, bookingJSON(*booked))
	case errors.Is(err, booking.ErrInvalidPickupWindow):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid_pickup_window", "message": "pickup must be 48 hours to 14 days out"})
	case errors.Is(err, booking.ErrQuotaExceeded):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "quota_exceeded", "message": "outstanding bookings exceed your quota"})
	case errors.Is(err, booking.ErrOnCooldown):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "on_cooldown", "message": "account is on a post-expiry cooldown"})
	case errors.Is(err, booking.ErrInsufficientStock):
		return c.JSON(http.StatusConflict, echo.Map{"error": "insufficient_stock", "message": "not enough stock at the station"})
	default:
		c.Logger().Errorf("booking: create failed for user %d: %v", userID, err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
}

// List handles GET /v1/bookings and returns the caller's bookings,
// newest first.
func (h *BookingHandler) List(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	items, err := h.Bookings.ListByUser(c.Request().Context(), userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	out := make([]echo.Map, 0, len(items))
	for _, b := range items {
		out = append(out, bookingJSON(b))
	}
	return c.JSON(http.StatusOK, echo.Map{"bookings": out})
}

func bookingJSON(b model.Booking) echo.Map {
	return echo.Map{
		"id":               b.ID,
		"station_id":       b.StationID,
		"seedling_type":    b.SeedlingType,
		"quantity":         b.Quantity,
		"status":           b.Status,
		"scheduled_pickup": b.ScheduledPickup.UTC().Format(time.RFC3339),
		"created_at":       b.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// parsePickupDate accepts a bare date (midnight UTC) or a full RFC3339
// timestamp.
func parsePickupDate(s string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}
