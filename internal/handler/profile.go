package handler

import (
	"net/http"
	"regexp"

	"github.com/labstack/echo/v4"

	"github.com/seedlink/platform/internal/repository"
	"github.com/seedlink/platform/internal/utils"
)

var pinFormat = regexp.MustCompile(`^[0-9]{4}$`)

// ProfileHandler carries self-service account operations for the web
// client.
type ProfileHandler struct {
	Users *repository.UserRepo
}

// NewProfileHandler constructs a ProfileHandler.
func NewProfileHandler(users *repository.UserRepo) *ProfileHandler {
	if users == nil {
		panic("nil user repo passed to NewProfileHandler")
	}
	return &ProfileHandler{Users: users}
}

// SetPin handles PUT /v1/profile/pin. Once a PIN is set the USSD channel
// asks for it before opening the menu for this phone number.
func (h *ProfileHandler) SetPin(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var body struct {
		Pin string `json:"pin"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if !pinFormat.MatchString(body.Pin) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "pin must be exactly 4 digits"})
	}
	hash, err := utils.HashPin(body.Pin)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "hash failure"})
	}
	if err := h.Users.SetPin(c.Request().Context(), userID, hash); err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.NoContent(http.StatusNoContent)
}
