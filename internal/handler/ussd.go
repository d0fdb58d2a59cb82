package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/seedlink/platform/internal/ussd"
)

// UssdHandler terminates gateway callbacks. The gateway POSTs a form
// with the session identifier, the caller's msisdn and the accumulated
// input text, and expects a plain-text body whose first word is CON or
// END. Anything other than HTTP 200 makes the gateway show a generic
// failure to the handset, so errors are answered as a well-formed END
// reply and only logged server side.
type UssdHandler struct {
	Dispatcher *ussd.Dispatcher
}

// NewUssdHandler constructs a UssdHandler.
func NewUssdHandler(d *ussd.Dispatcher) *UssdHandler {
	if d == nil {
		panic("nil dispatcher passed to NewUssdHandler")
	}
	return &UssdHandler{Dispatcher: d}
}

// Handle processes POST /ussd.
func (h *UssdHandler) Handle(c echo.Context) error {
	sessionID := c.FormValue("sessionId")
	phone := c.FormValue("phoneNumber")
	text := c.FormValue("text")

	if sessionID == "" || phone == "" {
		// Malformed callback; still reply in-band so the handset sees
		// a clean message instead of a gateway error page.
		return c.String(http.StatusOK, ussd.End("Invalid request.").Render())
	}

	reply, err := h.Dispatcher.Handle(c.Request().Context(), sessionID, phone, text)
	if err != nil {
		c.Logger().Errorf("ussd: session %s: %v", sessionID, err)
	}
	return c.String(http.StatusOK, reply.Render())
}
