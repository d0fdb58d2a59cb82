package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/seedlink/platform/internal/model"
	"github.com/seedlink/platform/internal/repository"
)

// StationHandler serves the public station browse endpoint. Responses
// sit behind the Redis response cache, so the inventory totals shown
// here may lag the ledger by up to the cache TTL.
type StationHandler struct {
	Stations *repository.StationRepo
}

// NewStationHandler constructs a StationHandler.
func NewStationHandler(stations *repository.StationRepo) *StationHandler {
	if stations == nil {
		panic("nil station repo passed to NewStationHandler")
	}
	return &StationHandler{Stations: stations}
}

// ListByCounty handles GET /v1/stations?county=. Each station carries
// its inventory lines with the status derived from the live quantity.
func (h *StationHandler) ListByCounty(c echo.Context) error {
	county := strings.TrimSpace(c.QueryParam("county"))
	if county == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "county query parameter is required"})
	}
	stations, err := h.Stations.ListByCountyWithInventory(c.Request().Context(), county)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	out := make([]echo.Map, 0, len(stations))
	for _, s := range stations {
		out = append(out, stationJSON(s))
	}
	return c.JSON(http.StatusOK, echo.Map{"stations": out})
}

func stationJSON(s model.StationWithInventory) echo.Map {
	inv := make([]echo.Map, 0, len(s.Inventory))
	for _, line := range s.Inventory {
		inv = append(inv, echo.Map{
			"seedling_type":      line.SeedlingType,
			"quantity_available": line.QuantityAvailable,
			"status":             line.Status,
		})
	}
	return echo.Map{
		"id":              s.ID,
		"name":            s.Name,
		"county":          s.County,
		"location":        s.Location,
		"total_available": s.TotalAvailable(),
		"inventory":       inv,
	}
}
