package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/seedlink/platform/internal/repository"
)

// AdminHandler carries the station-manager operations. Routes using it
// sit behind JWTAuth plus RequireRole("ADMIN").
type AdminHandler struct {
	Inventory *repository.InventoryRepo
	Stations  *repository.StationRepo
}

// NewAdminHandler constructs an AdminHandler.
func NewAdminHandler(inventory *repository.InventoryRepo, stations *repository.StationRepo) *AdminHandler {
	if inventory == nil || stations == nil {
		panic("nil dependency passed to NewAdminHandler")
	}
	return &AdminHandler{Inventory: inventory, Stations: stations}
}

// Restock handles POST /v1/admin/inventory/restock. It adds stock to a
// station's ledger line, creating the line on first delivery of a type,
// and returns the line as it stands after the restock.
func (h *AdminHandler) Restock(c echo.Context) error {
	var body struct {
		StationID    uint64 `json:"station_id"`
		SeedlingType string `json:"seedling_type"`
		Quantity     int    `json:"quantity"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.StationID == 0 || body.SeedlingType == "" || body.Quantity <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "station_id, seedling_type and a positive quantity are required"})
	}

	ctx := c.Request().Context()
	if _, err := h.Stations.GetByID(ctx, body.StationID); err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "station not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}

	if err := h.Inventory.Restock(ctx, body.StationID, body.SeedlingType, body.Quantity); err != nil {
		c.Logger().Errorf("admin: restock failed for station %d: %v", body.StationID, err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	line, err := h.Inventory.Get(ctx, body.StationID, body.SeedlingType)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"station_id":         line.StationID,
		"seedling_type":      line.SeedlingType,
		"quantity_available": line.QuantityAvailable,
		"status":             line.Status,
	})
}
