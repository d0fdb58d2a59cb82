package model

import "time"

// Station represents a seedling distribution station as stored in the
// `stations` table. Stations own inventory lines and are the pickup
// location for bookings.
//
// Fields:
//
//	ID        – primary key identifier.
//	Name      – display name shown in menus and confirmations.
//	County    – county the station serves; USSD flows match on this.
//	Location  – free-form description of where the station is.
//	CreatedAt – timestamp of creation.
//	UpdatedAt – timestamp of last update.
type Station struct {
	ID        uint64    // stations.id
	Name      string    // stations.name
	County    string    // stations.county
	Location  string    // stations.location
	CreatedAt time.Time // stations.created_at
	UpdatedAt time.Time // stations.updated_at
}

// StationWithInventory bundles a station with its inventory lines for
// browse responses and the USSD station picker.
type StationWithInventory struct {
	Station
	Inventory []InventoryLine
}

// TotalAvailable sums quantity across all inventory lines of the station.
// The USSD station list shows this aggregate next to each station name.
func (s StationWithInventory) TotalAvailable() int {
	total := 0
	for _, line := range s.Inventory {
		total += line.QuantityAvailable
	}
	return total
}
