package model

import "time"

// InventoryStatus describes the stock level of an inventory line. It is
// always derived from the quantity via StatusFor and never stored or
// updated independently, so the two can never drift apart.
type InventoryStatus string

const (
	StatusAvailable  InventoryStatus = "AVAILABLE"
	StatusLowStock   InventoryStatus = "LOW_STOCK"
	StatusOutOfStock InventoryStatus = "OUT_OF_STOCK"
)

// LowStockThreshold is the quantity at or below which a line is reported
// as LOW_STOCK. The thresholds are fixed policy, not configuration.
const LowStockThreshold = 10

// StatusFor derives the status for a given available quantity.
func StatusFor(quantity int) InventoryStatus {
	switch {
	case quantity <= 0:
		return StatusOutOfStock
	case quantity <= LowStockThreshold:
		return StatusLowStock
	default:
		return StatusAvailable
	}
}

// InventoryLine is one row of the `seedling_inventory` ledger: the
// available quantity of a seedling type at a station. The
// (StationID, SeedlingType) pair is unique. The quantity is mutated only
// inside reservation and expiry transactions and never goes negative.
//
// Fields:
//
//	ID                – primary key identifier.
//	StationID         – owning station.
//	SeedlingType      – seedling variety (e.g. "Moringa", "USSD_MIXED").
//	QuantityAvailable – units currently available for booking.
//	Status            – derived stock level; see StatusFor.
//	UpdatedAt         – timestamp of last mutation.
type InventoryLine struct {
	ID                uint64          // seedling_inventory.id
	StationID         uint64          // seedling_inventory.station_id
	SeedlingType      string          // seedling_inventory.seedling_type
	QuantityAvailable int             // seedling_inventory.quantity_available
	Status            InventoryStatus // seedling_inventory.status (derived)
	UpdatedAt         time.Time       // seedling_inventory.updated_at
}
