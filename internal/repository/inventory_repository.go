package repository // repository for the seedling inventory ledger

import (
	"context"
	"database/sql"

	"github.com/seedlink/platform/internal/model"
)

// InventoryRepo encapsulates database operations on the seedling_inventory
// ledger.  A ledger row is identified by (station_id, seedling_type) and
// carries the only quantity counter in the system; bookings borrow from it
// and expiries pay back into it.  The status column is recomputed from the
// quantity inside every mutating statement so the two can never diverge.
type InventoryRepo struct {
	db *sql.DB
}

// NewInventoryRepo constructs an InventoryRepo given a DB handle.
func NewInventoryRepo(db *sql.DB) *InventoryRepo { return &InventoryRepo{db: db} }

// Get returns the ledger line for (stationID, seedlingType).  The status
// is recomputed from the stored quantity rather than trusted from the
// column, which protects readers from any historical drift.
func (r *InventoryRepo) Get(ctx context.Context, stationID uint64, seedlingType string) (*model.InventoryLine, error) {
	const q = `SELECT id, station_id, seedling_type, quantity_available, updated_at
               FROM seedling_inventory
               WHERE station_id = ? AND seedling_type = ?`
	var line model.InventoryLine
	err := r.db.QueryRowContext(ctx, q, stationID, seedlingType).Scan(
		&line.ID, &line.StationID, &line.SeedlingType, &line.QuantityAvailable, &line.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	line.Status = model.StatusFor(line.QuantityAvailable)
	return &line, nil
}

// ReserveTx atomically decrements the ledger line by amount within the
// provided transaction.  The guard `quantity_available >= ?` makes the
// check and the decrement a single statement: under concurrent attempts
// on the last units, MySQL serializes the row updates and exactly one
// caller wins while the others see zero rows affected and receive
// ErrInsufficientStock with no side effect.  The status is recomputed in
// the same statement.
func (r *InventoryRepo) ReserveTx(ctx context.Context, tx *sql.Tx, stationID uint64, seedlingType string, amount int) error {
	// status is assigned before quantity_available: MySQL evaluates SET
	// clauses left to right, so the CASE still sees the pre-update value
	// and both columns derive from the same arithmetic.
	const q = `UPDATE seedling_inventory
               SET status = CASE
                       WHEN quantity_available - ? <= 0 THEN 'OUT_OF_STOCK'
                       WHEN quantity_available - ? <= 10 THEN 'LOW_STOCK'
                       ELSE 'AVAILABLE'
                   END,
                   quantity_available = quantity_available - ?
               WHERE station_id = ? AND seedling_type = ? AND quantity_available >= ?`
	res, err := tx.ExecContext(ctx, q, amount, amount, amount, stationID, seedlingType, amount)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrInsufficientStock
	}
	return nil
}

// ReleaseTx atomically increments the ledger line by amount within the
// provided transaction, recomputing the status.  It is used by the expiry
// reconciler when restoring stock from lapsed bookings and by the admin
// restock path.  Releasing against a missing line returns ErrNotFound so
// the caller can surface the misconfiguration instead of silently
// dropping stock.
func (r *InventoryRepo) ReleaseTx(ctx context.Context, tx *sql.Tx, stationID uint64, seedlingType string, amount int) error {
	const q = `UPDATE seedling_inventory
               SET status = CASE
                       WHEN quantity_available + ? <= 0 THEN 'OUT_OF_STOCK'
                       WHEN quantity_available + ? <= 10 THEN 'LOW_STOCK'
                       ELSE 'AVAILABLE'
                   END,
                   quantity_available = quantity_available + ?
               WHERE station_id = ? AND seedling_type = ?`
	res, err := tx.ExecContext(ctx, q, amount, amount, amount, stationID, seedlingType)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Restock adds stock to a ledger line, creating the line when the station
// has never stocked this seedling type before.  The status derives from
// the post-restock quantity by the same thresholds as every other
// mutation.
func (r *InventoryRepo) Restock(ctx context.Context, stationID uint64, seedlingType string, amount int) error {
	const q = `INSERT INTO seedling_inventory (station_id, seedling_type, quantity_available, status)
               VALUES (?, ?, ?, CASE
                       WHEN ? <= 0 THEN 'OUT_OF_STOCK'
                       WHEN ? <= 10 THEN 'LOW_STOCK'
                       ELSE 'AVAILABLE'
                   END)
               ON DUPLICATE KEY UPDATE
                   status = CASE
                       WHEN quantity_available + VALUES(quantity_available) <= 0 THEN 'OUT_OF_STOCK'
                       WHEN quantity_available + VALUES(quantity_available) <= 10 THEN 'LOW_STOCK'
                       ELSE 'AVAILABLE'
                   END,
                   quantity_available = quantity_available + VALUES(quantity_available)`
	_, err := r.db.ExecContext(ctx, q, stationID, seedlingType, amount, amount, amount)
	return err
}
