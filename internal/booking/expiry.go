package booking

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/seedlink/platform/internal/repository"
)

// Reconciler sweeps overdue unclaimed bookings: each one is expired,
// its quantity restored to the inventory ledger, and a cooldown penalty
// stamped on the booker, all in one transaction per booking.  An
// external scheduler triggers Run at a fixed cadence.
type Reconciler struct {
	db        *sql.DB
	users     *repository.UserRepo
	bookings  *repository.BookingRepo
	inventory *repository.InventoryRepo
	notifier  Notifier

	graceHours   int
	cooldownDays int
}

// NewReconciler constructs a Reconciler.  notifier may be nil.
func NewReconciler(db *sql.DB, users *repository.UserRepo, bookings *repository.BookingRepo, inventory *repository.InventoryRepo, notifier Notifier, graceHours, cooldownDays int) *Reconciler {
	if db == nil || users == nil || bookings == nil || inventory == nil {
		panic("nil dependency passed to NewReconciler")
	}
	return &Reconciler{
		db: db, users: users, bookings: bookings, inventory: inventory, notifier: notifier,
		graceHours: graceHours, cooldownDays: cooldownDays,
	}
}

// Run expires every CONFIRMED booking whose scheduled pickup is more than
// the grace period in the past and returns the number of bookings
// expired.  Each booking is processed independently: a failure on one is
// logged and does not abort the sweep for the rest.  Re-invocation is
// idempotent: the CONFIRMED→EXPIRED transition is guarded inside the
// transaction, so stock is never double-released even if two sweeps
// overlap.
func (r *Reconciler) Run(ctx context.Context) (int, error) {
	now := time.Now().UTC()
	threshold := now.Add(-time.Duration(r.graceHours) * time.Hour)
	candidates, err := r.bookings.ExpiryCandidates(ctx, threshold)
	if err != nil {
		return 0, err
	}
	expired := 0
	for _, b := range candidates {
		transitioned, err := r.expireOne(ctx, b.ID, b.UserID, b.StationID, b.SeedlingType, b.Quantity, now)
		if err != nil {
			log.Printf("expiry-reconciler: booking %d failed: %v", b.ID, err)
			continue
		}
		if !transitioned {
			// Another sweep got here first; nothing to release.
			continue
		}
		expired++
		if r.notifier != nil {
			body := fmt.Sprintf("Your booking for %d x %s has expired and stock was returned to the station.", b.Quantity, b.SeedlingType)
			if err := r.notifier.Notify(ctx, b.UserID, "booking", "Booking expired", body); err != nil {
				log.Printf("expiry-reconciler: notify failed for booking %d: %v", b.ID, err)
			}
		}
	}
	return expired, nil
}

// expireOne performs the atomic expiry of a single booking.  It returns
// false when the booking was no longer CONFIRMED, in which case nothing
// was changed.
func (r *Reconciler) expireOne(ctx context.Context, bookingID, userID, stationID uint64, seedlingType string, quantity int, now time.Time) (bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	transitioned, err := r.bookings.MarkExpiredTx(ctx, tx, bookingID)
	if err != nil {
		return false, err
	}
	if !transitioned {
		// Already EXPIRED (or otherwise moved on). Commit the empty
		// transaction and report a no-op.
		if err := tx.Commit(); err != nil {
			return false, err
		}
		committed = true
		return false, nil
	}

	if err := r.inventory.ReleaseTx(ctx, tx, stationID, seedlingType, quantity); err != nil {
		return false, err
	}
	until := now.AddDate(0, 0, r.cooldownDays)
	if err := r.users.SetCooldownTx(ctx, tx, userID, until); err != nil {
		return false, err
	}
	if err := tx.Commit(); err != nil {
		return false, err
	}
	committed = true
	return true, nil
}
