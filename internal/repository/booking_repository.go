package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/seedlink/platform/internal/model"
)

// BookingRepo provides CRUD operations for bookings.  Creation always
// happens inside the reservation engine's transaction together with the
// inventory decrement; the repo therefore exposes Tx-scoped methods and
// leaves commit/rollback to the caller.
type BookingRepo struct {
	db *sql.DB
}

// NewBookingRepo returns a new BookingRepo bound to the given database.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

// CreateTx inserts a new booking within the scope of an existing
// transaction and populates the generated ID and timestamps on the
// provided record.  Status should be a valid model.BookingStatus.
func (r *BookingRepo) CreateTx(ctx context.Context, tx *sql.Tx, b *model.Booking) error {
	const q = `INSERT INTO bookings (user_id, station_id, seedling_type, quantity, status, scheduled_pickup, reminder_sent)
               VALUES (?, ?, ?, ?, ?, ?, ?)`
	result, err := tx.ExecContext(ctx, q,
		b.UserID, b.StationID, b.SeedlingType, b.Quantity, string(b.Status),
		b.ScheduledPickup.UTC().Format("2006-01-02 15:04:05"), b.ReminderSent,
	)
	if err != nil {
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	b.ID = uint64(id)
	// Query back the row to populate DB-defaulted timestamps.
	const sel = `SELECT created_at, updated_at FROM bookings WHERE id = ?`
	return tx.QueryRowContext(ctx, sel, b.ID).Scan(&b.CreatedAt, &b.UpdatedAt)
}

// OutstandingQuantityTx sums the quantities of the user's non-terminal
// bookings (PENDING, CONFIRMED, READY_FOR_PICKUP) within the provided
// transaction.  The engine calls this after locking the user row, so two
// concurrent bookings by the same identity cannot both pass the quota
// check against a stale sum.
func (r *BookingRepo) OutstandingQuantityTx(ctx context.Context, tx *sql.Tx, userID uint64) (int, error) {
	const q = `SELECT COALESCE(SUM(quantity), 0)
               FROM bookings
               WHERE user_id = ? AND status IN ('PENDING', 'CONFIRMED', 'READY_FOR_PICKUP')`
	var total int
	if err := tx.QueryRowContext(ctx, q, userID).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

// ListByUser returns all bookings created by the given user, newest
// first.  When no bookings exist an empty slice is returned.
func (r *BookingRepo) ListByUser(ctx context.Context, userID uint64) ([]model.Booking, error) {
	const q = `SELECT id, user_id, station_id, seedling_type, quantity, status, scheduled_pickup, reminder_sent, created_at, updated_at
               FROM bookings
               WHERE user_id = ?
               ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Booking, 0)
	for rows.Next() {
		var b model.Booking
		var status string
		if err := rows.Scan(&b.ID, &b.UserID, &b.StationID, &b.SeedlingType, &b.Quantity,
			&status, &b.ScheduledPickup, &b.ReminderSent, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, err
		}
		b.Status = model.BookingStatus(status)
		out = append(out, b)
	}
	return out, rows.Err()
}

// ExpiryCandidates returns CONFIRMED bookings whose scheduled pickup is
// older than the given threshold.  Only the fields the reconciler needs
// are selected.  Bookings already EXPIRED are naturally excluded, which
// is what makes re-running the sweep a no-op for processed bookings.
func (r *BookingRepo) ExpiryCandidates(ctx context.Context, threshold time.Time) ([]model.Booking, error) {
	const q = `SELECT id, user_id, station_id, seedling_type, quantity
               FROM bookings
               WHERE status = 'CONFIRMED' AND scheduled_pickup < ?`
	rows, err := r.db.QueryContext(ctx, q, threshold.UTC().Format("2006-01-02 15:04:05"))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Booking
	for rows.Next() {
		var b model.Booking
		if err := rows.Scan(&b.ID, &b.UserID, &b.StationID, &b.SeedlingType, &b.Quantity); err != nil {
			return nil, err
		}
		b.Status = model.BookingConfirmed
		out = append(out, b)
	}
	return out, rows.Err()
}

// MarkExpiredTx flips a booking from CONFIRMED to EXPIRED within the
// provided transaction.  The status guard in the WHERE clause is the
// idempotency latch: a booking that a concurrent or earlier sweep already
// expired matches zero rows, and the caller must then skip the stock
// release so stock is never restored twice for the same booking.  It
// returns true when this call performed the transition.
func (r *BookingRepo) MarkExpiredTx(ctx context.Context, tx *sql.Tx, bookingID uint64) (bool, error) {
	const q = `UPDATE bookings SET status = 'EXPIRED' WHERE id = ? AND status = 'CONFIRMED'`
	res, err := tx.ExecContext(ctx, q, bookingID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// ReminderCandidates returns CONFIRMED bookings with a pickup inside the
// next `window` that have not yet been reminded.
func (r *BookingRepo) ReminderCandidates(ctx context.Context, now time.Time, window time.Duration) ([]model.Booking, error) {
	const q = `SELECT id, user_id, station_id, seedling_type, quantity, scheduled_pickup
               FROM bookings
               WHERE status = 'CONFIRMED' AND reminder_sent = FALSE
                 AND scheduled_pickup >= ? AND scheduled_pickup < ?`
	from := now.UTC().Format("2006-01-02 15:04:05")
	to := now.Add(window).UTC().Format("2006-01-02 15:04:05")
	rows, err := r.db.QueryContext(ctx, q, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Booking
	for rows.Next() {
		var b model.Booking
		if err := rows.Scan(&b.ID, &b.UserID, &b.StationID, &b.SeedlingType, &b.Quantity, &b.ScheduledPickup); err != nil {
			return nil, err
		}
		b.Status = model.BookingConfirmed
		out = append(out, b)
	}
	return out, rows.Err()
}

// MarkReminderSent records that the pickup reminder for a booking has
// been published.  The reminder_sent guard keeps the sweep idempotent in
// the same way MarkExpiredTx does for expiry.
func (r *BookingRepo) MarkReminderSent(ctx context.Context, bookingID uint64) (bool, error) {
	const q = `UPDATE bookings SET reminder_sent = TRUE WHERE id = ? AND reminder_sent = FALSE`
	res, err := r.db.ExecContext(ctx, q, bookingID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
