package booking

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/seedlink/platform/internal/model"
	"github.com/seedlink/platform/internal/repository"
)

// Notifier is the one-way notification collaborator.  Implementations
// must be fire-and-forget from the engine's point of view: a notification
// failure never affects booking correctness, so the engine logs and
// discards any error after the transaction has committed.
type Notifier interface {
	Notify(ctx context.Context, userID uint64, domain, title, body string) error
}

// Policy carries the tunable booking rules.  Zero values are not usable;
// construct it from config.
type Policy struct {
	PickupMinLead    time.Duration // earliest pickup, from now
	PickupMaxHorizon time.Duration // latest pickup, from now
	IndividualQuota  int           // max outstanding quantity, INDIVIDUAL
	InstitutionQuota int           // max outstanding quantity, INSTITUTION
}

// QuotaFor selects the quota for an account type.  Unknown types get the
// individual quota, the conservative choice.
func (p Policy) QuotaFor(t model.AccountType) int {
	if t == model.AccountInstitution {
		return p.InstitutionQuota
	}
	return p.IndividualQuota
}

// Engine validates and atomically executes bookings.  The quota check,
// the inventory decrement and the booking insert run in one transaction:
// the booker's user row is locked to serialize per-identity quota checks,
// and the ledger's guarded UPDATE serializes per-line stock so that two
// simultaneous requests for the last unit resolve to exactly one success.
type Engine struct {
	db        *sql.DB
	users     *repository.UserRepo
	bookings  *repository.BookingRepo
	inventory *repository.InventoryRepo
	notifier  Notifier
	policy    Policy
}

// NewEngine constructs an Engine.  All repositories must be non-nil;
// notifier may be nil, which disables confirmation notifications.
func NewEngine(db *sql.DB, users *repository.UserRepo, bookings *repository.BookingRepo, inventory *repository.InventoryRepo, notifier Notifier, policy Policy) *Engine {
	if db == nil || users == nil || bookings == nil || inventory == nil {
		panic("nil dependency passed to NewEngine")
	}
	return &Engine{db: db, users: users, bookings: bookings, inventory: inventory, notifier: notifier, policy: policy}
}

// Request describes one reservation attempt.
type Request struct {
	UserID       uint64
	StationID    uint64
	SeedlingType string
	Quantity     int
	PickupAt     time.Time
	StationName  string // optional, used only to enrich the notification text
}

// Reserve validates the request and, when every precondition passes,
// atomically decrements the inventory line and creates a CONFIRMED
// booking.  Preconditions are evaluated in order and each failure returns
// its distinct rejection: pickup window, cooldown, quota, stock.  On any
// error the transaction is rolled back and neither the ledger nor the
// bookings table is touched.
func (e *Engine) Reserve(ctx context.Context, req Request) (*model.Booking, error) {
	if req.Quantity <= 0 {
		return nil, fmt.Errorf("quantity must be positive, got %d", req.Quantity)
	}
	now := time.Now().UTC()

	// 1. Pickup window.  Checked before touching the database at all.
	min := now.Add(e.policy.PickupMinLead)
	max := now.Add(e.policy.PickupMaxHorizon)
	pickup := req.PickupAt.UTC()
	if pickup.Before(min) || pickup.After(max) {
		return nil, ErrInvalidPickupWindow
	}

	tx, err := e.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	// Lock the booker's row for the remainder of the transaction.  This
	// serializes steps 2–3 per identity: a concurrent reservation by the
	// same booker waits here and then sees this booking's quantity in
	// the outstanding sum.
	user, err := e.users.GetByIDForUpdateTx(ctx, tx, req.UserID)
	if err != nil {
		return nil, err
	}

	// 2. Cooldown.
	if user.OnCooldown(now) {
		return nil, ErrOnCooldown
	}

	// 3. Quota across non-terminal bookings.
	outstanding, err := e.bookings.OutstandingQuantityTx(ctx, tx, req.UserID)
	if err != nil {
		return nil, err
	}
	if outstanding+req.Quantity > e.policy.QuotaFor(user.AccountType) {
		return nil, ErrQuotaExceeded
	}

	// 4. Check-and-decrement on the ledger line.  Fails atomically with
	// no side effect when stock is short.
	if err := e.inventory.ReserveTx(ctx, tx, req.StationID, req.SeedlingType, req.Quantity); err != nil {
		return nil, err
	}

	booking := &model.Booking{
		UserID:          req.UserID,
		StationID:       req.StationID,
		SeedlingType:    req.SeedlingType,
		Quantity:        req.Quantity,
		Status:          model.BookingConfirmed,
		ScheduledPickup: pickup,
	}
	if err := e.bookings.CreateTx(ctx, tx, booking); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true

	// Confirmation notification happens outside the transaction; its
	// failure must not roll back the booking.
	if e.notifier != nil {
		station := req.StationName
		if station == "" {
			station = fmt.Sprintf("station #%d", req.StationID)
		}
		title := fmt.Sprintf("Booking confirmed: %d x %s", req.Quantity, req.SeedlingType)
		body := fmt.Sprintf("Your booking for %d x %s at %s is confirmed for %s.",
			req.Quantity, req.SeedlingType, station, pickup.Format("02 Jan 2006"))
		if err := e.notifier.Notify(ctx, req.UserID, "booking", title, body); err != nil {
			log.Printf("booking-engine: confirmation notify failed for booking %d: %v", booking.ID, err)
		}
	}
	return booking, nil
}
