package booking

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/seedlink/platform/internal/repository"
)

// ReminderSweep publishes pickup reminders for CONFIRMED bookings whose
// pickup falls inside the window and which have not been reminded yet.
// Like the expiry sweep it is scheduler-triggered, idempotent (the
// reminder_sent flag is a guarded flip) and treats per-booking failures
// as independent.
type ReminderSweep struct {
	bookings *repository.BookingRepo
	notifier Notifier
	window   time.Duration
}

// NewReminderSweep constructs a ReminderSweep.  A nil notifier makes Run
// a no-op that still reports zero reminders.
func NewReminderSweep(bookings *repository.BookingRepo, notifier Notifier, window time.Duration) *ReminderSweep {
	if bookings == nil {
		panic("nil booking repo passed to NewReminderSweep")
	}
	return &ReminderSweep{bookings: bookings, notifier: notifier, window: window}
}

// Run sends reminders and returns the count actually delivered.  The
// flag is flipped before notifying: a lost notification is preferable to
// hammering a handset with duplicates on every sweep.
func (s *ReminderSweep) Run(ctx context.Context) (int, error) {
	if s.notifier == nil {
		return 0, nil
	}
	candidates, err := s.bookings.ReminderCandidates(ctx, time.Now().UTC(), s.window)
	if err != nil {
		return 0, err
	}
	reminded := 0
	for _, b := range candidates {
		flipped, err := s.bookings.MarkReminderSent(ctx, b.ID)
		if err != nil {
			log.Printf("reminder-sweep: booking %d failed: %v", b.ID, err)
			continue
		}
		if !flipped {
			continue
		}
		body := fmt.Sprintf("Reminder: pick up your %d x %s on %s.", b.Quantity, b.SeedlingType, b.ScheduledPickup.Format("02 Jan 2006"))
		if err := s.notifier.Notify(ctx, b.UserID, "booking", "Pickup reminder", body); err != nil {
			log.Printf("reminder-sweep: notify failed for booking %d: %v", b.ID, err)
			continue
		}
		reminded++
	}
	return reminded, nil
}
