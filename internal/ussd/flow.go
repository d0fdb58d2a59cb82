package ussd

import (
	"context"
	"time"

	"github.com/seedlink/platform/internal/booking"
	"github.com/seedlink/platform/internal/model"
)

// Decision is what a flow handler returns: the reply to send plus the
// session fields the dispatcher should persist.  Handlers never write
// the session themselves; the dispatcher applies the decision in a
// single save, so a crash mid-turn can't leave a half-updated session.
//
// Done and Consumed support flow chaining.  A flow that completes with a
// Continue reply (registration rolls into the main menu) sets Done and
// reports how many of its fragments the completed run consumed, so the
// dispatcher can route the remaining fragments to the next menu pick on
// later turns.
type Decision struct {
	Reply     Reply
	UserID    *uint64 // resolved booker to stamp on the session, when known
	LoginStep string  // next login sub-step marker; empty clears it
	Done      bool    // flow reached its terminal action this replay
	Consumed  int     // fragments consumed by the completed run
}

// Handler advances one flow given the session and the fragments that
// belong to the flow (the root menu digit already stripped).  Handlers
// are pure with respect to session state: the same session and fragments
// always produce the same decision, modulo the reference data they load.
type Handler interface {
	Advance(ctx context.Context, sess *model.Session, fragments []string) (Decision, error)
}

// SessionStore is the dispatcher's view of session persistence.
type SessionStore interface {
	Load(ctx context.Context, sessionID, phoneNumber string) (*model.Session, error)
	Save(ctx context.Context, s *model.Session) error
	SweepExpired(ctx context.Context, maxIdleMinutes int) (int64, error)
}

// UserStore resolves bookers by phone number.
type UserStore interface {
	GetByPhone(ctx context.Context, phone string) (*model.User, error)
	GetOrCreateByPhone(ctx context.Context, phone, county, name string) (*model.User, error)
}

// StationLister supplies the station picker's reference data.
type StationLister interface {
	ListByCountyWithInventory(ctx context.Context, county string) ([]model.StationWithInventory, error)
}

// EventStore supplies upcoming events and records registrations.
type EventStore interface {
	UpcomingByCounty(ctx context.Context, county string, now time.Time) ([]model.Event, error)
	Register(ctx context.Context, eventID, userID uint64) error
}

// Reserver is the reservation engine as seen from the booking flow.
type Reserver interface {
	Reserve(ctx context.Context, req booking.Request) (*model.Booking, error)
}
