package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/seedlink/platform/internal/model"
)

// EventRepo provides read access to community events and records USSD
// event registrations.
type EventRepo struct {
	db *sql.DB
}

// NewEventRepo returns a new EventRepo bound to the provided database.
func NewEventRepo(db *sql.DB) *EventRepo { return &EventRepo{db: db} }

// maxEventsListed caps the USSD event menu; feature phones show a small
// screen and the menu is indexed by a single digit position.
const maxEventsListed = 10

// UpcomingByCounty returns events in the county that start at or after
// now, soonest first, capped at maxEventsListed.
func (r *EventRepo) UpcomingByCounty(ctx context.Context, county string, now time.Time) ([]model.Event, error) {
	const q = `SELECT id, title, county, starts_at, created_at
               FROM events
               WHERE LOWER(county) LIKE ? AND starts_at >= ?
               ORDER BY starts_at ASC
               LIMIT ?`
	pattern := "%" + strings.ToLower(strings.TrimSpace(county)) + "%"
	rows, err := r.db.QueryContext(ctx, q, pattern, now.UTC().Format("2006-01-02 15:04:05"), maxEventsListed)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Event, 0)
	for rows.Next() {
		var e model.Event
		if err := rows.Scan(&e.ID, &e.Title, &e.County, &e.StartsAt, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Register records that the user joined the event.  Joining twice is not
// an error; the duplicate insert is ignored so a re-sent USSD turn stays
// idempotent.
func (r *EventRepo) Register(ctx context.Context, eventID, userID uint64) error {
	const q = `INSERT IGNORE INTO event_registrations (event_id, user_id) VALUES (?, ?)`
	_, err := r.db.ExecContext(ctx, q, eventID, userID)
	return err
}
