package model

import "time"

// Event is a community tree-planting event that USSD users can join.
//
// Fields:
//
//	ID        – primary key identifier.
//	Title     – event title shown in the USSD list.
//	County    – county the event is held in.
//	StartsAt  – when the event takes place.
//	CreatedAt – timestamp of creation.
type Event struct {
	ID        uint64    // events.id
	Title     string    // events.title
	County    string    // events.county
	StartsAt  time.Time // events.starts_at
	CreatedAt time.Time // events.created_at
}

// EventRegistration records that a user joined an event through the USSD
// channel.
type EventRegistration struct {
	ID        uint64    // event_registrations.id
	EventID   uint64    // event_registrations.event_id
	UserID    uint64    // event_registrations.user_id
	CreatedAt time.Time // event_registrations.created_at
}
