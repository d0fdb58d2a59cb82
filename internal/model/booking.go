package model

import "time"

// BookingStatus enumerates the lifecycle states of a booking. A booking's
// quantity is borrowed from the inventory ledger while the status is one
// of the non-terminal states and is returned on EXPIRED.
type BookingStatus string

const (
	BookingPending        BookingStatus = "PENDING"
	BookingConfirmed      BookingStatus = "CONFIRMED"
	BookingReadyForPickup BookingStatus = "READY_FOR_PICKUP"
	BookingCompleted      BookingStatus = "COMPLETED"
	BookingExpired        BookingStatus = "EXPIRED"
)

// NonTerminalStatuses are the states whose quantities count against the
// booker's quota. Keep in sync with OutstandingQuantityTx in the
// repository layer.
var NonTerminalStatuses = []BookingStatus{BookingPending, BookingConfirmed, BookingReadyForPickup}

// AccountType classifies a booker for quota selection. The identity
// collaborator supplies it; the core trusts it without re-verifying.
type AccountType string

const (
	AccountIndividual  AccountType = "INDIVIDUAL"
	AccountInstitution AccountType = "INSTITUTION"
)

// Booking records a reservation of seedlings at a station. It is created
// atomically with the matching inventory decrement.
//
// Fields:
//
//	ID              – primary key identifier.
//	UserID          – booker (users.id).
//	StationID       – pickup station.
//	SeedlingType    – seedling variety booked.
//	Quantity        – units reserved; positive.
//	Status          – lifecycle state, see BookingStatus.
//	ScheduledPickup – agreed pickup timestamp.
//	ReminderSent    – whether the pickup reminder has been published.
//	CreatedAt       – creation timestamp.
//	UpdatedAt       – timestamp of last update.
type Booking struct {
	ID              uint64        // bookings.id
	UserID          uint64        // bookings.user_id
	StationID       uint64        // bookings.station_id
	SeedlingType    string        // bookings.seedling_type
	Quantity        int           // bookings.quantity
	Status          BookingStatus // bookings.status
	ScheduledPickup time.Time     // bookings.scheduled_pickup
	ReminderSent    bool          // bookings.reminder_sent
	CreatedAt       time.Time     // bookings.created_at
	UpdatedAt       time.Time     // bookings.updated_at
}
