package model

import "time"

// User represents a booker as stored in the `users` table. Both web and
// USSD users live here; USSD users are keyed by their normalized phone
// number and may carry a bcrypt PIN hash for returning-user login.
//
// Fields:
//
//	ID            – primary key identifier.
//	PhoneNumber   – normalized msisdn (+254...); unique, may be empty for
//	                web-only accounts.
//	Name          – full name, when known.
//	County        – home county used to suggest nearby stations and events.
//	AccountType   – INDIVIDUAL or INSTITUTION; selects the booking quota.
//	PinHash       – bcrypt hash of the 4-digit USSD PIN (nullable).
//	CooldownUntil – while set and in the future, new bookings are refused.
//	                Imposed by the expiry reconciler when a booking lapses.
//	CreatedAt     – timestamp of creation.
//	UpdatedAt     – timestamp of last update.
type User struct {
	ID            uint64      // users.id
	PhoneNumber   string      // users.phone_number
	Name          string      // users.name
	County        string      // users.county
	AccountType   AccountType // users.account_type
	PinHash       *string     // users.pin_hash (nullable)
	CooldownUntil *time.Time  // users.cooldown_until (nullable)
	CreatedAt     time.Time   // users.created_at
	UpdatedAt     time.Time   // users.updated_at
}

// OnCooldown reports whether the user's booking cooldown is still active
// at the given instant.
func (u *User) OnCooldown(now time.Time) bool {
	return u.CooldownUntil != nil && u.CooldownUntil.After(now)
}

// HasPin reports whether the user has completed PIN setup and can use the
// returning-user login flow.
func (u *User) HasPin() bool {
	return u.PinHash != nil && *u.PinHash != ""
}
