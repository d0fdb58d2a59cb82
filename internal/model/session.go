package model

import "time"

// Flow identifies which conversational flow a USSD session is in. Flows
// form a closed set; the dispatcher selects a handler by this value
// rather than by comparing strings from the wire.
type Flow string

const (
	FlowWelcome      Flow = "WELCOME"
	FlowLogin        Flow = "LOGIN"
	FlowRegistration Flow = "REGISTRATION"
	FlowBooking      Flow = "BOOKING"
	FlowEvents       Flow = "EVENTS"
)

// Session is the durable record of an in-progress USSD conversation,
// keyed by the channel-supplied session identifier. The channel holds no
// connection, so every request reconstructs its position purely from
// this record plus the full accumulated input text.
//
// The invalid-attempt counter and the login sub-flow marker are typed
// columns rather than an untyped scratch blob so that partial updates
// cannot corrupt them.
//
// Fields:
//
//	SessionID       – opaque channel identifier; primary key.
//	PhoneNumber     – msisdn the request arrived from.
//	UserID          – resolved booker, once known (nullable).
//	CurrentFlow     – flow the session is in.
//	CurrentStep     – last step marker, informational.
//	InvalidAttempts – consecutive invalid inputs; lockout at the max.
//	LoginStep       – sub-flow marker for the PIN prompt ("ENTER_PIN").
//	IsActive        – false once the conversation has terminated.
//	LastInteraction – refreshed on every save; idle sweep keys off this.
type Session struct {
	SessionID       string    // ussd_sessions.session_id
	PhoneNumber     string    // ussd_sessions.phone_number
	UserID          *uint64   // ussd_sessions.user_id (nullable)
	CurrentFlow     Flow      // ussd_sessions.current_flow
	CurrentStep     string    // ussd_sessions.current_step
	InvalidAttempts int       // ussd_sessions.invalid_attempts
	LoginStep       string    // ussd_sessions.login_step ("" when not in PIN entry)
	IsActive        bool      // ussd_sessions.is_active
	LastInteraction time.Time // ussd_sessions.last_interaction
}

// LoginStepEnterPin marks a session that is waiting for the 4-digit PIN.
const LoginStepEnterPin = "ENTER_PIN"
