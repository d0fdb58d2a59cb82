package ussd

import (
	"context"
	"log"
	"strings"

	"github.com/seedlink/platform/internal/model"
	"github.com/seedlink/platform/internal/repository"
)

// Dispatcher is the top of the text channel.  Each turn it loads the
// session, replays the full fragment history through the PIN gate and
// the menu, persists the outcome in one save and hands the reply back to
// the transport.  Routing is derived from the fragments alone; the
// session row carries the identity, the lockout counter and the idle
// clock, never the position.
type Dispatcher struct {
	Sessions SessionStore
	Users    UserStore

	Login        *LoginFlow
	Registration Handler
	Booking      Handler
	Events       Handler

	MaxInvalidAttempts int // consecutive invalid inputs before lockout
	SessionIdleMinutes int // idle threshold for the lazy session sweep
}

// Handle processes one gateway turn and returns the reply to render.
// The returned reply is always usable; a non-nil error accompanies the
// generic failure reply and is for the caller's log.
func (d *Dispatcher) Handle(ctx context.Context, sessionID, phone, text string) (Reply, error) {
	// Lazy sweep: no background job owns session expiry, each incoming
	// turn retires whatever went idle since the last one.
	if _, err := d.Sessions.SweepExpired(ctx, d.SessionIdleMinutes); err != nil {
		log.Printf("ussd: session sweep failed: %v", err)
	}

	sess, err := d.Sessions.Load(ctx, sessionID, phone)
	if err != nil {
		return End(errorText), err
	}

	segments := ParseSegments(text)
	dec, err := d.route(ctx, sess, segments)
	if err != nil {
		// Terminate the session so a retry starts clean instead of
		// replaying into the same failure.
		sess.IsActive = false
		sess.InvalidAttempts = 0
		if saveErr := d.Sessions.Save(ctx, sess); saveErr != nil {
			log.Printf("ussd: session save after failure: %v", saveErr)
		}
		return End(errorText), err
	}

	if dec.Reply.Invalid {
		sess.InvalidAttempts++
	} else {
		sess.InvalidAttempts = 0
	}
	if sess.InvalidAttempts >= d.MaxInvalidAttempts {
		dec.Reply = End(lockoutText)
		sess.InvalidAttempts = 0
	}

	if dec.UserID != nil {
		sess.UserID = dec.UserID
	}
	sess.LoginStep = dec.LoginStep
	sess.CurrentStep = strings.Join(segments, "*")
	sess.IsActive = dec.Reply.Kind == KindContinue
	if err := d.Sessions.Save(ctx, sess); err != nil {
		return End(errorText), err
	}
	return dec.Reply, nil
}

// route replays the fragments: first through the PIN gate when the
// caller holds a PIN, then through the main menu.  A completed flow that
// continues (registration) hands its leftover fragments back for the
// next menu pick, and an invalid menu pick earlier in the history is
// skipped because its re-prompt already happened on the turn it was
// typed.
func (d *Dispatcher) route(ctx context.Context, sess *model.Session, segments []string) (Decision, error) {
	rest := segments
	var uid *uint64

	user, err := d.Users.GetByPhone(ctx, NormalizeMsisdn(sess.PhoneNumber))
	if err != nil && err != repository.ErrNotFound {
		return Decision{}, err
	}
	if err == nil && user.HasPin() {
		gated, passed, reply := d.Login.Gate(user, rest)
		if !passed {
			sess.CurrentFlow = model.FlowLogin
			return Decision{Reply: reply, UserID: &user.ID, LoginStep: model.LoginStepEnterPin}, nil
		}
		uid = &user.ID
		rest = gated
	}

	for {
		if len(rest) == 0 {
			sess.CurrentFlow = model.FlowWelcome
			return Decision{Reply: Continue(mainMenuText), UserID: uid}, nil
		}
		root, args := rest[0], rest[1:]
		switch ParseIndex(root) {
		case 1:
			dec, err := d.Registration.Advance(ctx, sess, args)
			if err != nil {
				return Decision{}, err
			}
			if dec.Done && len(args) > dec.Consumed {
				if dec.UserID != nil {
					uid = dec.UserID
				}
				rest = args[dec.Consumed:]
				continue
			}
			sess.CurrentFlow = model.FlowRegistration
			return withUser(dec, uid), nil
		case 2:
			dec, err := d.Booking.Advance(ctx, sess, args)
			if err != nil {
				return Decision{}, err
			}
			sess.CurrentFlow = model.FlowBooking
			return withUser(dec, uid), nil
		case 3:
			dec, err := d.Events.Advance(ctx, sess, args)
			if err != nil {
				return Decision{}, err
			}
			sess.CurrentFlow = model.FlowEvents
			return withUser(dec, uid), nil
		case 4:
			sess.CurrentFlow = model.FlowWelcome
			return Decision{Reply: End(goodbyeText), UserID: uid}, nil
		default:
			if len(rest) == 1 {
				sess.CurrentFlow = model.FlowWelcome
				return Decision{Reply: InvalidInput(mainMenuText), UserID: uid}, nil
			}
			// An invalid pick that is not the latest fragment was
			// re-prompted on the turn it arrived; skip it.
			rest = rest[1:]
		}
	}
}

// withUser fills the resolved booker into a decision that did not set
// one itself.
func withUser(dec Decision, uid *uint64) Decision {
	if dec.UserID == nil {
		dec.UserID = uid
	}
	return dec
}
