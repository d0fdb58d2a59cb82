package ussd

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/seedlink/platform/internal/booking"
	"github.com/seedlink/platform/internal/model"
)

// BookingFlow walks a caller through booking seedlings: county, station,
// quantity, pickup date, confirmation, then the reservation engine.
//
// The gateway resends the whole input history each turn, so Advance
// replays the fragments chronologically through a small state machine:
// each fragment is fed to the step that was active when the user typed
// it, an invalid fragment leaves the machine on the same step (that is
// what the re-prompt meant), and the prompt for wherever the replay
// lands is the reply.  No flow-local counter from the client is trusted.
//
// Engine rejections map to channel behavior as follows: insufficient
// stock re-prompts for a smaller quantity against the same station, an
// out-of-window date re-prompts for the date, while quota and cooldown
// rejections terminate the session.
type BookingFlow struct {
	Users    UserStore
	Stations StationLister
	Engine   Reserver

	MaxQuantity   int           // largest quantity offered on this channel
	PickupMinLead time.Duration // echoed from the engine's policy for early validation
	PickupHorizon time.Duration
}

type bookingStep int

const (
	stepCounty bookingStep = iota
	stepStation
	stepQuantity
	stepDate
	stepConfirm
	stepRetryQuantity // after an insufficient-stock rejection
)

const datePrompt = "Enter pickup date (DD/MM/YYYY):"

// Advance replays the fragments and answers with the prompt for the
// resulting step, or executes the reservation when the replay reaches a
// confirmed request.
func (f *BookingFlow) Advance(ctx context.Context, sess *model.Session, fragments []string) (Decision, error) {
	cur := stepCounty
	var stations []model.StationWithInventory
	var station model.StationWithInventory
	quantity := 0
	var pickup time.Time
	var pending *Reply // prompt produced by the most recent fragment, overrides the step default
	now := time.Now().UTC()

	for _, frag := range fragments {
		pending = nil
		switch cur {
		case stepCounty:
			county := strings.TrimSpace(frag)
			if county == "" {
				continue
			}
			var err error
			stations, err = f.Stations.ListByCountyWithInventory(ctx, county)
			if err != nil {
				return Decision{}, err
			}
			if len(stations) == 0 {
				return Decision{Reply: End("No stations available in your county.")}, nil
			}
			cur = stepStation

		case stepStation:
			idx := ParseIndex(frag)
			if idx < 1 || idx > len(stations) {
				r := InvalidInput("Select a station:\n" + stationLines(stations))
				pending = &r
				continue
			}
			station = stations[idx-1]
			cur = stepQuantity

		case stepQuantity, stepRetryQuantity:
			q := ParseIndex(frag)
			if q < 1 || q > f.MaxQuantity {
				r := InvalidInput(f.quantityPrompt())
				pending = &r
				continue
			}
			if station.TotalAvailable() < q {
				r := Continue(fmt.Sprintf("Only %d seedlings left at %s.\n%s", station.TotalAvailable(), station.Name, f.quantityPrompt()))
				pending = &r
				continue
			}
			quantity = q
			if cur == stepQuantity {
				cur = stepDate
			}

		case stepDate:
			t, ok := parsePickupDate(frag)
			if !ok {
				r := InvalidInput(datePrompt)
				pending = &r
				continue
			}
			if t.Before(now.Add(f.PickupMinLead)) {
				r := Continue("Pickup date must be at least 48 hours from now.\n" + datePrompt)
				pending = &r
				continue
			}
			if t.After(now.Add(f.PickupHorizon)) {
				r := Continue("Pickup date must be within 14 days.\n" + datePrompt)
				pending = &r
				continue
			}
			pickup = t
			cur = stepConfirm

		case stepConfirm:
			if frag != "1" {
				return Decision{Reply: End("Booking cancelled.")}, nil
			}
			cur = stepRetryQuantity
		}
	}

	if pending != nil {
		return Decision{Reply: *pending}, nil
	}

	switch cur {
	case stepCounty:
		return Decision{Reply: Continue("Enter your county:")}, nil
	case stepStation:
		return Decision{Reply: Continue("Select a station:\n" + stationLines(stations))}, nil
	case stepQuantity:
		return Decision{Reply: Continue(f.quantityPrompt())}, nil
	case stepDate:
		return Decision{Reply: Continue(datePrompt)}, nil
	case stepConfirm:
		text := fmt.Sprintf("Confirm booking?\n1. Yes\n2. No\n\nSeedlings: %d\nStation: %s\nPickup: %s",
			quantity, station.Name, pickup.Format("02/01/2006"))
		return Decision{Reply: Continue(text)}, nil
	}

	// Replay reached a confirmed request: execute exactly one
	// reservation attempt for this turn.
	user, err := f.Users.GetOrCreateByPhone(ctx, NormalizeMsisdn(sess.PhoneNumber), station.County, "")
	if err != nil {
		return Decision{}, err
	}
	booked, err := f.Engine.Reserve(ctx, booking.Request{
		UserID:       user.ID,
		StationID:    station.ID,
		SeedlingType: UssdSeedlingType,
		Quantity:     quantity,
		PickupAt:     pickup,
		StationName:  station.Name,
	})
	switch {
	case err == nil:
		text := fmt.Sprintf("Booking confirmed!\nSeedlings: %d\nStation: %s\nPickup: %s",
			booked.Quantity, station.Name, pickup.Format("02/01/2006"))
		return Decision{Reply: End(text), UserID: &user.ID}, nil
	case errors.Is(err, booking.ErrInsufficientStock):
		text := fmt.Sprintf("Not enough stock at %s.\nEnter a smaller quantity (1-%d):", station.Name, f.MaxQuantity)
		return Decision{Reply: Continue(text), UserID: &user.ID}, nil
	case errors.Is(err, booking.ErrQuotaExceeded):
		return Decision{Reply: End("You have reached your booking limit. Collect your current bookings first."), UserID: &user.ID}, nil
	case errors.Is(err, booking.ErrOnCooldown):
		return Decision{Reply: End("You are on a booking cooldown after an uncollected booking. Please try again later."), UserID: &user.ID}, nil
	case errors.Is(err, booking.ErrInvalidPickupWindow):
		return Decision{Reply: Continue("Pickup date must be 2-14 days from now.\n" + datePrompt), UserID: &user.ID}, nil
	default:
		return Decision{}, err
	}
}

func (f *BookingFlow) quantityPrompt() string {
	return fmt.Sprintf("Enter number of seedlings (1-%d):", f.MaxQuantity)
}

func stationLines(stations []model.StationWithInventory) string {
	lines := make([]string, 0, len(stations))
	for i, s := range stations {
		lines = append(lines, fmt.Sprintf("%d. %s (%d seedlings)", i+1, s.Name, s.TotalAvailable()))
	}
	return strings.Join(lines, "\n")
}

// parsePickupDate parses the DD/MM/YYYY format used on the channel.  The
// resulting time is midnight UTC of the chosen day.
func parsePickupDate(s string) (time.Time, bool) {
	t, err := time.Parse("02/01/2006", strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, false
	}
	return t.UTC(), true
}
