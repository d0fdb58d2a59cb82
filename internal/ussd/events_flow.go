package ussd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/seedlink/platform/internal/model"
)

// EventsFlow lets a caller browse upcoming community planting events in
// a county and join one.  Same replay discipline as the booking flow:
// each fragment feeds the step that prompted it, invalid picks stay on
// the event list.
type EventsFlow struct {
	Users  UserStore
	Events EventStore
}

// Advance replays the county and event-pick fragments.
func (f *EventsFlow) Advance(ctx context.Context, sess *model.Session, fragments []string) (Decision, error) {
	var county string
	var events []model.Event
	invalidPick := false

	for _, frag := range fragments {
		invalidPick = false
		if county == "" {
			c := strings.TrimSpace(frag)
			if c == "" {
				continue
			}
			county = c
			var err error
			events, err = f.Events.UpcomingByCounty(ctx, county, time.Now().UTC())
			if err != nil {
				return Decision{}, err
			}
			if len(events) == 0 {
				return Decision{Reply: End("No upcoming events in your county. Check back soon!")}, nil
			}
			continue
		}

		idx := ParseIndex(frag)
		if idx < 1 || idx > len(events) {
			invalidPick = true
			continue
		}
		ev := events[idx-1]
		user, err := f.Users.GetOrCreateByPhone(ctx, NormalizeMsisdn(sess.PhoneNumber), county, "")
		if err != nil {
			return Decision{}, err
		}
		if err := f.Events.Register(ctx, ev.ID, user.ID); err != nil {
			return Decision{}, err
		}
		text := fmt.Sprintf("You have joined: %s\nDate: %s\nCounty: %s\nSee you there!",
			ev.Title, ev.StartsAt.Format("02/01/2006"), ev.County)
		return Decision{Reply: End(text), UserID: &user.ID}, nil
	}

	if county == "" {
		return Decision{Reply: Continue("Enter your county to see events:")}, nil
	}
	prompt := "Select an event to join:\n" + eventLines(events)
	if invalidPick {
		return Decision{Reply: InvalidInput(prompt)}, nil
	}
	return Decision{Reply: Continue(prompt)}, nil
}

func eventLines(events []model.Event) string {
	lines := make([]string, 0, len(events))
	for i, ev := range events {
		lines = append(lines, fmt.Sprintf("%d. %s (%s)", i+1, ev.Title, ev.StartsAt.Format("02/01")))
	}
	return strings.Join(lines, "\n")
}
