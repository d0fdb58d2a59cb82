package ussd

import (
	"context"
	"fmt"
	"strings"

	"github.com/seedlink/platform/internal/model"
)

// RegistrationFlow collects full name and county, then creates or
// updates the caller's account keyed by phone number.  On completion the
// conversation continues into the main menu rather than ending, so a new
// user can book in the same session; the decision reports the consumed
// fragment count so the dispatcher can chain the leftovers.
type RegistrationFlow struct {
	Users UserStore
}

// Advance replays the fragments into the two prompts.  Empty fragments
// are the turns a blank answer was re-prompted; they stay on the same
// prompt.
func (f *RegistrationFlow) Advance(ctx context.Context, sess *model.Session, fragments []string) (Decision, error) {
	var name, county string
	consumed := 0
	for i, frag := range fragments {
		v := strings.TrimSpace(frag)
		if v == "" {
			continue
		}
		if name == "" {
			name = v
			continue
		}
		county = v
		consumed = i + 1
		break
	}

	if name == "" {
		return Decision{Reply: Continue("Please enter your full name:")}, nil
	}
	if county == "" {
		return Decision{Reply: Continue("Enter your county (e.g. Nairobi, Kiambu):")}, nil
	}

	user, err := f.Users.GetOrCreateByPhone(ctx, NormalizeMsisdn(sess.PhoneNumber), county, name)
	if err != nil {
		return Decision{}, err
	}
	text := fmt.Sprintf("Registration complete.\nName: %s\nCounty: %s\n\n%s", user.Name, user.County, mainMenuText)
	return Decision{
		Reply:    Continue(text),
		UserID:   &user.ID,
		Done:     true,
		Consumed: consumed,
	}, nil
}
