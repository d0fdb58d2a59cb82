package ussd

import (
	"regexp"

	"github.com/seedlink/platform/internal/model"
	"github.com/seedlink/platform/internal/utils"
)

var pinPattern = regexp.MustCompile(`^[0-9]{4}$`)

// LoginFlow gates a returning PIN-holder's session.  The gateway resends
// the full input history every turn, so the PIN fragments stay in front
// of the menu input for the whole conversation; Gate rescans the history
// each turn, finds the fragment that matched the PIN, and hands back
// whatever follows it for menu routing.
type LoginFlow struct{}

// Gate scans fragments for the user's PIN.  When a fragment matches it
// returns the remaining fragments with passed true.  Otherwise it
// returns the reply to send: the welcome prompt on a fresh turn, or an
// invalid-input re-prompt that feeds the lockout counter.  Format errors
// and mismatches count the same, so a guessing handset runs into the
// lockout.
func (f *LoginFlow) Gate(user *model.User, fragments []string) (rest []string, passed bool, reply Reply) {
	for i, frag := range fragments {
		if pinPattern.MatchString(frag) && utils.CheckPin(frag, *user.PinHash) {
			return fragments[i+1:], true, Reply{}
		}
	}
	if len(fragments) == 0 {
		return nil, false, Continue(welcomeBack)
	}
	return nil, false, InvalidInput(pinPrompt)
}
