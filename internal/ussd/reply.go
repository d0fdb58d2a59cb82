// Package ussd implements the stateless text-channel front end: the flow
// dispatcher, the per-flow step handlers and the wire helpers.  The
// gateway holds no connection; every turn arrives with a session
// identifier and the full accumulated input, and the dispatcher
// reconstructs the conversation's position from the persisted session
// plus the fragment list alone.
package ussd

import "strings"

// ReplyKind tags a response as either expecting more input on the same
// session or closing the conversation.
type ReplyKind int

const (
	// KindContinue keeps the session open; the gateway prompts for more
	// input ("CON" framing on the wire).
	KindContinue ReplyKind = iota
	// KindEnd closes the conversation ("END" framing on the wire).
	KindEnd
)

// Reply is a single USSD response.  Invalid marks the turn as an invalid
// input for the dispatcher's lockout counter; the flag lives on the reply
// so flow handlers stay pure and never touch the session themselves.
type Reply struct {
	Kind    ReplyKind
	Text    string
	Invalid bool
}

// Continue builds a reply that keeps the session open.
func Continue(text string) Reply { return Reply{Kind: KindContinue, Text: text} }

// End builds a terminal reply.
func End(text string) Reply { return Reply{Kind: KindEnd, Text: text} }

// InvalidInput builds a continue reply flagged for the lockout counter,
// prefixed the way the gateway messages expect.
func InvalidInput(prompt string) Reply {
	return Reply{Kind: KindContinue, Text: invalidInputPrefix + "\n" + prompt, Invalid: true}
}

// Render frames the reply for the gateway wire format.
func (r Reply) Render() string {
	if r.Kind == KindEnd {
		return "END " + r.Text
	}
	return "CON " + r.Text
}

// ParseSegments splits the accumulated input text into its ordered
// fragments.  The gateway resends the whole history joined by '*', not
// deltas; an empty text means a fresh turn and yields no fragments.
func ParseSegments(text string) []string {
	if text == "" {
		return nil
	}
	parts := strings.Split(text, "*")
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return parts
}

// ParseIndex parses a 1-based menu choice, returning -1 for anything
// that is not a number.
func ParseIndex(s string) int {
	n := 0
	if s == "" {
		return -1
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return -1
		}
		n = n*10 + int(c-'0')
	}
	return n
}

// NormalizeMsisdn canonicalizes a Kenyan phone number to +254 form so
// that the same handset always resolves to the same user row regardless
// of how the gateway formats the number.
func NormalizeMsisdn(phone string) string {
	var digits strings.Builder
	for _, c := range phone {
		if c >= '0' && c <= '9' {
			digits.WriteRune(c)
		}
	}
	d := digits.String()
	switch {
	case strings.HasPrefix(d, "254"):
		return "+" + d
	case strings.HasPrefix(d, "0"):
		return "+254" + d[1:]
	case strings.HasPrefix(d, "7") || strings.HasPrefix(d, "1"):
		return "+254" + d
	default:
		return "+" + d
	}
}
