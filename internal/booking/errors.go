// Package booking implements the reservation engine and the expiry
// reconciler: the two writers of the seedling inventory ledger.
package booking

import (
	"errors"

	"github.com/seedlink/platform/internal/repository"
)

// Typed rejection reasons returned by Engine.Reserve.  Each precondition
// short-circuits with its own sentinel so callers (the booking API and
// the USSD dispatcher) can choose a precise response: re-prompt for
// recoverable rejections, terminate for quota and cooldown.  They are
// never wrapped in generic errors.
var (
	// ErrInvalidPickupWindow rejects pickups earlier than the minimum
	// lead time or beyond the maximum horizon.
	ErrInvalidPickupWindow = errors.New("pickup date outside allowed window")

	// ErrOnCooldown rejects bookers whose cooldown penalty is still
	// running after an earlier booking expired unclaimed.
	ErrOnCooldown = errors.New("booker is on cooldown")

	// ErrQuotaExceeded rejects requests that would push the booker's
	// outstanding quantity over their account-type quota.
	ErrQuotaExceeded = errors.New("booking quota exceeded")

	// ErrInsufficientStock mirrors the ledger's rejection: the station
	// does not hold enough of the seedling type.  Aliased so callers can
	// match on the booking package alone.
	ErrInsufficientStock = repository.ErrInsufficientStock
)

// IsRejection reports whether err is one of the engine's typed rejection
// reasons, as opposed to an infrastructure failure.
func IsRejection(err error) bool {
	return errors.Is(err, ErrInvalidPickupWindow) ||
		errors.Is(err, ErrOnCooldown) ||
		errors.Is(err, ErrQuotaExceeded) ||
		errors.Is(err, ErrInsufficientStock)
}
