package utils // package utils provides PIN hashing helpers for the USSD channel

import "golang.org/x/crypto/bcrypt"

// HashPin hashes a 4-digit USSD PIN with bcrypt.  The default cost is
// sufficient here; PINs are rate-limited at the gateway and locked out
// after repeated failures.
func HashPin(pin string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// CheckPin reports whether the plain PIN matches the stored bcrypt hash.
func CheckPin(pin, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pin)) == nil
}
