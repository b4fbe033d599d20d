// Package tokens issues the opaque random tokens that are mailed to users
// for e-mail verification and password reset. Pure functions over entropy
// and the clock; persistence belongs to the caller.
package tokens

import (
	"crypto/rand"
	"encoding/hex"
	"time"
)

// DefaultByteLength is the entropy used for verification and reset tokens.
const DefaultByteLength = 32

// Issue generates a cryptographically random hexadecimal token string.
// The size parameter specifies the number of random bytes to generate
// before hex encoding, so the final string length is twice the size.
func Issue(size int) (string, error) {
	b := make([]byte, size)
	_, err := rand.Read(b)
	if err != nil {
		return "", err
	}

	return hex.EncodeToString(b), nil
}

// ExpiryFrom computes an absolute expiry timestamp for a token issued at
// now with the given lifetime.
func ExpiryFrom(now time.Time, validity time.Duration) time.Time {
	return now.Add(validity)
}
