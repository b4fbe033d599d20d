package models

import "time"

// Token type discriminator for verification_tokens rows.
const (
	TokenTypeEmailVerification = "email_verification"
	TokenTypePasswordReset     = "password_reset"
)

// VerificationToken is a single-use token mailed to a user. Identifier is
// the e-mail address the token is bound to (a denormalized copy, not a
// foreign key). The token string itself is the primary lookup key and is
// unique regardless of type.
type VerificationToken struct {
	Identifier string
	Token      string
	Type       string
	Expires    time.Time
	CreatedAt  time.Time
}

// IsExpired reports whether the token is past its expiry at the given time.
func (t *VerificationToken) IsExpired(now time.Time) bool {
	return t.Expires.Before(now)
}
