// Package mail delivers the transactional e-mails of the account flows:
// verification links and password reset links. Delivery is awaited by the
// caller so a token is never referenced by a message before it exists
// durably in the store.
package mail

import "context"

// Mailer sends templated account e-mails. Implementations fire network I/O;
// errors are returned to the caller, which decides how much to reveal.
type Mailer interface {
	SendVerificationEmail(ctx context.Context, email string, token string) error
	SendPasswordResetEmail(ctx context.Context, email string, token string) error
}
