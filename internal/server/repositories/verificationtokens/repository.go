// Package verificationtokens declares the server-side repository contract
// for the single-use e-mail tokens (verification and password reset).
package verificationtokens

import (
	"context"
	"time"

	"github.com/dmitrijs2005/authkeeper/internal/server/models"
)

// Repository defines operations over verification_tokens rows. Tokens are
// inserted and deleted, never updated in place.
type Repository interface {
	// Create stores a new token row.
	Create(ctx context.Context, token *models.VerificationToken) error

	// GetByToken looks up a token by its opaque string, narrowed by type.
	// Implementations return a not-found error when the token is absent.
	GetByToken(ctx context.Context, token string, tokenType string) (*models.VerificationToken, error)

	// Delete removes a token by its token string. Deleting a non-existent
	// token is not an error.
	Delete(ctx context.Context, token string) error

	// DeleteByIdentifier removes all tokens of the given type bound to an
	// identifier (e-mail address).
	DeleteByIdentifier(ctx context.Context, identifier string, tokenType string) error

	// FindNewestLive returns the most recently created token of the given
	// type for the identifier that is not yet expired at now, or a
	// not-found error.
	FindNewestLive(ctx context.Context, identifier string, tokenType string, now time.Time) (*models.VerificationToken, error)
}
