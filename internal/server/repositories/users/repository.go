// Package users declares the server-side repository contract for account
// rows in persistent storage.
package users

import (
	"context"
	"time"

	"github.com/dmitrijs2005/authkeeper/internal/server/models"
)

// Repository defines operations over account rows. Users are created and
// updated but never deleted by the account flows.
type Repository interface {
	// Create stores a new user row. The caller provides the id.
	Create(ctx context.Context, user *models.User) (*models.User, error)

	// GetByEmail looks up a user by its e-mail address, compared exactly
	// as stored. Implementations return a not-found error when absent.
	GetByEmail(ctx context.Context, email string) (*models.User, error)

	// GetByID looks up a user by id.
	GetByID(ctx context.Context, id string) (*models.User, error)

	// Activate flips is_active to true and stamps email_verified for the
	// user with the given e-mail. Rows that are already active are left
	// untouched so the stamp happens exactly once.
	Activate(ctx context.Context, email string, verifiedAt time.Time) error

	// UpdatePasswordHash replaces the stored password hash for the user
	// with the given e-mail.
	UpdatePasswordHash(ctx context.Context, email string, passwordHash string) error
}
