// Package models contains the persistent row types used by the server
// repositories.
package models

import "time"

// User is an account row. PasswordHash is nil for federated accounts that
// never set a password. A user can sign in with credentials only while
// PasswordHash is present and IsActive is true.
type User struct {
	ID            string
	Name          string
	Email         string
	PasswordHash  *string
	IsActive      bool
	EmailVerified *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
