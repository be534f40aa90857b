package domain

import "time"

// Intent tags what a pending signup record is for.
type Intent string

const (
	IntentNewTenant     Intent = "new_tenant"
	IntentNewOwner      Intent = "new_owner"
	IntentPasswordReset Intent = "password_reset"
)

// PendingSignup is a not-yet-activated registration (or an in-flight
// password reset). At most one record exists per email; the record lives
// until it is verified, expired or discarded.
//
// PasswordHash is always a bcrypt hash. Plaintext passwords never reach
// the store; hashing happens exactly once when the record is created.
type PendingSignup struct {
	ID           string
	Email        string
	Name         string
	Phone        string
	PasswordHash string
	Code         string
	Intent       Intent
	ExpiresAt    time.Time
	UpdatedAt    time.Time
	CreatedAt    time.Time
}
