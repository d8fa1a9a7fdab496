// Package identity abstracts the externally-facing identity record store.
// The user-sync handlers write application rows first and then mirror name
// and role changes here; a failure on this side is logged by the caller and
// never fails the job.
package identity

import "context"

// Attributes are the fields the sync pipeline mirrors to the identity store.
type Attributes struct {
	FirstName string
	LastName  string
	Role      string
}

// Store locates identity records by email address. A lookup that matches
// nothing is a successful no-op for both operations.
type Store interface {
	UpdateByEmail(ctx context.Context, email string, attrs Attributes) error
	DeleteByEmail(ctx context.Context, email string) error
}
