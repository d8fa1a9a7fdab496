// Package users owns the application user rows kept in sync with the
// identity provider.
package users

import "time"

// User is one application user row, keyed by the provider's external id.
type User struct {
	UserID    string    `db:"user_id"`
	ClerkID   string    `db:"clerk_id"`
	Email     string    `db:"email"`
	Name      string    `db:"name"`
	UserRole  string    `db:"user_role"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}
