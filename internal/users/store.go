package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// ErrUserNotFound is returned when no row matches the given clerk_id
var ErrUserNotFound = errors.New("user not found")

// Store handles database operations on the users table
type Store struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// NewStore creates a new Store instance
func NewStore(db *sqlx.DB, logger *slog.Logger) *Store {
	return &Store{
		db:     db,
		logger: logger,
	}
}

// GetByClerkID retrieves a user row by external id.
func (s *Store) GetByClerkID(ctx context.Context, clerkID string) (*User, error) {
	query := s.db.Rebind(`
		SELECT user_id, clerk_id, email, name, user_role, created_at, updated_at
		FROM users
		WHERE clerk_id = ?
	`)

	var user User
	if err := s.db.GetContext(ctx, &user, query, clerkID); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return &user, nil
}

// Create inserts a new user row.
func (s *Store) Create(ctx context.Context, clerkID, email, name, role string) (*User, error) {
	now := time.Now().UTC()
	user := &User{
		UserID:    uuid.New().String(),
		ClerkID:   clerkID,
		Email:     email,
		Name:      name,
		UserRole:  role,
		CreatedAt: now,
		UpdatedAt: now,
	}

	query := s.db.Rebind(`
		INSERT INTO users (user_id, clerk_id, email, name, user_role, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)

	_, err := s.db.ExecContext(ctx, query,
		user.UserID,
		user.ClerkID,
		user.Email,
		user.Name,
		user.UserRole,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Info("User created",
		slog.String("clerk_id", clerkID),
		slog.String("user_role", role),
	)

	return user, nil
}

// Update overwrites the synced fields of the row matching clerkID. Returns
// the number of rows touched; zero means there was nothing to update.
func (s *Store) Update(ctx context.Context, clerkID, email, name, role string) (int64, error) {
	query := s.db.Rebind(`
		UPDATE users
		SET email = ?, name = ?, user_role = ?, updated_at = ?
		WHERE clerk_id = ?
	`)

	res, err := s.db.ExecContext(ctx, query, email, name, role, time.Now().UTC(), clerkID)
	if err != nil {
		return 0, fmt.Errorf("failed to update user: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return affected, nil
}

// Delete removes the row matching clerkID. Deleting a missing user is a
// no-op, reported through the returned row count.
func (s *Store) Delete(ctx context.Context, clerkID string) (int64, error) {
	query := s.db.Rebind(`DELETE FROM users WHERE clerk_id = ?`)

	res, err := s.db.ExecContext(ctx, query, clerkID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete user: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	if affected > 0 {
		s.logger.Info("User deleted",
			slog.String("clerk_id", clerkID),
		)
	}

	return affected, nil
}
