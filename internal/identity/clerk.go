package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/clerk/clerk-sdk-go/v2"
	"github.com/clerk/clerk-sdk-go/v2/user"
)

// Clerk implements Store against the provider's backend API.
type Clerk struct {
	logger *slog.Logger
}

// NewClerk configures the SDK with the backend secret key and returns a
// Clerk-backed store.
func NewClerk(secretKey string, logger *slog.Logger) *Clerk {
	clerk.SetKey(secretKey)
	return &Clerk{logger: logger}
}

// UpdateByEmail locates the identity record by email and pushes name and
// role metadata. No match is a no-op.
func (c *Clerk) UpdateByEmail(ctx context.Context, email string, attrs Attributes) error {
	id, err := c.lookup(ctx, email)
	if err != nil {
		return err
	}
	if id == "" {
		c.logger.Debug("No identity record for email, skipping update",
			slog.String("email", email),
		)
		return nil
	}

	metadata, err := json.Marshal(map[string]string{"role": attrs.Role})
	if err != nil {
		return fmt.Errorf("failed to marshal role metadata: %w", err)
	}
	rawMetadata := json.RawMessage(metadata)

	_, err = user.Update(ctx, id, &user.UpdateParams{
		FirstName:      &attrs.FirstName,
		LastName:       &attrs.LastName,
		PublicMetadata: &rawMetadata,
	})
	if err != nil {
		return fmt.Errorf("failed to update identity record: %w", err)
	}

	return nil
}

// DeleteByEmail removes the identity record matching email, if any.
func (c *Clerk) DeleteByEmail(ctx context.Context, email string) error {
	id, err := c.lookup(ctx, email)
	if err != nil {
		return err
	}
	if id == "" {
		return nil
	}

	if _, err := user.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete identity record: %w", err)
	}

	return nil
}

// lookup resolves an email address to an identity record id, "" when absent.
func (c *Clerk) lookup(ctx context.Context, email string) (string, error) {
	list, err := user.List(ctx, &user.ListParams{
		EmailAddresses: []string{email},
	})
	if err != nil {
		return "", fmt.Errorf("failed to look up identity record: %w", err)
	}
	if len(list.Users) == 0 {
		return "", nil
	}
	return list.Users[0].ID, nil
}
