// Package clerkevent normalizes identity-provider webhook events into the
// canonical payload carried by user-sync jobs.
package clerkevent

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Event types delivered by the identity provider.
const (
	EventUserCreated = "user.created"
	EventUserUpdated = "user.updated"
	EventUserDeleted = "user.deleted"
)

// Job types derived from event types.
const (
	JobTypeUserCreated = "USER_CREATED"
	JobTypeUserUpdated = "USER_UPDATED"
	JobTypeUserDeleted = "USER_DELETED"
)

// Event is the decoded webhook body.
type Event struct {
	Type string    `json:"type"`
	Data EventData `json:"data"`
}

// EventData is the provider's user object as carried in webhook events.
// Fields the sync pipeline does not consume are omitted.
type EventData struct {
	ID                    string         `json:"id"`
	FirstName             string         `json:"first_name"`
	LastName              string         `json:"last_name"`
	PrimaryEmailAddressID string         `json:"primary_email_address_id"`
	EmailAddresses        []EmailAddress `json:"email_addresses"`
	PublicMetadata        map[string]any `json:"public_metadata"`
	PrivateMetadata       map[string]any `json:"private_metadata"`
	UnsafeMetadata        map[string]any `json:"unsafe_metadata"`
}

// EmailAddress is one entry of the event's email address list.
type EmailAddress struct {
	ID           string `json:"id"`
	EmailAddress string `json:"email_address"`
}

// Payload is the canonical job payload for user-sync jobs.
type Payload struct {
	ClerkID  string `json:"clerk_id"`
	Email    string `json:"email,omitempty"`
	Name     string `json:"name"`
	UserRole Role   `json:"user_role"`
}

// ParseEvent decodes a raw webhook body.
func ParseEvent(body []byte) (*Event, error) {
	var ev Event
	if err := json.Unmarshal(body, &ev); err != nil {
		return nil, fmt.Errorf("failed to decode event: %w", err)
	}
	if ev.Type == "" {
		return nil, fmt.Errorf("event has no type")
	}
	return &ev, nil
}

// JobTypeForEvent maps a provider event type to a job type. Unknown event
// types are rejected at the receiver rather than enqueued.
func JobTypeForEvent(eventType string) (string, error) {
	switch eventType {
	case EventUserCreated:
		return JobTypeUserCreated, nil
	case EventUserUpdated:
		return JobTypeUserUpdated, nil
	case EventUserDeleted:
		return JobTypeUserDeleted, nil
	default:
		return "", fmt.Errorf("unknown event type %q", eventType)
	}
}

// Normalize maps event data into the canonical job payload. It is a pure
// transformation and accepts malformed data: a missing id or email yields an
// empty field, which the job handlers reject explicitly.
func Normalize(ev *Event) Payload {
	return Payload{
		ClerkID:  ev.Data.ID,
		Email:    primaryEmail(&ev.Data),
		Name:     strings.TrimSpace(ev.Data.FirstName + " " + ev.Data.LastName),
		UserRole: RoleFromMetadata(ev.Data.PublicMetadata, ev.Data.PrivateMetadata, ev.Data.UnsafeMetadata),
	}
}

// primaryEmail returns the address matching the primary id, falling back to
// the first listed address when the primary id does not resolve.
func primaryEmail(data *EventData) string {
	for _, addr := range data.EmailAddresses {
		if addr.ID == data.PrimaryEmailAddressID {
			return addr.EmailAddress
		}
	}
	if len(data.EmailAddresses) > 0 {
		return data.EmailAddresses[0].EmailAddress
	}
	return ""
}
