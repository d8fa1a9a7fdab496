package clerkevent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEvent(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr bool
	}{
		{
			name: "valid created event",
			body: `{"type":"user.created","data":{"id":"user_abc"}}`,
		},
		{
			name:    "not json",
			body:    `{{`,
			wantErr: true,
		},
		{
			name:    "missing type",
			body:    `{"data":{"id":"user_abc"}}`,
			wantErr: true,
		},
		{
			name: "empty data accepted",
			body: `{"type":"user.created","data":{}}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev, err := ParseEvent([]byte(tt.body))
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
				require.NotNil(t, ev)
			}
		})
	}
}

func TestJobTypeForEvent(t *testing.T) {
	tests := []struct {
		eventType string
		want      string
		wantErr   bool
	}{
		{eventType: "user.created", want: JobTypeUserCreated},
		{eventType: "user.updated", want: JobTypeUserUpdated},
		{eventType: "user.deleted", want: JobTypeUserDeleted},
		{eventType: "session.created", wantErr: true},
		{eventType: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.eventType, func(t *testing.T) {
			got, err := JobTypeForEvent(tt.eventType)
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		ev   Event
		want Payload
	}{
		{
			name: "full event",
			ev: Event{
				Type: EventUserCreated,
				Data: EventData{
					ID:                    "user_abc",
					FirstName:             "A",
					LastName:              "B",
					PrimaryEmailAddressID: "em_2",
					EmailAddresses: []EmailAddress{
						{ID: "em_1", EmailAddress: "old@example.com"},
						{ID: "em_2", EmailAddress: "a@example.com"},
					},
					PublicMetadata: map[string]any{"role": "administrator"},
				},
			},
			want: Payload{
				ClerkID:  "user_abc",
				Email:    "a@example.com",
				Name:     "A B",
				UserRole: RoleAdmin,
			},
		},
		{
			name: "no names yields empty name",
			ev: Event{
				Type: EventUserCreated,
				Data: EventData{
					ID: "user_abc",
				},
			},
			want: Payload{
				ClerkID:  "user_abc",
				Name:     "",
				UserRole: RoleUser,
			},
		},
		{
			name: "only first name",
			ev: Event{
				Type: EventUserUpdated,
				Data: EventData{
					ID:        "user_abc",
					FirstName: "A",
				},
			},
			want: Payload{
				ClerkID:  "user_abc",
				Name:     "A",
				UserRole: RoleUser,
			},
		},
		{
			name: "primary id unresolved falls back to first address",
			ev: Event{
				Type: EventUserCreated,
				Data: EventData{
					ID:                    "user_abc",
					PrimaryEmailAddressID: "em_gone",
					EmailAddresses: []EmailAddress{
						{ID: "em_1", EmailAddress: "first@example.com"},
					},
				},
			},
			want: Payload{
				ClerkID:  "user_abc",
				Email:    "first@example.com",
				Name:     "",
				UserRole: RoleUser,
			},
		},
		{
			name: "no email addresses",
			ev: Event{
				Type: EventUserDeleted,
				Data: EventData{ID: "user_abc"},
			},
			want: Payload{
				ClerkID:  "user_abc",
				UserRole: RoleUser,
			},
		},
		{
			name: "empty data produces empty payload, no panic",
			ev:   Event{Type: EventUserCreated},
			want: Payload{UserRole: RoleUser},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(&tt.ev))
		})
	}
}
