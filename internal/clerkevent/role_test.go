package clerkevent

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMapRole(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want Role
	}{
		{name: "admin", raw: "admin", want: RoleAdmin},
		{name: "administrator", raw: "administrator", want: RoleAdmin},
		{name: "admin uppercase", raw: "ADMIN", want: RoleAdmin},
		{name: "administrator mixed case", raw: "Administrator", want: RoleAdmin},
		{name: "caregiver", raw: "caregiver", want: RoleCaregiver},
		{name: "care_giver", raw: "care_giver", want: RoleCaregiver},
		{name: "care-giver", raw: "care-giver", want: RoleCaregiver},
		{name: "caregiver uppercase", raw: "CARE_GIVER", want: RoleCaregiver},
		{name: "user", raw: "user", want: RoleUser},
		{name: "standard", raw: "standard", want: RoleUser},
		{name: "default", raw: "default", want: RoleUser},
		{name: "empty", raw: "", want: RoleUser},
		{name: "whitespace", raw: "  ", want: RoleUser},
		{name: "unrecognized", raw: "unknown_role", want: RoleUser},
		{name: "garbage", raw: "!!@@##", want: RoleUser},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MapRole(tt.raw))
		})
	}
}

// MapRole is total: every input lands in the closed role set.
func TestMapRoleTotality(t *testing.T) {
	inputs := []string{"", "admin", "ADMINISTRATOR", "care giver", "root", "superuser", "caregiver ", "\tcare-giver\n", "0", "nil"}

	for _, in := range inputs {
		role := MapRole(in)
		assert.Contains(t, []Role{RoleAdmin, RoleCaregiver, RoleUser}, role, "input %q", in)
	}
}

func TestRoleFromMetadata(t *testing.T) {
	tests := []struct {
		name    string
		public  map[string]any
		private map[string]any
		unsafe  map[string]any
		want    Role
	}{
		{
			name:   "public wins",
			public: map[string]any{"role": "admin"},
			private: map[string]any{
				"role": "caregiver",
			},
			want: RoleAdmin,
		},
		{
			name:    "private when public empty",
			public:  map[string]any{},
			private: map[string]any{"role": "care_giver"},
			want:    RoleCaregiver,
		},
		{
			name:   "unsafe when others empty",
			unsafe: map[string]any{"role": "administrator"},
			want:   RoleAdmin,
		},
		{
			name: "no metadata at all",
			want: RoleUser,
		},
		{
			name:   "empty role string skipped",
			public: map[string]any{"role": ""},
			unsafe: map[string]any{"role": "caregiver"},
			want:   RoleCaregiver,
		},
		{
			name:   "non-string role ignored",
			public: map[string]any{"role": 42},
			want:   RoleUser,
		},
		{
			name:   "unrecognized role defaults to user",
			public: map[string]any{"role": "owner"},
			want:   RoleUser,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RoleFromMetadata(tt.public, tt.private, tt.unsafe))
		})
	}
}
