package clerkevent

import "strings"

// Role is the canonical application role for a synced user.
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleCaregiver Role = "caregiver"
	RoleUser      Role = "user"
)

// roleAliases maps lowercased provider role strings to canonical roles.
// Anything not listed falls through to RoleUser.
var roleAliases = map[string]Role{
	"admin":         RoleAdmin,
	"administrator": RoleAdmin,
	"caregiver":     RoleCaregiver,
	"care_giver":    RoleCaregiver,
	"care-giver":    RoleCaregiver,
	"user":          RoleUser,
	"standard":      RoleUser,
	"default":       RoleUser,
}

// MapRole normalizes a free-form role string to the closed role set.
// The mapping is total: absent, empty, and unrecognized values all become
// RoleUser, indistinguishably from an explicit "user".
func MapRole(raw string) Role {
	if role, ok := roleAliases[strings.ToLower(strings.TrimSpace(raw))]; ok {
		return role
	}
	return RoleUser
}

// RoleFromMetadata resolves the role carried by the provider's metadata
// blocks. The first block with a non-empty "role" string wins, checked in
// public, private, unsafe order.
func RoleFromMetadata(public, private, unsafe map[string]any) Role {
	for _, block := range []map[string]any{public, private, unsafe} {
		if raw, ok := block["role"].(string); ok && raw != "" {
			return MapRole(raw)
		}
	}
	return RoleUser
}
