package domain

import "strings"

// Role is derived from a Principal or an OverrideToken on demand and is
// never stored on its own.
type Role string

const (
	RoleGuest       Role = "guest"
	RoleAssociation Role = "association"
	RoleFaculty     Role = "faculty"
	RoleAdmin       Role = "admin"
)

func (r Role) String() string {
	return string(r)
}

// ParseRole accepts the lower-case role names used in configuration and
// override tokens. Unknown names map to RoleGuest.
func ParseRole(s string) Role {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RoleAssociation:
		return RoleAssociation
	case RoleFaculty:
		return RoleFaculty
	case RoleAdmin:
		return RoleAdmin
	default:
		return RoleGuest
	}
}

// Principal is the verified identity attached to a session. The zero value
// is the anonymous principal.
type Principal struct {
	AccountID string `json:"account_id,omitempty"`
	Email     string `json:"email,omitempty"`
}

// Anonymous returns the principal of a visitor that has not signed in.
func Anonymous() Principal {
	return Principal{}
}

// Authenticated builds a principal for a verified account.
func Authenticated(accountID, email string) Principal {
	return Principal{AccountID: accountID, Email: email}
}

func (p Principal) IsAnonymous() bool {
	return p.AccountID == "" && p.Email == ""
}

// OverrideToken simulates a privileged session without an account. Its only
// verification is the prefix convention checked by the role resolver.
type OverrideToken struct {
	Role  Role   `json:"role"`
	Value string `json:"value"`
}
