package services

import (
	"strings"

	"github.com/AchilleasB/campus-events/event-service/internal/core/domain"
)

// RolePolicy holds the conventions the resolver applies to emails and
// override tokens.
type RolePolicy struct {
	AdminPrefix    string   `yaml:"admin_prefix"`
	FacultyPrefix  string   `yaml:"faculty_prefix"`
	AdminAllowlist []string `yaml:"admin_allowlist"`
}

func DefaultRolePolicy() RolePolicy {
	return RolePolicy{
		AdminPrefix:    "admin@",
		FacultyPrefix:  "hod@",
		AdminAllowlist: []string{"test@example.com"},
	}
}

// RoleResolver is the only place roles are derived. Guards, the dashboard
// shell and services all call it.
type RoleResolver struct {
	policy    RolePolicy
	allowlist map[string]struct{}
}

func NewRoleResolver(policy RolePolicy) *RoleResolver {
	allow := make(map[string]struct{}, len(policy.AdminAllowlist))
	for _, email := range policy.AdminAllowlist {
		allow[normalizeEmail(email)] = struct{}{}
	}
	policy.AdminPrefix = strings.ToLower(policy.AdminPrefix)
	policy.FacultyPrefix = strings.ToLower(policy.FacultyPrefix)
	return &RoleResolver{policy: policy, allowlist: allow}
}

var defaultResolver = NewRoleResolver(DefaultRolePolicy())

// ResolveRole applies the default policy.
func ResolveRole(principal domain.Principal, override *domain.OverrideToken) domain.Role {
	return defaultResolver.Resolve(principal, override)
}

// Resolve maps a principal and optional override token to a role. A valid
// override wins over the principal; admin is checked before faculty.
func (r *RoleResolver) Resolve(principal domain.Principal, override *domain.OverrideToken) domain.Role {
	if role, ok := r.overrideRole(override); ok {
		return role
	}
	if principal.IsAnonymous() {
		return domain.RoleGuest
	}
	return r.emailRole(principal.Email)
}

// ResolveState resolves the role of a hydrated session. Unhydrated sessions
// are guests.
func (r *RoleResolver) ResolveState(state domain.SessionState) domain.Role {
	if !state.Hydrated {
		return domain.RoleGuest
	}
	return r.Resolve(state.Principal, state.Override)
}

// Actor builds the service caller for a session.
func (r *RoleResolver) Actor(state domain.SessionState) domain.Actor {
	actor := domain.Actor{Role: r.ResolveState(state)}
	if !state.Principal.IsAnonymous() {
		actor.UserID = state.Principal.AccountID
		actor.Email = state.Principal.Email
	} else if state.Override != nil {
		actor.Email = state.Override.Value
	}
	return actor
}

// RoleForEmail is used where only an account email is known, such as user
// management listings.
func (r *RoleResolver) RoleForEmail(email string) domain.Role {
	if email == "" {
		return domain.RoleGuest
	}
	return r.emailRole(email)
}

// ValidOverride reports whether token satisfies the prefix convention of the
// role it claims.
func (r *RoleResolver) ValidOverride(token *domain.OverrideToken) bool {
	_, ok := r.overrideRole(token)
	return ok
}

func (r *RoleResolver) overrideRole(token *domain.OverrideToken) (domain.Role, bool) {
	if token == nil {
		return "", false
	}
	value := normalizeEmail(token.Value)
	switch token.Role {
	case domain.RoleAdmin:
		if r.policy.AdminPrefix != "" && strings.HasPrefix(value, r.policy.AdminPrefix) {
			return domain.RoleAdmin, true
		}
	case domain.RoleFaculty:
		if r.policy.FacultyPrefix != "" && strings.HasPrefix(value, r.policy.FacultyPrefix) {
			return domain.RoleFaculty, true
		}
	}
	return "", false
}

func (r *RoleResolver) emailRole(email string) domain.Role {
	email = normalizeEmail(email)
	if r.policy.AdminPrefix != "" && strings.HasPrefix(email, r.policy.AdminPrefix) {
		return domain.RoleAdmin
	}
	if _, ok := r.allowlist[email]; ok {
		return domain.RoleAdmin
	}
	if r.policy.FacultyPrefix != "" && strings.HasPrefix(email, r.policy.FacultyPrefix) {
		return domain.RoleFaculty
	}
	return domain.RoleAssociation
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
