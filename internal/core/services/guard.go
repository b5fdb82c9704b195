package services

import (
	"github.com/AchilleasB/campus-events/event-service/internal/core/domain"
)

type GuardKind int

const (
	GuardRequireAuthenticated GuardKind = iota
	GuardRequireRole
	GuardRedirectIfAuthenticated
)

func (k GuardKind) String() string {
	switch k {
	case GuardRequireAuthenticated:
		return "require_authenticated"
	case GuardRequireRole:
		return "require_role"
	case GuardRedirectIfAuthenticated:
		return "redirect_if_authenticated"
	}
	return "unknown"
}

// GuardRule is what a route declares about who may reach it.
type GuardRule struct {
	Kind GuardKind
	Role domain.Role
}

func RequireAuthenticated() GuardRule {
	return GuardRule{Kind: GuardRequireAuthenticated}
}

func RequireRole(role domain.Role) GuardRule {
	return GuardRule{Kind: GuardRequireRole, Role: role}
}

func RedirectIfAuthenticated() GuardRule {
	return GuardRule{Kind: GuardRedirectIfAuthenticated}
}

// Outcome is loading, render or redirect. Loading is distinct from both:
// it is returned until the session is hydrated.
type Outcome int

const (
	OutcomeLoading Outcome = iota
	OutcomeRender
	OutcomeRedirect
)

func (o Outcome) String() string {
	switch o {
	case OutcomeLoading:
		return "loading"
	case OutcomeRender:
		return "render"
	case OutcomeRedirect:
		return "redirect"
	}
	return "unknown"
}

type Decision struct {
	Outcome Outcome
	// Target is set for redirects.
	Target string
	Role   domain.Role
	// Unauthenticated distinguishes "sign in first" from "wrong role" for
	// API callers.
	Unauthenticated bool
}

type Guard struct {
	resolver *RoleResolver
}

func NewGuard(resolver *RoleResolver) *Guard {
	return &Guard{resolver: resolver}
}

func (g *Guard) Decide(state domain.SessionState, rule GuardRule) Decision {
	if !state.Hydrated {
		return Decision{Outcome: OutcomeLoading, Role: domain.RoleGuest}
	}

	role := g.resolver.ResolveState(state)

	switch rule.Kind {
	case GuardRequireAuthenticated:
		if !state.HasIdentity() {
			return Decision{Outcome: OutcomeRedirect, Target: domain.PathSignIn, Role: role, Unauthenticated: true}
		}
	case GuardRequireRole:
		if role != rule.Role {
			return Decision{
				Outcome:         OutcomeRedirect,
				Target:          domain.PathHome,
				Role:            role,
				Unauthenticated: !state.HasIdentity(),
			}
		}
	case GuardRedirectIfAuthenticated:
		if state.HasIdentity() {
			return Decision{Outcome: OutcomeRedirect, Target: domain.RootPath(role), Role: role}
		}
	default:
		return Decision{Outcome: OutcomeRedirect, Target: domain.PathHome, Role: domain.RoleGuest}
	}

	return Decision{Outcome: OutcomeRender, Role: role}
}
