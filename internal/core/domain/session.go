package domain

// SessionState is the per-request view of the session store. Hydrated is
// false until the store has answered; guards must not decide before that.
type SessionState struct {
	Hydrated  bool
	SessionID string
	Principal Principal
	Override  *OverrideToken
}

// HasIdentity is true when either a principal or an override token exists.
func (s SessionState) HasIdentity() bool {
	return !s.Principal.IsAnonymous() || s.Override != nil
}

// Actor is the caller of a service operation after role resolution.
type Actor struct {
	UserID string
	Email  string
	Role   Role
}
