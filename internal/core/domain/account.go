package domain

import "time"

// Account is a row of the account store. Roles are not stored here; they
// are resolved from the email by the role resolver.
type Account struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// AccountView is what user management lists: the account plus the role the
// resolver derives for it.
type AccountView struct {
	Account
	Role Role `json:"role"`
}
