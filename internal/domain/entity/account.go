package entity

import "time"

// Account is the core principal of the system, representing one person who can
// authenticate against the shop backend. It owns zero-or-more credentials
// (through a join table) and zero-or-more issued token pairs.
type Account struct {
	ID        int64     // Numeric primary key, also the subject claim of issued tokens.
	Name      string    // Display name shown in the management UI.
	Phone     string    // Contact phone number.
	Email     string    // Contact email address.
	Scope     Scope     // Authorization label, "operator" or "customer".
	CreatedAt time.Time // Timestamp of when this account was created.
	UpdatedAt time.Time // Timestamp of the last modification to this account.
}
