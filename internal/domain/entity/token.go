package entity

import (
	"time"

	"github.com/google/uuid"
)

// Token is one issued access/refresh pair. Both token strings are globally
// unique across all live rows; deleting the row revokes the pair.
type Token struct {
	ID               uuid.UUID // The unique ID for this token record.
	ClientID         uuid.UUID // The client the pair was issued to.
	AccountID        int64     // The account the pair was issued for.
	Scope            Scope     // Effective scope resolved at issuance.
	AccessToken      string    // Signed access token string.
	AccessExpiresAt  time.Time // Instant after which the access token is dead.
	RefreshToken     string    // Signed refresh token string.
	RefreshExpiresAt time.Time // Instant after which the refresh token is dead.
	CreatedAt        time.Time

	Client  *Client  // Joined client row, populated by token lookups.
	Account *Account // Joined account row, populated by token lookups.
}

// AccessExpired reports whether the access token is expired at the instant.
func (t *Token) AccessExpired(now time.Time) bool {
	return t.AccessExpiresAt.Before(now)
}

// RefreshExpired reports whether the refresh token is expired at the instant.
func (t *Token) RefreshExpired(now time.Time) bool {
	return t.RefreshExpiresAt.Before(now)
}
