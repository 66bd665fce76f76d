package entity

import (
	"time"

	"github.com/google/uuid"
)

const (
	// DefaultAccessTokenTTL applies when a client has no configured lifetime.
	DefaultAccessTokenTTL = 10 * time.Minute
	// DefaultRefreshTokenTTL applies when a client has no configured lifetime.
	DefaultRefreshTokenTTL = time.Hour
)

// Client is a registered OAuth client application. Clients are created at
// bootstrap (or administratively) and are immutable during normal operation.
type Client struct {
	ID              uuid.UUID     // Primary key; embedded as the issuer claim of signed tokens.
	Name            string        // Unique human-readable client name.
	ClientID        string        // Public identifier presented on token requests.
	ClientSecret    string        // Shared secret, compared in constant time.
	Scope           Scopes        // Scopes the client may request; first entry is its default.
	Grants          GrantTypes    // Grant types the client may use.
	RedirectURIs    []string      // Registered redirect URIs; unused by the implemented grants.
	AccessTokenTTL  time.Duration // Configured access-token lifetime; zero means default.
	RefreshTokenTTL time.Duration // Configured refresh-token lifetime; zero means default.
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// AllowsGrant reports whether the client is registered for the grant type.
func (c *Client) AllowsGrant(grant GrantType) bool {
	return c.Grants.Contains(grant)
}

// AllowsScope reports whether the client may issue tokens with the scope.
func (c *Client) AllowsScope(scope Scope) bool {
	return c.Scope.Contains(scope)
}

// DefaultScope returns the client's configured default scope, or empty when
// the client has none and the account scope should apply.
func (c *Client) DefaultScope() Scope {
	if len(c.Scope) == 0 {
		return ""
	}

	return c.Scope[0]
}

// AccessTokenLifetime returns the effective access-token lifetime.
func (c *Client) AccessTokenLifetime() time.Duration {
	if c.AccessTokenTTL <= 0 {
		return DefaultAccessTokenTTL
	}

	return c.AccessTokenTTL
}

// RefreshTokenLifetime returns the effective refresh-token lifetime.
func (c *Client) RefreshTokenLifetime() time.Duration {
	if c.RefreshTokenTTL <= 0 {
		return DefaultRefreshTokenTTL
	}

	return c.RefreshTokenTTL
}
