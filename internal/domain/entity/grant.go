package entity

import "slices"

// GrantType names an OAuth2 credential-exchange strategy by which a client
// obtains a token pair on behalf of an account.
type GrantType string

const (
	// GrantTypePassword exchanges an account's username/password for tokens.
	GrantTypePassword GrantType = "password"
	// GrantTypeRefreshToken exchanges a live refresh token for a new pair.
	GrantTypeRefreshToken GrantType = "refresh_token"
	// GrantTypeAuthorizationCode is recognized but deliberately unsupported.
	GrantTypeAuthorizationCode GrantType = "authorization_code"
)

// String returns the string representation of the GrantType.
func (g GrantType) String() string {
	return string(g)
}

// IsValid checks if the GrantType is a recognized value.
func (g GrantType) IsValid() bool {
	switch g {
	case GrantTypePassword, GrantTypeRefreshToken, GrantTypeAuthorizationCode:
		return true
	default:
		return false
	}
}

// IsSupported reports whether the grant type has an implemented handler.
func (g GrantType) IsSupported() bool {
	return g == GrantTypePassword || g == GrantTypeRefreshToken
}

// GrantTypes is a set of grant types a client is allowed to use.
type GrantTypes []GrantType

// Contains checks if the set contains a specific grant type.
func (gs GrantTypes) Contains(grant GrantType) bool {
	return slices.Contains(gs, grant)
}

// ToStrings converts GrantTypes to []string for persistence.
func (gs GrantTypes) ToStrings() []string {
	result := make([]string, len(gs))
	for i, g := range gs {
		result[i] = g.String()
	}

	return result
}

// GrantTypesFromStrings converts []string to GrantTypes, filtering out
// unrecognized grant names.
func GrantTypesFromStrings(ss []string) GrantTypes {
	result := make(GrantTypes, 0, len(ss))
	for _, s := range ss {
		grant := GrantType(s)
		if grant.IsValid() {
			result = append(result, grant)
		}
	}

	return result
}
