// Package entity contains the core business objects of the project,
// each representing a unique, identifiable concept within the domain.
package entity

import (
	"slices"
	"strings"
)

// Scope is a coarse authorization label attached to clients, accounts and
// issued tokens. Scope matching is exact: an operator token never authorizes
// customer resources and vice versa.
type Scope string

const (
	// ScopeOperator marks shop staff who manage inventory and accounts.
	ScopeOperator Scope = "operator"
	// ScopeCustomer marks end customers of the shop.
	ScopeCustomer Scope = "customer"
)

// String returns the string representation of the Scope.
func (s Scope) String() string {
	return string(s)
}

// IsValid checks if the Scope is a known value.
func (s Scope) IsValid() bool {
	switch s {
	case ScopeOperator, ScopeCustomer:
		return true
	default:
		return false
	}
}

// Scopes is a set of Scope values, serialized space-separated on the wire.
type Scopes []Scope

// Contains checks if the scope set contains a specific scope.
func (ss Scopes) Contains(scope Scope) bool {
	return slices.Contains(ss, scope)
}

// String joins the scopes space-separated, the OAuth2 wire format.
func (ss Scopes) String() string {
	parts := make([]string, len(ss))
	for i, s := range ss {
		parts[i] = s.String()
	}

	return strings.Join(parts, " ")
}

// ParseScopes parses a space-separated scope string, dropping invalid labels.
func ParseScopes(raw string) Scopes {
	fields := strings.Fields(raw)
	result := make(Scopes, 0, len(fields))
	for _, f := range fields {
		scope := Scope(f)
		if scope.IsValid() {
			result = append(result, scope)
		}
	}

	return result
}
