// Package usecase contains the application-specific business rules.
// It orchestrates the domain layer to perform tasks.
package usecase

import (
	"context"

	"atelier/internal/domain/entity"
)

// --- Input DTOs ---

// TokenInput carries a token-endpoint request. The token endpoint accepts
// both form-encoded and JSON bodies, so fields carry both tag sets.
type TokenInput struct {
	GrantType    string `json:"grant_type" form:"grant_type"`
	ClientID     string `json:"client_id" form:"client_id"`
	ClientSecret string `json:"client_secret" form:"client_secret"`
	Scope        string `json:"scope" form:"scope"`
	Username     string `json:"username" form:"username"`
	Password     string `json:"password" form:"password"`
	RefreshToken string `json:"refresh_token" form:"refresh_token"`
}

// --- Output DTOs ---

// TokenOutput is the successful token-endpoint response body, using the
// OAuth2 wire field names.
type TokenOutput struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
	RefreshToken string `json:"refresh_token"`
	Scope        string `json:"scope"`
}

// Principal is the authenticated caller resolved from a bearer token.
type Principal struct {
	Token   *entity.Token
	Account *entity.Account
	Scope   entity.Scope
}

// GrantUsecase defines the token-issuance contract of the token endpoint.
// Every failure it returns maps onto one OAuth protocol error.
type GrantUsecase interface {
	// Token dispatches on the grant_type field and runs the matching grant
	// flow, returning a freshly issued token pair.
	Token(ctx context.Context, input TokenInput) (*TokenOutput, error)
}

// AuthorizeUsecase resolves bearer tokens on protected routes.
type AuthorizeUsecase interface {
	// Authorize verifies the access token string, resolves its stored row,
	// checks expiry, and enforces the required scope when one is given.
	Authorize(ctx context.Context, accessToken string, requiredScope entity.Scope) (*Principal, error)
}
