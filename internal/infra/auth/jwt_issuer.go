// Package auth provides concrete implementations for authentication-related domain services.
package auth

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"atelier/config"
	"atelier/internal/domain/entity"
	"atelier/internal/domain/service"
)

// jwtIssuer is a concrete implementation of the TokenIssuer interface using
// HMAC-SHA256 signed JWTs. Access and refresh tokens are signed with separate
// secrets so one class of token can never masquerade as the other.
type jwtIssuer struct {
	accessSecret  string
	refreshSecret string
}

// NewJWTIssuer is the constructor for jwtIssuer.
func NewJWTIssuer(cfg *config.Config) (service.TokenIssuer, error) {
	if cfg.SecretKey.Access == "" || cfg.SecretKey.Refresh == "" {
		return nil, errors.New("jwt secrets must be provided")
	}

	return &jwtIssuer{
		accessSecret:  cfg.SecretKey.Access,
		refreshSecret: cfg.SecretKey.Refresh,
	}, nil
}

// IssueAccessToken mints a signed access token with the client's configured lifetime.
func (s *jwtIssuer) IssueAccessToken(client *entity.Client, account *entity.Account, scope entity.Scope) (*service.IssuedToken, error) {
	return s.issue(client, account, scope, service.TokenTypeAccess, client.AccessTokenLifetime(), s.accessSecret)
}

// IssueRefreshToken mints a signed refresh token with the client's configured lifetime.
func (s *jwtIssuer) IssueRefreshToken(client *entity.Client, account *entity.Account, scope entity.Scope) (*service.IssuedToken, error) {
	return s.issue(client, account, scope, service.TokenTypeRefresh, client.RefreshTokenLifetime(), s.refreshSecret)
}

// IssueAuthorizationCode always fails; the authorization-code flow is not offered.
func (s *jwtIssuer) IssueAuthorizationCode(_ *entity.Client, _ *entity.Account, _ entity.Scope) (*service.IssuedToken, error) {
	return nil, service.ErrAuthorizationCodeUnsupported
}

// VerifyAccessToken checks signature and structure of an access token string.
func (s *jwtIssuer) VerifyAccessToken(tokenString string) (*service.TokenClaims, error) {
	claims := &service.TokenClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		// Ensure the signing method is what we expect.
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}

		return []byte(s.accessSecret), nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, jwt.ErrTokenUnverifiable
	}
	if claims.TokenType != service.TokenTypeAccess {
		return nil, jwt.ErrTokenInvalidClaims
	}

	return claims, nil
}

// issue builds and signs one token. The jti claim carries a fresh UUID so two
// issuances for the same (client, account, scope) can never produce equal
// token strings.
func (s *jwtIssuer) issue(
	client *entity.Client,
	account *entity.Account,
	scope entity.Scope,
	tokenType string,
	ttl time.Duration,
	secret string,
) (*service.IssuedToken, error) {
	now := time.Now()
	expiresAt := now.Add(ttl)

	claims := &service.TokenClaims{
		TokenType: tokenType,
		Scope:     scope.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    client.ID.String(),
			Subject:   strconv.FormatInt(account.ID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			ID:        uuid.New().String(),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return nil, err
	}

	return &service.IssuedToken{Value: signed, ExpiresAt: expiresAt}, nil
}
