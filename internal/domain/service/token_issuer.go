package service

import (
	"errors"
	"strconv"
	"time"

	"atelier/internal/domain/entity"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Token type labels embedded in the token_type claim.
const (
	TokenTypeAccess  = "accessToken"
	TokenTypeRefresh = "refreshToken"
)

// ErrAuthorizationCodeUnsupported is returned whenever authorization-code
// issuance is requested; the flow is recognized but deliberately unsupported.
var ErrAuthorizationCodeUnsupported = errors.New("authorization code issuance is not supported")

// TokenClaims defines the signed claims embedded in every issued token.
// The issuer claim carries the client's primary key and the subject claim the
// account's numeric id.
type TokenClaims struct {
	TokenType string `json:"token_type"`
	Scope     string `json:"scope"`
	jwt.RegisteredClaims
}

// AccountID parses the subject claim back into the account's numeric id.
func (c *TokenClaims) AccountID() (int64, error) {
	id, err := strconv.ParseInt(c.Subject, 10, 64)
	if err != nil {
		return 0, errors.New("malformed subject claim")
	}

	return id, nil
}

// ClientUUID parses the issuer claim back into the client's primary key.
func (c *TokenClaims) ClientUUID() (uuid.UUID, error) {
	return uuid.Parse(c.Issuer)
}

// IssuedToken is one signed token string together with its expiry instant.
type IssuedToken struct {
	Value     string
	ExpiresAt time.Time
}

// TokenIssuer defines the interface for minting and verifying signed tokens.
// Issuance is a pure function of (client, account, scope); persistence is the
// token store's concern.
type TokenIssuer interface {
	// IssueAccessToken mints a signed access token using the client's
	// configured access-token lifetime.
	IssueAccessToken(client *entity.Client, account *entity.Account, scope entity.Scope) (*IssuedToken, error)

	// IssueRefreshToken mints a signed refresh token using the client's
	// configured refresh-token lifetime.
	IssueRefreshToken(client *entity.Client, account *entity.Account, scope entity.Scope) (*IssuedToken, error)

	// IssueAuthorizationCode always fails with ErrAuthorizationCodeUnsupported.
	IssueAuthorizationCode(client *entity.Client, account *entity.Account, scope entity.Scope) (*IssuedToken, error)

	// VerifyAccessToken checks the signature and structure of an access token
	// string and returns its claims. Expiry against the stored row remains the
	// authorizer's responsibility.
	VerifyAccessToken(tokenString string) (*TokenClaims, error)
}
