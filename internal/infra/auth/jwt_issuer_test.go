package auth

import (
	"testing"
	"time"

	"atelier/config"
	"atelier/internal/domain/entity"
	"atelier/internal/domain/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestIssuer(t *testing.T) service.TokenIssuer {
	t.Helper()

	cfg := &config.Config{}
	cfg.SecretKey.Access = "test-access-secret"
	cfg.SecretKey.Refresh = "test-refresh-secret"

	issuer, err := NewJWTIssuer(cfg)
	require.NoError(t, err)

	return issuer
}

func testIssuerClient() *entity.Client {
	return &entity.Client{
		ID:              uuid.New(),
		Name:            "Atelier Storefront",
		ClientID:        "storefront",
		ClientSecret:    "storefront-secret",
		Scope:           entity.Scopes{entity.ScopeCustomer, entity.ScopeOperator},
		Grants:          entity.GrantTypes{entity.GrantTypePassword, entity.GrantTypeRefreshToken},
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: 24 * time.Hour,
	}
}

func testIssuerAccount() *entity.Account {
	return &entity.Account{
		ID:    42,
		Name:  "Test Operator",
		Scope: entity.ScopeOperator,
	}
}

func TestNewJWTIssuer_MissingSecrets(t *testing.T) {
	cfg := &config.Config{}
	cfg.SecretKey.Access = "only-access"

	_, err := NewJWTIssuer(cfg)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "jwt secrets must be provided")
}

func TestJWTIssuer_IssueAndVerifyAccessToken(t *testing.T) {
	issuer := newTestIssuer(t)
	client := testIssuerClient()
	account := testIssuerAccount()

	before := time.Now()
	issued, err := issuer.IssueAccessToken(client, account, entity.ScopeOperator)
	require.NoError(t, err)
	assert.NotEmpty(t, issued.Value)

	// Expiry should sit at roughly now plus the client's access lifetime.
	expectedExpiry := before.Add(client.AccessTokenLifetime())
	assert.WithinDuration(t, expectedExpiry, issued.ExpiresAt, 5*time.Second)

	claims, err := issuer.VerifyAccessToken(issued.Value)
	require.NoError(t, err)
	assert.Equal(t, service.TokenTypeAccess, claims.TokenType)
	assert.Equal(t, entity.ScopeOperator.String(), claims.Scope)

	clientID, err := claims.ClientUUID()
	require.NoError(t, err)
	assert.Equal(t, client.ID, clientID)

	accountID, err := claims.AccountID()
	require.NoError(t, err)
	assert.Equal(t, account.ID, accountID)
}

func TestJWTIssuer_TokenStringsAreUnique(t *testing.T) {
	issuer := newTestIssuer(t)
	client := testIssuerClient()
	account := testIssuerAccount()

	// The jti claim carries a fresh UUID per issuance, so repeated calls with
	// identical inputs must never collide.
	first, err := issuer.IssueAccessToken(client, account, entity.ScopeCustomer)
	require.NoError(t, err)
	second, err := issuer.IssueAccessToken(client, account, entity.ScopeCustomer)
	require.NoError(t, err)

	assert.NotEqual(t, first.Value, second.Value)
}

func TestJWTIssuer_RefreshTokenRejectedAsAccessToken(t *testing.T) {
	issuer := newTestIssuer(t)
	client := testIssuerClient()
	account := testIssuerAccount()

	refresh, err := issuer.IssueRefreshToken(client, account, entity.ScopeCustomer)
	require.NoError(t, err)
	assert.NotEmpty(t, refresh.Value)

	expectedExpiry := time.Now().Add(client.RefreshTokenLifetime())
	assert.WithinDuration(t, expectedExpiry, refresh.ExpiresAt, 5*time.Second)

	// Refresh tokens are signed with a different secret, so verification as an
	// access token must fail.
	_, err = issuer.VerifyAccessToken(refresh.Value)
	assert.Error(t, err)
}

func TestJWTIssuer_VerifyAccessToken_InvalidInput(t *testing.T) {
	issuer := newTestIssuer(t)

	testCases := []struct {
		name  string
		token string
	}{
		{"empty string", ""},
		{"garbage", "not-a-jwt"},
		{"truncated", "eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := issuer.VerifyAccessToken(tc.token)
			assert.Error(t, err)
		})
	}
}

func TestJWTIssuer_VerifyAccessToken_WrongSecret(t *testing.T) {
	issuer := newTestIssuer(t)
	client := testIssuerClient()
	account := testIssuerAccount()

	issued, err := issuer.IssueAccessToken(client, account, entity.ScopeCustomer)
	require.NoError(t, err)

	otherCfg := &config.Config{}
	otherCfg.SecretKey.Access = "completely-different-secret"
	otherCfg.SecretKey.Refresh = "another-refresh-secret"
	otherIssuer, err := NewJWTIssuer(otherCfg)
	require.NoError(t, err)

	_, err = otherIssuer.VerifyAccessToken(issued.Value)
	assert.Error(t, err)
}

func TestJWTIssuer_AuthorizationCodeUnsupported(t *testing.T) {
	issuer := newTestIssuer(t)

	_, err := issuer.IssueAuthorizationCode(testIssuerClient(), testIssuerAccount(), entity.ScopeCustomer)
	assert.ErrorIs(t, err, service.ErrAuthorizationCodeUnsupported)
}
