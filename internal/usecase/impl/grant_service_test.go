package impl

import (
	"context"
	"testing"
	"time"

	"atelier/internal/domain/entity"
	domainerrors "atelier/internal/domain/errors"
	"atelier/internal/domain/repository"
	"atelier/internal/usecase"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type grantTestDeps struct {
	clientRepo     *mockClientRepo
	credentialRepo *mockCredentialRepo
	accountRepo    *mockAccountRepo
	tokenRepo      *mockTokenRepo
	issuer         *fakeIssuer
}

func newGrantTestService(t *testing.T) (usecase.GrantUsecase, *grantTestDeps) {
	t.Helper()

	deps := &grantTestDeps{
		clientRepo:     &mockClientRepo{},
		credentialRepo: &mockCredentialRepo{},
		accountRepo:    &mockAccountRepo{},
		tokenRepo:      &mockTokenRepo{},
		issuer:         &fakeIssuer{},
	}

	txManager := &fakeTxManager{factory: &fakeRepoFactory{
		accountRepo:    deps.accountRepo,
		credentialRepo: deps.credentialRepo,
		clientRepo:     deps.clientRepo,
		tokenRepo:      deps.tokenRepo,
	}}

	srv := NewGrantService(GrantServiceParams{
		TxManager:      txManager,
		ClientRepo:     deps.clientRepo,
		CredentialRepo: deps.credentialRepo,
		AccountRepo:    deps.accountRepo,
		TokenRepo:      deps.tokenRepo,
		Hasher:         &fakeHasher{},
		Issuer:         deps.issuer,
		Logger:         newDiscardLogger(),
	})

	return srv, deps
}

func testClient() *entity.Client {
	return &entity.Client{
		ID:              uuid.New(),
		Name:            "shop-backend",
		ClientID:        "shop-client",
		ClientSecret:    "shop-secret",
		Scope:           entity.Scopes{entity.ScopeCustomer, entity.ScopeOperator},
		Grants:          entity.GrantTypes{entity.GrantTypePassword, entity.GrantTypeRefreshToken},
		AccessTokenTTL:  2 * time.Minute,
		RefreshTokenTTL: 20 * time.Minute,
	}
}

func testAccount() *entity.Account {
	return &entity.Account{ID: 42, Name: "operator one", Scope: entity.ScopeOperator}
}

func passwordInput(client *entity.Client) usecase.TokenInput {
	return usecase.TokenInput{
		GrantType:    "password",
		ClientID:     client.ClientID,
		ClientSecret: client.ClientSecret,
		Username:     "op",
		Password:     "secret",
	}
}

func TestGrantService_Token_PasswordGrant_Success(t *testing.T) {
	srv, deps := newGrantTestService(t)
	ctx := context.Background()

	client := testClient()
	account := testAccount()
	credential := &entity.Credential{
		ID:         uuid.New(),
		Type:       entity.CredentialTypePassword,
		Username:   "op",
		SecretHash: "hashed:secret",
		AccountID:  account.ID,
	}

	deps.clientRepo.On("FindByClientID", ctx, client.ClientID).Return(client, nil)
	deps.credentialRepo.On("FindPasswordCredential", ctx, "op").Return(credential, nil)
	deps.accountRepo.On("FindByID", ctx, account.ID).Return(account, nil)
	deps.tokenRepo.On("Create", ctx, mock.AnythingOfType("*entity.Token")).Return(nil)

	output, err := srv.Token(ctx, passwordInput(client))

	require.NoError(t, err)
	assert.Equal(t, "Bearer", output.TokenType)
	assert.Equal(t, int64(120), output.ExpiresIn)
	assert.NotEmpty(t, output.AccessToken)
	assert.NotEmpty(t, output.RefreshToken)
	assert.NotEqual(t, output.AccessToken, output.RefreshToken)
	// No scope requested: the client's default scope (its first entry) applies.
	assert.Equal(t, entity.ScopeCustomer.String(), output.Scope)

	deps.tokenRepo.AssertCalled(t, "Create", ctx, mock.MatchedBy(func(token *entity.Token) bool {
		return token.AccountID == account.ID && token.ClientID == client.ID &&
			token.Scope == entity.ScopeCustomer
	}))
}

func TestGrantService_Token_PasswordGrant_AccountScopeFallback(t *testing.T) {
	srv, deps := newGrantTestService(t)
	ctx := context.Background()

	client := testClient()
	client.Scope = nil
	account := testAccount()
	credential := &entity.Credential{
		Type: entity.CredentialTypePassword, Username: "op",
		SecretHash: "hashed:secret", AccountID: account.ID,
	}

	deps.clientRepo.On("FindByClientID", ctx, client.ClientID).Return(client, nil)
	deps.credentialRepo.On("FindPasswordCredential", ctx, "op").Return(credential, nil)
	deps.accountRepo.On("FindByID", ctx, account.ID).Return(account, nil)
	deps.tokenRepo.On("Create", ctx, mock.AnythingOfType("*entity.Token")).Return(nil)

	output, err := srv.Token(ctx, passwordInput(client))

	require.NoError(t, err)
	assert.Equal(t, account.Scope.String(), output.Scope)
}

func TestGrantService_Token_PasswordGrant_WrongPassword(t *testing.T) {
	srv, deps := newGrantTestService(t)
	ctx := context.Background()

	client := testClient()
	credential := &entity.Credential{
		Type: entity.CredentialTypePassword, Username: "op",
		SecretHash: "hashed:something-else", AccountID: 42,
	}

	deps.clientRepo.On("FindByClientID", ctx, client.ClientID).Return(client, nil)
	deps.credentialRepo.On("FindPasswordCredential", ctx, "op").Return(credential, nil)

	_, err := srv.Token(ctx, passwordInput(client))

	assert.ErrorIs(t, err, domainerrors.ErrInvalidGrant)
	deps.tokenRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestGrantService_Token_PasswordGrant_UnknownUsername(t *testing.T) {
	srv, deps := newGrantTestService(t)
	ctx := context.Background()

	client := testClient()
	deps.clientRepo.On("FindByClientID", ctx, client.ClientID).Return(client, nil)
	deps.credentialRepo.On("FindPasswordCredential", ctx, "op").Return(nil, repository.ErrCredentialNotFound)

	_, err := srv.Token(ctx, passwordInput(client))

	assert.ErrorIs(t, err, domainerrors.ErrInvalidGrant)
}

func TestGrantService_Token_UnknownClient(t *testing.T) {
	srv, deps := newGrantTestService(t)
	ctx := context.Background()

	deps.clientRepo.On("FindByClientID", ctx, "nobody").Return(nil, repository.ErrClientNotFound)

	_, err := srv.Token(ctx, usecase.TokenInput{
		GrantType: "password", ClientID: "nobody", ClientSecret: "x",
		Username: "op", Password: "secret",
	})

	assert.ErrorIs(t, err, domainerrors.ErrInvalidClient)
}

func TestGrantService_Token_WrongClientSecret(t *testing.T) {
	srv, deps := newGrantTestService(t)
	ctx := context.Background()

	client := testClient()
	deps.clientRepo.On("FindByClientID", ctx, client.ClientID).Return(client, nil)

	input := passwordInput(client)
	input.ClientSecret = "not-the-secret"

	_, err := srv.Token(ctx, input)

	assert.ErrorIs(t, err, domainerrors.ErrInvalidClient)
}

func TestGrantService_Token_GrantNotRegisteredForClient(t *testing.T) {
	srv, deps := newGrantTestService(t)
	ctx := context.Background()

	client := testClient()
	client.Grants = entity.GrantTypes{entity.GrantTypeRefreshToken}
	deps.clientRepo.On("FindByClientID", ctx, client.ClientID).Return(client, nil)

	_, err := srv.Token(ctx, passwordInput(client))

	assert.ErrorIs(t, err, domainerrors.ErrInvalidClient)
}

func TestGrantService_Token_AuthorizationCodeUnsupported(t *testing.T) {
	srv, _ := newGrantTestService(t)

	_, err := srv.Token(context.Background(), usecase.TokenInput{GrantType: "authorization_code"})

	assert.ErrorIs(t, err, domainerrors.ErrUnsupportedGrantType)
}

func TestGrantService_Token_UnknownGrantType(t *testing.T) {
	srv, _ := newGrantTestService(t)

	_, err := srv.Token(context.Background(), usecase.TokenInput{GrantType: "client_credentials"})

	assert.ErrorIs(t, err, domainerrors.ErrInvalidGrant)
}

func TestGrantService_Token_DisallowedScope(t *testing.T) {
	srv, deps := newGrantTestService(t)
	ctx := context.Background()

	client := testClient()
	client.Scope = entity.Scopes{entity.ScopeCustomer}
	account := testAccount()
	credential := &entity.Credential{
		Type: entity.CredentialTypePassword, Username: "op",
		SecretHash: "hashed:secret", AccountID: account.ID,
	}

	deps.clientRepo.On("FindByClientID", ctx, client.ClientID).Return(client, nil)
	deps.credentialRepo.On("FindPasswordCredential", ctx, "op").Return(credential, nil)
	deps.accountRepo.On("FindByID", ctx, account.ID).Return(account, nil)

	input := passwordInput(client)
	input.Scope = "operator"

	_, err := srv.Token(ctx, input)

	assert.ErrorIs(t, err, domainerrors.ErrInvalidScope)
	deps.tokenRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func refreshInput(client *entity.Client, refreshToken string) usecase.TokenInput {
	return usecase.TokenInput{
		GrantType:    "refresh_token",
		ClientID:     client.ClientID,
		ClientSecret: client.ClientSecret,
		RefreshToken: refreshToken,
	}
}

func TestGrantService_Token_RefreshGrant_RotatesPair(t *testing.T) {
	srv, deps := newGrantTestService(t)
	ctx := context.Background()

	client := testClient()
	account := testAccount()
	stored := &entity.Token{
		ID:               uuid.New(),
		ClientID:         client.ID,
		AccountID:        account.ID,
		Scope:            entity.ScopeOperator,
		AccessToken:      "old-access",
		AccessExpiresAt:  time.Now().Add(-time.Minute),
		RefreshToken:     "old-refresh",
		RefreshExpiresAt: time.Now().Add(10 * time.Minute),
		Account:          account,
	}

	deps.clientRepo.On("FindByClientID", ctx, client.ClientID).Return(client, nil)
	deps.tokenRepo.On("FindByRefreshToken", ctx, "old-refresh").Return(stored, nil)
	deps.tokenRepo.On("DeleteByID", ctx, stored.ID).Return(nil)
	deps.tokenRepo.On("Create", ctx, mock.AnythingOfType("*entity.Token")).Return(nil)

	output, err := srv.Token(ctx, refreshInput(client, "old-refresh"))

	require.NoError(t, err)
	// The new pair inherits the rotated token's scope and is freshly minted.
	assert.Equal(t, entity.ScopeOperator.String(), output.Scope)
	assert.NotEqual(t, "old-access", output.AccessToken)
	assert.NotEqual(t, "old-refresh", output.RefreshToken)
	deps.tokenRepo.AssertCalled(t, "DeleteByID", ctx, stored.ID)
}

func TestGrantService_Token_RefreshGrant_UnknownToken(t *testing.T) {
	srv, deps := newGrantTestService(t)
	ctx := context.Background()

	client := testClient()
	deps.clientRepo.On("FindByClientID", ctx, client.ClientID).Return(client, nil)
	deps.tokenRepo.On("FindByRefreshToken", ctx, "missing").Return(nil, repository.ErrTokenNotFound)

	_, err := srv.Token(ctx, refreshInput(client, "missing"))

	assert.ErrorIs(t, err, domainerrors.ErrInvalidGrant)
}

func TestGrantService_Token_RefreshGrant_ExpiredToken(t *testing.T) {
	srv, deps := newGrantTestService(t)
	ctx := context.Background()

	client := testClient()
	stored := &entity.Token{
		ID:               uuid.New(),
		ClientID:         client.ID,
		AccountID:        42,
		Scope:            entity.ScopeOperator,
		RefreshToken:     "stale",
		RefreshExpiresAt: time.Now().Add(-time.Minute),
	}

	deps.clientRepo.On("FindByClientID", ctx, client.ClientID).Return(client, nil)
	deps.tokenRepo.On("FindByRefreshToken", ctx, "stale").Return(stored, nil)

	_, err := srv.Token(ctx, refreshInput(client, "stale"))

	assert.ErrorIs(t, err, domainerrors.ErrInvalidGrant)
	deps.tokenRepo.AssertNotCalled(t, "DeleteByID", mock.Anything, mock.Anything)
}

func TestGrantService_Token_RefreshGrant_TokenFromAnotherClient(t *testing.T) {
	srv, deps := newGrantTestService(t)
	ctx := context.Background()

	client := testClient()
	stored := &entity.Token{
		ID:               uuid.New(),
		ClientID:         uuid.New(), // issued to a different client
		AccountID:        42,
		Scope:            entity.ScopeOperator,
		RefreshToken:     "foreign",
		RefreshExpiresAt: time.Now().Add(10 * time.Minute),
	}

	deps.clientRepo.On("FindByClientID", ctx, client.ClientID).Return(client, nil)
	deps.tokenRepo.On("FindByRefreshToken", ctx, "foreign").Return(stored, nil)

	_, err := srv.Token(ctx, refreshInput(client, "foreign"))

	assert.ErrorIs(t, err, domainerrors.ErrInvalidGrant)
}

func TestGrantService_Token_RefreshGrant_ConcurrentRotationLoses(t *testing.T) {
	srv, deps := newGrantTestService(t)
	ctx := context.Background()

	client := testClient()
	account := testAccount()
	stored := &entity.Token{
		ID:               uuid.New(),
		ClientID:         client.ID,
		AccountID:        account.ID,
		Scope:            entity.ScopeOperator,
		RefreshToken:     "contested",
		RefreshExpiresAt: time.Now().Add(10 * time.Minute),
		Account:          account,
	}

	deps.clientRepo.On("FindByClientID", ctx, client.ClientID).Return(client, nil)
	deps.tokenRepo.On("FindByRefreshToken", ctx, "contested").Return(stored, nil)
	// The row vanished between lookup and delete: another request rotated it.
	deps.tokenRepo.On("DeleteByID", ctx, stored.ID).Return(repository.ErrTokenNotFound)

	_, err := srv.Token(ctx, refreshInput(client, "contested"))

	assert.ErrorIs(t, err, domainerrors.ErrInvalidGrant)
	deps.tokenRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestGrantService_Token_CollisionRetriesOnce(t *testing.T) {
	srv, deps := newGrantTestService(t)
	ctx := context.Background()

	client := testClient()
	account := testAccount()
	credential := &entity.Credential{
		Type: entity.CredentialTypePassword, Username: "op",
		SecretHash: "hashed:secret", AccountID: account.ID,
	}

	deps.clientRepo.On("FindByClientID", ctx, client.ClientID).Return(client, nil)
	deps.credentialRepo.On("FindPasswordCredential", ctx, "op").Return(credential, nil)
	deps.accountRepo.On("FindByID", ctx, account.ID).Return(account, nil)
	deps.tokenRepo.On("Create", ctx, mock.AnythingOfType("*entity.Token")).Return(repository.ErrDuplicateToken).Once()
	deps.tokenRepo.On("Create", ctx, mock.AnythingOfType("*entity.Token")).Return(nil).Once()

	output, err := srv.Token(ctx, passwordInput(client))

	require.NoError(t, err)
	assert.NotEmpty(t, output.AccessToken)
	deps.tokenRepo.AssertNumberOfCalls(t, "Create", 2)
}

func TestGrantService_Token_CollisionTwiceFails(t *testing.T) {
	srv, deps := newGrantTestService(t)
	ctx := context.Background()

	client := testClient()
	account := testAccount()
	credential := &entity.Credential{
		Type: entity.CredentialTypePassword, Username: "op",
		SecretHash: "hashed:secret", AccountID: account.ID,
	}

	deps.clientRepo.On("FindByClientID", ctx, client.ClientID).Return(client, nil)
	deps.credentialRepo.On("FindPasswordCredential", ctx, "op").Return(credential, nil)
	deps.accountRepo.On("FindByID", ctx, account.ID).Return(account, nil)
	deps.tokenRepo.On("Create", ctx, mock.AnythingOfType("*entity.Token")).Return(repository.ErrDuplicateToken)

	_, err := srv.Token(ctx, passwordInput(client))

	assert.ErrorIs(t, err, domainerrors.ErrTokenCollision)
	deps.tokenRepo.AssertNumberOfCalls(t, "Create", 2)
}
