package impl

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"atelier/internal/domain/entity"
	"atelier/internal/domain/repository"
	"atelier/internal/domain/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

func newDiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// --- Repository mocks ---

type mockAccountRepo struct{ mock.Mock }

func (m *mockAccountRepo) Create(ctx context.Context, account *entity.Account) error {
	args := m.Called(ctx, account)

	return args.Error(0)
}

func (m *mockAccountRepo) FindByID(ctx context.Context, id int64) (*entity.Account, error) {
	args := m.Called(ctx, id)
	if account, ok := args.Get(0).(*entity.Account); ok {
		return account, args.Error(1)
	}

	return nil, args.Error(1)
}

func (m *mockAccountRepo) Update(ctx context.Context, account *entity.Account) error {
	args := m.Called(ctx, account)

	return args.Error(0)
}

type mockCredentialRepo struct{ mock.Mock }

func (m *mockCredentialRepo) FindPasswordCredential(ctx context.Context, username string) (*entity.Credential, error) {
	args := m.Called(ctx, username)
	if credential, ok := args.Get(0).(*entity.Credential); ok {
		return credential, args.Error(1)
	}

	return nil, args.Error(1)
}

func (m *mockCredentialRepo) FindCredentialForAccount(ctx context.Context, accountID int64) (*entity.Credential, error) {
	args := m.Called(ctx, accountID)
	if credential, ok := args.Get(0).(*entity.Credential); ok {
		return credential, args.Error(1)
	}

	return nil, args.Error(1)
}

func (m *mockCredentialRepo) CreateCredential(ctx context.Context, accountID int64, credential *entity.Credential) error {
	args := m.Called(ctx, accountID, credential)

	return args.Error(0)
}

func (m *mockCredentialRepo) UpdateSecret(ctx context.Context, credentialID uuid.UUID, secretHash string) error {
	args := m.Called(ctx, credentialID, secretHash)

	return args.Error(0)
}

type mockClientRepo struct{ mock.Mock }

func (m *mockClientRepo) FindByClientID(ctx context.Context, clientID string) (*entity.Client, error) {
	args := m.Called(ctx, clientID)
	if client, ok := args.Get(0).(*entity.Client); ok {
		return client, args.Error(1)
	}

	return nil, args.Error(1)
}

func (m *mockClientRepo) Create(ctx context.Context, client *entity.Client) error {
	args := m.Called(ctx, client)

	return args.Error(0)
}

type mockTokenRepo struct{ mock.Mock }

func (m *mockTokenRepo) Create(ctx context.Context, token *entity.Token) error {
	args := m.Called(ctx, token)

	return args.Error(0)
}

func (m *mockTokenRepo) FindByAccessToken(ctx context.Context, accessToken string) (*entity.Token, error) {
	args := m.Called(ctx, accessToken)
	if token, ok := args.Get(0).(*entity.Token); ok {
		return token, args.Error(1)
	}

	return nil, args.Error(1)
}

func (m *mockTokenRepo) FindByRefreshToken(ctx context.Context, refreshToken string) (*entity.Token, error) {
	args := m.Called(ctx, refreshToken)
	if token, ok := args.Get(0).(*entity.Token); ok {
		return token, args.Error(1)
	}

	return nil, args.Error(1)
}

func (m *mockTokenRepo) DeleteByID(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)

	return args.Error(0)
}

func (m *mockTokenRepo) RevokeAccessToken(ctx context.Context, accessToken string, accountID int64) error {
	args := m.Called(ctx, accessToken, accountID)

	return args.Error(0)
}

func (m *mockTokenRepo) DeleteByAccountID(ctx context.Context, accountID int64) error {
	args := m.Called(ctx, accountID)

	return args.Error(0)
}

func (m *mockTokenRepo) DeleteExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, cutoff)

	return args.Get(0).(int64), args.Error(1)
}

// --- Transaction fakes ---

// fakeRepoFactory hands out the injected mocks so transactional code paths
// can be exercised without a database.
type fakeRepoFactory struct {
	accountRepo    repository.AccountRepository
	credentialRepo repository.CredentialRepository
	clientRepo     repository.ClientRepository
	tokenRepo      repository.TokenRepository
}

func (f *fakeRepoFactory) AccountRepo() repository.AccountRepository       { return f.accountRepo }
func (f *fakeRepoFactory) CredentialRepo() repository.CredentialRepository { return f.credentialRepo }
func (f *fakeRepoFactory) ClientRepo() repository.ClientRepository         { return f.clientRepo }
func (f *fakeRepoFactory) TokenRepo() repository.TokenRepository           { return f.tokenRepo }

// fakeTxManager runs the callback immediately against the injected factory.
type fakeTxManager struct {
	factory repository.RepositoryFactory
	err     error
}

func (m *fakeTxManager) Execute(_ context.Context, fn func(repository.RepositoryFactory) error) error {
	if m.err != nil {
		return m.err
	}

	return fn(m.factory)
}

// --- Service fakes ---

// fakeHasher is a deterministic stand-in for bcrypt: Hash prefixes the
// password, Check reverses that.
type fakeHasher struct {
	hashErr     error
	strengthErr error
}

func (h *fakeHasher) Hash(password string) (string, error) {
	if h.strengthErr != nil {
		return "", h.strengthErr
	}
	if h.hashErr != nil {
		return "", h.hashErr
	}

	return "hashed:" + password, nil
}

func (h *fakeHasher) Check(password, hash string) bool {
	return hash == "hashed:"+password
}

func (h *fakeHasher) ValidatePasswordStrength(_ string) error {
	return h.strengthErr
}

// fakeIssuer mints sequential token strings so every issuance attempt yields
// a distinct pair. verifyErr makes VerifyAccessToken fail when set.
type fakeIssuer struct {
	sequence  int
	verifyErr error
}

func (i *fakeIssuer) next(kind string, client *entity.Client, scope entity.Scope, lifetime time.Duration) *service.IssuedToken {
	i.sequence++

	return &service.IssuedToken{
		Value:     fmt.Sprintf("%s-%s-%s-%d", kind, client.ClientID, scope, i.sequence),
		ExpiresAt: time.Now().Add(lifetime),
	}
}

func (i *fakeIssuer) IssueAccessToken(client *entity.Client, _ *entity.Account, scope entity.Scope) (*service.IssuedToken, error) {
	return i.next("access", client, scope, client.AccessTokenLifetime()), nil
}

func (i *fakeIssuer) IssueRefreshToken(client *entity.Client, _ *entity.Account, scope entity.Scope) (*service.IssuedToken, error) {
	return i.next("refresh", client, scope, client.RefreshTokenLifetime()), nil
}

func (i *fakeIssuer) IssueAuthorizationCode(*entity.Client, *entity.Account, entity.Scope) (*service.IssuedToken, error) {
	return nil, service.ErrAuthorizationCodeUnsupported
}

func (i *fakeIssuer) VerifyAccessToken(string) (*service.TokenClaims, error) {
	if i.verifyErr != nil {
		return nil, i.verifyErr
	}

	return &service.TokenClaims{TokenType: service.TokenTypeAccess}, nil
}
