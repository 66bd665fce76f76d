// Package impl contains the implementation of the application's business logic.
package impl

import (
	"context"
	"crypto/subtle"
	"log/slog"
	"time"

	deliverycontext "atelier/internal/delivery/context"
	"atelier/internal/domain/entity"
	domainerrors "atelier/internal/domain/errors"
	"atelier/internal/domain/repository"
	"atelier/internal/domain/service"
	"atelier/internal/usecase"

	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// tokenIssueAttempts bounds the retry loop when a freshly signed token string
// collides with a stored one.
const tokenIssueAttempts = 2

// grantService implements the GrantUsecase interface.
type grantService struct {
	txManager      repository.TransactionManager
	clientRepo     repository.ClientRepository
	credentialRepo repository.CredentialRepository
	accountRepo    repository.AccountRepository
	tokenRepo      repository.TokenRepository
	hasher         service.PasswordHasher
	issuer         service.TokenIssuer
	logger         *slog.Logger
}

// GrantServiceParams holds dependencies for grantService, injected by Fx.
type GrantServiceParams struct {
	fx.In

	TxManager      repository.TransactionManager
	ClientRepo     repository.ClientRepository
	CredentialRepo repository.CredentialRepository
	AccountRepo    repository.AccountRepository
	TokenRepo      repository.TokenRepository
	Hasher         service.PasswordHasher
	Issuer         service.TokenIssuer
	Logger         *slog.Logger
}

// NewGrantService is the constructor for grantService.
func NewGrantService(params GrantServiceParams) usecase.GrantUsecase {
	return &grantService{
		txManager:      params.TxManager,
		clientRepo:     params.ClientRepo,
		credentialRepo: params.CredentialRepo,
		accountRepo:    params.AccountRepo,
		tokenRepo:      params.TokenRepo,
		hasher:         params.Hasher,
		issuer:         params.Issuer,
		logger:         params.Logger,
	}
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *grantService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// Token dispatches a token-endpoint request onto the matching grant flow.
func (srv *grantService) Token(ctx context.Context, input usecase.TokenInput) (*usecase.TokenOutput, error) {
	grant := entity.GrantType(input.GrantType)
	if !grant.IsValid() {
		srv.log(ctx).Warn("Token request with unknown grant type", slog.String("grantType", input.GrantType))

		return nil, domainerrors.ErrInvalidGrant.WrapMessage("unknown grant type")
	}
	if !grant.IsSupported() {
		srv.log(ctx).Warn("Token request with unsupported grant type", slog.String("grantType", input.GrantType))

		return nil, domainerrors.ErrUnsupportedGrantType.WrapMessage("grant type has no handler")
	}

	client, err := srv.authenticateClient(ctx, input.ClientID, input.ClientSecret, grant)
	if err != nil {
		return nil, err
	}

	switch grant {
	case entity.GrantTypeRefreshToken:
		return srv.handleRefreshGrant(ctx, client, input)
	default:
		return srv.handlePasswordGrant(ctx, client, input)
	}
}

// authenticateClient resolves and authenticates the requesting client. Every
// failure collapses into invalid_client so callers cannot probe which part
// was wrong.
func (srv *grantService) authenticateClient(ctx context.Context, clientID, clientSecret string, grant entity.GrantType) (*entity.Client, error) {
	client, err := srv.clientRepo.FindByClientID(ctx, clientID)
	if err != nil {
		if errors.Is(err, repository.ErrClientNotFound) {
			srv.log(ctx).Warn("Token request from unknown client", slog.String("clientID", clientID))

			return nil, domainerrors.ErrInvalidClient.WrapMessage("unknown client")
		}

		return nil, errors.Wrap(err, "failed to find client")
	}

	// Constant-time comparison keeps secret checking timing-neutral.
	if subtle.ConstantTimeCompare([]byte(client.ClientSecret), []byte(clientSecret)) != 1 {
		srv.log(ctx).Warn("Token request with wrong client secret", slog.String("clientID", clientID))

		return nil, domainerrors.ErrInvalidClient.WrapMessage("client secret mismatch")
	}

	if !client.AllowsGrant(grant) {
		srv.log(ctx).Warn("Token request for grant the client is not registered for",
			slog.String("clientID", clientID), slog.String("grantType", grant.String()))

		return nil, domainerrors.ErrInvalidClient.WrapMessage("client not registered for grant type")
	}

	return client, nil
}

// handlePasswordGrant exchanges a username/password pair for a fresh token pair.
func (srv *grantService) handlePasswordGrant(ctx context.Context, client *entity.Client, input usecase.TokenInput) (*usecase.TokenOutput, error) {
	if input.Username == "" || input.Password == "" {
		return nil, domainerrors.ErrInvalidGrant.WrapMessage("username and password are required")
	}

	credential, err := srv.credentialRepo.FindPasswordCredential(ctx, input.Username)
	if err != nil {
		if errors.Is(err, repository.ErrCredentialNotFound) {
			srv.log(ctx).Warn("Password grant for unknown username", slog.String("username", input.Username))

			return nil, domainerrors.ErrInvalidGrant.WrapMessage("invalid account credentials")
		}

		return nil, errors.Wrap(err, "failed to find password credential")
	}

	// Check password outside transaction (bcrypt is CPU-bound).
	if !srv.hasher.Check(input.Password, credential.SecretHash) {
		srv.log(ctx).Warn("Password grant with wrong password", slog.String("username", input.Username))

		return nil, domainerrors.ErrInvalidGrant.WrapMessage("invalid account credentials")
	}

	account, err := srv.accountRepo.FindByID(ctx, credential.AccountID)
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			return nil, domainerrors.ErrInvalidGrant.WrapMessage("credential has no account")
		}

		return nil, errors.Wrap(err, "failed to find account for credential")
	}

	scope, err := srv.resolveScope(client, account, input.Scope, "")
	if err != nil {
		srv.log(ctx).Warn("Password grant with disallowed scope",
			slog.String("clientID", client.ClientID), slog.String("scope", input.Scope))

		return nil, err
	}

	token, err := srv.issueAndStore(ctx, client, account, scope, nil)
	if err != nil {
		return nil, err
	}

	srv.log(ctx).Debug("Password grant succeeded",
		slog.Int64("accountID", account.ID), slog.String("scope", scope.String()))

	return buildTokenOutput(token, client), nil
}

// handleRefreshGrant rotates a live refresh token into a fresh pair. The old
// pair dies in the same transaction the new one is born in.
func (srv *grantService) handleRefreshGrant(ctx context.Context, client *entity.Client, input usecase.TokenInput) (*usecase.TokenOutput, error) {
	if input.RefreshToken == "" {
		return nil, domainerrors.ErrInvalidGrant.WrapMessage("refresh_token is required")
	}

	stored, err := srv.tokenRepo.FindByRefreshToken(ctx, input.RefreshToken)
	if err != nil {
		if errors.Is(err, repository.ErrTokenNotFound) {
			srv.log(ctx).Warn("Refresh grant with unknown refresh token", slog.String("clientID", client.ClientID))

			return nil, domainerrors.ErrInvalidGrant.WrapMessage("refresh token not found")
		}

		return nil, errors.Wrap(err, "failed to find refresh token")
	}

	if stored.RefreshExpired(time.Now()) {
		srv.log(ctx).Warn("Refresh grant with expired refresh token",
			slog.Int64("accountID", stored.AccountID), slog.Time("expiredAt", stored.RefreshExpiresAt))

		return nil, domainerrors.ErrInvalidGrant.WrapMessage("refresh token expired")
	}

	// A refresh token only rotates through the client it was issued to.
	if stored.ClientID != client.ID {
		srv.log(ctx).Warn("Refresh grant with token issued to another client",
			slog.String("clientID", client.ClientID))

		return nil, domainerrors.ErrInvalidGrant.WrapMessage("refresh token issued to another client")
	}

	account := stored.Account
	if account == nil {
		account, err = srv.accountRepo.FindByID(ctx, stored.AccountID)
		if err != nil {
			return nil, errors.Wrap(err, "failed to find account for refresh token")
		}
	}

	scope, err := srv.resolveScope(client, account, input.Scope, stored.Scope)
	if err != nil {
		srv.log(ctx).Warn("Refresh grant with disallowed scope",
			slog.String("clientID", client.ClientID), slog.String("scope", input.Scope))

		return nil, err
	}

	token, err := srv.issueAndStore(ctx, client, account, scope, stored)
	if err != nil {
		return nil, err
	}

	srv.log(ctx).Debug("Refresh grant succeeded",
		slog.Int64("accountID", account.ID), slog.String("scope", scope.String()))

	return buildTokenOutput(token, client), nil
}

// resolveScope picks the effective scope for issuance. An explicitly requested
// scope must be permitted for the client; otherwise the prior token's scope,
// the client's default, then the account's own scope apply in that order.
func (srv *grantService) resolveScope(client *entity.Client, account *entity.Account, requested string, prior entity.Scope) (entity.Scope, error) {
	if requested != "" {
		scope := entity.Scope(requested)
		if !scope.IsValid() || !client.AllowsScope(scope) {
			return "", domainerrors.ErrInvalidScope.WrapMessage("requested scope not permitted for client")
		}

		return scope, nil
	}

	if prior != "" {
		return prior, nil
	}

	if scope := client.DefaultScope(); scope != "" {
		return scope, nil
	}

	return account.Scope, nil
}

// issueAndStore mints a signed pair and persists it. When rotateFrom is set
// the old row is deleted in the same transaction. A unique-index collision on
// the freshly signed strings triggers one full re-issue before giving up.
func (srv *grantService) issueAndStore(ctx context.Context, client *entity.Client, account *entity.Account, scope entity.Scope, rotateFrom *entity.Token) (*entity.Token, error) {
	var lastErr error

	for attempt := 0; attempt < tokenIssueAttempts; attempt++ {
		access, err := srv.issuer.IssueAccessToken(client, account, scope)
		if err != nil {
			return nil, errors.Wrap(err, "failed to issue access token")
		}

		refresh, err := srv.issuer.IssueRefreshToken(client, account, scope)
		if err != nil {
			return nil, errors.Wrap(err, "failed to issue refresh token")
		}

		token := &entity.Token{
			ClientID:         client.ID,
			AccountID:        account.ID,
			Scope:            scope,
			AccessToken:      access.Value,
			AccessExpiresAt:  access.ExpiresAt,
			RefreshToken:     refresh.Value,
			RefreshExpiresAt: refresh.ExpiresAt,
		}

		err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
			tokenRepo := repoFactory.TokenRepo()

			if rotateFrom != nil {
				if err := tokenRepo.DeleteByID(ctx, rotateFrom.ID); err != nil {
					if errors.Is(err, repository.ErrTokenNotFound) {
						// A concurrent rotation already consumed this token.
						return domainerrors.ErrInvalidGrant.WrapMessage("refresh token already rotated")
					}

					return errors.Wrap(err, "failed to delete rotated token")
				}
			}

			return tokenRepo.Create(ctx, token)
		})

		if err == nil {
			return token, nil
		}

		if !errors.Is(err, repository.ErrDuplicateToken) {
			return nil, errors.Wrap(err, "failed to execute token issuance transaction")
		}

		srv.log(ctx).Warn("Issued token string collided with a stored one, re-issuing",
			slog.Int("attempt", attempt+1))
		lastErr = err
	}

	srv.log(ctx).Error("Token issuance collided twice in a row", slog.Any("error", lastErr))

	return nil, domainerrors.ErrTokenCollision.WrapMessage("token issuance collided after retry")
}

// buildTokenOutput shapes an issued pair into the OAuth2 response body.
func buildTokenOutput(token *entity.Token, client *entity.Client) *usecase.TokenOutput {
	return &usecase.TokenOutput{
		AccessToken:  token.AccessToken,
		TokenType:    "Bearer",
		ExpiresIn:    int64(client.AccessTokenLifetime() / time.Second),
		RefreshToken: token.RefreshToken,
		Scope:        token.Scope.String(),
	}
}
