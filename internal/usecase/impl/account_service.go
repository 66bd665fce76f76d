package impl

import (
	"context"
	"log/slog"

	deliverycontext "atelier/internal/delivery/context"
	"atelier/internal/domain/entity"
	domainerrors "atelier/internal/domain/errors"
	"atelier/internal/domain/repository"
	"atelier/internal/domain/service"
	"atelier/internal/usecase"

	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// accountService implements the AccountUsecase interface.
type accountService struct {
	txManager      repository.TransactionManager
	accountRepo    repository.AccountRepository
	credentialRepo repository.CredentialRepository
	tokenRepo      repository.TokenRepository
	hasher         service.PasswordHasher
	logger         *slog.Logger
}

// AccountServiceParams holds dependencies for accountService, injected by Fx.
type AccountServiceParams struct {
	fx.In

	TxManager      repository.TransactionManager
	AccountRepo    repository.AccountRepository
	CredentialRepo repository.CredentialRepository
	TokenRepo      repository.TokenRepository
	Hasher         service.PasswordHasher
	Logger         *slog.Logger
}

// NewAccountService is the constructor for accountService.
func NewAccountService(params AccountServiceParams) usecase.AccountUsecase {
	return &accountService{
		txManager:      params.TxManager,
		accountRepo:    params.AccountRepo,
		credentialRepo: params.CredentialRepo,
		tokenRepo:      params.TokenRepo,
		hasher:         params.Hasher,
		logger:         params.Logger,
	}
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *accountService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// GetAccount returns the account's profile.
func (srv *accountService) GetAccount(ctx context.Context, accountID int64) (*entity.Account, error) {
	account, err := srv.accountRepo.FindByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			return nil, domainerrors.ErrAccountNotFound.WrapMessage("account not found")
		}

		return nil, errors.Wrap(err, "failed to find account")
	}

	return account, nil
}

// ChangePassword verifies the old password, replaces the stored hash, and
// revokes every token the account holds. The hash swap and the revocation
// commit or roll back together.
func (srv *accountService) ChangePassword(ctx context.Context, input usecase.ChangePasswordInput) error {
	credential, err := srv.credentialRepo.FindCredentialForAccount(ctx, input.AccountID)
	if err != nil {
		if errors.Is(err, repository.ErrCredentialNotFound) {
			srv.log(ctx).Warn("Password change for account without password credential",
				slog.Int64("accountID", input.AccountID))

			return domainerrors.ErrCredentialNotFound.WrapMessage("no password credential for account")
		}

		return errors.Wrap(err, "failed to find credential for account")
	}

	// Check old password outside transaction (bcrypt is CPU-bound).
	if !srv.hasher.Check(input.OldPassword, credential.SecretHash) {
		srv.log(ctx).Warn("Password change with wrong old password", slog.Int64("accountID", input.AccountID))

		return domainerrors.ErrForbidden.WrapMessage("old password mismatch")
	}

	newHash, err := srv.hasher.Hash(input.NewPassword)
	if err != nil {
		srv.log(ctx).Warn("Password change rejected by strength policy",
			slog.Int64("accountID", input.AccountID), slog.Any("error", err))

		return errors.Wrap(err, "failed to hash new password")
	}

	err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		if err := repoFactory.CredentialRepo().UpdateSecret(ctx, credential.ID, newHash); err != nil {
			return errors.Wrap(err, "failed to update credential secret")
		}

		// A password change invalidates every live session of the account.
		if err := repoFactory.TokenRepo().DeleteByAccountID(ctx, input.AccountID); err != nil {
			return errors.Wrap(err, "failed to revoke account tokens")
		}

		return nil
	})
	if err != nil {
		srv.log(ctx).Error("Failed to execute password change transaction",
			slog.Int64("accountID", input.AccountID), slog.Any("error", err))

		return errors.Wrap(err, "failed to execute password change transaction")
	}

	srv.log(ctx).Info("Password changed and sessions revoked", slog.Int64("accountID", input.AccountID))

	return nil
}

// SignOut revokes the token pair behind the presented access token. Revoking
// a token that is already gone succeeds silently.
func (srv *accountService) SignOut(ctx context.Context, accessToken string, accountID int64) error {
	if err := srv.tokenRepo.RevokeAccessToken(ctx, accessToken, accountID); err != nil {
		srv.log(ctx).Error("Failed to revoke access token", slog.Int64("accountID", accountID), slog.Any("error", err))

		return errors.Wrap(err, "failed to revoke access token")
	}

	srv.log(ctx).Debug("Signed out", slog.Int64("accountID", accountID))

	return nil
}

// RegisterAccount creates an account and its password credential in one
// transaction.
func (srv *accountService) RegisterAccount(ctx context.Context, input usecase.RegisterAccountInput) (*entity.Account, error) {
	srv.log(ctx).Info("Registering account", slog.String("username", input.Username), slog.String("scope", input.Scope.String()))

	if !input.Scope.IsValid() {
		return nil, domainerrors.ErrValidationFailed.WrapMessage("unknown account scope")
	}

	secretHash, err := srv.hasher.Hash(input.Password)
	if err != nil {
		srv.log(ctx).Warn("Registration rejected by password policy",
			slog.String("username", input.Username), slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to hash password during registration")
	}

	account := &entity.Account{
		Name:  input.Name,
		Phone: input.Phone,
		Email: input.Email,
		Scope: input.Scope,
	}

	err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		if err := repoFactory.AccountRepo().Create(ctx, account); err != nil {
			return errors.Wrap(err, "failed to create account")
		}

		credential := &entity.Credential{
			Type:       entity.CredentialTypePassword,
			Username:   input.Username,
			SecretHash: secretHash,
		}

		if err := repoFactory.CredentialRepo().CreateCredential(ctx, account.ID, credential); err != nil {
			return errors.Wrap(err, "failed to create credential")
		}

		return nil
	})
	if err != nil {
		srv.log(ctx).Error("Failed to execute registration transaction",
			slog.String("username", input.Username), slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to execute account registration transaction")
	}

	srv.log(ctx).Debug("Account registered", slog.Int64("accountID", account.ID))

	return account, nil
}
