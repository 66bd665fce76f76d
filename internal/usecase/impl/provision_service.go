package impl

import (
	"context"
	"log/slog"
	"time"

	"atelier/config"
	deliverycontext "atelier/internal/delivery/context"
	"atelier/internal/domain/entity"
	"atelier/internal/domain/repository"
	"atelier/internal/domain/service"
	"atelier/internal/usecase"

	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// provisionService implements the ProvisionUsecase interface. It seeds the
// default client and the initial operator account from config at startup.
type provisionService struct {
	txManager      repository.TransactionManager
	clientRepo     repository.ClientRepository
	credentialRepo repository.CredentialRepository
	hasher         service.PasswordHasher
	oauthCfg       *config.OAuthConfig
	logger         *slog.Logger
}

// ProvisionServiceParams holds dependencies for provisionService, injected by Fx.
type ProvisionServiceParams struct {
	fx.In

	TxManager      repository.TransactionManager
	ClientRepo     repository.ClientRepository
	CredentialRepo repository.CredentialRepository
	Hasher         service.PasswordHasher
	Config         *config.Config
	Logger         *slog.Logger
}

// NewProvisionService is the constructor for provisionService.
func NewProvisionService(params ProvisionServiceParams) usecase.ProvisionUsecase {
	var oauthCfg *config.OAuthConfig
	if params.Config != nil {
		oauthCfg = params.Config.OAuth
	}

	return &provisionService{
		txManager:      params.TxManager,
		clientRepo:     params.ClientRepo,
		credentialRepo: params.CredentialRepo,
		hasher:         params.Hasher,
		oauthCfg:       oauthCfg,
		logger:         params.Logger,
	}
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *provisionService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// Provision seeds bootstrap rows that do not exist yet. Re-running it against
// an already seeded database changes nothing.
func (srv *provisionService) Provision(ctx context.Context) error {
	if srv.oauthCfg == nil {
		srv.log(ctx).Info("No bootstrap configuration, skipping provisioning")

		return nil
	}

	if err := srv.provisionClient(ctx); err != nil {
		return err
	}

	return srv.provisionOperator(ctx)
}

func (srv *provisionService) provisionClient(ctx context.Context) error {
	bootstrap := srv.oauthCfg.Client
	if bootstrap == nil {
		return nil
	}

	_, err := srv.clientRepo.FindByClientID(ctx, bootstrap.ClientID)
	if err == nil {
		srv.log(ctx).Debug("Bootstrap client already exists", slog.String("clientID", bootstrap.ClientID))

		return nil
	}
	if !errors.Is(err, repository.ErrClientNotFound) {
		return errors.Wrap(err, "failed to check bootstrap client")
	}

	client := &entity.Client{
		Name:            bootstrap.Name,
		ClientID:        bootstrap.ClientID,
		ClientSecret:    bootstrap.ClientSecret,
		Scope:           entity.ParseScopes(bootstrap.Scope),
		Grants:          entity.GrantTypesFromStrings(bootstrap.Grants),
		AccessTokenTTL:  time.Duration(bootstrap.AccessTokenLifetime) * time.Second,
		RefreshTokenTTL: time.Duration(bootstrap.RefreshTokenLifetime) * time.Second,
	}

	if err := srv.clientRepo.Create(ctx, client); err != nil {
		return errors.Wrap(err, "failed to create bootstrap client")
	}

	srv.log(ctx).Info("Seeded bootstrap client", slog.String("clientID", bootstrap.ClientID))

	return nil
}

func (srv *provisionService) provisionOperator(ctx context.Context) error {
	bootstrap := srv.oauthCfg.Operator
	if bootstrap == nil {
		return nil
	}

	_, err := srv.credentialRepo.FindPasswordCredential(ctx, bootstrap.Username)
	if err == nil {
		srv.log(ctx).Debug("Bootstrap operator already exists", slog.String("username", bootstrap.Username))

		return nil
	}
	if !errors.Is(err, repository.ErrCredentialNotFound) {
		return errors.Wrap(err, "failed to check bootstrap operator")
	}

	secretHash, err := srv.hasher.Hash(bootstrap.Password)
	if err != nil {
		return errors.Wrap(err, "failed to hash bootstrap operator password")
	}

	err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		account := &entity.Account{
			Name:  bootstrap.Name,
			Email: bootstrap.Email,
			Phone: bootstrap.Phone,
			Scope: entity.ScopeOperator,
		}

		if err := repoFactory.AccountRepo().Create(ctx, account); err != nil {
			return errors.Wrap(err, "failed to create bootstrap operator account")
		}

		credential := &entity.Credential{
			Type:       entity.CredentialTypePassword,
			Username:   bootstrap.Username,
			SecretHash: secretHash,
		}

		if err := repoFactory.CredentialRepo().CreateCredential(ctx, account.ID, credential); err != nil {
			return errors.Wrap(err, "failed to create bootstrap operator credential")
		}

		return nil
	})
	if err != nil {
		return errors.Wrap(err, "failed to execute operator provisioning transaction")
	}

	srv.log(ctx).Info("Seeded bootstrap operator", slog.String("username", bootstrap.Username))

	return nil
}
