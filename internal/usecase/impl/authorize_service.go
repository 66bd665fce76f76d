package impl

import (
	"context"
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

// authorizeService implements the AuthorizeUsecase interface.
type authorizeService struct {
	tokenRepo repository.TokenRepository
	issuer    service.TokenIssuer
	logger    *slog.Logger
}

// AuthorizeServiceParams holds dependencies for authorizeService, injected by Fx.
type AuthorizeServiceParams struct {
	fx.In

	TokenRepo repository.TokenRepository
	Issuer    service.TokenIssuer
	Logger    *slog.Logger
}

// NewAuthorizeService is the constructor for authorizeService.
func NewAuthorizeService(params AuthorizeServiceParams) usecase.AuthorizeUsecase {
	return &authorizeService{
		tokenRepo: params.TokenRepo,
		issuer:    params.Issuer,
		logger:    params.Logger,
	}
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *authorizeService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// Authorize resolves a bearer token string into an authenticated principal.
// The signature check is cheap and runs first; the stored row is the source of
// truth for liveness, so revoked tokens die here even when their signature
// still verifies.
func (srv *authorizeService) Authorize(ctx context.Context, accessToken string, requiredScope entity.Scope) (*usecase.Principal, error) {
	if accessToken == "" {
		return nil, domainerrors.ErrInvalidToken.WrapMessage("missing access token")
	}

	if _, err := srv.issuer.VerifyAccessToken(accessToken); err != nil {
		srv.log(ctx).Warn("Access token failed signature verification", slog.Any("error", err))

		return nil, domainerrors.ErrInvalidToken.WrapMessage("token verification failed")
	}

	stored, err := srv.tokenRepo.FindByAccessToken(ctx, accessToken)
	if err != nil {
		if errors.Is(err, repository.ErrTokenNotFound) {
			srv.log(ctx).Warn("Access token not found, possibly revoked")

			return nil, domainerrors.ErrInvalidToken.WrapMessage("token revoked or never issued")
		}

		return nil, errors.Wrap(err, "failed to find access token")
	}

	if stored.AccessExpired(time.Now()) {
		srv.log(ctx).Warn("Expired access token presented",
			slog.Int64("accountID", stored.AccountID), slog.Time("expiredAt", stored.AccessExpiresAt))

		return nil, domainerrors.ErrInvalidToken.WrapMessage("access token expired")
	}

	// Scope matching is exact; there is no hierarchy between scopes.
	if requiredScope != "" && stored.Scope != requiredScope {
		srv.log(ctx).Warn("Access token scope mismatch",
			slog.Int64("accountID", stored.AccountID),
			slog.String("tokenScope", stored.Scope.String()),
			slog.String("requiredScope", requiredScope.String()))

		return nil, domainerrors.ErrInsufficientScope.WrapMessage("token scope does not cover resource")
	}

	return &usecase.Principal{
		Token:   stored,
		Account: stored.Account,
		Scope:   stored.Scope,
	}, nil
}
