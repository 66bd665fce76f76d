package postgres

import (
	"context"
	"time"

	"atelier/internal/domain/entity"
	domainerrors "atelier/internal/domain/errors"
	"atelier/internal/domain/repository"
	"atelier/internal/infra/persistence/model"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// tokenRepository implements the domain.TokenRepository interface.
type tokenRepository struct {
	db *gorm.DB
}

// NewTokenRepository is the constructor for tokenRepository.
func NewTokenRepository(db *gorm.DB) repository.TokenRepository {
	return &tokenRepository{db: db}
}

// Create persists a freshly issued token pair. The unique indexes on both
// token columns surface collisions as ErrDuplicateToken so callers can retry
// with a new pair.
func (repo *tokenRepository) Create(ctx context.Context, token *entity.Token) error {
	tokenM := fromTokenDomain(token)

	if err := repo.db.WithContext(ctx).Create(tokenM).Error; err != nil {
		if isUniqueConstraintViolation(err) {
			return repository.ErrDuplicateToken
		}
		if isForeignKeyConstraintViolation(err) {
			return domainerrors.ErrValidationFailed.WrapMessage("token references unknown client or account")
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create token")
	}

	// Update the entity with generated values
	token.ID = tokenM.ID
	token.CreatedAt = tokenM.CreatedAt

	return nil
}

// FindByAccessToken retrieves a token pair by its access token string,
// including the issuing client and the holder account.
func (repo *tokenRepository) FindByAccessToken(ctx context.Context, accessToken string) (*entity.Token, error) {
	return repo.findBy(ctx, "access_token = ?", accessToken)
}

// FindByRefreshToken retrieves a token pair by its refresh token string,
// including the issuing client and the holder account.
func (repo *tokenRepository) FindByRefreshToken(ctx context.Context, refreshToken string) (*entity.Token, error) {
	return repo.findBy(ctx, "refresh_token = ?", refreshToken)
}

func (repo *tokenRepository) findBy(ctx context.Context, cond string, value string) (*entity.Token, error) {
	var tokenM model.TokenModel

	err := repo.db.WithContext(ctx).
		Preload("Client").
		Preload("Account").
		Where(cond, value).
		First(&tokenM).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrTokenNotFound
		}

		return nil, errors.WithStack(err)
	}

	return toTokenDomain(&tokenM), nil
}

// DeleteByID removes a single token pair row.
func (repo *tokenRepository) DeleteByID(ctx context.Context, id uuid.UUID) error {
	result := repo.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&model.TokenModel{})

	if result.Error != nil {
		return domainerrors.NewDatabaseExecuteError(result.Error, "failed to delete token")
	}

	if result.RowsAffected == 0 {
		return repository.ErrTokenNotFound
	}

	return nil
}

// RevokeAccessToken removes the token pair matching the access token string,
// constrained to the given account so one holder cannot revoke another's
// session. Deleting an already-revoked token is a no-op.
func (repo *tokenRepository) RevokeAccessToken(ctx context.Context, accessToken string, accountID int64) error {
	result := repo.db.WithContext(ctx).
		Where("access_token = ? AND account_id = ?", accessToken, accountID).
		Delete(&model.TokenModel{})

	if result.Error != nil {
		return domainerrors.NewDatabaseExecuteError(result.Error, "failed to revoke token")
	}

	return nil
}

// DeleteByAccountID removes every token pair held by the account.
func (repo *tokenRepository) DeleteByAccountID(ctx context.Context, accountID int64) error {
	err := repo.db.WithContext(ctx).
		Where("account_id = ?", accountID).
		Delete(&model.TokenModel{}).Error

	if err != nil {
		return domainerrors.NewDatabaseExecuteError(err, "failed to delete account tokens")
	}

	return nil
}

// DeleteExpiredBefore removes token pairs whose refresh token expired before
// the cutoff and reports how many rows were purged.
func (repo *tokenRepository) DeleteExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result := repo.db.WithContext(ctx).
		Where("refresh_expires_at < ?", cutoff).
		Delete(&model.TokenModel{})

	if result.Error != nil {
		return 0, domainerrors.NewDatabaseExecuteError(result.Error, "failed to purge expired tokens")
	}

	return result.RowsAffected, nil
}

// --- Mapper Functions ---

// toTokenDomain converts a GORM TokenModel to a domain Token entity.
func toTokenDomain(data *model.TokenModel) *entity.Token {
	if data == nil {
		return nil
	}

	return &entity.Token{
		ID:               data.ID,
		ClientID:         data.ClientID,
		AccountID:        data.AccountID,
		Scope:            entity.Scope(data.Scope),
		AccessToken:      data.AccessToken,
		AccessExpiresAt:  data.AccessExpiresAt,
		RefreshToken:     data.RefreshToken,
		RefreshExpiresAt: data.RefreshExpiresAt,
		CreatedAt:        data.CreatedAt,
		Client:           toClientDomain(data.Client),
		Account:          toAccountDomain(data.Account),
	}
}

// fromTokenDomain converts a domain Token entity to a GORM TokenModel.
func fromTokenDomain(data *entity.Token) *model.TokenModel {
	if data == nil {
		return nil
	}

	return &model.TokenModel{
		ID:               data.ID,
		ClientID:         data.ClientID,
		AccountID:        data.AccountID,
		Scope:            data.Scope.String(),
		AccessToken:      data.AccessToken,
		AccessExpiresAt:  data.AccessExpiresAt,
		RefreshToken:     data.RefreshToken,
		RefreshExpiresAt: data.RefreshExpiresAt,
		CreatedAt:        data.CreatedAt,
	}
}
