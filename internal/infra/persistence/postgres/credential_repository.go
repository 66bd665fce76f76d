package postgres

import (
	"context"

	"atelier/internal/domain/entity"
	domainerrors "atelier/internal/domain/errors"
	"atelier/internal/domain/repository"
	"atelier/internal/infra/persistence/model"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// credentialRepository implements the domain.CredentialRepository interface.
type credentialRepository struct {
	db *gorm.DB
}

// NewCredentialRepository is the constructor for credentialRepository.
func NewCredentialRepository(db *gorm.DB) repository.CredentialRepository {
	return &credentialRepository{db: db}
}

// FindPasswordCredential retrieves a password-type credential by username and
// resolves the first linked account through the join table.
func (repo *credentialRepository) FindPasswordCredential(ctx context.Context, username string) (*entity.Credential, error) {
	var credentialM model.CredentialModel

	err := repo.db.WithContext(ctx).
		Where("type = ? AND username = ?", entity.CredentialTypePassword.String(), username).
		First(&credentialM).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrCredentialNotFound
		}

		return nil, errors.WithStack(err)
	}

	accountID, err := repo.firstLinkedAccount(ctx, credentialM.ID)
	if err != nil {
		return nil, err
	}

	credential := toCredentialDomain(&credentialM)
	credential.AccountID = accountID

	return credential, nil
}

// FindCredentialForAccount retrieves the password-type credential linked to
// the account.
func (repo *credentialRepository) FindCredentialForAccount(ctx context.Context, accountID int64) (*entity.Credential, error) {
	var credentialM model.CredentialModel

	err := repo.db.WithContext(ctx).
		Joins("JOIN account_credentials ON account_credentials.credential_id = credentials.id").
		Where("account_credentials.account_id = ? AND credentials.type = ?", accountID, entity.CredentialTypePassword.String()).
		First(&credentialM).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrCredentialNotFound
		}

		return nil, errors.WithStack(err)
	}

	credential := toCredentialDomain(&credentialM)
	credential.AccountID = accountID

	return credential, nil
}

// CreateCredential persists a new credential and its account link in order.
// Callers wrap this in a transaction when they need both writes to be atomic.
func (repo *credentialRepository) CreateCredential(ctx context.Context, accountID int64, credential *entity.Credential) error {
	credentialM := fromCredentialDomain(credential)

	if err := repo.db.WithContext(ctx).Create(credentialM).Error; err != nil {
		if isUniqueConstraintViolation(err) {
			return domainerrors.ErrAccountAlreadyExists.WrapMessage("username already registered for this credential type")
		}
		if isNotNullConstraintViolation(err) {
			return domainerrors.ErrAccountCreationFailed.WrapMessage("missing required credential information")
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create credential")
	}

	link := &model.AccountCredentialModel{
		AccountID:    accountID,
		CredentialID: credentialM.ID,
	}

	if err := repo.db.WithContext(ctx).Create(link).Error; err != nil {
		if isForeignKeyConstraintViolation(err) {
			return domainerrors.ErrAccountCreationFailed.WrapMessage("invalid account reference")
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to link credential to account")
	}

	// Update the entity with generated values
	credential.ID = credentialM.ID
	credential.AccountID = accountID
	credential.CreatedAt = credentialM.CreatedAt

	return nil
}

// UpdateSecret replaces the stored secret hash of a credential.
func (repo *credentialRepository) UpdateSecret(ctx context.Context, credentialID uuid.UUID, secretHash string) error {
	result := repo.db.WithContext(ctx).
		Model(&model.CredentialModel{}).
		Where("id = ?", credentialID).
		Update("secret_hash", secretHash)

	if result.Error != nil {
		return domainerrors.NewDatabaseExecuteError(result.Error, "failed to update credential secret")
	}

	if result.RowsAffected == 0 {
		return repository.ErrCredentialNotFound
	}

	return nil
}

// firstLinkedAccount resolves the join row for a credential. Ordering makes
// the "first match wins" rule deterministic.
func (repo *credentialRepository) firstLinkedAccount(ctx context.Context, credentialID uuid.UUID) (int64, error) {
	var link model.AccountCredentialModel

	err := repo.db.WithContext(ctx).
		Where("credential_id = ?", credentialID).
		Order("account_id").
		First(&link).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, repository.ErrCredentialNotFound
		}

		return 0, errors.WithStack(err)
	}

	return link.AccountID, nil
}

// --- Mapper Functions ---

// toCredentialDomain converts a GORM CredentialModel to a domain Credential entity.
func toCredentialDomain(data *model.CredentialModel) *entity.Credential {
	if data == nil {
		return nil
	}

	return &entity.Credential{
		ID:         data.ID,
		Type:       entity.CredentialType(data.Type),
		Username:   data.Username,
		SecretHash: data.SecretHash,
		CreatedAt:  data.CreatedAt,
	}
}

// fromCredentialDomain converts a domain Credential entity to a GORM CredentialModel.
func fromCredentialDomain(data *entity.Credential) *model.CredentialModel {
	if data == nil {
		return nil
	}

	return &model.CredentialModel{
		ID:         data.ID,
		Type:       data.Type.String(),
		Username:   data.Username,
		SecretHash: data.SecretHash,
		CreatedAt:  data.CreatedAt,
	}
}
