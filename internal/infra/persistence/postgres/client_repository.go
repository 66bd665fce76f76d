package postgres

import (
	"context"
	"strings"
	"time"

	"atelier/internal/domain/entity"
	domainerrors "atelier/internal/domain/errors"
	"atelier/internal/domain/repository"
	"atelier/internal/infra/persistence/model"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// clientRepository implements the domain.ClientRepository interface.
type clientRepository struct {
	db *gorm.DB
}

// NewClientRepository is the constructor for clientRepository.
func NewClientRepository(db *gorm.DB) repository.ClientRepository {
	return &clientRepository{db: db}
}

// FindByClientID retrieves a client by its public client identifier.
func (repo *clientRepository) FindByClientID(ctx context.Context, clientID string) (*entity.Client, error) {
	var clientM model.ClientModel

	err := repo.db.WithContext(ctx).
		Where("client_id = ?", clientID).
		First(&clientM).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrClientNotFound
		}

		return nil, errors.WithStack(err)
	}

	return toClientDomain(&clientM), nil
}

// Create persists a new client registration.
func (repo *clientRepository) Create(ctx context.Context, client *entity.Client) error {
	clientM := fromClientDomain(client)

	if err := repo.db.WithContext(ctx).Create(clientM).Error; err != nil {
		if isUniqueConstraintViolation(err) {
			return domainerrors.ErrConflict.WrapMessage("client identifier already registered")
		}
		if isNotNullConstraintViolation(err) {
			return domainerrors.ErrValidationFailed.WrapMessage("missing required client information")
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create client")
	}

	// Update the entity with generated values
	client.ID = clientM.ID
	client.CreatedAt = clientM.CreatedAt
	client.UpdatedAt = clientM.UpdatedAt

	return nil
}

// --- Mapper Functions ---

// toClientDomain converts a GORM ClientModel to a domain Client entity.
func toClientDomain(data *model.ClientModel) *entity.Client {
	if data == nil {
		return nil
	}

	return &entity.Client{
		ID:              data.ID,
		Name:            data.Name,
		ClientID:        data.ClientID,
		ClientSecret:    data.ClientSecret,
		Scope:           entity.ParseScopes(data.Scope),
		Grants:          entity.GrantTypesFromStrings(splitList(data.Grants, ",")),
		RedirectURIs:    splitList(data.RedirectURIs, ","),
		AccessTokenTTL:  time.Duration(data.AccessTokenLifetime) * time.Second,
		RefreshTokenTTL: time.Duration(data.RefreshTokenLifetime) * time.Second,
		CreatedAt:       data.CreatedAt,
		UpdatedAt:       data.UpdatedAt,
	}
}

// fromClientDomain converts a domain Client entity to a GORM ClientModel.
func fromClientDomain(data *entity.Client) *model.ClientModel {
	if data == nil {
		return nil
	}

	return &model.ClientModel{
		ID:                   data.ID,
		Name:                 data.Name,
		ClientID:             data.ClientID,
		ClientSecret:         data.ClientSecret,
		Scope:                data.Scope.String(),
		Grants:               strings.Join(data.Grants.ToStrings(), ","),
		RedirectURIs:         strings.Join(data.RedirectURIs, ","),
		AccessTokenLifetime:  int64(data.AccessTokenLifetime() / time.Second),
		RefreshTokenLifetime: int64(data.RefreshTokenLifetime() / time.Second),
		CreatedAt:            data.CreatedAt,
		UpdatedAt:            data.UpdatedAt,
	}
}

// splitList splits a flat-encoded column value, dropping empty segments.
func splitList(raw string, sep string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, sep)
	out := make([]string, 0, len(parts))

	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}

	return out
}
