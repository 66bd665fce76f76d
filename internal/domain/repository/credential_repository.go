package repository

import (
	"context"
	"errors"

	"atelier/internal/domain/entity"

	"github.com/google/uuid"
)

// ErrCredentialNotFound is returned when no matching credential exists.
var ErrCredentialNotFound = errors.New("credential not found")

// CredentialRepository defines the operations for login-credential persistence.
// Secret verification itself is a PasswordHasher concern; repositories only
// move hashes around.
type CredentialRepository interface {
	// FindPasswordCredential retrieves a password-type credential by username,
	// with AccountID resolved through the account_credentials join. When a
	// credential is linked to several accounts the first link wins.
	FindPasswordCredential(ctx context.Context, username string) (*entity.Credential, error)

	// FindCredentialForAccount retrieves the password-type credential linked
	// to the given account, used by password-change flows.
	FindCredentialForAccount(ctx context.Context, accountID int64) (*entity.Credential, error)

	// CreateCredential persists a new credential and links it to the account.
	CreateCredential(ctx context.Context, accountID int64, credential *entity.Credential) error

	// UpdateSecret replaces the stored secret hash of a credential. It is
	// expected to run inside a surrounding transaction when the caller needs
	// atomicity with other writes.
	UpdateSecret(ctx context.Context, credentialID uuid.UUID, secretHash string) error
}
