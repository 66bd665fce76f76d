package usecase

import (
	"context"

	"atelier/internal/domain/entity"
)

// --- Input DTOs ---

// ChangePasswordInput defines the data required to change an account password.
type ChangePasswordInput struct {
	AccountID   int64
	OldPassword string
	NewPassword string
}

// RegisterAccountInput defines the data required to provision a new account
// together with its password credential.
type RegisterAccountInput struct {
	Name     string
	Email    string
	Phone    string
	Username string
	Password string
	Scope    entity.Scope
}

// AccountUsecase defines account lifecycle operations exposed to the
// delivery layer.
type AccountUsecase interface {
	// GetAccount returns the account's profile.
	GetAccount(ctx context.Context, accountID int64) (*entity.Account, error)

	// ChangePassword verifies the old password and replaces the stored hash.
	// All of the account's issued tokens are revoked in the same transaction.
	ChangePassword(ctx context.Context, input ChangePasswordInput) error

	// SignOut revokes the token pair behind the access token. Revoking a token
	// that is already gone is not an error.
	SignOut(ctx context.Context, accessToken string, accountID int64) error

	// RegisterAccount creates an account and its password credential.
	RegisterAccount(ctx context.Context, input RegisterAccountInput) (*entity.Account, error)
}

// ProvisionUsecase seeds the default client and operator account at startup.
type ProvisionUsecase interface {
	// Provision is idempotent: existing rows are left untouched.
	Provision(ctx context.Context) error
}
