package repository

import (
	"context"
	"errors"
	"time"

	"atelier/internal/domain/entity"

	"github.com/google/uuid"
)

// Domain-specific errors for token persistence.
var (
	// ErrTokenNotFound is returned when no token row matches the lookup.
	ErrTokenNotFound = errors.New("token not found")
	// ErrDuplicateToken is returned when an insert violates the uniqueness of
	// access or refresh token strings.
	ErrDuplicateToken = errors.New("token string already exists")
)

// TokenRepository defines the operations for issued access/refresh pairs.
// A token pair is live exactly as long as its row exists; deleting the row
// revokes the pair.
type TokenRepository interface {
	// Create persists a new token pair. Access and refresh token strings are
	// globally unique; a violation yields ErrDuplicateToken.
	Create(ctx context.Context, token *entity.Token) error

	// FindByAccessToken retrieves a token row by its access token string,
	// joining the owning client and account for caller convenience.
	FindByAccessToken(ctx context.Context, accessToken string) (*entity.Token, error)

	// FindByRefreshToken retrieves a token row by its refresh token string,
	// joining the owning client and account.
	FindByRefreshToken(ctx context.Context, refreshToken string) (*entity.Token, error)

	// DeleteByID removes a token row by primary key, used for refresh rotation.
	DeleteByID(ctx context.Context, id uuid.UUID) error

	// RevokeAccessToken deletes the row matching both the access token and the
	// owning account. Idempotent: revoking an absent token is not an error.
	RevokeAccessToken(ctx context.Context, accessToken string, accountID int64) error

	// DeleteByAccountID removes every token row of an account, used when a
	// password change invalidates all sessions.
	DeleteByAccountID(ctx context.Context, accountID int64) error

	// DeleteExpiredBefore bulk-deletes rows whose refresh expiry is before the
	// cutoff and returns the number of rows removed. This serves the external
	// cleanup-job collaborator.
	DeleteExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error)
}
