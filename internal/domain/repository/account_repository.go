// Package repository defines the interfaces for the persistence layer.
// These interfaces act as a contract between the domain/application layers and the infrastructure layer.
package repository

import (
	"context"
	"errors"

	"atelier/internal/domain/entity"
)

// ErrAccountNotFound is returned when an account row does not exist.
var ErrAccountNotFound = errors.New("account not found")

// AccountRepository defines the standard operations for account persistence.
type AccountRepository interface {
	// Create persists a new account and backfills generated values.
	Create(ctx context.Context, account *entity.Account) error

	// FindByID retrieves an account by its numeric id.
	FindByID(ctx context.Context, id int64) (*entity.Account, error)

	// Update persists changes to an existing account.
	Update(ctx context.Context, account *entity.Account) error
}
