package repository

import (
	"context"
	"errors"

	"atelier/internal/domain/entity"
)

// ErrClientNotFound is returned when no client matches the public identifier.
var ErrClientNotFound = errors.New("client not found")

// ClientRepository defines the operations for registered OAuth clients.
type ClientRepository interface {
	// FindByClientID retrieves a client by its public client_id.
	FindByClientID(ctx context.Context, clientID string) (*entity.Client, error)

	// Create persists a new client, used by bootstrap provisioning.
	Create(ctx context.Context, client *entity.Client) error
}
