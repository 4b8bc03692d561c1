package repository

import (
	"context"

	"github.com/google/uuid"
)

// UserReader is the read side used by other domains through adapters.
type UserReader interface {
	GetUserByID(ctx context.Context, userID uuid.UUID) (User, error)
	ListUsers(ctx context.Context, filter ListFilter) ([]User, error)
}

// UsersRepository defines the users directory data operations.
type UsersRepository interface {
	UserReader
	SetPushToken(ctx context.Context, userID uuid.UUID, token *string) error
}

// Ensure Repository implements UsersRepository
var _ UsersRepository = (*Repository)(nil)
