// Package adapter provides implementations of external interfaces that other domains need.
// The users directory hands out adapters that satisfy consumer-driven interfaces
// so other contexts never import its internals.
package adapter

import (
	"context"
	"errors"

	"travel_crm_backend/internal/auth"
	"travel_crm_backend/internal/auth/repository"

	"github.com/google/uuid"
)

// ErrUserNotFound is returned when the id does not match a user.
var ErrUserNotFound = errors.New("user not found")

// UserProviderAdapter implements auth.UserProvider on top of the users store.
type UserProviderAdapter struct {
	repo repository.UserReader
}

// NewUserProviderAdapter creates a new adapter for providing user info to other domains.
func NewUserProviderAdapter(repo repository.UserReader) *UserProviderAdapter {
	return &UserProviderAdapter{repo: repo}
}

// GetUserByID implements auth.UserProvider.
func (a *UserProviderAdapter) GetUserByID(ctx context.Context, userID uuid.UUID) (auth.Profile, error) {
	user, err := a.repo.GetUserByID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return auth.Profile{}, ErrUserNotFound
	}
	if err != nil {
		return auth.Profile{}, err
	}

	return auth.Profile{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		Phone:     user.Phone,
		Role:      user.Role,
		Status:    user.Status,
		PushToken: user.PushToken,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}, nil
}

// PushToken returns the user's registered device token, if any.
func (a *UserProviderAdapter) PushToken(ctx context.Context, userID uuid.UUID) (string, bool, error) {
	user, err := a.repo.GetUserByID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	if user.PushToken == nil || *user.PushToken == "" || user.Status != "active" {
		return "", false, nil
	}
	return *user.PushToken, true, nil
}

// Ensure UserProviderAdapter implements auth.UserProvider
var _ auth.UserProvider = (*UserProviderAdapter)(nil)
