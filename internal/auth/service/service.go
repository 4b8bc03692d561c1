package service

import (
	"context"
	"errors"
	"strings"

	"travel_crm_backend/internal/auth/repository"
	"travel_crm_backend/platform/apperr"

	"github.com/google/uuid"
)

type Service struct {
	repo repository.UsersRepository
}

func New(repo repository.UsersRepository) *Service {
	return &Service{repo: repo}
}

// Role names carried in the access token "roles" claim. Mirrors the users.role check.
const (
	roleAdmin      = "admin"
	roleSales      = "sales"
	roleOperations = "operations"
)

func (s *Service) GetMe(ctx context.Context, userID uuid.UUID) (repository.User, error) {
	user, err := s.repo.GetUserByID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return repository.User{}, apperr.NotFound("user not found")
	}
	if err != nil {
		return repository.User{}, apperr.Store("users.GetUserByID", err)
	}
	return user, nil
}

func (s *Service) ListUsers(ctx context.Context, role, status string) ([]repository.User, error) {
	filter := repository.ListFilter{}
	if role = strings.TrimSpace(role); role != "" {
		if !validRole(role) {
			return nil, apperr.Validation("unknown role")
		}
		filter.Role = &role
	}
	if status = strings.TrimSpace(status); status != "" {
		filter.Status = &status
	}

	users, err := s.repo.ListUsers(ctx, filter)
	if err != nil {
		return nil, apperr.Store("users.ListUsers", err)
	}
	return users, nil
}

// UpdatePushToken registers or clears the caller's device token.
func (s *Service) UpdatePushToken(ctx context.Context, userID uuid.UUID, token string) error {
	var value *string
	if trimmed := strings.TrimSpace(token); trimmed != "" {
		value = &trimmed
	}
	err := s.repo.SetPushToken(ctx, userID, value)
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.NotFound("active user not found")
	}
	if err != nil {
		return apperr.Store("users.SetPushToken", err)
	}
	return nil
}

func validRole(role string) bool {
	switch role {
	case roleAdmin, roleSales, roleOperations:
		return true
	}
	return false
}
