// Package auth provides the users directory bounded context module.
// This file defines the module that encapsulates setup and route registration.
package auth

import (
	"travel_crm_backend/internal/auth/handler"
	"travel_crm_backend/internal/auth/repository"
	"travel_crm_backend/internal/auth/service"
	apphttp "travel_crm_backend/internal/http"
	"travel_crm_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the users directory module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
	repo    *repository.Repository
}

// NewModule creates and initializes the module with all its dependencies.
func NewModule(pool *pgxpool.Pool, val *validator.Validator) *Module {
	repo := repository.New(pool)
	svc := service.New(repo)

	return &Module{
		handler: handler.New(svc, val),
		service: svc,
		repo:    repo,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "users"
}

// Service returns the users service for use by other modules.
func (m *Module) Service() *service.Service {
	return m.service
}

// Repository returns the users store for adapters.
func (m *Module) Repository() *repository.Repository {
	return m.repo
}

// RegisterRoutes mounts user routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.Protected.GET("/users/me", m.handler.GetMe)
	ctx.Protected.PUT("/users/me/push-token", m.handler.UpdatePushToken)

	ctx.Admin.GET("/users", m.handler.ListUsers)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
