// Package analytics serves read-only sales rollups: per-agent call and
// conversion figures, monthly target progress and the admin leaderboard.
package analytics

import (
	"travel_crm_backend/internal/analytics/handler"
	"travel_crm_backend/internal/analytics/repository"
	"travel_crm_backend/internal/analytics/service"
	apphttp "travel_crm_backend/internal/http"
	"travel_crm_backend/platform/config"
	"travel_crm_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Module struct {
	handler *handler.Handler
}

func NewModule(pool *pgxpool.Pool, cfg config.WorkflowConfig, val *validator.Validator) *Module {
	svc := service.New(repository.New(pool), cfg)
	return &Module{handler: handler.New(svc, val)}
}

func (m *Module) Name() string {
	return "analytics"
}

func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.Protected.GET("/analytics/me", m.handler.Me)
	ctx.Protected.GET("/analytics/agents/:id", m.handler.Agent)

	ctx.Admin.GET("/analytics/leaderboard", m.handler.Leaderboard)
	ctx.Admin.PUT("/analytics/targets/:id", m.handler.UpsertTarget)
}

var _ apphttp.Module = (*Module)(nil)
