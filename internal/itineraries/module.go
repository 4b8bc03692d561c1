// Package itineraries serves the travel packages agents quote from, with
// INR prices derived from the live USD rate.
package itineraries

import (
	"travel_crm_backend/internal/currency"
	apphttp "travel_crm_backend/internal/http"
	"travel_crm_backend/internal/itineraries/handler"
	"travel_crm_backend/internal/itineraries/repository"
	"travel_crm_backend/internal/itineraries/service"
	"travel_crm_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Module struct {
	handler *handler.Handler
}

func NewModule(pool *pgxpool.Pool, rates *currency.RateSource, val *validator.Validator) *Module {
	svc := service.New(repository.New(pool), rates)
	return &Module{handler: handler.New(svc, val)}
}

func (m *Module) Name() string {
	return "itineraries"
}

func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.Protected.GET("/itineraries", m.handler.List)
	ctx.Protected.GET("/itineraries/:id", m.handler.GetByID)

	admin := ctx.Admin.Group("/itineraries")
	admin.POST("", m.handler.Create)
	admin.PATCH("/:id/active", m.handler.SetActive)
}

var _ apphttp.Module = (*Module)(nil)
