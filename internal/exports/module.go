// Package exports provides booking downloads: the admin CSV of confirmed
// bookings and the per-lead PDF voucher.
package exports

import (
	apphttp "travel_crm_backend/internal/http"
	"travel_crm_backend/platform/config"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Module struct {
	handler  *Handler
	vouchers *VoucherHandler
}

func NewModule(pool *pgxpool.Pool, cfg config.DocumentConfig) *Module {
	repo := NewRepository(pool)
	return &Module{
		handler:  NewHandler(repo, cfg.GetLocation()),
		vouchers: NewVoucherHandler(repo, cfg.GetAgencyName(), cfg.GetLocation()),
	}
}

func (m *Module) Name() string {
	return "exports"
}

func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.Protected.GET("/exports/vouchers/:leadId", m.vouchers.HandleVoucherPDF)
	ctx.Admin.GET("/exports/bookings.csv", m.handler.HandleBookingsCSV)
}

var _ apphttp.Module = (*Module)(nil)
