// Package notification turns lead workflow events into in-app
// notifications, live SSE events, device pushes and operations mail.
// Domain modules publish events and never call into this package.
package notification

import (
	"travel_crm_backend/internal/email"
	"travel_crm_backend/internal/events"
	apphttp "travel_crm_backend/internal/http"
	notifhandler "travel_crm_backend/internal/notification/handler"
	"travel_crm_backend/internal/notification/inapp"
	"travel_crm_backend/internal/notification/outbox"
	"travel_crm_backend/internal/notification/sse"
	"travel_crm_backend/platform/config"
	"travel_crm_backend/platform/httpkit"
	"travel_crm_backend/platform/logger"
	"travel_crm_backend/platform/metrics"
	"travel_crm_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Module handles all notification-related event subscriptions and routes.
type Module struct {
	dispatcher *Dispatcher
	sse        *sse.Service
	handler    *notifhandler.HTTPHandler
}

// New creates the notification module and subscribes it to bus.
func New(pool *pgxpool.Pool, bus events.Bus, users UserDirectory, cfg config.EmailConfig, val *validator.Validator, m *metrics.Metrics, log *logger.Logger) *Module {
	sseSvc := sse.New(log)
	inAppSvc := inapp.NewService(inapp.NewRepository(pool), log)
	inAppSvc.SetSSE(sseSvc)

	opsEmail := ""
	if cfg.IsEmailEnabled() {
		opsEmail = cfg.GetOperationsEmail()
	}
	dispatcher := NewDispatcher(inAppSvc, outbox.New(pool), users, email.NewSender(cfg), opsEmail, m, log)
	dispatcher.RegisterHandlers(bus)

	stream := sseSvc.Handler(func(c *gin.Context) (uuid.UUID, bool) {
		id := httpkit.GetIdentity(c)
		return id.UserID(), id.IsAuthenticated()
	})

	return &Module{
		dispatcher: dispatcher,
		sse:        sseSvc,
		handler:    notifhandler.NewHTTPHandler(inAppSvc, stream, inapp.NewMessenger(bus, users), val),
	}
}

// Name returns the module identifier.
func (m *Module) Name() string { return "notification" }

// RegisterRoutes registers notification API routes.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Protected.Group("/notifications"))
}

// Close disconnects open SSE streams so shutdown does not wait on them.
func (m *Module) Close() {
	m.sse.Close()
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
