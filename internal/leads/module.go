// Package leads provides the lead management bounded context module.
// This file defines the module that encapsulates all leads setup and route registration.
package leads

import (
	"travel_crm_backend/internal/adapters/storage"
	"travel_crm_backend/internal/calendar"
	"travel_crm_backend/internal/events"
	apphttp "travel_crm_backend/internal/http"
	"travel_crm_backend/internal/leads/assignment"
	"travel_crm_backend/internal/leads/followup"
	"travel_crm_backend/internal/leads/handler"
	"travel_crm_backend/internal/leads/lifecycle"
	"travel_crm_backend/internal/leads/management"
	"travel_crm_backend/internal/leads/reminders"
	"travel_crm_backend/internal/leads/repository"
	"travel_crm_backend/internal/whatsapp"
	"travel_crm_backend/platform/config"
	"travel_crm_backend/platform/logger"
	"travel_crm_backend/platform/metrics"
	"travel_crm_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the leads bounded context module implementing http.Module.
type Module struct {
	handler   *handler.Handler
	reminders *reminders.Service
}

// NewModule creates and initializes the leads module with all its dependencies.
func NewModule(pool *pgxpool.Pool, eventBus events.Bus, val *validator.Validator, cfg *config.Config, m *metrics.Metrics, log *logger.Logger) (*Module, error) {
	repo := repository.New(pool)

	reminderSvc := NewReminders(repo, cfg, log)
	assignSvc := assignment.New(repo, eventBus, m, log)
	followupSvc := followup.New(repo, reminderSvc, eventBus, cfg, m, log)
	lifecycleSvc := lifecycle.New(repo, followupSvc, whatsapp.NewClient(cfg, log), eventBus, m, log)
	mgmtSvc := management.New(repo, assignSvc, cfg)

	var receiptStore storage.ReceiptStorage = storage.Disabled{}
	if cfg.IsMinIOEnabled() {
		minio, err := storage.NewMinIOService(cfg)
		if err != nil {
			return nil, err
		}
		receiptStore = minio
	} else {
		log.Info("minio not configured, receipt uploads disabled")
	}
	receiptSvc := management.NewReceiptService(repo, receiptStore)

	return &Module{
		handler:   handler.New(mgmtSvc, receiptSvc, assignSvc, followupSvc, lifecycleSvc, val),
		reminders: reminderSvc,
	}, nil
}

// NewReminders builds the reminder service on its own, for processes that
// sweep reminders without serving HTTP.
func NewReminders(repo *repository.Repository, cfg *config.Config, log *logger.Logger) *reminders.Service {
	if !cfg.IsCalendarEnabled() {
		log.Info("calendar not configured, travel reminders will be reported as warnings")
	}
	return reminders.New(calendar.NewClient(cfg, log), repo, cfg, log)
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "leads"
}

// Reminders returns the reminder sweeper.
func (m *Module) Reminders() ReminderSweeper {
	return m.reminders
}

// RegisterRoutes mounts leads routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	// All leads routes require authentication
	m.handler.RegisterRoutes(ctx.Protected.Group("/leads"))
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
