package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// LeadReader provides scoped read access to leads.
type LeadReader interface {
	GetByID(ctx context.Context, id uuid.UUID, scope Scope) (Lead, error)
	List(ctx context.Context, params ListParams) ([]Lead, int, error)
	ListAlmostConfirmed(ctx context.Context, scope Scope, limit, offset int) ([]Lead, error)
}

// LeadWriter creates, edits and removes leads.
type LeadWriter interface {
	Create(ctx context.Context, params CreateLeadParams) (Lead, error)
	Update(ctx context.Context, id uuid.UUID, scope Scope, params UpdateLeadParams) (Lead, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// AgentDirectory looks up the users leads are assigned to.
type AgentDirectory interface {
	GetAgent(ctx context.Context, id uuid.UUID) (Agent, error)
	FirstAdmin(ctx context.Context) (Agent, error)
}

// Reassigner moves a lead between agents.
type Reassigner interface {
	Reassign(ctx context.Context, params ReassignParams, decide Decide) (ReassignResult, error)
}

// HistoryWriter appends follow-ups and applies the status they decide.
type HistoryWriter interface {
	RecordFollowUp(ctx context.Context, params RecordFollowUpParams, decide Decide) (RecordFollowUpResult, error)
	ApplyTransition(ctx context.Context, params TransitionParams, decide Decide) (RecordFollowUpResult, error)
}

// HistoryReader lists follow-ups.
type HistoryReader interface {
	ListFollowUps(ctx context.Context, leadID uuid.UUID, limit, offset int) ([]FollowUp, error)
}

// ItineraryChecker validates itinerary references on follow-ups.
type ItineraryChecker interface {
	ItineraryExists(ctx context.Context, id uuid.UUID) (bool, error)
}

// ConfirmationStore reads confirmations and attaches receipts.
type ConfirmationStore interface {
	GetActiveConfirmation(ctx context.Context, leadID uuid.UUID) (Confirmation, error)
	SetReceiptKey(ctx context.Context, confirmationID uuid.UUID, key string) error
}

// ReminderStore persists travel reminders.
type ReminderStore interface {
	CreateReminder(ctx context.Context, params CreateReminderParams) (Reminder, error)
	ListReminders(ctx context.Context, leadID uuid.UUID) ([]Reminder, error)
	MarkElapsedReminders(ctx context.Context, today time.Time) (int64, error)
}

// CallLogger records calls against leads.
type CallLogger interface {
	LogCall(ctx context.Context, params LogCallParams, scope Scope) (CallLog, error)
}

// LeadsRepository is the full store used by the leads module.
type LeadsRepository interface {
	LeadReader
	LeadWriter
	AgentDirectory
	Reassigner
	HistoryWriter
	HistoryReader
	ItineraryChecker
	ConfirmationStore
	ReminderStore
	CallLogger
}

var _ LeadsRepository = (*Repository)(nil)
