// Package email delivers operational mail over SMTP.
package email

import (
	"context"
	"time"

	"travel_crm_backend/platform/config"
)

// Sender sends the mails the workflow produces.
type Sender interface {
	// SendAllocationEmail tells the operations team a confirmed booking
	// has been handed over.
	SendAllocationEmail(ctx context.Context, toEmail string, data AllocationEmail) error
}

// AllocationEmail is the content of the hand-over mail.
type AllocationEmail struct {
	ClientName  string
	Place       string
	TravelDate  *time.Time
	AllocatedBy string
	LeadID      string
}

// NoopSender drops every mail. Used when SMTP is not configured.
type NoopSender struct{}

func (NoopSender) SendAllocationEmail(context.Context, string, AllocationEmail) error { return nil }

// NewSender returns an SMTP sender, or NoopSender when SMTP is not configured.
func NewSender(cfg config.EmailConfig) Sender {
	if !cfg.IsEmailEnabled() {
		return NoopSender{}
	}
	return NewSMTPSender(cfg.GetSMTPHost(), cfg.GetSMTPPort(), cfg.GetSMTPUsername(), cfg.GetSMTPPassword(), cfg.GetSMTPFrom(), "Travel CRM")
}
