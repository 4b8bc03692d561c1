package email

import (
	"context"
	"strings"
	"testing"
	"time"
)

func TestRenderAllocationEscapesHTML(t *testing.T) {
	travel := time.Date(2026, 2, 14, 0, 0, 0, 0, time.UTC)
	htmlContent, textContent, err := renderAllocation(AllocationEmail{
		ClientName:  "<b>Rao</b>",
		Place:       "Bali",
		TravelDate:  &travel,
		AllocatedBy: "Asha",
		LeadID:      "lead-1",
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if strings.Contains(htmlContent, "<b>Rao</b>") {
		t.Fatal("expected client name to be escaped in html")
	}
	if !strings.Contains(textContent, "2026-02-14") || !strings.Contains(textContent, "<b>Rao</b>") {
		t.Fatalf("unexpected text body %q", textContent)
	}
}

func TestRenderAllocationWithoutDate(t *testing.T) {
	_, textContent, err := renderAllocation(AllocationEmail{ClientName: "Rao", Place: "Bali"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(textContent, "not fixed") {
		t.Fatalf("expected placeholder date, got %q", textContent)
	}
}

type emailCfg struct{ host string }

func (c emailCfg) GetSMTPHost() string        { return c.host }
func (c emailCfg) GetSMTPPort() int           { return 587 }
func (c emailCfg) GetSMTPUsername() string    { return "" }
func (c emailCfg) GetSMTPPassword() string    { return "" }
func (c emailCfg) GetSMTPFrom() string        { return "crm@example.com" }
func (c emailCfg) GetOperationsEmail() string { return "ops@example.com" }
func (c emailCfg) IsEmailEnabled() bool       { return c.host != "" }

func TestNewSenderWithoutSMTPIsNoop(t *testing.T) {
	sender := NewSender(emailCfg{})
	if _, ok := sender.(NoopSender); !ok {
		t.Fatalf("expected NoopSender, got %T", sender)
	}
	if err := sender.SendAllocationEmail(context.Background(), "ops@example.com", AllocationEmail{}); err != nil {
		t.Fatalf("noop send: %v", err)
	}
}
