// Package domain holds the lead lifecycle rules shared by every lead
// workflow: statuses, actions, the transition table and the money and
// travel-date invariants.
package domain

// Status is the lifecycle position of a lead.
type Status string

const (
	StatusAllocated             Status = "allocated"
	StatusHot                   Status = "hot"
	StatusFollowUp              Status = "follow_up"
	StatusConfirmed             Status = "confirmed"
	StatusAllocatedToOperations Status = "allocated_to_operations"
	StatusDead                  Status = "dead"
	StatusNoResponse            Status = "no_response"
)

var knownStatuses = map[Status]struct{}{
	StatusAllocated:             {},
	StatusHot:                   {},
	StatusFollowUp:              {},
	StatusConfirmed:             {},
	StatusAllocatedToOperations: {},
	StatusDead:                  {},
	StatusNoResponse:            {},
}

// terminalStatuses accept no further follow-up actions.
var terminalStatuses = map[Status]bool{
	StatusAllocatedToOperations: true,
	StatusDead:                  true,
	StatusNoResponse:            true,
}

func (s Status) Valid() bool {
	_, ok := knownStatuses[s]
	return ok
}

func (s Status) IsTerminal() bool {
	return terminalStatuses[s]
}

// IsActive reports whether the lead can still be worked by its agent.
func (s Status) IsActive() bool {
	return s.Valid() && !s.IsTerminal()
}

// Booked reports whether the lead carries a confirmed trip whose travel
// window has been booked and reminded against.
func (s Status) Booked() bool {
	return s == StatusConfirmed || s == StatusAllocatedToOperations
}

// Priority is set at creation and decides the initial status.
type Priority string

const (
	PriorityNormal Priority = "normal"
	PriorityUrgent Priority = "urgent"
	PriorityHot    Priority = "hot"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityNormal, PriorityUrgent, PriorityHot:
		return true
	}
	return false
}

// Source is where the enquiry came from.
type Source string

const (
	SourceInstagram Source = "Instagram"
	SourceFacebook  Source = "Facebook"
	SourceGoogleAds Source = "Google Ads"
	SourceWebsite   Source = "Website"
	SourceWhatsApp  Source = "WhatsApp"
	SourcePhone     Source = "Phone"
	SourceOther     Source = "Other"
)

func (s Source) Valid() bool {
	switch s {
	case SourceInstagram, SourceFacebook, SourceGoogleAds, SourceWebsite, SourceWhatsApp, SourcePhone, SourceOther:
		return true
	}
	return false
}

// InitialStatus is the status a freshly assigned lead starts in.
func InitialStatus(p Priority) Status {
	if p == PriorityHot {
		return StatusHot
	}
	return StatusAllocated
}
