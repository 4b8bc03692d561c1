package domain

import (
	"errors"
	"fmt"
)

// ErrInvalidTransition is returned for any (status, action) pair the table
// does not list.
var ErrInvalidTransition = errors.New("invalid lead status transition")

// sameStatus marks an action that is allowed but leaves the status alone.
const sameStatus Status = ""

type rule struct {
	from []Status
	to   Status
}

var workable = []Status{StatusAllocated, StatusHot, StatusFollowUp}

var nonTerminal = []Status{StatusAllocated, StatusHot, StatusFollowUp, StatusConfirmed}

// transitions is the only place lead status changes are defined.
var transitions = map[Action]rule{
	ActionItinerarySent:        {from: workable, to: StatusFollowUp},
	ActionItineraryUpdated:     {from: workable, to: StatusFollowUp},
	ActionFollowUp:             {from: workable, to: StatusFollowUp},
	ActionAlmostConfirmed:      {from: workable, to: sameStatus},
	ActionConfirmedAdvancePaid: {from: workable, to: StatusConfirmed},
	ActionDead:                 {from: nonTerminal, to: StatusDead},
	ActionNoResponse:           {from: nonTerminal, to: StatusNoResponse},
	ActionAllocateToOperations: {from: []Status{StatusConfirmed}, to: StatusAllocatedToOperations},
	ActionFeedbackRequested:    {from: []Status{StatusConfirmed, StatusAllocatedToOperations}, to: sameStatus},
}

// Next returns the status a lead in current moves to when action is applied.
// Reassignment is not in the table: it never changes the status.
func Next(current Status, action Action) (Status, error) {
	if action == ActionReassigned {
		return current, nil
	}

	r, ok := transitions[action]
	if !ok {
		return "", fmt.Errorf("%w: unknown action %q", ErrInvalidTransition, action)
	}
	for _, from := range r.from {
		if from == current {
			if r.to == sameStatus {
				return current, nil
			}
			return r.to, nil
		}
	}
	return "", fmt.Errorf("%w: %s is not allowed from %s", ErrInvalidTransition, action, current)
}

// Allowed lists the actions valid from status, in a stable order.
func Allowed(current Status) []Action {
	order := []Action{
		ActionItinerarySent, ActionItineraryUpdated, ActionFollowUp,
		ActionAlmostConfirmed, ActionConfirmedAdvancePaid, ActionDead,
		ActionNoResponse, ActionAllocateToOperations, ActionFeedbackRequested,
	}
	out := make([]Action, 0, len(order))
	for _, a := range order {
		if _, err := Next(current, a); err == nil {
			out = append(out, a)
		}
	}
	return out
}

// Reopen moves a no_response lead back to the status it would have had on
// creation. It is only used by reassignment with reopen requested.
func Reopen(current Status, priority Priority) (Status, error) {
	if current != StatusNoResponse {
		return "", fmt.Errorf("%w: only no_response leads can be reopened, lead is %s", ErrInvalidTransition, current)
	}
	return InitialStatus(priority), nil
}

// ReleasesBooking reports whether moving from one status to another ends a
// confirmed booking. The active confirmation is then cancelled and pending
// reminders dropped, so a reopened lead can be confirmed again.
func ReleasesBooking(from, to Status) bool {
	return from == StatusConfirmed && (to == StatusDead || to == StatusNoResponse)
}
