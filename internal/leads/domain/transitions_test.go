package domain

import (
	"errors"
	"testing"
)

var allStatuses = []Status{
	StatusAllocated, StatusHot, StatusFollowUp, StatusConfirmed,
	StatusAllocatedToOperations, StatusDead, StatusNoResponse,
}

func TestNextTable(t *testing.T) {
	cases := []struct {
		from   Status
		action Action
		want   Status
	}{
		{StatusAllocated, ActionItinerarySent, StatusFollowUp},
		{StatusHot, ActionItineraryUpdated, StatusFollowUp},
		{StatusFollowUp, ActionFollowUp, StatusFollowUp},
		{StatusHot, ActionAlmostConfirmed, StatusHot},
		{StatusFollowUp, ActionAlmostConfirmed, StatusFollowUp},
		{StatusAllocated, ActionConfirmedAdvancePaid, StatusConfirmed},
		{StatusFollowUp, ActionConfirmedAdvancePaid, StatusConfirmed},
		{StatusConfirmed, ActionDead, StatusDead},
		{StatusHot, ActionNoResponse, StatusNoResponse},
		{StatusConfirmed, ActionAllocateToOperations, StatusAllocatedToOperations},
		{StatusAllocatedToOperations, ActionFeedbackRequested, StatusAllocatedToOperations},
	}
	for _, tc := range cases {
		got, err := Next(tc.from, tc.action)
		if err != nil {
			t.Fatalf("%s from %s: unexpected error %v", tc.action, tc.from, err)
		}
		if got != tc.want {
			t.Fatalf("%s from %s: expected %s, got %s", tc.action, tc.from, tc.want, got)
		}
	}
}

func TestNextRejectsIllegalPairs(t *testing.T) {
	cases := []struct {
		from   Status
		action Action
	}{
		{StatusDead, ActionConfirmedAdvancePaid},
		{StatusDead, ActionFollowUp},
		{StatusNoResponse, ActionItinerarySent},
		{StatusAllocatedToOperations, ActionDead},
		{StatusConfirmed, ActionFollowUp},
		{StatusConfirmed, ActionConfirmedAdvancePaid},
		{StatusFollowUp, ActionAllocateToOperations},
		{StatusHot, ActionFeedbackRequested},
		{StatusHot, Action("teleport")},
	}
	for _, tc := range cases {
		if _, err := Next(tc.from, tc.action); !errors.Is(err, ErrInvalidTransition) {
			t.Fatalf("%s from %s: expected ErrInvalidTransition, got %v", tc.action, tc.from, err)
		}
	}
}

// Every reachable status must be one of the seven known statuses, and
// terminal statuses must not accept any status-changing action.
func TestStatusClosure(t *testing.T) {
	for _, from := range allStatuses {
		for action := range transitions {
			to, err := Next(from, action)
			if err != nil {
				continue
			}
			if !to.Valid() {
				t.Fatalf("%s from %s produced unknown status %q", action, from, to)
			}
			if from.IsTerminal() && to != from {
				t.Fatalf("terminal status %s moved to %s via %s", from, to, action)
			}
		}
	}
}

func TestReassignmentKeepsStatus(t *testing.T) {
	for _, s := range allStatuses {
		got, err := Next(s, ActionReassigned)
		if err != nil || got != s {
			t.Fatalf("reassignment from %s: got %s, %v", s, got, err)
		}
	}
}

func TestInitialStatus(t *testing.T) {
	if InitialStatus(PriorityHot) != StatusHot {
		t.Fatal("hot priority should start hot")
	}
	if InitialStatus(PriorityUrgent) != StatusAllocated || InitialStatus(PriorityNormal) != StatusAllocated {
		t.Fatal("non-hot priorities should start allocated")
	}
}

func TestReopen(t *testing.T) {
	got, err := Reopen(StatusNoResponse, PriorityHot)
	if err != nil || got != StatusHot {
		t.Fatalf("expected hot, got %s, %v", got, err)
	}
	if _, err := Reopen(StatusDead, PriorityNormal); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected dead lead reopen to fail, got %v", err)
	}
}

func TestAllowedForTerminal(t *testing.T) {
	if got := Allowed(StatusDead); len(got) != 0 {
		t.Fatalf("expected no actions for dead lead, got %v", got)
	}
	got := Allowed(StatusConfirmed)
	want := []Action{ActionDead, ActionNoResponse, ActionAllocateToOperations, ActionFeedbackRequested}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}

func TestReleasesBooking(t *testing.T) {
	cases := []struct {
		from, to Status
		want     bool
	}{
		{StatusConfirmed, StatusDead, true},
		{StatusConfirmed, StatusNoResponse, true},
		{StatusConfirmed, StatusAllocatedToOperations, false},
		{StatusConfirmed, StatusConfirmed, false},
		{StatusHot, StatusNoResponse, false},
		{StatusFollowUp, StatusDead, false},
	}
	for _, tc := range cases {
		if got := ReleasesBooking(tc.from, tc.to); got != tc.want {
			t.Fatalf("%s -> %s: expected %v, got %v", tc.from, tc.to, tc.want, got)
		}
	}
}

func TestConfirmAgainAfterNoResponseAndReopen(t *testing.T) {
	status, err := Next(StatusConfirmed, ActionNoResponse)
	if err != nil || !ReleasesBooking(StatusConfirmed, status) {
		t.Fatalf("expected no_response to release the booking, got %s / %v", status, err)
	}
	status, err = Reopen(status, PriorityNormal)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if status, err = Next(status, ActionConfirmedAdvancePaid); err != nil || status != StatusConfirmed {
		t.Fatalf("expected reopened lead to confirm again, got %s / %v", status, err)
	}
}
