package domain

// Action is a named lifecycle event. Agent-recordable actions arrive through
// the follow-up form; the rest are issued by dedicated operations and are
// also written to follow-up history.
type Action string

const (
	ActionItinerarySent        Action = "itinerary_sent"
	ActionItineraryUpdated     Action = "itinerary_updated"
	ActionFollowUp             Action = "follow_up"
	ActionAlmostConfirmed      Action = "almost_confirmed"
	ActionConfirmedAdvancePaid Action = "confirmed_advance_paid"
	ActionDead                 Action = "dead"

	ActionNoResponse           Action = "no_response"
	ActionAllocateToOperations Action = "allocated_to_operations"
	ActionReassigned           Action = "reassigned"
	ActionFeedbackRequested    Action = "feedback_requested"
)

var recordableActions = map[Action]struct{}{
	ActionItinerarySent:        {},
	ActionItineraryUpdated:     {},
	ActionFollowUp:             {},
	ActionAlmostConfirmed:      {},
	ActionConfirmedAdvancePaid: {},
	ActionDead:                 {},
}

// IsRecordable reports whether agents may submit the action as a follow-up.
func (a Action) IsRecordable() bool {
	_, ok := recordableActions[a]
	return ok
}

// RequiresNextFollowUp reports whether the follow-up must carry the next
// contact date and time.
func (a Action) RequiresNextFollowUp() bool {
	switch a {
	case ActionItinerarySent, ActionItineraryUpdated, ActionFollowUp:
		return true
	}
	return false
}
