package events

import (
	platformevents "travel_crm_backend/platform/events"
	"travel_crm_backend/platform/logger"
)

type InMemoryBus = platformevents.InMemoryBus

// NewInMemoryBus creates the process-local bus used by the API binary.
func NewInMemoryBus(log *logger.Logger) *InMemoryBus {
	return platformevents.NewInMemoryBus(log)
}
