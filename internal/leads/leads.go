// Package leads provides lead management functionality.
// This file defines the public API of the leads bounded context.
// Only types and interfaces defined here should be imported by other domains.
package leads

import (
	"context"
	"time"
)

// ReminderSweeper marks pending travel reminders whose date has passed as
// done. The scheduler process runs it on a cron schedule.
type ReminderSweeper interface {
	SweepElapsed(ctx context.Context, now time.Time) (int64, error)
}

// Note: the workflow services are for the HTTP handler layer only. Other
// domains react to lead activity through the events published on the bus
// (see internal/events) rather than calling into this package.
