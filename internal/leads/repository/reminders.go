package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// CreateReminder stores a reminder that already has a calendar event.
func (r *Repository) CreateReminder(ctx context.Context, params CreateReminderParams) (Reminder, error) {
	rem := Reminder{
		ID:              uuid.New(),
		LeadID:          params.LeadID,
		AgentID:         params.AgentID,
		TravelDate:      params.TravelDate,
		ReminderDate:    params.ReminderDate,
		ReminderTime:    params.ReminderTime,
		CalendarEventID: params.CalendarEventID,
		Status:          ReminderPending,
	}
	err := r.pool.QueryRow(ctx, `
		INSERT INTO lead_reminders (id, lead_id, agent_id, travel_date, reminder_date, reminder_time, calendar_event_id, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at
	`, rem.ID, rem.LeadID, rem.AgentID, rem.TravelDate, rem.ReminderDate, rem.ReminderTime, rem.CalendarEventID, rem.Status,
	).Scan(&rem.CreatedAt)
	return rem, err
}

func (r *Repository) ListReminders(ctx context.Context, leadID uuid.UUID) ([]Reminder, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, lead_id, agent_id, travel_date, reminder_date, reminder_time, calendar_event_id, status, created_at
		FROM lead_reminders WHERE lead_id = $1
		ORDER BY reminder_date ASC, created_at ASC
	`, leadID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]Reminder, 0)
	for rows.Next() {
		var rem Reminder
		if err := rows.Scan(&rem.ID, &rem.LeadID, &rem.AgentID, &rem.TravelDate, &rem.ReminderDate,
			&rem.ReminderTime, &rem.CalendarEventID, &rem.Status, &rem.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, rem)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return items, nil
}

// MarkElapsedReminders flips pending reminders whose day is before today
// to done and returns how many changed.
func (r *Repository) MarkElapsedReminders(ctx context.Context, today time.Time) (int64, error) {
	result, err := r.pool.Exec(ctx, `
		UPDATE lead_reminders SET status = 'done'
		WHERE status = 'pending' AND reminder_date < $1
	`, today)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}
