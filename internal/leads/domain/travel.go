package domain

import (
	"errors"
	"regexp"
	"time"
)

var ErrTravelWindow = errors.New("exactly one of travel date or travel month must be set")

var travelMonthPattern = regexp.MustCompile(`^\d{4}-(0[1-9]|1[0-2])$`)

// TravelWindow is either an exact departure date or a month ("2025-12").
type TravelWindow struct {
	Date  *time.Time
	Month *string
}

// Validate enforces that exactly one side is set and the month is well formed.
func (w TravelWindow) Validate() error {
	hasDate := w.Date != nil
	hasMonth := w.Month != nil && *w.Month != ""
	if hasDate == hasMonth {
		return ErrTravelWindow
	}
	if hasMonth && !travelMonthPattern.MatchString(*w.Month) {
		return ErrTravelWindow
	}
	return nil
}

// Confirmed returns the window after a confirmation fixes the date. The
// month is cleared so the one-of invariant keeps holding.
func (w TravelWindow) Confirmed(date time.Time) TravelWindow {
	d := DateOnly(date)
	return TravelWindow{Date: &d}
}

// ReminderLeadDays is how many calendar days before travel the reminder fires.
const ReminderLeadDays = 7

// ReminderDate is ReminderLeadDays calendar days before travel.
func ReminderDate(travel time.Time) time.Time {
	return DateOnly(travel).AddDate(0, 0, -ReminderLeadDays)
}

// DateOnly drops the clock part, keeping the calendar day in t's location.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// At combines a calendar day with an "HH:MM" clock in loc.
func At(day time.Time, clock string, loc *time.Location) (time.Time, error) {
	hm, err := time.Parse("15:04", clock)
	if err != nil {
		return time.Time{}, err
	}
	y, m, d := day.Date()
	return time.Date(y, m, d, hm.Hour(), hm.Minute(), 0, 0, loc), nil
}
