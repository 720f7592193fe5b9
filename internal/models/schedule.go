package models

import "fmt"

// Frequency is the recurrence of an automatic restart
type Frequency string

const (
	Daily   Frequency = "daily"
	Weekly  Frequency = "weekly"
	Monthly Frequency = "monthly"
)

// RestartSchedule is a recurring automatic restart policy for one link.
// DayOfWeek uses 1=Sunday .. 7=Saturday.
type RestartSchedule struct {
	Enabled     bool      `json:"enabled"`
	Frequency   Frequency `json:"frequency"`
	DayOfWeek   int       `json:"day_of_week,omitempty"`
	WeekOfMonth int       `json:"week_of_month,omitempty"`
	Hour        int       `json:"hour"`
	Minute      int       `json:"minute"`
	Second      int       `json:"second"`
}

// Validate checks field ranges for the schedule frequency
func (s RestartSchedule) Validate() error {
	if s.Hour < 0 || s.Hour > 23 {
		return fmt.Errorf("hour must be between 0 and 23")
	}
	if s.Minute < 0 || s.Minute > 59 {
		return fmt.Errorf("minute must be between 0 and 59")
	}
	if s.Second < 0 || s.Second > 59 {
		return fmt.Errorf("second must be between 0 and 59")
	}
	switch s.Frequency {
	case Daily:
	case Weekly:
		if s.DayOfWeek < 1 || s.DayOfWeek > 7 {
			return fmt.Errorf("day of week must be between 1 and 7")
		}
	case Monthly:
		if s.DayOfWeek < 1 || s.DayOfWeek > 7 {
			return fmt.Errorf("day of week must be between 1 and 7")
		}
		if s.WeekOfMonth < 1 || s.WeekOfMonth > 4 {
			return fmt.Errorf("week of month must be between 1 and 4")
		}
	default:
		return fmt.Errorf("unknown frequency %q", s.Frequency)
	}
	return nil
}

// ScheduleUpdate replaces the restart schedule of a link
type ScheduleUpdate struct {
	Link     LinkID          `json:"link"`
	Schedule RestartSchedule `json:"schedule"`
}
