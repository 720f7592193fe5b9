// Package schedule computes upcoming automatic restarts and formats them for display.
package schedule

import (
	"fmt"
	"time"

	"linkmon/internal/models"
)

// NextOccurrence returns the first time strictly after now that the schedule fires.
// It returns false when the schedule is disabled or invalid. Calculation happens in now's location.
func NextOccurrence(s models.RestartSchedule, now time.Time) (time.Time, bool) {
	if !s.Enabled || s.Validate() != nil {
		return time.Time{}, false
	}

	loc := now.Location()
	at := func(year int, month time.Month, day int) time.Time {
		return time.Date(year, month, day, s.Hour, s.Minute, s.Second, 0, loc)
	}

	switch s.Frequency {
	case models.Daily:
		next := at(now.Year(), now.Month(), now.Day())
		if !next.After(now) {
			next = at(now.Year(), now.Month(), now.Day()+1)
		}
		return next, true

	case models.Weekly:
		delta := s.DayOfWeek - weekday(now)
		next := at(now.Year(), now.Month(), now.Day()+delta)
		if delta < 0 || (delta == 0 && !next.After(now)) {
			next = at(now.Year(), now.Month(), now.Day()+delta+7)
		}
		return next, true

	case models.Monthly:
		next := at(now.Year(), now.Month(), monthDay(now.Year(), now.Month(), s, loc))
		if !next.After(now) {
			first := time.Date(now.Year(), now.Month()+1, 1, 0, 0, 0, 0, loc)
			next = at(first.Year(), first.Month(), monthDay(first.Year(), first.Month(), s, loc))
		}
		return next, true
	}
	return time.Time{}, false
}

// weekday converts to the 1=Sunday .. 7=Saturday convention
func weekday(t time.Time) int {
	return int(t.Weekday()) + 1
}

// monthDay returns the day of month of the schedule's weekday in its week of the month
func monthDay(year int, month time.Month, s models.RestartSchedule, loc *time.Location) int {
	first := weekday(time.Date(year, month, 1, 0, 0, 0, 0, loc))
	return 1 + (s.WeekOfMonth-1)*7 + (s.DayOfWeek-first+7)%7
}

var dayNames = []string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}

var ordinals = []string{"first", "second", "third", "fourth"}

// Describe returns a human-readable summary of the schedule
func Describe(s models.RestartSchedule) string {
	if !s.Enabled {
		return "Auto-restart disabled"
	}
	if err := s.Validate(); err != nil {
		return "Invalid schedule"
	}

	clock := fmt.Sprintf("%02d:%02d:%02d", s.Hour, s.Minute, s.Second)
	switch s.Frequency {
	case models.Weekly:
		return fmt.Sprintf("Weekly restart every %s at %s", dayNames[s.DayOfWeek-1], clock)
	case models.Monthly:
		return fmt.Sprintf("Monthly restart on the %s %s at %s", ordinals[s.WeekOfMonth-1], dayNames[s.DayOfWeek-1], clock)
	default:
		return fmt.Sprintf("Daily restart at %s", clock)
	}
}
