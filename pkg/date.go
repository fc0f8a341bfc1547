package pkg

import (
	"fmt"
	"time"
)

// DateLayout is the calendar-day format used for every (user, date) key.
const DateLayout = "2006-01-02"

// Today returns the current calendar day in the process's local time zone.
func Today() string {
	return time.Now().Format(DateLayout)
}

// ParseDate validates a YYYY-MM-DD string. The alias "today" resolves to
// the local calendar day.
func ParseDate(date string) (string, error) {
	if date == "today" {
		return Today(), nil
	}
	t, err := time.ParseInLocation(DateLayout, date, time.Local)
	if err != nil {
		return "", fmt.Errorf("invalid date [%s]: %w", date, err)
	}
	return t.Format(DateLayout), nil
}

// NextDay returns the calendar day immediately after date.
func NextDay(date string) (string, error) {
	t, err := time.ParseInLocation(DateLayout, date, time.Local)
	if err != nil {
		return "", fmt.Errorf("invalid date [%s]: %w", date, err)
	}
	return t.AddDate(0, 0, 1).Format(DateLayout), nil
}
