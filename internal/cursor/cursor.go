// Package cursor decides which calendar date the incremental load processes next.
package cursor

import "time"

// Day truncates t to midnight UTC of its calendar date.
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Floor returns the earliest date the incremental load starts from.
func Floor(today time.Time, days int) time.Time {
	return Day(today).AddDate(0, 0, -days)
}

// Next returns the date after last, or floor when last is unset (zero).
// It returns false once the candidate is after today: the table is caught
// up and the caller should treat the run as a no-op.
func Next(last, floor, today time.Time) (time.Time, bool) {
	today = Day(today)

	var candidate time.Time
	if last.IsZero() {
		candidate = Day(floor)
	} else {
		candidate = Day(last).AddDate(0, 0, 1)
	}

	if candidate.After(today) {
		return time.Time{}, false
	}
	return candidate, true
}
