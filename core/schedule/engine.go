package schedule

import (
	"fmt"
	"time"
)

// Occurrence is a concrete instant of a weekly recurring Entry.
type Occurrence struct {
	Entry Entry     `json:"entry"`
	At    time.Time `json:"at"`
}

// TimestampMs returns the occurrence as unix milliseconds.
func (o Occurrence) TimestampMs() int64 {
	return o.At.UnixMilli()
}

// NextOccurrence returns the first instant strictly after now at which e takes place.
// The result is expressed in now's location; the weekly rollover adds 7 calendar days.
// It panics on an invalid weekday.
func NextOccurrence(e Entry, now time.Time) time.Time {
	if !e.Weekday.Valid() {
		panic(fmt.Sprintf("schedule: invalid weekday %d", e.Weekday))
	}

	daysAhead := (int(e.Weekday) - int(WeekdayOf(now)) + 7) % 7
	year, month, day := now.Date()
	candidate := time.Date(year, month, day+daysAhead, e.Start.Hour(), e.Start.Minute(), 0, 0, now.Location())
	if !candidate.After(now) {
		candidate = time.Date(year, month, day+daysAhead+7, e.Start.Hour(), e.Start.Minute(), 0, 0, now.Location())
	}
	return candidate
}

// FindNext returns the soonest upcoming occurrence among entries.
// Ties keep the earliest entry in input order. It returns false if entries is empty.
func FindNext(entries []Entry, now time.Time) (Occurrence, bool) {
	var (
		next  Occurrence
		found bool
	)
	for _, e := range entries {
		at := NextOccurrence(e, now)
		if !found || at.Before(next.At) {
			next = Occurrence{Entry: e, At: at}
			found = true
		}
	}
	return next, found
}
